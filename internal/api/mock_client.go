package api

import (
	"context"
	"sync"

	"github.com/diogo/chatotp/internal/models"
)

// MockChatClient is a mock implementation of ChatClientInterface for testing
type MockChatClient struct {
	// Mock return values
	AskVal      *models.ChatResponse
	AskErr      error
	AskFunc     func(ctx context.Context, question string) (*models.ChatResponse, error)
	HealthErr   error
	EndpointVal string

	// Call recorders
	mu           sync.Mutex
	askCalls     int
	lastQuestion string
	closeCalled  bool
}

// Ensure MockChatClient implements ChatClientInterface
var _ ChatClientInterface = (*MockChatClient)(nil)

func (m *MockChatClient) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.askCalls++
	m.lastQuestion = question
	fn := m.AskFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, question)
	}
	return m.AskVal, m.AskErr
}

func (m *MockChatClient) Health(ctx context.Context) error {
	return m.HealthErr
}

func (m *MockChatClient) Endpoint() string {
	if m.EndpointVal == "" {
		return models.DefaultEndpoint
	}
	return m.EndpointVal
}

func (m *MockChatClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
}

// AskCalls returns how many times Ask was invoked
func (m *MockChatClient) AskCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.askCalls
}

// LastQuestion returns the question passed to the most recent Ask
func (m *MockChatClient) LastQuestion() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuestion
}

// CloseCalled reports whether Close was invoked
func (m *MockChatClient) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}
