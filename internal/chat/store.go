// Package chat holds the conversation state of a session: an append-only
// message store and the controller that runs one exchange at a time.
package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/chatotp/internal/models"
)

// Store is an ordered, append-only list of messages.
// It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
	now      func() time.Time
	newID    func() string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Append creates a message with a fresh ID and adds it to the end of the list.
// The stored message is returned by value.
func (s *Store) Append(role models.Role, content string, sources ...models.Article) models.Message {
	msg := models.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	if len(sources) > 0 {
		msg.Sources = append([]models.Article(nil), sources...)
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	return msg
}

// Messages returns a copy of the messages in insertion order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of stored messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message with the given role
func (s *Store) Last(role models.Role) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == role {
			return s.messages[i], true
		}
	}
	return models.Message{}, false
}
