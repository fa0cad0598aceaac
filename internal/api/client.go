// Package api implements the HTTP client for the ChatOTP chat backend.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/chatotp/internal/errors"
	"github.com/diogo/chatotp/internal/models"
)

const (
	// maxResponseSize caps how much of a response body is read into memory
	maxResponseSize = 8 << 20
	// maxErrorBody caps the body excerpt kept on APIError
	maxErrorBody = 4096
)

// HTTPDoer is the subset of tls_client.HttpClient the chat client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatClientInterface is implemented by ChatClient and by test doubles
type ChatClientInterface interface {
	Ask(ctx context.Context, question string) (*models.ChatResponse, error)
	Health(ctx context.Context) error
	Endpoint() string
	Close()
}

// ChatClient sends questions to the chat endpoint
type ChatClient struct {
	httpClient HTTPDoer
	endpoint   string
	topK       int
	timeout    time.Duration
	mu         sync.RWMutex
	closed     bool
}

// Ensure ChatClient implements ChatClientInterface
var _ ChatClientInterface = (*ChatClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithEndpoint sets the chat endpoint URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *ChatClient) {
		c.endpoint = endpoint
	}
}

// WithTopK sets the number of articles requested per question
func WithTopK(topK int) ClientOption {
	return func(c *ChatClient) {
		c.topK = topK
	}
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the default tls-client transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = doer
	}
}

// NewClient creates a new ChatClient
func NewClient(opts ...ClientOption) (*ChatClient, error) {
	client := &ChatClient{
		endpoint: models.DefaultEndpoint,
		topK:     models.DefaultTopK,
		timeout:  120 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := validateEndpoint(client.endpoint); err != nil {
		return nil, err
	}
	if client.topK < 1 {
		return nil, fmt.Errorf("top_k must be at least 1, got %d", client.topK)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: expected an absolute http(s) URL", endpoint)
	}
	return nil
}

// Endpoint returns the chat endpoint URL
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// TopK returns the number of articles requested per question
func (c *ChatClient) TopK() int {
	return c.topK
}

// HealthURL returns the health check URL on the same host as the chat endpoint
func (c *ChatClient) HealthURL() string {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return ""
	}
	u.Path = models.HealthPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Close marks the client closed; later requests fail with ErrClientClosed
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *ChatClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Ask posts a question and returns the decoded answer
func (c *ChatClient) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, apierrors.ErrEmptyQuestion
	}
	if c.IsClosed() {
		return nil, apierrors.ErrClientClosed
	}

	payload, err := buildPayload(question, c.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	body, err := c.do(ctx, req, "chat request")
	if err != nil {
		return nil, err
	}

	return parseChatResponse(body)
}

// Health checks the backend health endpoint
func (c *ChatClient) Health(ctx context.Context) error {
	if c.IsClosed() {
		return apierrors.ErrClientClosed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.HealthURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(ctx, req, "health check")
	if err != nil {
		return err
	}

	return parseHealth(body)
}

// do sends req and returns the body of a 2xx response
func (c *ChatClient) do(ctx context.Context, req *http.Request, operation string) ([]byte, error) {
	endpoint := req.URL.String()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("%s to %s", operation, endpoint))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint(operation, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apierrors.NewTimeoutError(fmt.Sprintf("reading %s response", operation))
		}
		return nil, apierrors.NewNetworkErrorWithEndpoint("read "+operation+" response", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := body
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, apierrors.NewAPIErrorWithBody(
			resp.StatusCode,
			endpoint,
			fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode),
			strings.TrimSpace(string(excerpt)),
		)
	}

	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
