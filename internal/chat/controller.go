package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/chatotp/internal/errors"
	"github.com/diogo/chatotp/internal/logger"
	"github.com/diogo/chatotp/internal/models"
)

// Asker sends one question to the chat backend
type Asker interface {
	Ask(ctx context.Context, question string) (*models.ChatResponse, error)
}

// Controller runs the submission cycle: it appends the user turn, issues one
// request and appends exactly one assistant turn (answer or failure message).
// At most one request is outstanding at any time.
type Controller struct {
	asker   Asker
	store   *Store
	timeout time.Duration

	mu       sync.Mutex
	pending  string
	busy     bool
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Controller
type Option func(*Controller)

// WithStore uses an existing store instead of a new one
func WithStore(store *Store) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithTimeout bounds each request. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		c.timeout = timeout
	}
}

// WithOnChange registers a hook that runs after every state change.
// The hook is called without the controller lock held.
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// NewController creates a controller bound to asker
func NewController(asker Asker, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		asker:  asker,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewStore()
	}
	return c
}

// SetOnChange replaces the change hook
func (c *Controller) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Messages returns a snapshot of the conversation
func (c *Controller) Messages() []models.Message {
	return c.store.Messages()
}

// Store returns the underlying message store
func (c *Controller) Store() *Store {
	return c.store
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Pending returns the current pending input
func (c *Controller) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// SetPending replaces the pending input
func (c *Controller) SetPending(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
}

// Submit starts an exchange. The question is text[0] when given and
// non-empty, otherwise the pending input.
//
// Submit does not block. The returned channel is closed once the assistant
// turn has been appended and the busy flag cleared. It is nil when the call
// was ignored: a request is already in flight, the question is blank, or the
// controller was closed.
func (c *Controller) Submit(text ...string) <-chan struct{} {
	c.mu.Lock()
	if c.busy || c.ctx.Err() != nil {
		busy := c.busy
		c.mu.Unlock()
		logger.Debug("submission ignored", "busy", busy)
		return nil
	}

	question := c.pending
	if len(text) > 0 && text[0] != "" {
		question = text[0]
	}
	if strings.TrimSpace(question) == "" {
		c.mu.Unlock()
		return nil
	}

	c.busy = true
	c.store.Append(models.RoleUser, question)
	c.pending = ""
	c.mu.Unlock()
	c.notify()

	done := make(chan struct{})
	go c.exchange(question, done)
	return done
}

// exchange performs the request and records its outcome
func (c *Controller) exchange(question string, done chan<- struct{}) {
	defer close(done)

	ctx := c.ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.ask(ctx, question)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		logger.Warn("chat exchange failed",
			"kind", apierrors.Kind(err),
			"status", apierrors.GetHTTPStatus(err),
			"elapsed", elapsed,
			"err", err,
		)
		c.store.Append(models.RoleAssistant, models.FailureMessage)
	} else {
		logger.Info("chat exchange completed",
			"elapsed", elapsed,
			"answer_chars", len(resp.Answer),
			"sources", len(resp.Articles),
		)
		c.store.Append(models.RoleAssistant, resp.Answer, resp.Articles...)
	}

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.notify()
}

// ask converts panics and nil responses into errors so the busy flag always clears
func (c *Controller) ask(ctx context.Context, question string) (resp *models.ChatResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = apierrors.NewParseError("chat client panicked", "")
			logger.Error("chat client panic", "recovered", r)
		}
	}()

	resp, err = c.asker.Ask(ctx, question)
	if err == nil && resp == nil {
		err = apierrors.NewParseError("empty response", "")
	}
	return resp, err
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close cancels an in-flight request and rejects further submissions.
// A cancelled request still produces its failure message.
func (c *Controller) Close() {
	c.cancel()
}
