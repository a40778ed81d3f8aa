package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/gateway"
	"github.com/scrummate/scrummate/internal/model"
)

// MessageWriter is the slice of the repository a send cycle needs.
type MessageWriter interface {
	AddMessage(ctx context.Context, msg model.Message) (model.Message, error)
}

// Responder is satisfied by the persona gateway. Implementations are
// fail-soft: the returned text is always displayable.
type Responder interface {
	Response(ctx context.Context, persona gateway.Persona, input string) string
}

// Controller orchestrates one send cycle per chat module: persist the user
// message, ask the persona for an answer, persist the assistant message,
// then signal a refresh. Only one cycle may be in flight at a time; while
// one is running further Send calls are no-ops.
type Controller struct {
	chatID    string
	persona   gateway.Persona
	repo      MessageWriter
	responder Responder
	logger    zerolog.Logger
	now       func() time.Time

	mu        sync.Mutex
	input     string
	loading   bool
	refresh   atomic.Int64
	onRefresh func()
}

func NewController(chatID string, persona gateway.Persona, repo MessageWriter, responder Responder, logger zerolog.Logger) *Controller {
	return &Controller{
		chatID:    chatID,
		persona:   persona,
		repo:      repo,
		responder: responder,
		logger:    logger.With().Str("component", "session").Str("chat_id", chatID).Logger(),
		now:       time.Now,
	}
}

// OnRefresh registers the callback fired after each completed send cycle,
// once both writes are done.
func (c *Controller) OnRefresh(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *Controller) ChatID() string { return c.chatID }

func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// RefreshCount is the monotonic counter chat windows key their re-fetch on.
func (c *Controller) RefreshCount() int64 {
	return c.refresh.Load()
}

// Send runs one cycle. Empty or whitespace-only input and calls made while
// a cycle is already in flight perform zero writes and zero gateway calls.
// The user message is durably written before the gateway is called; if that
// write fails the cycle aborts. A failed assistant write is logged and the
// cycle still completes, leaving the turn missing until the next reload.
func (c *Controller) Send(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	userMsg := model.Message{
		ChatID:    c.chatID,
		Sender:    model.SenderUser,
		Text:      text,
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := c.repo.AddMessage(ctx, userMsg); err != nil {
		c.logger.Error().Err(err).Msg("failed to save user message")
		return fmt.Errorf("failed to save user message: %w", err)
	}

	answer := c.responder.Response(ctx, c.persona, text)

	assistantMsg := model.Message{
		ChatID:    c.chatID,
		Sender:    model.SenderAssistant,
		Text:      answer,
		Timestamp: c.now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := c.repo.AddMessage(ctx, assistantMsg); err != nil {
		c.logger.Error().Err(err).Msg("failed to save assistant message")
	}

	c.mu.Lock()
	c.input = ""
	fn := c.onRefresh
	c.mu.Unlock()

	c.refresh.Add(1)
	if fn != nil {
		fn()
	}
	return nil
}
