package chatwindow

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/scrummate/scrummate/internal/model"
)

// FetchFunc loads the messages of one chat, ascending by timestamp.
type FetchFunc func(ctx context.Context, chatID string) ([]model.Message, error)

// Renderer turns one message into its display form. Each assistant module
// supplies its own; DefaultRenderer is the plain bubble fallback.
type Renderer interface {
	RenderMessage(msg model.Message) string
}

type RendererFunc func(msg model.Message) string

func (f RendererFunc) RenderMessage(msg model.Message) string { return f(msg) }

// DefaultRenderer renders a message as a sender-prefixed bubble line.
var DefaultRenderer = RendererFunc(func(msg model.Message) string {
	return string(msg.Sender) + ": " + msg.Text
})

// BottomSensor reports whether the newest message is inside the viewport.
// The window re-attaches it whenever the message list identity changes and
// detaches it on Close, so implementations must tolerate repeated
// Attach/Detach cycles.
type BottomSensor interface {
	Attach(onChange func(atBottom bool))
	Detach()
}

type nopSensor struct{}

func (nopSensor) Attach(onChange func(bool)) { onChange(true) }
func (nopSensor) Detach()                    {}

// Window synchronizes a locally cached message list with the store for one
// chat at a time. Every Refresh and chat switch schedules an asynchronous
// fetch; a monotonic generation token discards results that arrive after a
// newer trigger fired, so a slow fetch can never clobber newer state.
type Window struct {
	fetch        FetchFunc
	renderer     Renderer
	sensor       BottomSensor
	emptyLabel   string
	loadingLabel string
	errorLabel   string
	logger       zerolog.Logger

	generation atomic.Int64
	wg         conc.WaitGroup

	mu       sync.Mutex
	chatID   string
	messages []model.Message
	fetching bool
	failed   bool
	atBottom bool
	closed   bool
}

type Options struct {
	Renderer     Renderer
	Sensor       BottomSensor
	EmptyLabel   string
	LoadingLabel string
	ErrorLabel   string
}

const defaultErrorLabel = "could not load messages"

func New(fetch FetchFunc, opts Options, logger zerolog.Logger) *Window {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = DefaultRenderer
	}
	var sensor BottomSensor = nopSensor{}
	if opts.Sensor != nil {
		sensor = opts.Sensor
	}
	errorLabel := opts.ErrorLabel
	if errorLabel == "" {
		errorLabel = defaultErrorLabel
	}
	return &Window{
		fetch:        fetch,
		renderer:     renderer,
		sensor:       sensor,
		emptyLabel:   opts.EmptyLabel,
		loadingLabel: opts.LoadingLabel,
		errorLabel:   errorLabel,
		logger:       logger.With().Str("component", "chatwindow").Logger(),
		atBottom:     true,
	}
}

// SetChat switches the window to another chat and schedules a fetch.
func (w *Window) SetChat(ctx context.Context, chatID string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.chatID = chatID
	w.fetching = true
	w.mu.Unlock()
	w.load(ctx, chatID)
}

// Refresh schedules a re-fetch of the current chat.
func (w *Window) Refresh(ctx context.Context) {
	w.mu.Lock()
	if w.closed || w.chatID == "" {
		w.mu.Unlock()
		return
	}
	chatID := w.chatID
	w.fetching = true
	w.mu.Unlock()
	w.load(ctx, chatID)
}

func (w *Window) load(ctx context.Context, chatID string) {
	generation := w.generation.Add(1)
	w.wg.Go(func() {
		messages, err := w.fetch(ctx, chatID)
		w.commit(generation, chatID, messages, err)
	})
}

func (w *Window) commit(generation int64, chatID string, messages []model.Message, err error) {
	w.mu.Lock()
	// A newer trigger may fire while this fetch is in flight or while its
	// result is waiting for the mutex. A trigger bumps the generation
	// before its own commit can lock, so comparing under the same lock
	// drops every stale result; the newer fetch owns the visible state.
	if generation != w.generation.Load() {
		w.mu.Unlock()
		w.logger.Debug().Str("chat_id", chatID).Msg("stale fetch discarded")
		return
	}
	if w.closed || chatID != w.chatID {
		w.mu.Unlock()
		return
	}
	w.fetching = false
	if err != nil {
		w.failed = true
		w.mu.Unlock()
		w.logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to fetch messages")
		return
	}
	w.messages = messages
	w.failed = false
	w.atBottom = true
	w.mu.Unlock()

	// The list identity changed: re-arm the sensor and follow the newest
	// message. Sensors may report synchronously, so this happens outside
	// the lock.
	w.sensor.Detach()
	w.sensor.Attach(w.onSensorChange)
}

func (w *Window) onSensorChange(atBottom bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.atBottom = atBottom
}

// Messages is a snapshot of the currently loaded list.
func (w *Window) Messages() []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	snapshot := make([]model.Message, len(w.messages))
	copy(snapshot, w.messages)
	return snapshot
}

func (w *Window) Fetching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fetching
}

// ShowJumpToBottom reports whether the jump-to-bottom affordance should be
// visible: there are messages and the newest one is out of view.
func (w *Window) ShowJumpToBottom() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages) > 0 && !w.atBottom
}

// ScrollToBottom is the affordance's action.
func (w *Window) ScrollToBottom() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.atBottom = true
}

// View renders the window: the error label when the last fetch failed and
// nothing is loaded, the configured empty-state label when the chat is
// genuinely empty and no fetch is in flight, otherwise one rendered line
// per message, with the loading label appended while a fetch is in flight.
func (w *Window) View() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.messages) == 0 && !w.fetching {
		if w.failed {
			return w.errorLabel
		}
		return w.emptyLabel
	}
	lines := make([]string, 0, len(w.messages)+1)
	for _, msg := range w.messages {
		lines = append(lines, w.renderer.RenderMessage(msg))
	}
	if w.fetching && w.loadingLabel != "" {
		lines = append(lines, w.loadingLabel)
	}
	return strings.Join(lines, "\n")
}

// Rendered returns the per-message display forms.
func (w *Window) Rendered() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	lines := make([]string, 0, len(w.messages))
	for _, msg := range w.messages {
		lines = append(lines, w.renderer.RenderMessage(msg))
	}
	return lines
}

// Close detaches the sensor and waits for in-flight fetches. The window
// ignores triggers after Close.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.sensor.Detach()
	w.wg.Wait()
}
