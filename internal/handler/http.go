package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/model"
	"github.com/scrummate/scrummate/internal/module"
	"github.com/scrummate/scrummate/internal/repository"
)

// Repo is the slice of the repository the HTTP surface reads through.
type Repo interface {
	AllChats(ctx context.Context) ([]model.Chat, error)
	DeleteChat(ctx context.Context, id string) error
	MessagesByChat(ctx context.Context, chatID string) ([]model.Message, error)
}

// Handler exposes the assistant modules over JSON. Raw store or validation
// errors never reach the client; they are logged here and mapped to a
// generic could-not-load/could-not-send payload.
type Handler struct {
	modules map[string]*module.Module
	order   []string
	repo    Repo
	logger  zerolog.Logger
}

func New(modules []*module.Module, repo Repo, logger zerolog.Logger) *Handler {
	byKey := make(map[string]*module.Module, len(modules))
	order := make([]string, 0, len(modules))
	for _, mod := range modules {
		byKey[mod.Key] = mod
		order = append(order, mod.Key)
	}
	return &Handler{
		modules: byKey,
		order:   order,
		repo:    repo,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/modules", h.listModules)
		r.Route("/modules/{module}", func(r chi.Router) {
			r.Get("/messages", h.getMessages)
			r.Post("/messages", h.sendMessage)
			r.Get("/window", h.getWindow)
		})
		r.Get("/chats", h.listChats)
		r.Delete("/chats/{id}", h.deleteChat)
	})
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type moduleInfo struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	ChatID  string `json:"chat_id"`
	Persona string `json:"persona"`
	Loading bool   `json:"loading"`
}

func (h *Handler) listModules(w http.ResponseWriter, _ *http.Request) {
	infos := make([]moduleInfo, 0, len(h.order))
	for _, key := range h.order {
		mod := h.modules[key]
		infos = append(infos, moduleInfo{
			Key:     mod.Key,
			Title:   mod.Title,
			ChatID:  mod.ChatID,
			Persona: string(mod.Persona),
			Loading: mod.Controller.Loading(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (h *Handler) getMessages(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.modules[chi.URLParam(r, "module")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown module")
		return
	}
	messages, err := h.repo.MessagesByChat(r.Context(), mod.ChatID)
	if err != nil {
		h.logger.Error().Err(err).Str("module", mod.Key).Msg("failed to load messages")
		writeError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

type windowView struct {
	Messages         []string `json:"messages"`
	EmptyLabel       string   `json:"empty_label,omitempty"`
	Fetching         bool     `json:"fetching"`
	ShowJumpToBottom bool     `json:"show_jump_to_bottom"`
}

func (h *Handler) getWindow(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.modules[chi.URLParam(r, "module")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown module")
		return
	}
	view := windowView{
		Messages:         mod.Window.Rendered(),
		Fetching:         mod.Window.Fetching(),
		ShowJumpToBottom: mod.Window.ShowJumpToBottom(),
	}
	if len(view.Messages) == 0 && !view.Fetching {
		view.EmptyLabel = mod.Window.View()
	}
	writeJSON(w, http.StatusOK, view)
}

type sendRequest struct {
	Text string `json:"text"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	mod, ok := h.modules[chi.URLParam(r, "module")]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown module")
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if mod.Controller.Loading() {
		writeError(w, http.StatusConflict, "a message is already being sent")
		return
	}

	mod.Controller.SetInput(req.Text)
	if err := mod.Controller.Send(r.Context()); err != nil {
		var verr *repository.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, "could not send message")
			return
		}
		h.logger.Error().Err(err).Str("module", mod.Key).Msg("send failed")
		writeError(w, http.StatusInternalServerError, "could not send message")
		return
	}
	messages, err := h.repo.MessagesByChat(r.Context(), mod.ChatID)
	if err != nil {
		h.logger.Error().Err(err).Str("module", mod.Key).Msg("failed to load messages after send")
		writeError(w, http.StatusInternalServerError, "could not load messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) listChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.repo.AllChats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list chats")
		writeError(w, http.StatusInternalServerError, "could not load chats")
		return
	}
	writeJSON(w, http.StatusOK, chats)
}

func (h *Handler) deleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteChat(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error().Err(err).Msg("failed to delete chat")
		writeError(w, http.StatusInternalServerError, "could not delete chat")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
