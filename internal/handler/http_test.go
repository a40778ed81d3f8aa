package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/gateway"
	"github.com/scrummate/scrummate/internal/model"
	"github.com/scrummate/scrummate/internal/module"
	"github.com/scrummate/scrummate/internal/repository"
	"github.com/scrummate/scrummate/internal/storage/inmemory"
	"github.com/scrummate/scrummate/pkg/local"
)

type fixedResponder struct {
	answer string
}

func (f fixedResponder) Response(_ context.Context, _ gateway.Persona, _ string) string {
	return f.answer
}

func newTestHandler(t *testing.T) (*Handler, *repository.Repository) {
	t.Helper()
	repo := repository.New(inmemory.New(), zerolog.Nop())
	modules, err := module.BuildAll(
		context.Background(), module.Deps{
			Repo:      repo,
			Responder: fixedResponder{answer: "El Daily Scrum dura 15 minutos."},
			Language:  local.Spa,
			Logger:    zerolog.Nop(),
		},
	)
	if err != nil {
		t.Fatalf("failed to build modules: %v", err)
	}
	t.Cleanup(func() {
		for _, mod := range modules {
			mod.Window.Close()
		}
	})
	return New(modules, repo, zerolog.Nop()), repo
}

func TestListModules(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modules", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var infos []moduleInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 modules, got %d", len(infos))
	}
	if infos[0].Key != "scrum-assistant" || infos[0].ChatID != "scrum-assistant-chat" {
		t.Fatalf("unexpected first module: %+v", infos[0])
	}
}

func TestUnknownModuleIs404(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modules/kanban/messages", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSendPersistsExactlyOnePair(t *testing.T) {
	h, repo := newTestHandler(t)
	router := h.Router()

	body := bytes.NewBufferString(`{"text":"¿Qué es una Daily?"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/modules/meet-assistant/messages", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var returned []model.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &returned); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(returned) != 2 {
		t.Fatalf("expected user+assistant pair, got %d messages", len(returned))
	}
	if returned[0].Sender != model.SenderUser || returned[1].Sender != model.SenderAssistant {
		t.Fatalf("unexpected order: %+v", returned)
	}

	// Other modules stay untouched.
	other, err := repo.MessagesByChat(context.Background(), "user-stories-chat")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected the other module's chat to stay empty, got %d", len(other))
	}
}

func TestSendEmptyTextWritesNothing(t *testing.T) {
	h, repo := newTestHandler(t)

	body := bytes.NewBufferString(`{"text":"   "}`)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/modules/scrum-assistant/messages", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	messages, err := repo.MessagesByChat(context.Background(), "scrum-assistant-chat")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected zero writes for whitespace input, got %d", len(messages))
	}
}

func TestDeleteChatCascades(t *testing.T) {
	h, repo := newTestHandler(t)
	router := h.Router()

	body := bytes.NewBufferString(`{"text":"hola"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/modules/good-practices/messages", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("send failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/chats/good-practices-chat", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	messages, err := repo.MessagesByChat(context.Background(), "good-practices-chat")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected cascade delete, got %d messages", len(messages))
	}
}

func TestGetWindowEmptyState(t *testing.T) {
	h, _ := newTestHandler(t)

	router := h.Router()

	// The initial window fetch is asynchronous; poll until it settles.
	var view windowView
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modules/user-stories/window", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !view.Fetching {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("window fetch never settled")
		}
		time.Sleep(time.Millisecond)
	}
	if len(view.Messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(view.Messages))
	}
	if view.EmptyLabel == "" {
		t.Fatal("expected the configured empty-state label")
	}
}
