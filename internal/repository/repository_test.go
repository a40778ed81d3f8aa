package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/model"
	"github.com/scrummate/scrummate/internal/storage"
	"github.com/scrummate/scrummate/internal/storage/inmemory"
)

func newTestRepo() *Repository {
	return New(inmemory.New(), zerolog.Nop())
}

func validMessage(chatID, text, ts string) model.Message {
	return model.Message{
		ChatID:    chatID,
		Sender:    model.SenderUser,
		Text:      text,
		Timestamp: ts,
	}
}

func TestAddMessageRejectsInvalidRecords(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	tests := []struct {
		name string
		msg  model.Message
	}{
		{"empty text", validMessage("chat-a", "", "2025-03-01T10:00:00Z")},
		{"missing chat id", validMessage("", "hola", "2025-03-01T10:00:00Z")},
		{"bad sender", model.Message{ChatID: "chat-a", Sender: "robot", Text: "hola", Timestamp: "2025-03-01T10:00:00Z"}},
		{"missing timestamp", validMessage("chat-a", "hola", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.AddMessage(ctx, tt.msg)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	// Nothing rejected by validation may ever show up in a read.
	messages, err := repo.MessagesByChat(ctx, "chat-a")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(messages))
	}
}

func TestAddMessageAssignsFreshID(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	msg := validMessage("chat-a", "hola", "2025-03-01T10:00:00Z")
	msg.ID = "caller-chosen"
	persisted, err := repo.AddMessage(ctx, msg)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if persisted.ID == "" || persisted.ID == "caller-chosen" {
		t.Fatalf("expected a fresh repository-assigned id, got %q", persisted.ID)
	}
}

func TestMessagesByChatScopesByChat(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	if _, err := repo.AddMessage(ctx, validMessage("chat-a", "para a", "2025-03-01T10:00:00Z")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := repo.AddMessage(ctx, validMessage("chat-b", "para b", "2025-03-01T10:00:01Z")); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	messages, err := repo.MessagesByChat(ctx, "chat-b")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "para b" {
		t.Fatalf("expected only chat-b's message, got %+v", messages)
	}
}

func TestMessagesByChatOrdersByTimestamp(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	// Written out of order on purpose.
	stamps := []string{
		"2025-03-01T10:00:05Z",
		"2025-03-01T10:00:01Z",
		"2025-03-01T10:00:03Z",
	}
	for _, ts := range stamps {
		if _, err := repo.AddMessage(ctx, validMessage("chat-a", "msg "+ts, ts)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	messages, err := repo.MessagesByChat(ctx, "chat-a")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i := 1; i < len(messages); i++ {
		if messages[i-1].Timestamp > messages[i].Timestamp {
			t.Fatalf("messages out of order: %q before %q", messages[i-1].Timestamp, messages[i].Timestamp)
		}
	}
}

func TestMessagesByChatEmptyStore(t *testing.T) {
	repo := newTestRepo()

	messages, err := repo.MessagesByChat(context.Background(), "scrum-assistant-chat")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", messages)
	}
}

func TestEnsureChatIsLazyAndIdempotent(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	if err := repo.EnsureChat(ctx, "scrum-assistant-chat", "scrum-assistant"); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	if err := repo.EnsureChat(ctx, "scrum-assistant-chat", "scrum-assistant"); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}

	chats, err := repo.AllChats(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected exactly one chat, got %d", len(chats))
	}
	if chats[0].ID != "scrum-assistant-chat" || chats[0].Role != "scrum-assistant" {
		t.Fatalf("unexpected chat: %+v", chats[0])
	}
}

func TestAddChatRejectsDuplicateID(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	chat := model.Chat{ID: "chat-a", Role: "scrum", CreatedAt: "2025-03-01", UpdatedAt: "2025-03-01"}
	if _, err := repo.AddChat(ctx, chat); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_, err := repo.AddChat(ctx, chat)
	if !errors.Is(err, storage.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestDeleteChatCascadesToMessages(t *testing.T) {
	repo := newTestRepo()
	ctx := context.Background()

	if err := repo.EnsureChat(ctx, "chat-a", "scrum"); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if _, err := repo.AddMessage(ctx, validMessage("chat-a", "hola", "2025-03-01T10:00:00Z")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := repo.AddMessage(ctx, validMessage("chat-b", "otra", "2025-03-01T10:00:00Z")); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := repo.DeleteChat(ctx, "chat-a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	messages, err := repo.MessagesByChat(ctx, "chat-a")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected cascade to remove chat-a messages, got %d", len(messages))
	}
	all, err := repo.AllMessages(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(all) != 1 || all[0].ChatID != "chat-b" {
		t.Fatalf("expected chat-b's message to survive, got %+v", all)
	}
	chats, err := repo.AllChats(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("expected chat to be gone, got %+v", chats)
	}
}
