package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scrummate/scrummate/internal/model"
	"github.com/scrummate/scrummate/internal/storage"
)

// ValidationError marks a record that failed the shape check. Nothing that
// produces a ValidationError is ever persisted.
type ValidationError struct {
	Collection string
	Err        error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s record: %v", e.Collection, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Repository layers typed, validated CRUD over the document store. Writes
// are validated first and get a fresh uuid at write time; the caller's
// copy of a record therefore never carries the persisted identifier.
type Repository struct {
	store    storage.DocumentStore
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func New(store storage.DocumentStore, logger zerolog.Logger) *Repository {
	return &Repository{
		store:    store,
		validate: validator.New(),
		logger:   logger.With().Str("component", "repository").Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// AddMessage validates and persists one message, returning the persisted
// copy with its assigned identifier.
func (r *Repository) AddMessage(ctx context.Context, msg model.Message) (model.Message, error) {
	if err := r.validate.Struct(msg); err != nil {
		verr := &ValidationError{Collection: storage.CollectionMessages, Err: err}
		r.logger.Error().Err(verr).Str("chat_id", msg.ChatID).Msg("message rejected by validation")
		return model.Message{}, verr
	}
	msg.ID = r.newID()
	doc, err := encode(msg.ID, msg, map[string]string{storage.IndexMessagesByChat: msg.ChatID})
	if err != nil {
		return model.Message{}, err
	}
	if err := r.store.Add(ctx, storage.CollectionMessages, doc); err != nil {
		r.logger.Error().Err(err).Str("chat_id", msg.ChatID).Msg("failed to add message")
		return model.Message{}, err
	}
	return msg, nil
}

// MessagesByChat returns the chat's messages ascending by timestamp.
// Equal timestamps keep a stable but unspecified relative order.
func (r *Repository) MessagesByChat(ctx context.Context, chatID string) ([]model.Message, error) {
	raws, err := r.store.GetByIndex(ctx, storage.CollectionMessages, storage.IndexMessagesByChat, chatID)
	if err != nil {
		r.logger.Error().Err(err).Str("chat_id", chatID).Msg("failed to read messages")
		return nil, err
	}
	messages := make([]model.Message, 0, len(raws))
	for _, raw := range raws {
		var msg model.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return parseTimestamp(messages[i].Timestamp).Before(parseTimestamp(messages[j].Timestamp))
	})
	return messages, nil
}

func (r *Repository) UpdateMessage(ctx context.Context, msg model.Message) error {
	if msg.ID == "" {
		return &ValidationError{Collection: storage.CollectionMessages, Err: errors.New("missing id")}
	}
	if err := r.validate.Struct(msg); err != nil {
		return &ValidationError{Collection: storage.CollectionMessages, Err: err}
	}
	doc, err := encode(msg.ID, msg, map[string]string{storage.IndexMessagesByChat: msg.ChatID})
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, storage.CollectionMessages, doc); err != nil {
		r.logger.Error().Err(err).Str("message_id", msg.ID).Msg("failed to update message")
		return err
	}
	return nil
}

func (r *Repository) DeleteMessage(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, storage.CollectionMessages, id); err != nil {
		r.logger.Error().Err(err).Str("message_id", id).Msg("failed to delete message")
		return err
	}
	return nil
}

func (r *Repository) AllMessages(ctx context.Context) ([]model.Message, error) {
	raws, err := r.store.GetAll(ctx, storage.CollectionMessages)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read all messages")
		return nil, err
	}
	messages := make([]model.Message, 0, len(raws))
	for _, raw := range raws {
		var msg model.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// AddChat validates and persists a chat. When the caller leaves the ID
// empty a fresh uuid is assigned.
func (r *Repository) AddChat(ctx context.Context, chat model.Chat) (model.Chat, error) {
	if err := r.validate.Struct(chat); err != nil {
		verr := &ValidationError{Collection: storage.CollectionChats, Err: err}
		r.logger.Error().Err(verr).Str("role", chat.Role).Msg("chat rejected by validation")
		return model.Chat{}, verr
	}
	if chat.ID == "" {
		chat.ID = r.newID()
	}
	doc, err := encode(chat.ID, chat, nil)
	if err != nil {
		return model.Chat{}, err
	}
	if err := r.store.Add(ctx, storage.CollectionChats, doc); err != nil {
		r.logger.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to add chat")
		return model.Chat{}, err
	}
	return chat, nil
}

// EnsureChat lazily creates the named chat on first access. Creating a
// chat that already exists is not an error.
func (r *Repository) EnsureChat(ctx context.Context, id, role string) error {
	today := r.now().UTC().Format(time.DateOnly)
	chat := model.Chat{
		ID:        id,
		Role:      role,
		CreatedAt: today,
		UpdatedAt: today,
	}
	doc, err := encode(chat.ID, chat, nil)
	if err != nil {
		return err
	}
	if err := r.store.Add(ctx, storage.CollectionChats, doc); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return nil
		}
		r.logger.Error().Err(err).Str("chat_id", id).Msg("failed to ensure chat")
		return err
	}
	return nil
}

func (r *Repository) UpdateChat(ctx context.Context, chat model.Chat) error {
	if chat.ID == "" {
		return &ValidationError{Collection: storage.CollectionChats, Err: errors.New("missing id")}
	}
	chat.UpdatedAt = r.now().UTC().Format(time.DateOnly)
	if err := r.validate.Struct(chat); err != nil {
		return &ValidationError{Collection: storage.CollectionChats, Err: err}
	}
	doc, err := encode(chat.ID, chat, nil)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, storage.CollectionChats, doc); err != nil {
		r.logger.Error().Err(err).Str("chat_id", chat.ID).Msg("failed to update chat")
		return err
	}
	return nil
}

// DeleteChat removes the chat and every message written under it. Without
// the cascade the messages would be unreachable forever, since nothing
// lists messages except by chat id.
func (r *Repository) DeleteChat(ctx context.Context, id string) error {
	messages, err := r.MessagesByChat(ctx, id)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if err := r.store.Delete(ctx, storage.CollectionMessages, msg.ID); err != nil {
			r.logger.Error().Err(err).Str("chat_id", id).Str("message_id", msg.ID).Msg("failed to delete chat message")
			return err
		}
	}
	if err := r.store.Delete(ctx, storage.CollectionChats, id); err != nil {
		r.logger.Error().Err(err).Str("chat_id", id).Msg("failed to delete chat")
		return err
	}
	return nil
}

func (r *Repository) AllChats(ctx context.Context) ([]model.Chat, error) {
	raws, err := r.store.GetAll(ctx, storage.CollectionChats)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read all chats")
		return nil, err
	}
	chats := make([]model.Chat, 0, len(raws))
	for _, raw := range raws {
		var chat model.Chat
		if err := json.Unmarshal(raw, &chat); err != nil {
			return nil, fmt.Errorf("failed to decode chat: %w", err)
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func encode(key string, record any, indexes map[string]string) (storage.Document, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return storage.Document{}, fmt.Errorf("failed to encode record %s: %w", key, err)
	}
	return storage.Document{Key: key, Indexes: indexes, Data: data}, nil
}

func parseTimestamp(s string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
