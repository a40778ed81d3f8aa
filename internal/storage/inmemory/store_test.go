package inmemory

import (
	"context"
	"errors"
	"testing"

	"github.com/scrummate/scrummate/internal/storage"
)

func TestAddRejectsDuplicateKey(t *testing.T) {
	s := New()
	ctx := context.Background()

	doc := storage.Document{Key: "m1", Data: []byte(`{"text":"hola"}`)}
	if err := s.Add(ctx, storage.CollectionMessages, doc); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	err := s.Add(ctx, storage.CollectionMessages, doc)
	if !errors.Is(err, storage.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Delete(ctx, storage.CollectionChats, "missing"); err != nil {
		t.Fatalf("delete of absent key failed: %v", err)
	}
	doc := storage.Document{Key: "c1", Data: []byte(`{}`)}
	if err := s.Add(ctx, storage.CollectionChats, doc); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := s.Delete(ctx, storage.CollectionChats, "c1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.Delete(ctx, storage.CollectionChats, "c1"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	docs, err := s.GetAll(ctx, storage.CollectionChats)
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected empty collection, got %d docs", len(docs))
	}
}

func TestGetByIndexScopesByValue(t *testing.T) {
	s := New()
	ctx := context.Background()

	add := func(key, chatID string) {
		t.Helper()
		doc := storage.Document{
			Key:     key,
			Indexes: map[string]string{storage.IndexMessagesByChat: chatID},
			Data:    []byte(`{"id":"` + key + `"}`),
		}
		if err := s.Add(ctx, storage.CollectionMessages, doc); err != nil {
			t.Fatalf("add %s failed: %v", key, err)
		}
	}
	add("m1", "chat-a")
	add("m2", "chat-b")
	add("m3", "chat-a")

	docs, err := s.GetByIndex(ctx, storage.CollectionMessages, storage.IndexMessagesByChat, "chat-a")
	if err != nil {
		t.Fatalf("get by index failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs for chat-a, got %d", len(docs))
	}
	docs, err = s.GetByIndex(ctx, storage.CollectionMessages, storage.IndexMessagesByChat, "chat-c")
	if err != nil {
		t.Fatalf("get by index failed: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected 0 docs for chat-c, got %d", len(docs))
	}
}

func TestPutUpdatesIndexMembership(t *testing.T) {
	s := New()
	ctx := context.Background()

	doc := storage.Document{
		Key:     "m1",
		Indexes: map[string]string{storage.IndexMessagesByChat: "chat-a"},
		Data:    []byte(`{}`),
	}
	if err := s.Add(ctx, storage.CollectionMessages, doc); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	doc.Indexes[storage.IndexMessagesByChat] = "chat-b"
	if err := s.Put(ctx, storage.CollectionMessages, doc); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	docs, _ := s.GetByIndex(ctx, storage.CollectionMessages, storage.IndexMessagesByChat, "chat-a")
	if len(docs) != 0 {
		t.Fatalf("expected old index value to be vacated, got %d docs", len(docs))
	}
	docs, _ = s.GetByIndex(ctx, storage.CollectionMessages, storage.IndexMessagesByChat, "chat-b")
	if len(docs) != 1 {
		t.Fatalf("expected 1 doc under new index value, got %d", len(docs))
	}
}
