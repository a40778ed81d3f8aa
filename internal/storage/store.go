package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	CollectionChats    = "chats"
	CollectionMessages = "messages"

	// IndexMessagesByChat is the non-unique secondary index on the
	// messages collection.
	IndexMessagesByChat = "chat_id"
)

var (
	ErrKeyExists        = errors.New("key already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error carries enough context about a failed store operation to diagnose
// it from a log line: which operation, on which collection, for which key.
type Error struct {
	Op         string
	Collection string
	Key        string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s %s/%s: %v", e.Op, e.Collection, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Document is an encoded record together with the secondary-index values
// it must be findable under. Index values are supplied by the caller; the
// store itself never inspects Data.
type Document struct {
	Key     string
	Indexes map[string]string
	Data    []byte
}

// DocumentStore is a key-indexed document store with named collections.
// Add fails with ErrKeyExists when the primary key is taken, Put upserts,
// Delete is idempotent. GetAll is an unordered snapshot; GetByIndex reads
// every document whose index value matches.
type DocumentStore interface {
	Add(ctx context.Context, collection string, doc Document) error
	Put(ctx context.Context, collection string, doc Document) error
	Delete(ctx context.Context, collection, key string) error
	GetAll(ctx context.Context, collection string) ([][]byte, error)
	GetByIndex(ctx context.Context, collection, index, value string) ([][]byte, error)
	Close() error
}
