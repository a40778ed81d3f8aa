package inmemory

import (
	"context"
	"sync"

	"github.com/scrummate/scrummate/internal/storage"
)

type record struct {
	indexes map[string]string
	data    []byte
}

// Store keeps collections in maps. Same semantics as the key-value store;
// used by tests and as a dev fallback when no Redis endpoint is around.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]record
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]record),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Add(_ context.Context, collection string, doc storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	coll := s.collection(collection)
	if _, ok := coll[doc.Key]; ok {
		return &storage.Error{Op: "add", Collection: collection, Key: doc.Key, Err: storage.ErrKeyExists}
	}
	coll[doc.Key] = newRecord(doc)
	return nil
}

func (s *Store) Put(_ context.Context, collection string, doc storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[doc.Key] = newRecord(doc)
	return nil
}

func (s *Store) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collection(collection), key)
	return nil
}

func (s *Store) GetAll(_ context.Context, collection string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll := s.collections[collection]
	docs := make([][]byte, 0, len(coll))
	for _, rec := range coll {
		docs = append(docs, rec.data)
	}
	return docs, nil
}

func (s *Store) GetByIndex(_ context.Context, collection, index, value string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([][]byte, 0)
	for _, rec := range s.collections[collection] {
		if rec.indexes[index] == value {
			docs = append(docs, rec.data)
		}
	}
	return docs, nil
}

func (s *Store) collection(name string) map[string]record {
	coll, ok := s.collections[name]
	if !ok {
		coll = make(map[string]record)
		s.collections[name] = coll
	}
	return coll
}

func newRecord(doc storage.Document) record {
	indexes := make(map[string]string, len(doc.Indexes))
	for index, value := range doc.Indexes {
		indexes[index] = value
	}
	data := make([]byte, len(doc.Data))
	copy(data, doc.Data)
	return record{indexes: indexes, data: data}
}
