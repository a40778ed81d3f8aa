package keyvalue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/scrummate/scrummate/internal/storage"
)

// schemaVersion is bumped on structural change. A bump starts a fresh key
// namespace; records from older versions are left behind, not migrated.
const schemaVersion = 2

// envelope is the stored form of a document. The index values travel with
// the record so Delete can unregister it without knowing the schema.
type envelope struct {
	Indexes map[string]string `json:"indexes,omitempty"`
	Data    json.RawMessage   `json:"data"`
}

// Store keeps one JSON document per key, a set per collection for scans
// and a set per index value for indexed reads.
type Store struct {
	rdb *redis.Client
	ns  string
}

// Open pings the backend and returns a ready handle. The handle is meant
// to be process-wide: opened once at startup and closed on shutdown.
func Open(ctx context.Context, rdb *redis.Client) (*Store, error) {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
	}
	return &Store{
		rdb: rdb,
		ns:  fmt.Sprintf("scrummate:v%d", schemaVersion),
	}, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Add(ctx context.Context, collection string, doc storage.Document) error {
	raw, err := json.Marshal(envelope{Indexes: doc.Indexes, Data: doc.Data})
	if err != nil {
		return &storage.Error{Op: "add", Collection: collection, Key: doc.Key, Err: err}
	}
	ok, err := s.rdb.SetNX(ctx, s.docKey(collection, doc.Key), raw, 0).Result()
	if err != nil {
		return &storage.Error{Op: "add", Collection: collection, Key: doc.Key, Err: err}
	}
	if !ok {
		return &storage.Error{Op: "add", Collection: collection, Key: doc.Key, Err: storage.ErrKeyExists}
	}
	if err := s.register(ctx, collection, doc); err != nil {
		return &storage.Error{Op: "add", Collection: collection, Key: doc.Key, Err: err}
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection string, doc storage.Document) error {
	// Unregister the previous index memberships first, in case the new
	// version of the record moved to another index value.
	old, err := s.getEnvelope(ctx, collection, doc.Key)
	if err != nil && !errors.Is(err, redis.Nil) {
		return &storage.Error{Op: "put", Collection: collection, Key: doc.Key, Err: err}
	}
	if err == nil {
		if err := s.unregister(ctx, collection, doc.Key, old.Indexes); err != nil {
			return &storage.Error{Op: "put", Collection: collection, Key: doc.Key, Err: err}
		}
	}

	raw, err := json.Marshal(envelope{Indexes: doc.Indexes, Data: doc.Data})
	if err != nil {
		return &storage.Error{Op: "put", Collection: collection, Key: doc.Key, Err: err}
	}
	if err := s.rdb.Set(ctx, s.docKey(collection, doc.Key), raw, 0).Err(); err != nil {
		return &storage.Error{Op: "put", Collection: collection, Key: doc.Key, Err: err}
	}
	if err := s.register(ctx, collection, doc); err != nil {
		return &storage.Error{Op: "put", Collection: collection, Key: doc.Key, Err: err}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	old, err := s.getEnvelope(ctx, collection, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Absent already: deleting is a no-op.
			return nil
		}
		return &storage.Error{Op: "delete", Collection: collection, Key: key, Err: err}
	}
	if err := s.unregister(ctx, collection, key, old.Indexes); err != nil {
		return &storage.Error{Op: "delete", Collection: collection, Key: key, Err: err}
	}
	if err := s.rdb.Del(ctx, s.docKey(collection, key)).Err(); err != nil {
		return &storage.Error{Op: "delete", Collection: collection, Key: key, Err: err}
	}
	return nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([][]byte, error) {
	keys, err := s.rdb.SMembers(ctx, s.keysKey(collection)).Result()
	if err != nil {
		return nil, &storage.Error{Op: "get_all", Collection: collection, Err: err}
	}
	return s.fetch(ctx, collection, keys)
}

func (s *Store) GetByIndex(ctx context.Context, collection, index, value string) ([][]byte, error) {
	keys, err := s.rdb.SMembers(ctx, s.idxKey(collection, index, value)).Result()
	if err != nil {
		return nil, &storage.Error{Op: "get_by_index", Collection: collection, Key: value, Err: err}
	}
	return s.fetch(ctx, collection, keys)
}

func (s *Store) fetch(ctx context.Context, collection string, keys []string) ([][]byte, error) {
	docs := make([][]byte, 0, len(keys))
	if len(keys) == 0 {
		return docs, nil
	}
	docKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		docKeys = append(docKeys, s.docKey(collection, key))
	}
	raws, err := s.rdb.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, &storage.Error{Op: "fetch", Collection: collection, Err: err}
	}
	for i, raw := range raws {
		rawStr, ok := raw.(string)
		if !ok {
			// Membership set out of step with the document key; skip.
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(rawStr), &env); err != nil {
			return nil, &storage.Error{Op: "fetch", Collection: collection, Key: keys[i], Err: err}
		}
		docs = append(docs, env.Data)
	}
	return docs, nil
}

func (s *Store) getEnvelope(ctx context.Context, collection, key string) (envelope, error) {
	raw, err := s.rdb.Get(ctx, s.docKey(collection, key)).Result()
	if err != nil {
		return envelope{}, err
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope{}, err
	}
	return env, nil
}

func (s *Store) register(ctx context.Context, collection string, doc storage.Document) error {
	if err := s.rdb.SAdd(ctx, s.keysKey(collection), doc.Key).Err(); err != nil {
		return err
	}
	for index, value := range doc.Indexes {
		if err := s.rdb.SAdd(ctx, s.idxKey(collection, index, value), doc.Key).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) unregister(ctx context.Context, collection, key string, indexes map[string]string) error {
	if err := s.rdb.SRem(ctx, s.keysKey(collection), key).Err(); err != nil {
		return err
	}
	for index, value := range indexes {
		if err := s.rdb.SRem(ctx, s.idxKey(collection, index, value), key).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) docKey(collection, key string) string {
	return fmt.Sprintf("%s:%s:doc:%s", s.ns, collection, key)
}

func (s *Store) keysKey(collection string) string {
	return fmt.Sprintf("%s:%s:keys", s.ns, collection)
}

func (s *Store) idxKey(collection, index, value string) string {
	return fmt.Sprintf("%s:%s:idx:%s:%s", s.ns, collection, index, value)
}
