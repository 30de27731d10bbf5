package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gifthub/engine/internal/domain"
)

// BadgerStore is a persistent CacheStore backed by BadgerDB.
// Entry TTLs are enforced by Badger itself.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// OpenBadgerStore opens (or creates) a Badger database at path.
// An empty path opens an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %v", domain.ErrCacheUnavailable, err)
	}
	return NewBadgerStore(db, ""), nil
}

// NewBadgerStore wraps an open Badger database; keys are namespaced by prefix
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{db: db, prefix: prefix}
}

func (s *BadgerStore) key(k string) []byte {
	return []byte(s.prefix + k)
}

// Get retrieves a value; absent and expired keys are ErrCacheMiss
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return value, nil
}

// Set writes a value in one transaction. A zero ttl never expires.
func (s *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(s.key(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Delete removes a key; deleting an absent key is not an error
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrCacheUnavailable, key, err)
	}
	return nil
}

// Exists checks whether a live key is present
func (s *BadgerStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if errors.Is(err, domain.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Close flushes and closes the database
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
