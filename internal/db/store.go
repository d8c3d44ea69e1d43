package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

// Store is a thin keyspace wrapper around badger. Callers pick a prefix
// (e.g. "jobs/", "servers/") and get/set JSON blobs under it.
type Store struct {
	db *badger.DB
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(dataDir, "badger"))
	opts.Logger = nil

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: bdb}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(prefix, key string) ([]byte, error) {
	fullKey := prefix + key
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fullKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte{}, val...)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("key not found: %s", key)
	}

	return value, err
}

func (s *Store) Set(prefix, key string, value []byte) error {
	fullKey := prefix + key
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(fullKey), value)
	})
}

func (s *Store) Delete(prefix, key string) error {
	fullKey := prefix + key
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(fullKey))
	})
}

// Has reports whether a key exists without reading its value.
func (s *Store) Has(prefix, key string) (bool, error) {
	fullKey := prefix + key
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(fullKey))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Keys returns up to limit keys under prefix, with the prefix stripped.
// limit <= 0 means no limit.
func (s *Store) Keys(prefix string, limit int) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek([]byte(prefix))

		count := 0
		for it.ValidForPrefix([]byte(prefix)) && (limit <= 0 || count < limit) {
			key := string(it.Item().Key())
			keys = append(keys, key[len(prefix):])
			count++
			it.Next()
		}

		return nil
	})

	return keys, err
}
