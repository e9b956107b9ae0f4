// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "artifact:"

// BadgerBackend stores objects in an embedded BadgerDB.
type BadgerBackend struct {
	db   *badger.DB
	path string
}

// OpenBadgerBackend opens (or creates) a BadgerDB at path. An empty path
// opens an in-memory database.
func OpenBadgerBackend(path string) (*BadgerBackend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerBackend{db: db, path: path}, nil
}

// Name implements Backend.
func (b *BadgerBackend) Name() string { return "badger" }

// Put implements Backend.
func (b *BadgerBackend) Put(_ context.Context, key string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerKeyPrefix+key), data); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return nil
	})
}

// Get implements Backend.
func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List implements Backend.
func (b *BadgerBackend) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(badgerKeyPrefix + prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(badgerKeyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	return keys, nil
}

// Delete implements Backend.
func (b *BadgerBackend) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
}

// URI implements Backend.
func (b *BadgerBackend) URI(key string) string {
	if b.path == "" {
		return "badger:" + key
	}
	return "badger://" + b.path + "#" + key
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
