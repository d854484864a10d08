// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const badgerKeyPrefix = "s2:"

// badgerGrace is how long a record outlives its expiration date in badger.
const badgerGrace = 48 * time.Hour

// Badger is a Backend on an embedded BadgerDB.
type Badger struct {
	db  *badger.DB
	own bool
}

// OpenBadger opens (or creates) a BadgerDB at path. An empty path opens an
// in-memory instance.
func OpenBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %q: %w", path, err)
	}
	return &Badger{db: db, own: true}, nil
}

// NewBadger wraps an already open database. Close leaves db open.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

// Exists implements Backend.
func (b *Badger) Exists(_ context.Context, key string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerKeyPrefix + key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger exists %s: %w", key, err)
	}
	return true, nil
}

// Get implements Backend.
func (b *Badger) Get(_ context.Context, key string) (Record, error) {
	var rec Record
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("badger get %s: %w", key, err)
	}
	return rec, nil
}

// Set implements Backend.
func (b *Badger) Set(_ context.Context, key string, rec Record) error {
	val, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}

	ttl := time.Until(rec.Expiration.Add(badgerGrace))
	if ttl < badgerGrace {
		ttl = badgerGrace
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(badgerKeyPrefix+key), val).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (b *Badger) Close() error {
	if !b.own {
		return nil
	}
	return b.db.Close()
}

// Name implements Backend.
func (b *Badger) Name() string { return "badger" }
