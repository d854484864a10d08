// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/duckdb/duckdb-go/v2"
)

const duckdbTable = "s2_cache"

// DuckDB is a Backend on an embedded DuckDB file.
type DuckDB struct {
	db *sql.DB
}

// OpenDuckDB opens the database at path (":memory:" or "" for in-memory)
// and creates the cache table if needed.
func OpenDuckDB(ctx context.Context, path string) (*DuckDB, error) {
	if path == "" {
		path = ":memory:"
	}
	connStr := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open duckdb cache at %q: %w", path, err)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	ddl := `CREATE TABLE IF NOT EXISTS ` + duckdbTable + ` (
		cache_key  VARCHAR PRIMARY KEY,
		expiration DATE NOT NULL,
		data       VARCHAR NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("create %s table: %w", duckdbTable, err)
	}
	return &DuckDB{db: db}, nil
}

// Exists implements Backend.
func (d *DuckDB) Exists(ctx context.Context, key string) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").
		From(duckdbTable).
		Where(sq.Eq{"cache_key": key}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("duckdb exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Get implements Backend.
func (d *DuckDB) Get(ctx context.Context, key string) (Record, error) {
	query, args, err := sq.Select("expiration", "data").
		From(duckdbTable).
		Where(sq.Eq{"cache_key": key}).
		ToSql()
	if err != nil {
		return Record{}, fmt.Errorf("build get query: %w", err)
	}

	var (
		exp  time.Time
		data string
	)
	err = d.db.QueryRowContext(ctx, query, args...).Scan(&exp, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("duckdb get %s: %w", key, err)
	}
	return Record{Expiration: Day(exp), Data: []byte(data)}, nil
}

// Set implements Backend.
func (d *DuckDB) Set(ctx context.Context, key string, rec Record) error {
	query, args, err := sq.Insert(duckdbTable).
		Columns("cache_key", "expiration", "data").
		Values(key, Day(rec.Expiration), string(rec.Data)).
		Suffix("ON CONFLICT (cache_key) DO UPDATE SET expiration = excluded.expiration, data = excluded.data").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("duckdb set %s: %w", key, err)
	}
	return nil
}

// Purge deletes records that expired before now's date and returns how many
// were removed.
func (d *DuckDB) Purge(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := sq.Delete(duckdbTable).
		Where(sq.Lt{"expiration": Day(now)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge: %w", err)
	}
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("duckdb purge: %w", err)
	}
	return res.RowsAffected()
}

// Close implements Backend.
func (d *DuckDB) Close() error { return d.db.Close() }

// Name implements Backend.
func (d *DuckDB) Name() string { return "duckdb" }
