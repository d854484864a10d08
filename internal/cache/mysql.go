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

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tomtom215/digestrec/internal/logging"
)

// CacheEntry is the GORM model backing the mysql engine.
type CacheEntry struct {
	Key        string    `gorm:"column:cache_key;primaryKey;size:255"`
	Expiration time.Time `gorm:"column:expiration;type:date;not null;index"`
	Data       []byte    `gorm:"column:data;type:longblob;not null"`
}

// TableName pins the table name regardless of GORM's pluralization.
func (CacheEntry) TableName() string { return "s2_cache" }

// MySQL is a Backend on a shared MySQL database.
type MySQL struct {
	db *gorm.DB
}

// OpenMySQL connects with dsn and migrates the cache table.
// The DSN must set parseTime=true.
func OpenMySQL(ctx context.Context, dsn string) (*MySQL, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql cache: %w", err)
	}
	return newMySQL(ctx, db)
}

func newMySQL(ctx context.Context, db *gorm.DB) (*MySQL, error) {
	if err := db.WithContext(ctx).AutoMigrate(&CacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrate s2_cache: %w", err)
	}
	return &MySQL{db: db}, nil
}

// Exists implements Backend.
func (m *MySQL) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := m.db.WithContext(ctx).Model(&CacheEntry{}).Where("cache_key = ?", key).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("mysql exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Get implements Backend.
func (m *MySQL) Get(ctx context.Context, key string) (Record, error) {
	var row CacheEntry
	err := m.db.WithContext(ctx).Where("cache_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("mysql get %s: %w", key, err)
	}
	return Record{Expiration: Day(row.Expiration), Data: row.Data}, nil
}

// Set implements Backend.
func (m *MySQL) Set(ctx context.Context, key string, rec Record) error {
	row := CacheEntry{Key: key, Expiration: Day(rec.Expiration), Data: rec.Data}
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"expiration", "data"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("mysql set %s: %w", key, err)
	}
	return nil
}

// Purge implements Purger.
func (m *MySQL) Purge(ctx context.Context, now time.Time) (int64, error) {
	res := m.db.WithContext(ctx).Where("expiration < ?", Day(now)).Delete(&CacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("mysql purge: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Close implements Backend.
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Name implements Backend.
func (m *MySQL) Name() string { return "mysql" }

// gormWriter routes GORM's logger into zerolog.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...interface{}) {
	logging.Warn().Str("component", "cache.mysql").Msgf(format, args...)
}
