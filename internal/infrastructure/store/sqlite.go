package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/autoparts/storefront/internal/domain/profile"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// ProfileEntry is one persisted profile document
type ProfileEntry struct {
	ProfileID string    `gorm:"primaryKey;size:36"`
	Key       string    `gorm:"primaryKey;size:32"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	ExpiresAt int64     `gorm:"index"` // unix nanoseconds, 0 = never
}

func (ProfileEntry) TableName() string { return "profile_entries" }

// SQLiteStore persists profile documents in a sqlite file through GORM
type SQLiteStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// SQLiteOptions configures OpenSQLite
type SQLiteOptions struct {
	Path    string
	TTL     time.Duration
	Logger  gormlogger.Interface
	Tracing bool
}

// OpenSQLite opens (and migrates) the sqlite database at opts.Path
func OpenSQLite(ctx context.Context, opts SQLiteOptions) (*SQLiteStore, error) {
	gormCfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if opts.Logger != nil {
		gormCfg.Logger = opts.Logger
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if opts.Tracing {
		if err := db.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName("storefront"),
			otelgorm.WithoutQueryVariables(),
		)); err != nil {
			return nil, fmt.Errorf("failed to register gorm tracing: %w", err)
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(&ProfileEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
	}

	s := &SQLiteStore{db: db, ttl: opts.TTL, now: time.Now}
	if _, err := s.PurgeExpired(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id profile.ID, key string) ([]byte, bool, error) {
	var entry ProfileEntry
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND key = ?", id.String(), key).
		Where("expires_at = 0 OR expires_at > ?", s.now().UnixNano()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read profile document: %w", err)
	}
	return entry.Value, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, id profile.ID, key string, value []byte) error {
	now := s.now()
	entry := ProfileEntry{
		ProfileID: id.String(),
		Key:       key,
		Value:     value,
		UpdatedAt: now,
		ExpiresAt: s.deadline(now, s.ttl),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at", "expires_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write profile document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id profile.ID, key string) error {
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND key = ?", id.String(), key).
		Delete(&ProfileEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete profile document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, id profile.ID, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&ProfileEntry{}).
		Where("profile_id = ?", id.String()).
		Update("expires_at", s.deadline(s.now(), ttl)).Error
	if err != nil {
		return fmt.Errorf("failed to refresh profile expiry: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired document and reports how many went
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at > 0 AND expires_at <= ?", s.now().UnixNano()).
		Delete(&ProfileEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired profiles: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) deadline(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixNano()
}

var _ profile.Store = (*SQLiteStore)(nil)
