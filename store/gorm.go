package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// KVEntry is the database row backing one logical key.
type KVEntry struct {
	Key   string `gorm:"primaryKey;size:255"`
	Value []byte `gorm:"type:bytes;not null"`
}

// TableName specifies the table name for the KVEntry model
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormStore persists keys as rows in a kv_entries table. It works with
// any GORM dialect; production uses postgres, tests sqlite in-memory.
type GormStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewGormStore creates a store over db and migrates the kv_entries table.
func NewGormStore(db *gorm.DB, log zerolog.Logger) (*GormStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db, log: log}, nil
}

// Get reads the value at key into dest.
func (s *GormStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		s.log.Warn().Str("key", key).Err(err).Msg("corrupt value in kv store, clearing key")
		if delErr := s.Delete(ctx, key); delErr != nil {
			return false, delErr
		}
		return false, nil
	}
	return true, nil
}

// Set writes value at key.
func (s *GormStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := KVEntry{Key: key, Value: raw}
	return s.db.WithContext(ctx).Save(&entry).Error
}

// Delete removes key.
func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&KVEntry{}, "key = ?", key).Error
}

// Keys lists every key with the given prefix.
func (s *GormStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&KVEntry{}).
		Where("key LIKE ?", prefix+"%").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}
