// Package store is the durable client-side key/value store. It backs the
// session tokens, the cached user identity, the recent AI conversations and
// the dark-mode preference. Values are read optimistically: absent or
// malformed entries come back as zero values, never as errors.
package store

import (
	"encoding/json"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Well-known keys. The names match the original browser storage keys so a
// dump of the store reads the same way.
const (
	KeyAccessToken   = "accessToken"
	KeyRefreshToken  = "refreshToken"
	KeyUserInfo      = "userInfo"
	KeyConversations = "ai_recent_conversations"
	KeyDarkMode      = "darkMode"
)

type entry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv_entries" }

type Store struct {
	db *gorm.DB
}

// Open opens (and migrates) the store at path. Use "file::memory:?cache=shared"
// in tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, bool) {
	var e entry
	if err := s.db.First(&e, "key = ?", key).Error; err != nil {
		return "", false
	}
	return e.Value, true
}

func (s *Store) Set(key, value string) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.Save(&e).Error
}

func (s *Store) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Delete(&entry{}, "key IN ?", keys).Error
}

// GetJSON decodes the value stored under key into out. It reports false when
// the key is absent or the stored value does not parse.
func (s *Store) GetJSON(key string, out any) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(v), out) == nil
}

func (s *Store) SetJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(b))
}

func (s *Store) DarkMode() bool {
	var on bool
	s.GetJSON(KeyDarkMode, &on)
	return on
}

func (s *Store) SetDarkMode(on bool) error {
	return s.SetJSON(KeyDarkMode, on)
}
