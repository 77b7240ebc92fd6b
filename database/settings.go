package database

import (
	"aerograph/core"
	"aerograph/models"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotInitialized = fmt.Errorf("%w: database not initialized", core.ErrNoStorage)
	ErrEmptyKey       = errors.New("empty setting key")
)

// SettingStore persists string values under string keys in the app_settings table.
// It backs the error log's durable mirror.
type SettingStore struct {
	db *gorm.DB
}

// NewSettingStore wraps db as a key/value store
func NewSettingStore(db *gorm.DB) *SettingStore {
	return &SettingStore{db: db}
}

func (s *SettingStore) normalizeKey(key string) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrNotInitialized
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	return key, nil
}

// Get returns the stored value; ok is false when the key does not exist.
func (s *SettingStore) Get(key string) (value string, ok bool, err error) {
	key, err = s.normalizeKey(key)
	if err != nil {
		return "", false, err
	}

	var row models.AppSetting
	if err := s.db.First(&row, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return row.Value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *SettingStore) Set(key, value string) error {
	key, err := s.normalizeKey(key)
	if err != nil {
		return err
	}
	return s.db.Save(&models.AppSetting{Key: key, Value: value}).Error
}

// Delete removes key if it exists
func (s *SettingStore) Delete(key string) error {
	key, err := s.normalizeKey(key)
	if err != nil {
		return err
	}
	return s.db.Where("key = ?", key).Delete(&models.AppSetting{}).Error
}
