package cache

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// blobEntry is one persisted key/value row.
type blobEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Payload   []byte
	UpdatedAt time.Time
}

// SQLiteStore is the default Store backend: a single-file sqlite database,
// one row per key. It is the process-local equivalent of browser storage.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the cache database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&blobEntry{}); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string, dest any) (bool, error) {
	var entry blobEntry
	if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return decode(entry.Payload, dest), nil
}

func (s *SQLiteStore) Set(key string, value any) error {
	payload, err := encode(value)
	if err != nil {
		return err
	}
	entry := blobEntry{Key: key, Payload: payload, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}

func (s *SQLiteStore) Clear(key string) error {
	return s.db.Delete(&blobEntry{}, "key = ?", key).Error
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
