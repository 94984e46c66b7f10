package sqlite

import (
	"context"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

// Store persists the last successfully established session. A single row is
// ever written; Save replaces the flag and serialized user in one transaction
// so a partially written record cannot be observed.
type Store interface {
	Save(ctx context.Context, authenticated bool, userJSON, token string) error
	Load(ctx context.Context) (*domain.SessionRecord, error)
	Clear(ctx context.Context) error
}

type sessionStore struct{ db *gorm.DB }

// Open opens (creating if needed) the session database and migrates its
// schema. The caller owns the returned handle's lifecycle.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.SessionRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

func NewStore(db *gorm.DB) Store { return &sessionStore{db: db} }

func (s *sessionStore) Save(ctx context.Context, authenticated bool, userJSON, token string) error {
	record := domain.SessionRecord{ID: 1, Authenticated: authenticated, UserJSON: userJSON, Token: token}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", 1).Delete(&domain.SessionRecord{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
}

func (s *sessionStore) Load(ctx context.Context) (*domain.SessionRecord, error) {
	var record domain.SessionRecord
	if err := s.db.WithContext(ctx).Where("id = ?", 1).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *sessionStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("id = ?", 1).Delete(&domain.SessionRecord{}).Error
}
