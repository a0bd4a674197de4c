package repo

import (
	"context"

	"gorm.io/gorm"
)

// Store раздаёт репозитории, привязанные к одному соединению или транзакции.
type Store interface {
	Users() UserRepository
	Entries() EntryRepository
	Tags() TagRepository
	Media() MediaRepository
	Analyses() AnalysisRepository

	// Transaction выполняет fn в одной транзакции. Любая ошибка fn откатывает всё.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore создаёт Store поверх gorm.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository        { return NewUserRepository(s.db) }
func (s *gormStore) Entries() EntryRepository     { return NewEntryRepository(s.db) }
func (s *gormStore) Tags() TagRepository          { return NewTagRepository(s.db) }
func (s *gormStore) Media() MediaRepository       { return NewMediaRepository(s.db) }
func (s *gormStore) Analyses() AnalysisRepository { return NewAnalysisRepository(s.db) }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
