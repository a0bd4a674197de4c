package repo

import (
	"FieldScribe/internal/model"
	"context"

	"gorm.io/gorm"
)

// MediaRepository — метаданные загруженных файлов.
type MediaRepository interface {
	Create(ctx context.Context, m *model.Media) (*model.Media, error)
	GetByID(ctx context.Context, id int64) (*model.Media, error)
	ListByEntry(ctx context.Context, entryID int64) ([]model.Media, error)
	ListByEntries(ctx context.Context, entryIDs []int64) ([]model.Media, error)
	DeleteByEntry(ctx context.Context, entryID int64) error
	Delete(ctx context.Context, id int64) error
}

type mediaRepo struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) Create(ctx context.Context, m *model.Media) (*model.Media, error) {
	if err := r.db.WithContext(ctx).Omit("Entry").Create(m).Error; err != nil {
		return nil, wrapWrite("create media", err)
	}
	return m, nil
}

func (r *mediaRepo) GetByID(ctx context.Context, id int64) (*model.Media, error) {
	var m model.Media
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepo) ListByEntry(ctx context.Context, entryID int64) ([]model.Media, error) {
	var list []model.Media
	err := r.db.WithContext(ctx).Where("entry_id = ?", entryID).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *mediaRepo) ListByEntries(ctx context.Context, entryIDs []int64) ([]model.Media, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var list []model.Media
	err := r.db.WithContext(ctx).Where("entry_id IN ?", entryIDs).Order("id ASC").Find(&list).Error
	return list, err
}

func (r *mediaRepo) DeleteByEntry(ctx context.Context, entryID int64) error {
	return r.db.WithContext(ctx).Where("entry_id = ?", entryID).Delete(&model.Media{}).Error
}

func (r *mediaRepo) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&model.Media{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
