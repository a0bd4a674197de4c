package repo

import (
	"FieldScribe/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository — реестр имён тегов.
type TagRepository interface {
	FindByName(ctx context.Context, name string) (*model.Tag, error)
	// Create создаёт тег; если тег с таким именем уже есть, возвращает существующий.
	Create(ctx context.Context, name string) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
}

type tagRepo struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

// FindByName ищет тег по точному совпадению имени.
func (r *tagRepo) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	var t model.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Create вставляет тег с ON CONFLICT DO NOTHING и перечитывает его,
// так что параллельные создатели сходятся на одной строке.
func (r *tagRepo) Create(ctx context.Context, name string) (*model.Tag, error) {
	t := &model.Tag{Name: name}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(t)
	if tx.Error != nil {
		return nil, wrapWrite("create tag", tx.Error)
	}
	if tx.RowsAffected > 0 && t.ID != 0 {
		return t, nil
	}
	return r.FindByName(ctx, name)
}

func (r *tagRepo) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
