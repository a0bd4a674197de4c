package repo

import (
	"FieldScribe/internal/model"
	"context"

	"gorm.io/gorm"
)

// AnalysisRepository — сохранённые результаты анализа.
type AnalysisRepository interface {
	Create(ctx context.Context, r *model.AnalysisResult) (*model.AnalysisResult, error)
	GetByID(ctx context.Context, id int64) (*model.AnalysisResult, error)
	ListByUser(ctx context.Context, userID int64) ([]model.AnalysisResult, error)
	Latest(ctx context.Context, userID int64) (*model.AnalysisResult, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

type analysisRepo struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, res *model.AnalysisResult) (*model.AnalysisResult, error) {
	if err := r.db.WithContext(ctx).Omit("User").Create(res).Error; err != nil {
		return nil, wrapWrite("create analysis", err)
	}
	return res, nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id int64) (*model.AnalysisResult, error) {
	var res model.AnalysisResult
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// ListByUser — от новых к старым.
func (r *analysisRepo) ListByUser(ctx context.Context, userID int64) ([]model.AnalysisResult, error) {
	var list []model.AnalysisResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

func (r *analysisRepo) Latest(ctx context.Context, userID int64) (*model.AnalysisResult, error) {
	var res model.AnalysisResult
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *analysisRepo) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.AnalysisResult{}).Error
}
