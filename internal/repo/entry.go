package repo

import (
	"FieldScribe/internal/model"
	"context"
	"sort"

	"gorm.io/gorm"
)

// EntryFields — изменяемые поля записи. Владелец и дата создания сюда не входят.
type EntryFields struct {
	Project     string
	Title       string
	Location    string
	Context     string
	Observation string
	Reflection  string
}

// EntryRepository — хранилище записей журнала и их связей с тегами.
type EntryRepository interface {
	Create(ctx context.Context, entry *model.Entry) (*model.Entry, error)
	// GetByID загружает запись вместе с тегами (по имени) и медиа.
	GetByID(ctx context.Context, id int64) (*model.Entry, error)
	GetByShareToken(ctx context.Context, token string) (*model.Entry, error)
	UpdateFields(ctx context.Context, id int64, fields EntryFields) error
	// SetShareToken записывает токен; nil снимает публикацию.
	SetShareToken(ctx context.Context, id int64, token *string) error
	// ListByOwner возвращает страницу записей владельца и общее их число.
	ListByOwner(ctx context.Context, userID int64, offset, limit int) ([]model.Entry, int64, error)
	ListAllByOwner(ctx context.Context, userID int64) ([]model.Entry, error)
	IDsByOwner(ctx context.Context, userID int64) ([]int64, error)
	AttachTag(ctx context.Context, entryID, tagID int64) error
	DetachTag(ctx context.Context, entryID, tagID int64) error
	// Delete удаляет связи с тегами и саму запись. Медиа удаляет вызывающий.
	Delete(ctx context.Context, id int64) error
}

type entryRepo struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepo{db: db}
}

func (r *entryRepo) Create(ctx context.Context, entry *model.Entry) (*model.Entry, error) {
	// теги и медиа пишутся отдельными шагами
	if err := r.db.WithContext(ctx).Omit("Tags", "Media", "User").Create(entry).Error; err != nil {
		return nil, wrapWrite("create entry", err)
	}
	return entry, nil
}

func (r *entryRepo) GetByID(ctx context.Context, id int64) (*model.Entry, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *entryRepo) GetByShareToken(ctx context.Context, token string) (*model.Entry, error) {
	if token == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.first(ctx, "share_token = ?", token)
}

func (r *entryRepo) first(ctx context.Context, query string, arg any) (*model.Entry, error) {
	var e model.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where(query, arg).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	sortTags(e.Tags)
	return &e, nil
}

func (r *entryRepo) UpdateFields(ctx context.Context, id int64, f EntryFields) error {
	tx := r.db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", id).Updates(map[string]any{
		"project":     f.Project,
		"title":       f.Title,
		"location":    f.Location,
		"context":     f.Context,
		"observation": f.Observation,
		"reflection":  f.Reflection,
	})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entryRepo) SetShareToken(ctx context.Context, id int64, token *string) error {
	tx := r.db.WithContext(ctx).Model(&model.Entry{}).Where("id = ?", id).Update("share_token", token)
	if tx.Error != nil {
		return wrapWrite("set share token", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *entryRepo) ListByOwner(ctx context.Context, userID int64, offset, limit int) ([]model.Entry, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.Entry{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Media").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	for i := range entries {
		sortTags(entries[i].Tags)
	}
	return entries, total, nil
}

func (r *entryRepo) ListAllByOwner(ctx context.Context, userID int64) ([]model.Entry, error) {
	var entries []model.Entry
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for i := range entries {
		sortTags(entries[i].Tags)
	}
	return entries, nil
}

func (r *entryRepo) IDsByOwner(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Entry{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *entryRepo) AttachTag(ctx context.Context, entryID, tagID int64) error {
	err := r.db.WithContext(ctx).Create(&model.EntryTag{EntryID: entryID, TagID: tagID}).Error
	return wrapWrite("attach tag", err)
}

func (r *entryRepo) DetachTag(ctx context.Context, entryID, tagID int64) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ? AND tag_id = ?", entryID, tagID).
		Delete(&model.EntryTag{}).Error
}

func (r *entryRepo) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("entry_id = ?", id).Delete(&model.EntryTag{}).Error; err != nil {
		return err
	}
	tx := db.Delete(&model.Entry{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func sortTags(tags []model.Tag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
}
