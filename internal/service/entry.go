package service

import (
	"FieldScribe/internal/analysis"
	"FieldScribe/internal/errs"
	"FieldScribe/internal/export"
	"FieldScribe/internal/guard"
	"FieldScribe/internal/model"
	"FieldScribe/internal/repo"
	"FieldScribe/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxShortField   = 100
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Renderer — экспорт в PDF.
type Renderer interface {
	RenderEntry(v export.EntryView) ([]byte, error)
	RenderAnalysis(s analysis.Summary, created time.Time) ([]byte, error)
}

// EntryInput — поля записи от клиента. Дата создания от клиента не принимается.
type EntryInput struct {
	Project     string   `json:"project"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Context     string   `json:"context"`
	Observation string   `json:"observation"`
	Reflection  string   `json:"reflection"`
	Tags        []string `json:"tags"`
}

// EntryPage — страница списка записей.
type EntryPage struct {
	Entries  []model.Entry `json:"entries"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
}

// EntryOptions — настройки EntryService.
type EntryOptions struct {
	MaxUploadBytes int64
	// Location — часовой пояс для дат в экспорте.
	Location *time.Location
}

// EntryService — жизненный цикл записей: CRUD, теги, медиа, публичные ссылки, экспорт.
type EntryService struct {
	store    repo.Store
	blobs    storage.BlobStore
	renderer Renderer
	opts     EntryOptions
	logger   *zap.SugaredLogger

	newToken func() (string, error)
}

func NewEntryService(store repo.Store, blobs storage.BlobStore, renderer Renderer, opts EntryOptions, logger *zap.SugaredLogger) *EntryService {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &EntryService{
		store:    store,
		blobs:    blobs,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
		newToken: newShareToken,
	}
}

func (in EntryInput) fields() (repo.EntryFields, error) {
	f := repo.EntryFields{
		Project:     strings.TrimSpace(in.Project),
		Title:       strings.TrimSpace(in.Title),
		Location:    strings.TrimSpace(in.Location),
		Context:     strings.TrimSpace(in.Context),
		Observation: strings.TrimSpace(in.Observation),
		Reflection:  strings.TrimSpace(in.Reflection),
	}
	required := []struct{ name, value string }{
		{"project", f.Project},
		{"title", f.Title},
		{"observation", f.Observation},
	}
	for _, r := range required {
		if r.value == "" {
			return f, errs.Validation(r.name, r.name+" is required")
		}
	}
	limited := []struct{ name, value string }{
		{"project", f.Project},
		{"title", f.Title},
		{"location", f.Location},
	}
	for _, l := range limited {
		if utf8.RuneCountInString(l.value) > maxShortField {
			return f, errs.Validation(l.name, fmt.Sprintf("%s must be at most %d characters", l.name, maxShortField))
		}
	}
	return f, nil
}

// ClampPage приводит номер и размер страницы к допустимым значениям:
// нулевые и отрицательные становятся 1, размер не больше MaxPageSize.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if maxPage := math.MaxInt32 / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

// Create создаёт запись владельца owner. Блоб сохраняется до транзакции
// и удаляется, если транзакция не прошла.
func (s *EntryService) Create(ctx context.Context, owner *model.User, in EntryInput, up *Upload) (*model.Entry, error) {
	if owner == nil {
		return nil, errs.Auth("authentication required")
	}
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	media, err := s.saveUpload(ctx, up)
	if err != nil {
		return nil, err
	}

	var id int64
	err = s.store.Transaction(ctx, func(tx repo.Store) error {
		e, err := tx.Entries().Create(ctx, &model.Entry{
			UserID:      owner.ID,
			Project:     f.Project,
			Title:       f.Title,
			Location:    f.Location,
			Context:     f.Context,
			Observation: f.Observation,
			Reflection:  f.Reflection,
		})
		if err != nil {
			return err
		}
		if err := reconcileTags(ctx, tx, e.ID, nil, tags); err != nil {
			return err
		}
		if media != nil {
			media.EntryID = e.ID
			if _, err := tx.Media().Create(ctx, media); err != nil {
				return err
			}
		}
		id = e.ID
		return nil
	})
	if err != nil {
		s.discard(ctx, media)
		return nil, storeErr("create entry", err)
	}
	entriesCreatedTotal.Inc()
	s.logger.Debugw("entry created", "entry", id, "user", owner.ID, "tags", len(tags))
	return s.reload(ctx, id)
}

// Update меняет поля, теги и (если передан файл) текущее вложение одной транзакцией.
func (s *EntryService) Update(ctx context.Context, requester *model.User, id int64, in EntryInput, up *Upload) (*model.Entry, error) {
	if _, err := s.authorize(ctx, requester, id); err != nil {
		return nil, err
	}
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	tags, err := NormalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	media, err := s.saveUpload(ctx, up)
	if err != nil {
		return nil, err
	}

	var replaced []string
	err = s.store.Transaction(ctx, func(tx repo.Store) error {
		if err := tx.Entries().UpdateFields(ctx, id, f); err != nil {
			return lookupErr("entry", "update entry", err)
		}
		current, err := tx.Entries().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := reconcileTags(ctx, tx, id, current.Tags, tags); err != nil {
			return err
		}
		if media != nil {
			replaced, err = replaceMedia(ctx, tx, id, media)
			return err
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, media)
		return nil, storeErr("update entry", err)
	}
	removeBlobs(ctx, s.blobs, s.logger, replaced)
	return s.reload(ctx, id)
}

// AttachMedia заменяет текущее вложение записи. У записи одно текущее вложение.
func (s *EntryService) AttachMedia(ctx context.Context, requester *model.User, id int64, up *Upload) (*model.Entry, error) {
	if up == nil {
		return nil, errs.Validation("file", "no file selected")
	}
	if _, err := s.authorize(ctx, requester, id); err != nil {
		return nil, err
	}
	media, err := s.saveUpload(ctx, up)
	if err != nil {
		return nil, err
	}
	var replaced []string
	err = s.store.Transaction(ctx, func(tx repo.Store) error {
		var err error
		replaced, err = replaceMedia(ctx, tx, id, media)
		return err
	})
	if err != nil {
		s.discard(ctx, media)
		return nil, storeErr("attach media", err)
	}
	removeBlobs(ctx, s.blobs, s.logger, replaced)
	return s.reload(ctx, id)
}

func replaceMedia(ctx context.Context, tx repo.Store, entryID int64, media *model.Media) ([]string, error) {
	old, err := tx.Media().ListByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := tx.Media().DeleteByEntry(ctx, entryID); err != nil {
		return nil, err
	}
	media.EntryID = entryID
	if _, err := tx.Media().Create(ctx, media); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(old))
	for _, m := range old {
		names = append(names, m.Filename)
	}
	return names, nil
}

// Delete удаляет запись с медиа и связями; блобы убираются после коммита.
func (s *EntryService) Delete(ctx context.Context, requester *model.User, id int64) error {
	if _, err := s.authorize(ctx, requester, id); err != nil {
		return err
	}
	var blobs []string
	err := s.store.Transaction(ctx, func(tx repo.Store) error {
		names, err := purgeEntry(ctx, tx, id)
		if err != nil {
			return lookupErr("entry", "delete entry", err)
		}
		blobs = names
		return nil
	})
	if err != nil {
		return storeErr("delete entry", err)
	}
	entriesDeletedTotal.Inc()
	removeBlobs(ctx, s.blobs, s.logger, blobs)
	s.logger.Debugw("entry deleted", "entry", id, "by", requester.ID)
	return nil
}

// Get — запись доступна владельцу и администратору.
func (s *EntryService) Get(ctx context.Context, requester *model.User, id int64) (*model.Entry, error) {
	return s.authorize(ctx, requester, id)
}

// List — только свои записи, от новых к старым.
func (s *EntryService) List(ctx context.Context, requester *model.User, page, pageSize int) (*EntryPage, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	page, pageSize = ClampPage(page, pageSize)
	entries, total, err := s.store.Entries().ListByOwner(ctx, requester.ID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, storeErr("list entries", err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return &EntryPage{Entries: entries, Page: page, PageSize: pageSize, Total: total}, nil
}

// PublishShare выпускает новый токен; предыдущая ссылка сразу перестаёт работать.
func (s *EntryService) PublishShare(ctx context.Context, requester *model.User, id int64) (string, error) {
	if _, err := s.authorize(ctx, requester, id); err != nil {
		return "", err
	}
	for attempt := 0; attempt < shareTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return "", errs.External("random source", err)
		}
		err = s.store.Entries().SetShareToken(ctx, id, &token)
		if errors.Is(err, repo.ErrDuplicate) {
			s.logger.Warnw("share token collision, retrying", "entry", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return "", lookupErr("entry", "publish share", err)
		}
		sharesPublishedTotal.Inc()
		return token, nil
	}
	return "", errs.Conflict("share_token", "could not allocate a unique share token, please retry")
}

// RevokeShare снимает публикацию.
func (s *EntryService) RevokeShare(ctx context.Context, requester *model.User, id int64) error {
	if _, err := s.authorize(ctx, requester, id); err != nil {
		return err
	}
	return lookupErr("entry", "revoke share", s.store.Entries().SetShareToken(ctx, id, nil))
}

// GetByShareToken — публичный доступ без аутентификации.
func (s *EntryService) GetByShareToken(ctx context.Context, token string) (*model.Entry, error) {
	if token == "" {
		return nil, errs.NotFound("entry")
	}
	e, err := s.store.Entries().GetByShareToken(ctx, token)
	if err != nil {
		return nil, lookupErr("entry", "load shared entry", err)
	}
	return e, nil
}

func (s *EntryService) Export(ctx context.Context, requester *model.User, id int64) ([]byte, error) {
	e, err := s.authorize(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	return s.render(e)
}

func (s *EntryService) ExportShared(ctx context.Context, token string) ([]byte, error) {
	e, err := s.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.render(e)
}

func (s *EntryService) render(e *model.Entry) ([]byte, error) {
	out, err := s.renderer.RenderEntry(export.NewEntryView(e, s.opts.Location))
	if err != nil {
		return nil, errs.External("pdf renderer", err)
	}
	return out, nil
}

// OpenMedia отдаёт содержимое вложения. Вызывающий закрывает reader.
func (s *EntryService) OpenMedia(ctx context.Context, requester *model.User, entryID, mediaID int64) (*model.Media, io.ReadCloser, error) {
	e, err := s.authorize(ctx, requester, entryID)
	if err != nil {
		return nil, nil, err
	}
	return s.openMedia(ctx, e, mediaID)
}

func (s *EntryService) OpenSharedMedia(ctx context.Context, token string, mediaID int64) (*model.Media, io.ReadCloser, error) {
	e, err := s.GetByShareToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	return s.openMedia(ctx, e, mediaID)
}

func (s *EntryService) openMedia(ctx context.Context, e *model.Entry, mediaID int64) (*model.Media, io.ReadCloser, error) {
	var media *model.Media
	for i := range e.Media {
		if e.Media[i].ID == mediaID {
			media = &e.Media[i]
			break
		}
	}
	if media == nil {
		return nil, nil, errs.NotFound("media")
	}
	rc, err := s.blobs.Open(ctx, media.Filename)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, errs.NotFound("media")
	}
	if err != nil {
		return nil, nil, errs.External("blob store", err)
	}
	return media, rc, nil
}

// DeleteMedia удаляет одно вложение. Права проверяются по записи-владельцу.
func (s *EntryService) DeleteMedia(ctx context.Context, requester *model.User, mediaID int64) error {
	if requester == nil {
		return errs.Auth("authentication required")
	}
	media, err := s.store.Media().GetByID(ctx, mediaID)
	if err != nil {
		return lookupErr("media", "load media", err)
	}
	if _, err := s.authorize(ctx, requester, media.EntryID); err != nil {
		return err
	}
	err = s.store.Transaction(ctx, func(tx repo.Store) error {
		return lookupErr("media", "delete media", tx.Media().Delete(ctx, mediaID))
	})
	if err != nil {
		return storeErr("delete media", err)
	}
	removeBlobs(ctx, s.blobs, s.logger, []string{media.Filename})
	return nil
}

// authorize загружает запись и проверяет CanMutate.
func (s *EntryService) authorize(ctx context.Context, requester *model.User, id int64) (*model.Entry, error) {
	if requester == nil {
		return nil, errs.Auth("authentication required")
	}
	e, err := s.store.Entries().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("entry", "load entry", err)
	}
	if err := guard.CanMutate(requester, e).Err(); err != nil {
		s.logger.Debugw("entry access denied", "entry", id, "user", requester.ID)
		return nil, err
	}
	return e, nil
}

func (s *EntryService) reload(ctx context.Context, id int64) (*model.Entry, error) {
	e, err := s.store.Entries().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr("entry", "load entry", err)
	}
	return e, nil
}

// saveUpload проверяет файл и кладёт его в хранилище. nil на входе — нет файла.
func (s *EntryService) saveUpload(ctx context.Context, up *Upload) (*model.Media, error) {
	if up == nil {
		return nil, nil
	}
	mediaType, err := up.validate(s.opts.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	stored, err := s.blobs.Save(ctx, up.Data, up.Filename)
	if err != nil {
		return nil, errs.External("blob store", err)
	}
	return mediaRow(up, stored, mediaType), nil
}

// discard убирает блоб, метаданные которого не попали в БД.
func (s *EntryService) discard(ctx context.Context, media *model.Media) {
	if media == nil {
		return
	}
	removeBlobs(ctx, s.blobs, s.logger, []string{media.Filename})
}
