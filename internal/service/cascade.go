package service

import (
	"FieldScribe/internal/repo"
	"FieldScribe/internal/storage"
	"context"

	"go.uber.org/zap"
)

// purgeEntry удаляет медиа, связи с тегами и саму запись внутри транзакции tx.
// Возвращает имена блобов, которые надо убрать после коммита.
func purgeEntry(ctx context.Context, tx repo.Store, entryID int64) ([]string, error) {
	media, err := tx.Media().ListByEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := tx.Media().DeleteByEntry(ctx, entryID); err != nil {
		return nil, err
	}
	if err := tx.Entries().Delete(ctx, entryID); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(media))
	for _, m := range media {
		names = append(names, m.Filename)
	}
	return names, nil
}

// removeBlobs удаляет блобы после коммита. Ошибки только логируются и считаются.
func removeBlobs(ctx context.Context, blobs storage.BlobStore, logger *zap.SugaredLogger, names []string) {
	if blobs == nil {
		return
	}
	// отмена запроса клиентом не должна обрывать уборку
	ctx = context.WithoutCancel(ctx)
	for _, name := range names {
		if err := blobs.Delete(ctx, name); err != nil {
			blobCleanupFailuresTotal.Inc()
			logger.Warnw("blob cleanup failed", "blob", name, "error", err)
		}
	}
}
