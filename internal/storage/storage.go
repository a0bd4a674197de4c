// Package storage хранит содержимое загруженных файлов.
// В БД лежат только метаданные и имя блоба.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound — блоба с таким именем нет.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidName — имя не годится для хранилища (пустое, с путём и т.п.).
var ErrInvalidName = errors.New("invalid blob name")

// BlobStore — хранилище содержимого медиафайлов.
type BlobStore interface {
	// Save сохраняет данные и возвращает имя, под которым их искать.
	Save(ctx context.Context, data []byte, suggestedName string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete удаляет блоб. Отсутствующий блоб ошибкой не считается.
	Delete(ctx context.Context, name string) error
}

// NewStoredName строит серверное имя: uuid плюс расширение исходного файла в нижнем регистре.
func NewStoredName(suggestedName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(suggestedName))
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}
