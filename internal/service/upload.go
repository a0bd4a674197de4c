package service

import (
	"FieldScribe/internal/errs"
	"FieldScribe/internal/model"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes — лимит размера вложения по умолчанию.
const DefaultMaxUploadBytes = 16 << 20

// allowedMedia — разрешённые расширения и их MIME-типы.
var allowedMedia = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
}

// Upload — загруженный клиентом файл.
type Upload struct {
	Filename string
	Data     []byte
}

// MediaTypeFor возвращает MIME-тип для разрешённого расширения.
func MediaTypeFor(filename string) (string, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	mt, ok := allowedMedia[ext]
	return mt, ok
}

func (u *Upload) validate(maxBytes int64) (string, error) {
	name := filepath.Base(strings.ReplaceAll(u.Filename, `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return "", errs.Validation("file", "no file selected")
	}
	mt, ok := MediaTypeFor(name)
	if !ok {
		return "", errs.Validation("file", "file type not allowed: use png, jpg, jpeg, gif, mp3 or mp4")
	}
	if len(u.Data) == 0 {
		return "", errs.Validation("file", "file is empty")
	}
	if maxBytes > 0 && int64(len(u.Data)) > maxBytes {
		return "", errs.Validation("file", fmt.Sprintf("file exceeds the upload limit of %d bytes", maxBytes))
	}
	u.Filename = name
	return mt, nil
}

// mediaRow — метаданные для блоба, уже сохранённого в хранилище.
func mediaRow(u *Upload, stored, mediaType string) *model.Media {
	return &model.Media{
		Filename:     stored,
		OriginalName: u.Filename,
		MediaType:    mediaType,
		Size:         int64(len(u.Data)),
	}
}
