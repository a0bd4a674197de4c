package model

import "time"

// Media — метаданные загруженного файла. Содержимое лежит в blob-хранилище под именем Filename.
type Media struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	EntryID int64 `gorm:"not null;index" json:"entry_id"`

	Entry *Entry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Filename     string `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalName string `gorm:"size:255" json:"original_name,omitempty"`
	MediaType    string `gorm:"size:100;not null" json:"media_type"`
	Size         int64  `gorm:"not null;default:0" json:"size"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
