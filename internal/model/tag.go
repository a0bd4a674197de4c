package model

import "time"

// Tag — общий словарь тегов. Удаление записи тег не удаляет.
type Tag struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

// EntryTag — строка связующей таблицы entry_tags.
type EntryTag struct {
	EntryID   int64     `gorm:"primaryKey"`
	TagID     int64     `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
