package model

import "time"

// Entry — запись журнала. Владелец назначается при создании и больше не меняется.
type Entry struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Project     string `gorm:"size:100;not null" json:"project"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Location    string `gorm:"size:100" json:"location,omitempty"`
	Context     string `gorm:"type:text" json:"context,omitempty"`
	Observation string `gorm:"type:text;not null" json:"observation"`
	Reflection  string `gorm:"type:text" json:"reflection,omitempty"`

	// ShareToken — единственный пропуск для анонимного просмотра записи.
	ShareToken *string `gorm:"size:64;uniqueIndex" json:"-"`

	Tags  []Tag   `gorm:"many2many:entry_tags" json:"tags"`
	Media []Media `gorm:"foreignKey:EntryID" json:"media"`

	// CreatedAt выставляет сервер, клиентское значение игнорируется.
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TagNames возвращает имена тегов записи в порядке хранения.
func (e *Entry) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Shared сообщает, опубликована ли запись по ссылке.
func (e *Entry) Shared() bool {
	return e.ShareToken != nil && *e.ShareToken != ""
}
