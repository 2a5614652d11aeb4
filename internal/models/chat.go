package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat is the message log of one project's room. Its primary key IS the
// project id; it is created lazily on first join or first message and never
// deleted.
type Chat struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []Message `gorm:"foreignKey:ChatID" json:"messages"`
}

// Message is append-only. Seq is assigned by the database and defines both
// storage and display order; SentAt is the sender's clock, stored verbatim and
// never used for ordering.
type Message struct {
	Seq      uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	ChatID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	SenderID uuid.UUID `gorm:"type:uuid;not null" json:"senderId"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	SentAt   string    `json:"time"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
