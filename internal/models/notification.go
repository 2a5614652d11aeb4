package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationBid        NotificationType = "bid"
	NotificationApproval   NotificationType = "approval"
	NotificationRejection  NotificationType = "rejection"
	NotificationSubmission NotificationType = "submission"
	NotificationPayment    NotificationType = "payment"
)

type Notification struct {
	ID     uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   NotificationType `gorm:"type:varchar(20);not null" json:"type"`

	Message string `gorm:"type:text;not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
