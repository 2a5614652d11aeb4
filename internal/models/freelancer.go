package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FreelancerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Skills      datatypes.JSON `json:"skills"` // ["react", "golang", ...]
	Description string         `gorm:"type:text" json:"description"`

	// Balance only ever grows: credited when a submission is approved,
	// alongside a wallet_transactions ledger row.
	Balance int64 `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (f *FreelancerProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if len(f.Skills) == 0 {
		f.Skills = JSONStrings(nil)
	}
	return
}

type ProjectListType string

const (
	ProjectListCurrent   ProjectListType = "current"
	ProjectListCompleted ProjectListType = "completed"
)

// FreelancerProject records which projects a freelancer is working on or has
// completed. The profile's current/completed lists are materialized from here.
type FreelancerProject struct {
	FreelancerID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"freelancer_id"`
	ProjectID    uuid.UUID       `gorm:"type:uuid;primaryKey" json:"project_id"`
	Type         ProjectListType `gorm:"type:varchar(20);primaryKey" json:"type"`
	CreatedAt    time.Time       `json:"created_at"`
}

// FreelancerApplication links a freelancer to the applications they submitted.
type FreelancerApplication struct {
	FreelancerID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"freelancer_id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;primaryKey" json:"application_id"`
	CreatedAt     time.Time `json:"created_at"`
}
