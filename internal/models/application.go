package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Application is a freelancer's bid on a project. Client and freelancer fields
// are denormalized snapshots taken when the bid is placed, so the record stays
// readable even if profiles change later. Accepted/Rejected are terminal.
type Application struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`

	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`

	FreelancerID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	FreelancerName   string         `json:"freelancer_name"`
	FreelancerEmail  string         `json:"freelancer_email"`
	FreelancerSkills datatypes.JSON `json:"freelancer_skills"`

	// project snapshot
	Title          string         `json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Budget         int64          `json:"budget"`
	RequiredSkills datatypes.JSON `json:"required_skills"`

	Proposal      string `gorm:"type:text" json:"proposal"`
	BidAmount     int64  `gorm:"not null" json:"bid_amount"`
	EstimatedDays int    `json:"estimated_days"`

	Status ApplicationStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if len(a.FreelancerSkills) == 0 {
		a.FreelancerSkills = JSONStrings(nil)
	}
	if len(a.RequiredSkills) == 0 {
		a.RequiredSkills = JSONStrings(nil)
	}
	return
}
