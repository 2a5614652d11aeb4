package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectAvailable ProjectStatus = "Available"
	ProjectAssigned  ProjectStatus = "Assigned"
	ProjectCompleted ProjectStatus = "Completed"
)

type Project struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	// snapshot of the client at posting time
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`

	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Budget      int64          `json:"budget"`
	Skills      datatypes.JSON `json:"skills"`

	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'Available';index" json:"status"`

	FreelancerID   *uuid.UUID `gorm:"type:uuid;index" json:"freelancer_id,omitempty"`
	FreelancerName string     `json:"freelancer_name,omitempty"`

	PostedAt time.Time  `json:"posted_at"`
	Deadline *time.Time `json:"deadline,omitempty"`

	// submission state, populated once the freelancer delivers
	Submission            bool   `gorm:"default:false" json:"submission"`
	SubmissionAccepted    bool   `gorm:"default:false" json:"submission_accepted"`
	ProjectLink           string `gorm:"type:text" json:"project_link"`
	ManualLink            string `gorm:"type:text" json:"manual_link"`
	SubmissionDescription string `gorm:"type:text" json:"submission_description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *User `gorm:"foreignKey:ClientID" json:"-"`
	Bids   []Bid `gorm:"foreignKey:ProjectID" json:"bids,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if len(p.Skills) == 0 {
		p.Skills = JSONStrings(nil)
	}
	return
}

// Bid is one freelancer's offer on a project. Append-only; the authoritative
// proposal data lives on the Application created in the same transaction.
type Bid struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`
	Amount       int64     `gorm:"not null" json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

func (b *Bid) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
