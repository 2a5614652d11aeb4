package models

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	Amount        float64       `gorm:"not null" json:"amount"`
	Method        string        `gorm:"type:varchar(30);default:'Card'" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	TransactionID string        `gorm:"type:varchar(60)" json:"transaction_id"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "Unpaid"
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

type Invoice struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"payment_id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index" json:"freelancer_id"`

	Amount      float64 `gorm:"not null" json:"amount"`
	Tax         float64 `gorm:"default:0" json:"tax"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	InvoiceNumber string        `gorm:"uniqueIndex;size:30" json:"invoice_number"`
	InvoiceDate   time.Time     `json:"invoice_date"`
	DueDate       *time.Time    `json:"due_date,omitempty"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;default:'Unpaid';index" json:"status"`
	Description   string        `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payment *Payment `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.InvoiceNumber == "" {
		i.InvoiceNumber = GenerateInvoiceNumber()
	}
	if i.InvoiceDate.IsZero() {
		i.InvoiceDate = time.Now()
	}
	return
}

// GenerateInvoiceNumber builds a unique human-readable invoice reference,
// e.g. INV-1756624731-483.
func GenerateInvoiceNumber() string {
	return fmt.Sprintf("INV-%d-%03d", time.Now().Unix(), rand.Intn(1000))
}
