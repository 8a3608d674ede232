package models

import (
	"time"

	"github.com/google/uuid"
)

// QuoteRequestStatus tracks the lifecycle of a submitted quote request.
type QuoteRequestStatus string

const (
	QuoteRequestStatusPending   QuoteRequestStatus = "pending"
	QuoteRequestStatusProcessed QuoteRequestStatus = "processed"
)

// QuoteRequest persists a submitted cart snapshot together with the
// requester's contact details.
type QuoteRequest struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	SessionID    string             `gorm:"column:session_id;not null;index"`
	ContactName  string             `gorm:"column:contact_name;not null"`
	ContactEmail string             `gorm:"column:contact_email;not null"`
	Company      string             `gorm:"column:company"`
	Message      string             `gorm:"column:message"`
	Status       QuoteRequestStatus `gorm:"column:status;not null;default:'pending'"`
	LineItems    []QuoteLineItem    `gorm:"foreignKey:QuoteRequestID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
