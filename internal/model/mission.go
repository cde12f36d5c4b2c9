package model

import (
	"time"

	"crewops/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Mission represents a single chartered flight engagement requiring crew and
// aircraft. Status moves through the workflow transition table only, never
// by direct overwrite.
type Mission struct {
	ID               uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference        string                    `gorm:"type:varchar(30);uniqueIndex;not null" json:"reference"`
	Status           workflow.Status           `gorm:"type:varchar(30);not null;default:'pending_finance_review';index" json:"status"`
	ValidationStatus workflow.ValidationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"validation_status"`
	Aircraft         string                    `gorm:"type:varchar(100)" json:"aircraft"`
	DepartureAirport string                    `gorm:"type:varchar(10)" json:"departure_airport"`
	ArrivalAirport   string                    `gorm:"type:varchar(10)" json:"arrival_airport"`
	StartDate        time.Time                 `gorm:"not null" json:"start_date"`
	EndDate          time.Time                 `gorm:"not null" json:"end_date"`
	ClientID         uuid.UUID                 `gorm:"type:uuid;not null;index" json:"client_id"`
	Client           *Client                   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	RequestedBy      *uuid.UUID                `gorm:"type:uuid;index" json:"requested_by"`
	Requester        *User                     `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Notes            string                    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
	DeletedAt        gorm.DeletedAt            `gorm:"index" json:"-"`
}
