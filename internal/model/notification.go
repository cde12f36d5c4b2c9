package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification type enum constants
const (
	NotifQuoteApproved    = "QUOTE_APPROVED"
	NotifQuoteRejected    = "QUOTE_REJECTED"
	NotifMissionAssigned  = "MISSION_ASSIGNED"
	NotifMissionCompleted = "MISSION_COMPLETED"
	NotifInvoiceReviewed  = "INVOICE_REVIEWED"
)

// Notification is a persisted in-app message. A nil UserID means the message
// is addressed to all staff. Delivery also goes out live over the websocket
// hub; the row is what survives a reload.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Type      string     `gorm:"type:varchar(30);not null;index" json:"type"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	MissionID *uuid.UUID `gorm:"type:uuid;index" json:"mission_id"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}
