package model

import (
	"time"

	"github.com/google/uuid"
)

// Document type enum constants
const (
	DocZeroHourContract = "zero_hour_contract"
	DocAssignmentLetter = "assignment_letter"
	DocServiceOrder     = "service_order"
	DocFinalInvoice     = "final_invoice"
)

// Document is a polymorphic record of generated paperwork. Either or both of
// mission/user references may be set depending on the type. Write-once: no
// update path exists.
type Document struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        string     `gorm:"type:varchar(30);not null;index" json:"type"`
	MissionID   *uuid.UUID `gorm:"type:uuid;index" json:"mission_id"`
	Mission     *Mission   `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title       string     `gorm:"type:varchar(255);not null;index" json:"title"`
	StoragePath string     `gorm:"type:varchar(512)" json:"storage_path"`
	Metadata    string     `gorm:"type:jsonb" json:"metadata"` // serialized JSON blob
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
