package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engagement type enum constants
const (
	EngagementInternal             = "internal"
	EngagementFreelance            = "freelance"
	EngagementFreelanceWithInvoice = "freelance_with_invoice"
)

// Crew position enum constants
const (
	PositionCaptain         = "captain"
	PositionFirstOfficer    = "first_officer"
	PositionFlightAttendant = "flight_attendant"
)

// Assignment binds one crew member to one mission with a rate and date range.
// The (mission_id, user_id) pair is unique and upserts key on it.
type Assignment struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MissionID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_mission_user" json:"mission_id"`
	Mission             *Mission        `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	UserID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_mission_user" json:"user_id"`
	User                *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Position            string          `gorm:"type:varchar(30);not null" json:"position"`
	Engagement          string          `gorm:"type:varchar(30);not null;default:'internal'" json:"engagement"`
	DayRate             decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"day_rate"`
	Currency            string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	StartDate           time.Time       `gorm:"not null" json:"start_date"`
	EndDate             time.Time       `gorm:"not null" json:"end_date"`
	HasZeroHourContract bool            `gorm:"not null;default:false" json:"has_zero_hour_contract"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsFreelance reports whether the assignment needs a zero-hour contract
// before contract generation may proceed.
func (a *Assignment) IsFreelance() bool {
	return a.Engagement == EngagementFreelance || a.Engagement == EngagementFreelanceWithInvoice
}
