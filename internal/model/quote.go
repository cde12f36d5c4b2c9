package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteItem kind constants
const (
	QuoteItemFlight   = "FLIGHT"
	QuoteItemCrew     = "CREW"
	QuoteItemHandling = "HANDLING"
	QuoteItemCatering = "CATERING"
	QuoteItemOther    = "OTHER"
)

// Quote is a priced proposal sent to a client for a mission. A mission holds
// at most one quote (uniqueIndex on mission_id) and a quote belongs to exactly
// one mission.
type Quote struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MissionID      uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"mission_id"`
	Mission        *Mission        `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client         *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	FeePct         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"fee_pct"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total"`
	ClientApproved bool            `gorm:"not null;default:false" json:"client_approved"`
	ApprovedAt     *time.Time      `json:"approved_at"`
	ExpiresAt      time.Time       `gorm:"not null" json:"expires_at"`
	Items          []QuoteItem     `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// QuoteItem is one line of the quote breakdown, created alongside the quote
// and never mutated afterwards.
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	Kind        string          `gorm:"type:varchar(20);not null" json:"kind"` // FLIGHT, CREW, HANDLING, CATERING, OTHER
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}
