package model

import (
	"time"

	"github.com/google/uuid"
)

// ClientApprovalTokenTTL is the validity window of a client approval link.
const ClientApprovalTokenTTL = 7 * 24 * time.Hour

// ClientApprovalToken is an opaque, time-limited credential letting an
// unauthenticated client approve or reject a quote via a deep link. Single
// use: UsedAt is set on the first approve/reject and the token is dead after.
type ClientApprovalToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Token     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	MissionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"mission_id"`
	Mission   *Mission   `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	QuoteID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"quote_id"`
	Quote     *Quote     `gorm:"foreignKey:QuoteID" json:"quote,omitempty"`
	ClientID  uuid.UUID  `gorm:"type:uuid;not null" json:"client_id"`
	Client    *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsExpired returns true if the token's validity window has passed.
func (t *ClientApprovalToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsUsable returns true if the token can still approve or reject.
func (t *ClientApprovalToken) IsUsable(now time.Time) bool {
	return t.UsedAt == nil && !t.IsExpired(now)
}
