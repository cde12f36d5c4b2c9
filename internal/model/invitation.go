package model

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus enum constants
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
)

// InvitationTTL is how long an invitation link stays valid.
const InvitationTTL = 72 * time.Hour

// Invitation lets HR invite a new staff or crew member by email. The invitee
// redeems the token to create their account; crew accounts then go through
// HR validation before they can be assigned.
type Invitation struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Token      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	Role       string     `gorm:"type:varchar(50);not null" json:"role"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	InvitedBy  *uuid.UUID `gorm:"type:uuid" json:"invited_by"`
	Inviter    *User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsExpired returns true if the invitation's validity window has passed.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsUsable returns true if the invitation can still be accepted.
func (i *Invitation) IsUsable(now time.Time) bool {
	return i.Status == InvitationPending && !i.IsExpired(now)
}
