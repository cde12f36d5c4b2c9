package model

import (
	"time"

	"crewops/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleAdmin   = "admin"
	RoleOps     = "ops"
	RoleFinance = "finance"
	RoleCrew    = "crew"
)

// User is a staff member or crew member. Crew profiles start with a pending
// HR validation status and cannot be assigned to missions until validated.
type User struct {
	ID               uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username         string                    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email            string                    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone            string                    `gorm:"type:varchar(20)" json:"phone"`
	Password         string                    `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role             string                    `gorm:"type:varchar(50);not null" json:"role"` // admin, ops, finance, crew
	ValidationStatus workflow.ValidationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"validation_status"`
	ValidatedBy      *uuid.UUID                `gorm:"type:uuid" json:"validated_by"`
	ValidatedAt      *time.Time                `json:"validated_at"`
	CreatedAt        time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt            `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ValidRole reports whether role is one of the defined staff roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOps, RoleFinance, RoleCrew:
		return true
	}
	return false
}
