package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateMission = "CREATE_MISSION"
	ActionFinanceReview = "FINANCE_APPROVE_MISSION"
	ActionOwnerApprove  = "OWNER_APPROVE_MISSION"
	ActionOwnerReject   = "OWNER_REJECT_MISSION"
	ActionStartMission  = "START_MISSION"

	// Quote / client approval actions
	ActionCreateQuote        = "CREATE_QUOTE"
	ActionCreateQuoteItems   = "CREATE_QUOTE_ITEMS"
	ActionGenerateClientLink = "GENERATE_CLIENT_APPROVAL"
	ActionClientApproveQuote = "CLIENT_APPROVE_QUOTE"
	ActionClientRejectQuote  = "CLIENT_REJECT_QUOTE"

	// Crew / execution actions
	ActionUpsertAssignment      = "UPSERT_ASSIGNMENT"
	ActionDeleteAssignment      = "DELETE_ASSIGNMENT"
	ActionGenerateContract      = "GENERATE_CONTRACT"
	ActionCreateDocument        = "CREATE_DOCUMENT"
	ActionCreateSupplierInvoice = "CREATE_SUPPLIER_INVOICE"
	ActionReviewSupplierInvoice = "REVIEW_SUPPLIER_INVOICE"
	ActionValidateAndInvoice    = "VALIDATE_AND_INVOICE"

	// HR actions
	ActionCreateInvitation = "CREATE_INVITATION"
	ActionAcceptInvitation = "ACCEPT_INVITATION"
	ActionValidateProfile  = "VALIDATE_PROFILE"
	ActionRejectProfile    = "REJECT_PROFILE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
