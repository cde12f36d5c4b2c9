package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierInvoiceStatus enum constants. uploaded is the only non-terminal
// state; approved and rejected invoices never change again.
const (
	InvoiceUploaded = "uploaded"
	InvoiceApproved = "approved"
	InvoiceRejected = "rejected"
)

// SupplierInvoice is a freelancer's invoice uploaded against an assignment.
// Only approved invoices count toward the mission's payment progress.
type SupplierInvoice struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AssignmentID uuid.UUID       `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment     `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	MissionID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"mission_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'EUR'" json:"currency"`
	Status       string          `gorm:"type:varchar(20);not null;default:'uploaded';index" json:"status"`
	StoragePath  string          `gorm:"type:varchar(512)" json:"storage_path"`
	ReviewedBy   *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer     *User           `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the invoice status can no longer change.
func (i *SupplierInvoice) IsTerminal() bool {
	return i.Status == InvoiceApproved || i.Status == InvoiceRejected
}
