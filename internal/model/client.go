package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is the charter customer a mission is flown for and a quote is
// billed to.
type Client struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	CompanyName    string         `gorm:"type:varchar(255)" json:"company_name"`
	VATNumber      string         `gorm:"type:varchar(50)" json:"vat_number"`
	ContactPerson  string         `gorm:"type:varchar(255)" json:"contact_person"`
	Email          string         `gorm:"type:varchar(255);not null" json:"email"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone"`
	BillingAddress string         `gorm:"type:text" json:"billing_address"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
