package database

import (
	"log"

	"crewops/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate runs AutoMigrate for every core model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Client{},
		&model.Mission{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.Assignment{},
		&model.SupplierInvoice{},
		&model.Document{},
		&model.ClientApprovalToken{},
		&model.Invitation{},
		&model.Notification{},
		&model.AuditLog{},
	)
}
