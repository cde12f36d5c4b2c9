package repository

import (
	"context"

	"crewops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.SupplierInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierInvoice, error)
	ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.SupplierInvoice, error)
	List(ctx context.Context, status string, page, limit int) ([]model.SupplierInvoice, int64, error)
	UpdateStatus(ctx context.Context, invoice *model.SupplierInvoice) error
	SumApprovedByAssignment(ctx context.Context, assignmentID uuid.UUID) (decimal.Decimal, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.SupplierInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierInvoice, error) {
	var invoice model.SupplierInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.SupplierInvoice, error) {
	var invoices []model.SupplierInvoice
	err := GetDB(ctx, r.db).Preload("Assignment").Where("mission_id = ?", missionID).
		Order("created_at desc").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *invoiceRepository) List(ctx context.Context, status string, page, limit int) ([]model.SupplierInvoice, int64, error) {
	var invoices []model.SupplierInvoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.SupplierInvoice{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Assignment")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, invoice *model.SupplierInvoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

// SumApprovedByAssignment totals the approved invoices for one assignment.
// It is the real payment source behind the execution view.
func (r *invoiceRepository) SumApprovedByAssignment(ctx context.Context, assignmentID uuid.UUID) (decimal.Decimal, error) {
	var invoices []model.SupplierInvoice
	err := GetDB(ctx, r.db).Where("assignment_id = ? AND status = ?", assignmentID, model.InvoiceApproved).
		Find(&invoices).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	return total, nil
}
