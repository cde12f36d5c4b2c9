package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateSupplierInvoiceRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Currency     string `json:"currency" binding:"required,len=3"`
	StoragePath  string `json:"storage_path"`
	Note         string `json:"note"`
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

type SupplierInvoiceResponse struct {
	ID           string  `json:"id"`
	AssignmentID string  `json:"assignment_id"`
	MissionID    string  `json:"mission_id"`
	Amount       string  `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	StoragePath  string  `json:"storage_path"`
	ReviewedBy   *string `json:"reviewed_by"`
	ReviewedAt   *string `json:"reviewed_at"`
	Note         string  `json:"note"`
	CreatedAt    string  `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateSupplierInvoice(ctx context.Context, actorID string, req CreateSupplierInvoiceRequest) (SupplierInvoiceResponse, error)
	UpdateSupplierInvoiceStatus(ctx context.Context, actorID, id string, req UpdateInvoiceStatusRequest) (SupplierInvoiceResponse, error)
	ListMissionInvoices(ctx context.Context, missionID string) ([]SupplierInvoiceResponse, error)
	ListInvoices(ctx context.Context, status string, page, limit int) ([]SupplierInvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo    repository.InvoiceRepository
	assignmentRepo repository.AssignmentRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	notifications  NotificationService
	now            func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	assignmentRepo repository.AssignmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifications NotificationService,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:    invoiceRepo,
		assignmentRepo: assignmentRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		notifications:  notifications,
		now:            time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateSupplierInvoice(ctx context.Context, actorID string, req CreateSupplierInvoiceRequest) (SupplierInvoiceResponse, error) {
	assignmentID, err := uuid.Parse(req.AssignmentID)
	if err != nil {
		return SupplierInvoiceResponse{}, fmt.Errorf("invalid assignment_id: %w", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SupplierInvoiceResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsPositive() {
		return SupplierInvoiceResponse{}, fmt.Errorf("amount must be positive")
	}

	assignment, err := s.assignmentRepo.FindByID(ctx, assignmentID)
	if err != nil {
		return SupplierInvoiceResponse{}, fmt.Errorf("assignment not found: %w", err)
	}
	if !assignment.IsFreelance() {
		return SupplierInvoiceResponse{}, fmt.Errorf("only freelance assignments carry supplier invoices")
	}

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		actor = &parsed
	}

	invoice := model.SupplierInvoice{
		AssignmentID: assignmentID,
		MissionID:    assignment.MissionID,
		Amount:       amount,
		Currency:     req.Currency,
		Status:       model.InvoiceUploaded,
		StoragePath:  req.StoragePath,
		Note:         req.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create supplier invoice: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"assignment_id": req.AssignmentID,
			"amount":        amount.StringFixed(2),
			"currency":      req.Currency,
		})
		audit := &model.AuditLog{
			UserID:   actor,
			Action:   model.ActionCreateSupplierInvoice,
			EntityID: invoice.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return SupplierInvoiceResponse{}, err
	}

	return toSupplierInvoiceResponse(invoice), nil
}

// UpdateSupplierInvoiceStatus moves an uploaded invoice to approved or
// rejected. Both are terminal: a second review attempt is refused.
func (s *invoiceService) UpdateSupplierInvoiceStatus(ctx context.Context, actorID, id string, req UpdateInvoiceStatusRequest) (SupplierInvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return SupplierInvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	reviewerID, err := uuid.Parse(actorID)
	if err != nil {
		return SupplierInvoiceResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var invoice *model.SupplierInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return fmt.Errorf("supplier invoice not found: %w", findErr)
		}

		if invoice.IsTerminal() {
			return fmt.Errorf("supplier invoice is already %s", invoice.Status)
		}

		now := s.now()
		invoice.Status = req.Status
		invoice.ReviewedBy = &reviewerID
		invoice.ReviewedAt = &now
		if req.Note != "" {
			invoice.Note = req.Note
		}

		if saveErr := s.invoiceRepo.UpdateStatus(txCtx, invoice); saveErr != nil {
			return fmt.Errorf("failed to update supplier invoice: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"status": req.Status,
			"note":   req.Note,
		})
		audit := &model.AuditLog{
			UserID:   &reviewerID,
			Action:   model.ActionReviewSupplierInvoice,
			EntityID: invoice.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return SupplierInvoiceResponse{}, err
	}

	title := fmt.Sprintf("Supplier invoice %s", req.Status)
	_ = s.notifications.Broadcast(ctx, model.NotifInvoiceReviewed, title, "", &invoice.MissionID)

	return toSupplierInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListMissionInvoices(ctx context.Context, missionID string) ([]SupplierInvoiceResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return nil, fmt.Errorf("invalid mission id: %w", err)
	}

	invoices, err := s.invoiceRepo.ListByMission(ctx, mid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier invoices: %w", err)
	}

	result := make([]SupplierInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toSupplierInvoiceResponse(inv))
	}
	return result, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, status string, page, limit int) ([]SupplierInvoiceResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	invoices, total, err := s.invoiceRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch supplier invoices: %w", err)
	}

	result := make([]SupplierInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toSupplierInvoiceResponse(inv))
	}
	return result, total, nil
}

// --- Helpers ---

func toSupplierInvoiceResponse(inv model.SupplierInvoice) SupplierInvoiceResponse {
	resp := SupplierInvoiceResponse{
		ID:           inv.ID.String(),
		AssignmentID: inv.AssignmentID.String(),
		MissionID:    inv.MissionID.String(),
		Amount:       inv.Amount.StringFixed(2),
		Currency:     inv.Currency,
		Status:       inv.Status,
		StoragePath:  inv.StoragePath,
		Note:         inv.Note,
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.ReviewedBy != nil {
		reviewer := inv.ReviewedBy.String()
		resp.ReviewedBy = &reviewer
	}
	if inv.ReviewedAt != nil {
		reviewedAt := inv.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	return resp
}
