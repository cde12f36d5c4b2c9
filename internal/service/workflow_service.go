package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"
	"crewops/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type WorkflowResponse struct {
	MissionID string          `json:"mission_id"`
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Steps     []workflow.Step `json:"steps"`
	Progress  float64         `json:"progress"`
}

type ExecutionResponse struct {
	MissionID       string                       `json:"mission_id"`
	Days            []workflow.Day               `json:"days"`
	Payments        []workflow.AssignmentPayment `json:"payments"`
	PaymentProgress string                       `json:"payment_progress"`
}

type FinalValidationResponse struct {
	MissionID        string `json:"mission_id"`
	Status           string `json:"status"`
	ValidationStatus string `json:"validation_status"`
	InvoiceReference string `json:"invoice_reference"`
	DocumentID       string `json:"document_id"`
}

// --- Interface ---

type WorkflowService interface {
	GetMissionWorkflow(ctx context.Context, missionID string) (WorkflowResponse, error)
	GetMissionExecution(ctx context.Context, missionID string) (ExecutionResponse, error)
	ValidateAndInvoice(ctx context.Context, actorID, missionID string) (FinalValidationResponse, error)
}

type workflowService struct {
	missionRepo    repository.MissionRepository
	quoteRepo      repository.QuoteRepository
	assignmentRepo repository.AssignmentRepository
	invoiceRepo    repository.InvoiceRepository
	documentRepo   repository.DocumentRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	notifications  NotificationService
	now            func() time.Time
}

func NewWorkflowService(
	missionRepo repository.MissionRepository,
	quoteRepo repository.QuoteRepository,
	assignmentRepo repository.AssignmentRepository,
	invoiceRepo repository.InvoiceRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifications NotificationService,
) WorkflowService {
	return &workflowService{
		missionRepo:    missionRepo,
		quoteRepo:      quoteRepo,
		assignmentRepo: assignmentRepo,
		invoiceRepo:    invoiceRepo,
		documentRepo:   documentRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		notifications:  notifications,
		now:            time.Now,
	}
}

// --- Implementation ---

// GetMissionWorkflow loads the mission aggregate and derives the eight-step
// view from it. Nothing here is persisted.
func (s *workflowService) GetMissionWorkflow(ctx context.Context, missionID string) (WorkflowResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return WorkflowResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}

	mission, err := s.missionRepo.FindByID(ctx, mid)
	if err != nil {
		return WorkflowResponse{}, fmt.Errorf("mission not found: %w", err)
	}

	snapshot, err := s.loadSnapshot(ctx, mission)
	if err != nil {
		return WorkflowResponse{}, err
	}

	steps := workflow.DeriveSteps(snapshot)
	return WorkflowResponse{
		MissionID: mission.ID.String(),
		Reference: mission.Reference,
		Status:    string(mission.Status),
		Steps:     steps,
		Progress:  workflow.Progress(steps),
	}, nil
}

// GetMissionExecution derives the day-by-day schedule and the per-assignment
// payment picture. Paid amounts come from approved supplier invoices.
func (s *workflowService) GetMissionExecution(ctx context.Context, missionID string) (ExecutionResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return ExecutionResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}

	if _, err := s.missionRepo.FindByID(ctx, mid); err != nil {
		return ExecutionResponse{}, fmt.Errorf("mission not found: %w", err)
	}

	assignments, err := s.assignmentRepo.ListByMission(ctx, mid)
	if err != nil {
		return ExecutionResponse{}, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	spans := make([]workflow.AssignmentSpan, 0, len(assignments))
	for _, a := range assignments {
		spans = append(spans, workflow.AssignmentSpan{
			ID:        a.ID,
			DayRate:   a.DayRate,
			StartDate: a.StartDate,
			EndDate:   a.EndDate,
		})
	}

	payments, err := workflow.Payments(spans, &invoicePaymentSource{ctx: ctx, repo: s.invoiceRepo})
	if err != nil {
		return ExecutionResponse{}, fmt.Errorf("failed to resolve payments: %w", err)
	}

	return ExecutionResponse{
		MissionID:       mid.String(),
		Days:            workflow.Schedule(spans, s.now()),
		Payments:        payments,
		PaymentProgress: workflow.PaymentProgress(payments).StringFixed(2),
	}, nil
}

// ValidateAndInvoice is the final back-office action: it closes out an
// in-progress mission, marks it validated, and mints the numbered final
// invoice document, all in one transaction.
func (s *workflowService) ValidateAndInvoice(ctx context.Context, actorID, missionID string) (FinalValidationResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return FinalValidationResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return FinalValidationResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	var (
		mission *model.Mission
		doc     model.Document
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		mission, findErr = s.missionRepo.FindByID(txCtx, mid)
		if findErr != nil {
			return fmt.Errorf("mission not found: %w", findErr)
		}

		if mission.ValidationStatus != workflow.ValidationPending {
			return fmt.Errorf("mission validation is already %s", mission.ValidationStatus)
		}
		if mission.Status != workflow.StatusInProgress && mission.Status != workflow.StatusCompleted {
			return fmt.Errorf("mission is %s, execution has not finished", mission.Status)
		}

		invoices, invErr := s.invoiceRepo.ListByMission(txCtx, mid)
		if invErr != nil {
			return fmt.Errorf("failed to fetch supplier invoices: %w", invErr)
		}
		for _, inv := range invoices {
			if inv.Status != model.InvoiceApproved {
				return fmt.Errorf("supplier invoice %s is %s, all invoices must be approved", inv.ID, inv.Status)
			}
		}

		if mission.Status == workflow.StatusInProgress {
			next, trErr := workflow.Transition(mission.Status, workflow.EventComplete)
			if trErr != nil {
				return trErr
			}
			mission.Status = next
		}
		mission.ValidationStatus = workflow.ValidationValidated
		if updErr := s.missionRepo.Update(txCtx, mission); updErr != nil {
			return fmt.Errorf("failed to update mission: %w", updErr)
		}

		assignments, asgErr := s.assignmentRepo.ListByMission(txCtx, mid)
		if asgErr != nil {
			return fmt.Errorf("failed to fetch assignments: %w", asgErr)
		}
		crewTotal := decimal.Zero
		for _, a := range assignments {
			crewTotal = crewTotal.Add(workflow.AssignmentCost(a.DayRate, a.StartDate, a.EndDate))
		}

		reference, refErr := s.nextInvoiceReference(txCtx)
		if refErr != nil {
			return refErr
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"mission_reference": mission.Reference,
			"crew_total":        crewTotal.StringFixed(2),
		})
		doc = model.Document{
			Type:      model.DocFinalInvoice,
			MissionID: &mission.ID,
			Title:     reference,
			Metadata:  string(metadata),
			CreatedBy: &actor,
		}
		if docErr := s.documentRepo.Create(txCtx, &doc); docErr != nil {
			return fmt.Errorf("failed to create final invoice: %w", docErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"invoice_reference": reference,
			"crew_total":        crewTotal.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:     &actor,
			Action:     model.ActionValidateAndInvoice,
			EntityID:   mission.ID.String(),
			EntityName: mission.Reference,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return FinalValidationResponse{}, err
	}

	title := fmt.Sprintf("Mission %s validated", mission.Reference)
	_ = s.notifications.Broadcast(ctx, model.NotifMissionCompleted, title, "", &mission.ID)

	return FinalValidationResponse{
		MissionID:        mission.ID.String(),
		Status:           string(mission.Status),
		ValidationStatus: string(mission.ValidationStatus),
		InvoiceReference: doc.Title,
		DocumentID:       doc.ID.String(),
	}, nil
}

// --- Helpers ---

func (s *workflowService) loadSnapshot(ctx context.Context, mission *model.Mission) (workflow.Snapshot, error) {
	snapshot := workflow.Snapshot{
		MissionExists:    true,
		MissionStatus:    mission.Status,
		ValidationStatus: mission.ValidationStatus,
	}

	quote, err := s.quoteRepo.FindByMission(ctx, mission.ID)
	switch {
	case err == nil:
		snapshot.HasQuote = true
		snapshot.QuoteApproved = quote.ClientApproved
	case errors.Is(err, gorm.ErrRecordNotFound):
		// no quote yet
	default:
		return workflow.Snapshot{}, fmt.Errorf("failed to fetch quote: %w", err)
	}

	count, err := s.assignmentRepo.CountByMission(ctx, mission.ID)
	if err != nil {
		return workflow.Snapshot{}, fmt.Errorf("failed to count assignments: %w", err)
	}
	snapshot.AssignmentCount = int(count)

	invoices, err := s.invoiceRepo.ListByMission(ctx, mission.ID)
	if err != nil {
		return workflow.Snapshot{}, fmt.Errorf("failed to fetch supplier invoices: %w", err)
	}
	snapshot.InvoiceCount = len(invoices)
	for _, inv := range invoices {
		if inv.Status == model.InvoiceApproved {
			snapshot.ApprovedInvoices++
		}
	}

	return snapshot, nil
}

// nextInvoiceReference allocates INV-YYYYMMDD-NNNNN, sequenced per day by
// counting existing final invoice titles with today's prefix.
func (s *workflowService) nextInvoiceReference(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("INV-%s-", s.now().UTC().Format("20060102"))
	count, err := s.documentRepo.CountByTitlePrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice reference: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// invoicePaymentSource backs workflow.Payments with approved supplier invoice
// totals from storage.
type invoicePaymentSource struct {
	ctx  context.Context
	repo repository.InvoiceRepository
}

func (p *invoicePaymentSource) PaidAmount(assignmentID uuid.UUID) (decimal.Decimal, error) {
	return p.repo.SumApprovedByAssignment(p.ctx, assignmentID)
}
