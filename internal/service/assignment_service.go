package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"
	"crewops/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpsertAssignmentRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Position   string `json:"position" binding:"required,oneof=captain first_officer flight_attendant"`
	Engagement string `json:"engagement" binding:"required,oneof=internal freelance freelance_with_invoice"`
	DayRate    string `json:"day_rate" binding:"required"`
	Currency   string `json:"currency" binding:"required,len=3"`
	StartDate  string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate    string `json:"end_date" binding:"required"`
}

type AssignmentResponse struct {
	ID                  string `json:"id"`
	MissionID           string `json:"mission_id"`
	UserID              string `json:"user_id"`
	Username            string `json:"username"`
	Position            string `json:"position"`
	Engagement          string `json:"engagement"`
	DayRate             string `json:"day_rate"`
	Currency            string `json:"currency"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	DurationDays        int    `json:"duration_days"`
	TotalCost           string `json:"total_cost"`
	HasZeroHourContract bool   `json:"has_zero_hour_contract"`
}

// --- Interface ---

type AssignmentService interface {
	GetMissionAssignments(ctx context.Context, missionID string) ([]AssignmentResponse, error)
	UpsertAssignment(ctx context.Context, userID, missionID string, req UpsertAssignmentRequest) (AssignmentResponse, error)
	DeleteAssignment(ctx context.Context, userID, id string) error
	UserHasZeroHourContract(ctx context.Context, userID string) (bool, error)
	GenerateContract(ctx context.Context, actorID, assignmentID string) (DocumentResponse, error)
}

type assignmentService struct {
	assignmentRepo repository.AssignmentRepository
	missionRepo    repository.MissionRepository
	userRepo       repository.UserRepository
	documentRepo   repository.DocumentRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	missionRepo repository.MissionRepository,
	userRepo repository.UserRepository,
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) AssignmentService {
	return &assignmentService{
		assignmentRepo: assignmentRepo,
		missionRepo:    missionRepo,
		userRepo:       userRepo,
		documentRepo:   documentRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

// --- Implementation ---

func (s *assignmentService) GetMissionAssignments(ctx context.Context, missionID string) ([]AssignmentResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return nil, fmt.Errorf("invalid mission id: %w", err)
	}

	assignments, err := s.assignmentRepo.ListByMission(ctx, mid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	result := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		result = append(result, toAssignmentResponse(a))
	}
	return result, nil
}

func (s *assignmentService) UpsertAssignment(ctx context.Context, actorID, missionID string, req UpsertAssignmentRequest) (AssignmentResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}
	crewID, err := uuid.Parse(req.UserID)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("invalid user_id: %w", err)
	}
	dayRate, err := decimal.NewFromString(req.DayRate)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("invalid day_rate: %w", err)
	}
	if dayRate.IsNegative() {
		return AssignmentResponse{}, fmt.Errorf("day_rate must not be negative")
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("invalid start_date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("invalid end_date: %w", err)
	}
	if endDate.Before(startDate) {
		return AssignmentResponse{}, fmt.Errorf("end_date must not be before start_date")
	}

	crew, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("crew member not found: %w", err)
	}
	if crew.ValidationStatus != workflow.ValidationValidated {
		return AssignmentResponse{}, fmt.Errorf("crew member %s has not passed HR validation", crew.Username)
	}

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		actor = &parsed
	}

	assignment := model.Assignment{
		MissionID:  mid,
		UserID:     crewID,
		Position:   req.Position,
		Engagement: req.Engagement,
		DayRate:    dayRate,
		Currency:   req.Currency,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		mission, findErr := s.missionRepo.FindByID(txCtx, mid)
		if findErr != nil {
			return fmt.Errorf("mission not found: %w", findErr)
		}
		if workflow.IsTerminal(mission.Status) {
			return fmt.Errorf("mission is %s and can no longer be staffed", mission.Status)
		}

		if upsertErr := s.assignmentRepo.Upsert(txCtx, &assignment); upsertErr != nil {
			return fmt.Errorf("failed to upsert assignment: %w", upsertErr)
		}

		// first crew moves an approved mission into pending_execution
		if mission.Status == workflow.StatusApproved {
			next, transErr := workflow.Transition(mission.Status, workflow.EventAssignCrew)
			if transErr != nil {
				return transErr
			}
			mission.Status = next
			if saveErr := s.missionRepo.Update(txCtx, mission); saveErr != nil {
				return fmt.Errorf("failed to update mission status: %w", saveErr)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"mission_id": missionID,
			"user_id":    req.UserID,
			"position":   req.Position,
			"engagement": req.Engagement,
			"day_rate":   dayRate.String(),
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionUpsertAssignment,
			EntityID:   assignment.ID.String(),
			EntityName: crew.Username,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return AssignmentResponse{}, err
	}

	reloaded, err := s.assignmentRepo.FindByID(ctx, assignment.ID)
	if err != nil {
		return AssignmentResponse{}, fmt.Errorf("failed to reload assignment: %w", err)
	}
	return toAssignmentResponse(*reloaded), nil
}

func (s *assignmentService) DeleteAssignment(ctx context.Context, actorID, id string) error {
	assignmentID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid assignment id: %w", err)
	}

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		actor = &parsed
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		assignment, findErr := s.assignmentRepo.FindByID(txCtx, assignmentID)
		if findErr != nil {
			return fmt.Errorf("assignment not found: %w", findErr)
		}

		if deleteErr := s.assignmentRepo.Delete(txCtx, assignmentID); deleteErr != nil {
			return fmt.Errorf("failed to delete assignment: %w", deleteErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"mission_id": assignment.MissionID.String(),
			"user_id":    assignment.UserID.String(),
		})
		audit := &model.AuditLog{
			UserID:   actor,
			Action:   model.ActionDeleteAssignment,
			EntityID: id,
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
}

func (s *assignmentService) UserHasZeroHourContract(ctx context.Context, userID string) (bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, fmt.Errorf("invalid user id: %w", err)
	}
	return s.documentRepo.ExistsForUser(ctx, uid, model.DocZeroHourContract)
}

// GenerateContract creates a zero-hour contract document for a freelance
// assignment and marks the assignment compliant.
func (s *assignmentService) GenerateContract(ctx context.Context, actorID, assignmentID string) (DocumentResponse, error) {
	aid, err := uuid.Parse(assignmentID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid assignment id: %w", err)
	}

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		actor = &parsed
	}

	var doc model.Document
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		assignment, findErr := s.assignmentRepo.FindByID(txCtx, aid)
		if findErr != nil {
			return fmt.Errorf("assignment not found: %w", findErr)
		}
		if !assignment.IsFreelance() {
			return fmt.Errorf("assignment is %s, only freelance engagements need a zero-hour contract", assignment.Engagement)
		}
		if assignment.HasZeroHourContract {
			return fmt.Errorf("assignment already has a zero-hour contract")
		}

		username := ""
		if assignment.User != nil {
			username = assignment.User.Username
		}

		metadata, _ := json.Marshal(map[string]interface{}{
			"assignment_id": assignmentID,
			"position":      assignment.Position,
			"engagement":    assignment.Engagement,
		})
		doc = model.Document{
			Type:      model.DocZeroHourContract,
			MissionID: &assignment.MissionID,
			UserID:    &assignment.UserID,
			Title:     fmt.Sprintf("Zero-hour contract - %s", username),
			Metadata:  string(metadata),
			CreatedBy: actor,
		}
		if createErr := s.documentRepo.Create(txCtx, &doc); createErr != nil {
			return fmt.Errorf("failed to create contract document: %w", createErr)
		}

		assignment.HasZeroHourContract = true
		if saveErr := s.assignmentRepo.Update(txCtx, assignment); saveErr != nil {
			return fmt.Errorf("failed to flag assignment: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"assignment_id": assignmentID,
			"document_id":   doc.ID.String(),
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionGenerateContract,
			EntityID:   doc.ID.String(),
			EntityName: username,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	return toDocumentResponse(doc), nil
}

// --- Helpers ---

func toAssignmentResponse(a model.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                  a.ID.String(),
		MissionID:           a.MissionID.String(),
		UserID:              a.UserID.String(),
		Position:            a.Position,
		Engagement:          a.Engagement,
		DayRate:             a.DayRate.StringFixed(2),
		Currency:            a.Currency,
		StartDate:           a.StartDate.Format("2006-01-02"),
		EndDate:             a.EndDate.Format("2006-01-02"),
		DurationDays:        workflow.DurationDays(a.StartDate, a.EndDate),
		TotalCost:           workflow.AssignmentCost(a.DayRate, a.StartDate, a.EndDate).StringFixed(2),
		HasZeroHourContract: a.HasZeroHourContract,
	}
	if a.User != nil {
		resp.Username = a.User.Username
	}
	return resp
}
