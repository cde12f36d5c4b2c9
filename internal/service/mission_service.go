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
)

// --- DTOs ---

type CreateMissionRequest struct {
	ClientID         string `json:"client_id" binding:"required"`
	Aircraft         string `json:"aircraft"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	StartDate        string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate          string `json:"end_date" binding:"required"`
	Notes            string `json:"notes"`
}

type MissionResponse struct {
	ID               string `json:"id"`
	Reference        string `json:"reference"`
	Status           string `json:"status"`
	ValidationStatus string `json:"validation_status"`
	Aircraft         string `json:"aircraft"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	ClientID         string `json:"client_id"`
	ClientName       string `json:"client_name"`
	Notes            string `json:"notes"`
	CreatedAt        string `json:"created_at"`
}

type MissionFilter struct {
	Status string
	Page   int
	Limit  int
}

// --- Interface ---

type MissionService interface {
	CreateMission(ctx context.Context, userID string, req CreateMissionRequest) (MissionResponse, error)
	GetMission(ctx context.Context, id string) (MissionResponse, error)
	ListMissions(ctx context.Context, filter MissionFilter) ([]MissionResponse, int64, error)
	FinanceApprove(ctx context.Context, id, userID string) (MissionResponse, error)
	OwnerApprove(ctx context.Context, id, userID string) (MissionResponse, error)
	OwnerReject(ctx context.Context, id, userID, reason string) (MissionResponse, error)
	StartExecution(ctx context.Context, id, userID string) (MissionResponse, error)
}

type missionService struct {
	missionRepo repository.MissionRepository
	clientRepo  repository.ClientRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	now         func() time.Time
}

func NewMissionService(
	missionRepo repository.MissionRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) MissionService {
	return &missionService{
		missionRepo: missionRepo,
		clientRepo:  clientRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *missionService) CreateMission(ctx context.Context, userID string, req CreateMissionRequest) (MissionResponse, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return MissionResponse{}, fmt.Errorf("client not found: %w", err)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("invalid start_date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("invalid end_date: %w", err)
	}
	if endDate.Before(startDate) {
		return MissionResponse{}, fmt.Errorf("end_date must not be before start_date")
	}

	var requesterID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		requesterID = &parsed
	}

	var mission model.Mission
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		reference, refErr := s.generateReference(txCtx)
		if refErr != nil {
			return fmt.Errorf("failed to generate mission reference: %w", refErr)
		}

		mission = model.Mission{
			Reference:        reference,
			Status:           workflow.StatusPendingFinanceReview,
			ValidationStatus: workflow.ValidationPending,
			Aircraft:         req.Aircraft,
			DepartureAirport: req.DepartureAirport,
			ArrivalAirport:   req.ArrivalAirport,
			StartDate:        startDate,
			EndDate:          endDate,
			ClientID:         clientID,
			RequestedBy:      requesterID,
			Notes:            req.Notes,
		}
		if createErr := s.missionRepo.Create(txCtx, &mission); createErr != nil {
			return fmt.Errorf("failed to create mission: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"reference": reference,
			"client_id": req.ClientID,
			"aircraft":  req.Aircraft,
		})
		audit := &model.AuditLog{
			UserID:     requesterID,
			Action:     model.ActionCreateMission,
			EntityID:   mission.ID.String(),
			EntityName: reference,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return MissionResponse{}, err
	}

	reloaded, err := s.missionRepo.FindByIDWithClient(ctx, mission.ID)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("failed to reload mission: %w", err)
	}
	return toMissionResponse(*reloaded), nil
}

func (s *missionService) GetMission(ctx context.Context, id string) (MissionResponse, error) {
	missionID, err := uuid.Parse(id)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}
	mission, err := s.missionRepo.FindByIDWithClient(ctx, missionID)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("mission not found: %w", err)
	}
	return toMissionResponse(*mission), nil
}

func (s *missionService) ListMissions(ctx context.Context, filter MissionFilter) ([]MissionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !workflow.Known(workflow.Status(filter.Status)) {
		return nil, 0, fmt.Errorf("unknown status filter: %s", filter.Status)
	}

	missions, total, err := s.missionRepo.List(ctx, repository.MissionFilter{
		Status: workflow.Status(filter.Status),
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch missions: %w", err)
	}

	result := make([]MissionResponse, 0, len(missions))
	for _, m := range missions {
		result = append(result, toMissionResponse(m))
	}
	return result, total, nil
}

func (s *missionService) FinanceApprove(ctx context.Context, id, userID string) (MissionResponse, error) {
	return s.transition(ctx, id, userID, workflow.EventFinanceApprove, model.ActionFinanceReview, "")
}

func (s *missionService) OwnerApprove(ctx context.Context, id, userID string) (MissionResponse, error) {
	return s.transition(ctx, id, userID, workflow.EventOwnerApprove, model.ActionOwnerApprove, "")
}

func (s *missionService) OwnerReject(ctx context.Context, id, userID, reason string) (MissionResponse, error) {
	return s.transition(ctx, id, userID, workflow.EventOwnerReject, model.ActionOwnerReject, reason)
}

func (s *missionService) StartExecution(ctx context.Context, id, userID string) (MissionResponse, error) {
	return s.transition(ctx, id, userID, workflow.EventStartExecution, model.ActionStartMission, "")
}

// transition loads the mission, applies the workflow event through the
// transition table, then persists and audits the result in one transaction
// so a guard rejection leaves nothing behind.
func (s *missionService) transition(ctx context.Context, id, userID string, event workflow.Event, action, reason string) (MissionResponse, error) {
	missionID, err := uuid.Parse(id)
	if err != nil {
		return MissionResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	var mission *model.Mission
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		mission, findErr = s.missionRepo.FindByID(txCtx, missionID)
		if findErr != nil {
			return fmt.Errorf("mission not found: %w", findErr)
		}

		next, transErr := workflow.Transition(mission.Status, event)
		if transErr != nil {
			return transErr
		}
		mission.Status = next

		if saveErr := s.missionRepo.Update(txCtx, mission); saveErr != nil {
			return fmt.Errorf("failed to update mission: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"event":  string(event),
			"status": string(next),
			"reason": reason,
		})
		audit := &model.AuditLog{
			UserID:     actorID,
			Action:     action,
			EntityID:   mission.ID.String(),
			EntityName: mission.Reference,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return MissionResponse{}, err
	}

	return toMissionResponse(*mission), nil
}

func (s *missionService) generateReference(ctx context.Context) (string, error) {
	today := s.now().Format("20060102")
	prefix := "MSN-" + today + "-"

	count, err := s.missionRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// --- Helpers ---

func toMissionResponse(m model.Mission) MissionResponse {
	resp := MissionResponse{
		ID:               m.ID.String(),
		Reference:        m.Reference,
		Status:           string(m.Status),
		ValidationStatus: string(m.ValidationStatus),
		Aircraft:         m.Aircraft,
		DepartureAirport: m.DepartureAirport,
		ArrivalAirport:   m.ArrivalAirport,
		StartDate:        m.StartDate.Format("2006-01-02"),
		EndDate:          m.EndDate.Format("2006-01-02"),
		ClientID:         m.ClientID.String(),
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
	}
	if m.Client != nil {
		resp.ClientName = m.Client.Name
	}
	return resp
}
