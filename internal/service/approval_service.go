package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"
	"crewops/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client approval view states
const (
	ApprovalStateValid   = "valid"
	ApprovalStateExpired = "expired"
	ApprovalStateInvalid = "invalid"
)

// --- DTOs ---

type GenerateApprovalRequest struct {
	MissionID string `json:"mission_id" binding:"required"`
	QuoteID   string `json:"quote_id" binding:"required"`
	ClientID  string `json:"client_id" binding:"required"`
}

type ApprovalTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// ClientApprovalView is what the public approval page renders. Mission and
// quote details are only populated in the valid state.
type ClientApprovalView struct {
	State      string           `json:"state"` // valid, expired, invalid
	Mission    *MissionResponse `json:"mission,omitempty"`
	Quote      *QuoteResponse   `json:"quote,omitempty"`
	ClientName string           `json:"client_name,omitempty"`
	ExpiresAt  string           `json:"expires_at,omitempty"`
}

// --- Interface ---

type ApprovalService interface {
	GenerateClientApproval(ctx context.Context, userID string, req GenerateApprovalRequest) (ApprovalTokenResponse, error)
	GetClientApproval(ctx context.Context, token string) (ClientApprovalView, error)
	ClientApproveQuote(ctx context.Context, token string) error
	ClientRejectQuote(ctx context.Context, token string) error
}

type approvalService struct {
	tokenRepo     repository.TokenRepository
	quoteRepo     repository.QuoteRepository
	missionRepo   repository.MissionRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	notifications NotificationService
	now           func() time.Time
}

func NewApprovalService(
	tokenRepo repository.TokenRepository,
	quoteRepo repository.QuoteRepository,
	missionRepo repository.MissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifications NotificationService,
) ApprovalService {
	return &approvalService{
		tokenRepo:     tokenRepo,
		quoteRepo:     quoteRepo,
		missionRepo:   missionRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		notifications: notifications,
		now:           time.Now,
	}
}

// --- Implementation ---

func (s *approvalService) GenerateClientApproval(ctx context.Context, userID string, req GenerateApprovalRequest) (ApprovalTokenResponse, error) {
	missionID, err := uuid.Parse(req.MissionID)
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("invalid mission_id: %w", err)
	}
	quoteID, err := uuid.Parse(req.QuoteID)
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("invalid quote_id: %w", err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}

	mission, err := s.missionRepo.FindByID(ctx, missionID)
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("mission not found: %w", err)
	}
	if mission.Status != workflow.StatusPendingClientApproval {
		return ApprovalTokenResponse{}, fmt.Errorf("mission is %s, not awaiting client approval", mission.Status)
	}

	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("quote not found: %w", err)
	}
	if quote.MissionID != missionID {
		return ApprovalTokenResponse{}, fmt.Errorf("quote does not belong to mission")
	}
	if quote.ClientID != clientID {
		return ApprovalTokenResponse{}, fmt.Errorf("quote does not belong to client")
	}

	opaque, err := newOpaqueToken()
	if err != nil {
		return ApprovalTokenResponse{}, fmt.Errorf("failed to mint token: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	token := model.ClientApprovalToken{
		Token:     opaque,
		MissionID: missionID,
		QuoteID:   quoteID,
		ClientID:  clientID,
		ExpiresAt: s.now().Add(model.ClientApprovalTokenTTL),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.tokenRepo.Create(txCtx, &token); createErr != nil {
			return fmt.Errorf("failed to store approval token: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"mission_id": req.MissionID,
			"quote_id":   req.QuoteID,
			"client_id":  req.ClientID,
			"expires_at": token.ExpiresAt.Format(time.RFC3339),
		})
		audit := &model.AuditLog{
			UserID:     actorID,
			Action:     model.ActionGenerateClientLink,
			EntityID:   token.ID.String(),
			EntityName: mission.Reference,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return ApprovalTokenResponse{}, err
	}

	return ApprovalTokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt.Format(time.RFC3339),
	}, nil
}

func (s *approvalService) GetClientApproval(ctx context.Context, token string) (ClientApprovalView, error) {
	t, err := s.tokenRepo.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ClientApprovalView{State: ApprovalStateInvalid}, nil
	}
	if err != nil {
		return ClientApprovalView{}, fmt.Errorf("failed to load approval token: %w", err)
	}

	if t.UsedAt != nil {
		return ClientApprovalView{State: ApprovalStateInvalid}, nil
	}
	if t.IsExpired(s.now()) {
		return ClientApprovalView{State: ApprovalStateExpired}, nil
	}

	view := ClientApprovalView{
		State:     ApprovalStateValid,
		ExpiresAt: t.ExpiresAt.Format(time.RFC3339),
	}
	if t.Mission != nil {
		mission := toMissionResponse(*t.Mission)
		view.Mission = &mission
	}
	if t.Quote != nil {
		quote := toQuoteResponse(*t.Quote)
		view.Quote = &quote
	}
	if t.Client != nil {
		view.ClientName = t.Client.Name
	}
	return view, nil
}

func (s *approvalService) ClientApproveQuote(ctx context.Context, token string) error {
	return s.consumeToken(ctx, token, workflow.EventClientApprove)
}

func (s *approvalService) ClientRejectQuote(ctx context.Context, token string) error {
	return s.consumeToken(ctx, token, workflow.EventClientReject)
}

// consumeToken performs a terminal client decision in one transaction: it
// advances the mission through the transition table, flips the quote on
// approval, and burns the token. A guard rejection leaves the token usable.
func (s *approvalService) consumeToken(ctx context.Context, token string, event workflow.Event) error {
	var mission *model.Mission
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		t, findErr := s.tokenRepo.FindByToken(txCtx, token)
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("approval token is invalid")
		}
		if findErr != nil {
			return fmt.Errorf("failed to load approval token: %w", findErr)
		}
		if t.UsedAt != nil {
			return fmt.Errorf("approval token has already been used")
		}
		if t.IsExpired(s.now()) {
			return fmt.Errorf("approval token has expired")
		}

		var missionErr error
		mission, missionErr = s.missionRepo.FindByID(txCtx, t.MissionID)
		if missionErr != nil {
			return fmt.Errorf("mission not found: %w", missionErr)
		}

		next, transErr := workflow.Transition(mission.Status, event)
		if transErr != nil {
			return transErr
		}
		mission.Status = next
		if saveErr := s.missionRepo.Update(txCtx, mission); saveErr != nil {
			return fmt.Errorf("failed to update mission: %w", saveErr)
		}

		quote, quoteErr := s.quoteRepo.FindByID(txCtx, t.QuoteID)
		if quoteErr != nil {
			return fmt.Errorf("quote not found: %w", quoteErr)
		}
		if event == workflow.EventClientApprove {
			now := s.now()
			quote.ClientApproved = true
			quote.ApprovedAt = &now
			if saveErr := s.quoteRepo.Update(txCtx, quote); saveErr != nil {
				return fmt.Errorf("failed to update quote: %w", saveErr)
			}
		}

		usedAt := s.now()
		t.UsedAt = &usedAt
		if saveErr := s.tokenRepo.Update(txCtx, t); saveErr != nil {
			return fmt.Errorf("failed to consume token: %w", saveErr)
		}

		action := model.ActionClientApproveQuote
		if event == workflow.EventClientReject {
			action = model.ActionClientRejectQuote
		}
		details, _ := json.Marshal(map[string]interface{}{
			"mission_id": t.MissionID.String(),
			"quote_id":   t.QuoteID.String(),
			"event":      string(event),
		})
		audit := &model.AuditLog{
			Action:     action,
			EntityID:   t.QuoteID.String(),
			EntityName: mission.Reference,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return err
	}

	notifType := model.NotifQuoteApproved
	title := fmt.Sprintf("Quote approved for %s", mission.Reference)
	if event == workflow.EventClientReject {
		notifType = model.NotifQuoteRejected
		title = fmt.Sprintf("Quote rejected for %s", mission.Reference)
	}
	// the decision is already committed, so a failed notification is not
	// surfaced to the client
	_ = s.notifications.Broadcast(ctx, notifType, title, "", &mission.ID)
	return nil
}

// newOpaqueToken returns 32 random bytes hex-encoded.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
