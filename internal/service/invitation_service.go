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
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin ops finance crew"`
}

type AcceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type InvitationResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type InvitationService interface {
	CreateInvitation(ctx context.Context, actorID string, req CreateInvitationRequest) (InvitationResponse, error)
	AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error)
	RevokeInvitation(ctx context.Context, actorID, id string) error
	ListInvitations(ctx context.Context, status string, page, limit int) ([]InvitationResponse, int64, error)
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	now            func() time.Time
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		now:            time.Now,
	}
}

// --- Implementation ---

func (s *invitationService) CreateInvitation(ctx context.Context, actorID string, req CreateInvitationRequest) (InvitationResponse, error) {
	if !model.ValidRole(req.Role) {
		return InvitationResponse{}, errors.New("invalid role: must be admin, ops, finance, or crew")
	}
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return InvitationResponse{}, errors.New("a user with this email already exists")
	}

	actor, err := uuid.Parse(actorID)
	if err != nil {
		return InvitationResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	token, err := newOpaqueToken()
	if err != nil {
		return InvitationResponse{}, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	invitation := model.Invitation{
		Email:     req.Email,
		Token:     token,
		Role:      req.Role,
		Status:    model.InvitationPending,
		InvitedBy: &actor,
		ExpiresAt: s.now().Add(model.InvitationTTL),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.invitationRepo.Create(txCtx, &invitation); createErr != nil {
			return fmt.Errorf("failed to create invitation: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"email": req.Email,
			"role":  req.Role,
		})
		audit := &model.AuditLog{
			UserID:   &actor,
			Action:   model.ActionCreateInvitation,
			EntityID: invitation.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return InvitationResponse{}, err
	}

	// Token is returned once at creation so the caller can send the link.
	resp := toInvitationResponse(invitation)
	resp.Token = invitation.Token
	return resp, nil
}

// AcceptInvitation redeems a pending invitation into a user account. The
// invitation is single use and the email and role come from the invitation,
// never from the request.
func (s *invitationService) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*UserResponse, error) {
	var user *model.User
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invitation, findErr := s.invitationRepo.FindByToken(txCtx, req.Token)
		if findErr != nil {
			return errors.New("invalid invitation token")
		}
		if !invitation.IsUsable(s.now()) {
			if invitation.IsExpired(s.now()) {
				return errors.New("invitation has expired")
			}
			return fmt.Errorf("invitation is already %s", invitation.Status)
		}

		if _, userErr := s.userRepo.GetByUsername(txCtx, req.Username); userErr == nil {
			return errors.New("username already exists")
		}

		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return errors.New("failed to hash password")
		}

		validation := workflow.ValidationValidated
		if invitation.Role == model.RoleCrew {
			validation = workflow.ValidationPending
		}

		user = &model.User{
			Username:         req.Username,
			Email:            invitation.Email,
			Phone:            req.Phone,
			Password:         string(hashedPassword),
			Role:             invitation.Role,
			ValidationStatus: validation,
		}
		if createErr := s.userRepo.Create(txCtx, user); createErr != nil {
			return fmt.Errorf("failed to create user: %w", createErr)
		}

		now := s.now()
		invitation.Status = model.InvitationAccepted
		invitation.AcceptedAt = &now
		if updErr := s.invitationRepo.Update(txCtx, invitation); updErr != nil {
			return fmt.Errorf("failed to update invitation: %w", updErr)
		}

		audit := &model.AuditLog{
			UserID:     &user.ID,
			Action:     model.ActionAcceptInvitation,
			EntityID:   invitation.ID.String(),
			EntityName: invitation.Email,
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *invitationService) RevokeInvitation(ctx context.Context, actorID, id string) error {
	iid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invitation id: %w", err)
	}

	invitation, err := s.invitationRepo.FindByID(ctx, iid)
	if err != nil {
		return errors.New("invitation not found")
	}
	if invitation.Status != model.InvitationPending {
		return fmt.Errorf("invitation is already %s", invitation.Status)
	}

	invitation.Status = model.InvitationRevoked
	return s.invitationRepo.Update(ctx, invitation)
}

func (s *invitationService) ListInvitations(ctx context.Context, status string, page, limit int) ([]InvitationResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	invitations, total, err := s.invitationRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invitations: %w", err)
	}

	result := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		result = append(result, toInvitationResponse(inv))
	}
	return result, total, nil
}

// --- Helpers ---

func toInvitationResponse(inv model.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.Status,
		ExpiresAt: inv.ExpiresAt.Format(time.RFC3339),
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
	}
}
