package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateQuoteRequest struct {
	MissionID string `json:"mission_id" binding:"required"`
	ClientID  string `json:"client_id" binding:"required"`
	FeePct    string `json:"fee_pct" binding:"required"`
	Currency  string `json:"currency" binding:"required,len=3"`
}

type QuoteItemRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=FLIGHT CREW HANDLING CATERING OTHER"`
	Description string `json:"description" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreateQuoteItemsRequest struct {
	Items []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

type QuoteItemResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
}

type QuoteResponse struct {
	ID             string              `json:"id"`
	MissionID      string              `json:"mission_id"`
	ClientID       string              `json:"client_id"`
	FeePct         string              `json:"fee_pct"`
	Currency       string              `json:"currency"`
	Subtotal       string              `json:"subtotal"`
	Total          string              `json:"total"`
	ClientApproved bool                `json:"client_approved"`
	ApprovedAt     *string             `json:"approved_at"`
	ExpiresAt      string              `json:"expires_at"`
	Items          []QuoteItemResponse `json:"items,omitempty"`
	CreatedAt      string              `json:"created_at"`
}

// --- Interface ---

type QuoteService interface {
	CreateMissionQuote(ctx context.Context, userID string, req CreateQuoteRequest) (QuoteResponse, error)
	CreateMissionQuoteItems(ctx context.Context, userID, quoteID string, req CreateQuoteItemsRequest) (QuoteResponse, error)
	GetMissionQuote(ctx context.Context, missionID string) (QuoteResponse, error)
}

type quoteService struct {
	quoteRepo   repository.QuoteRepository
	missionRepo repository.MissionRepository
	clientRepo  repository.ClientRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	now         func() time.Time
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	missionRepo repository.MissionRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		missionRepo: missionRepo,
		clientRepo:  clientRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *quoteService) CreateMissionQuote(ctx context.Context, userID string, req CreateQuoteRequest) (QuoteResponse, error) {
	missionID, err := uuid.Parse(req.MissionID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid mission_id: %w", err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid client_id: %w", err)
	}
	feePct, err := decimal.NewFromString(req.FeePct)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid fee_pct: %w", err)
	}
	if feePct.IsNegative() {
		return QuoteResponse{}, fmt.Errorf("fee_pct must not be negative")
	}

	if _, err := s.missionRepo.FindByID(ctx, missionID); err != nil {
		return QuoteResponse{}, fmt.Errorf("mission not found: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return QuoteResponse{}, fmt.Errorf("client not found: %w", err)
	}

	// a mission holds at most one quote
	if _, err := s.quoteRepo.FindByMission(ctx, missionID); err == nil {
		return QuoteResponse{}, fmt.Errorf("mission already has a quote")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return QuoteResponse{}, fmt.Errorf("failed to check existing quote: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	quote := model.Quote{
		MissionID: missionID,
		ClientID:  clientID,
		FeePct:    feePct,
		Currency:  req.Currency,
		Subtotal:  decimal.Zero,
		Total:     decimal.Zero,
		ExpiresAt: s.now().Add(model.ClientApprovalTokenTTL),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.quoteRepo.Create(txCtx, &quote); createErr != nil {
			return fmt.Errorf("failed to create quote: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"mission_id": req.MissionID,
			"client_id":  req.ClientID,
			"fee_pct":    feePct.String(),
			"currency":   req.Currency,
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionCreateQuote,
			EntityID: quote.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	return toQuoteResponse(quote), nil
}

func (s *quoteService) CreateMissionQuoteItems(ctx context.Context, userID, quoteID string, req CreateQuoteItemsRequest) (QuoteResponse, error) {
	qid, err := uuid.Parse(quoteID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid quote id: %w", err)
	}

	var actorID *uuid.UUID
	if parsed, parseErr := uuid.Parse(userID); parseErr == nil {
		actorID = &parsed
	}

	var quote *model.Quote
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		quote, findErr = s.quoteRepo.FindByID(txCtx, qid)
		if findErr != nil {
			return fmt.Errorf("quote not found: %w", findErr)
		}
		if quote.ClientApproved {
			return fmt.Errorf("quote is already approved and can no longer change")
		}

		items := make([]model.QuoteItem, 0, len(req.Items))
		subtotal := quote.Subtotal
		for _, itemReq := range req.Items {
			unitPrice, parseErr := decimal.NewFromString(itemReq.UnitPrice)
			if parseErr != nil {
				return fmt.Errorf("invalid unit_price %q: %w", itemReq.UnitPrice, parseErr)
			}
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, model.QuoteItem{
				QuoteID:     qid,
				Kind:        itemReq.Kind,
				Description: itemReq.Description,
				Quantity:    itemReq.Quantity,
				UnitPrice:   unitPrice,
				Total:       lineTotal,
			})
		}

		if createErr := s.quoteRepo.CreateItems(txCtx, items); createErr != nil {
			return fmt.Errorf("failed to create quote items: %w", createErr)
		}

		// total = subtotal + management fee
		fee := subtotal.Mul(quote.FeePct).Div(decimal.NewFromInt(100))
		quote.Subtotal = subtotal
		quote.Total = subtotal.Add(fee)
		if saveErr := s.quoteRepo.Update(txCtx, quote); saveErr != nil {
			return fmt.Errorf("failed to update quote totals: %w", saveErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"quote_id": quoteID,
			"items":    len(req.Items),
			"subtotal": quote.Subtotal.StringFixed(2),
			"total":    quote.Total.StringFixed(2),
		})
		audit := &model.AuditLog{
			UserID:   actorID,
			Action:   model.ActionCreateQuoteItems,
			EntityID: quote.ID.String(),
			Details:  string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return QuoteResponse{}, err
	}

	reloaded, err := s.quoteRepo.FindByIDWithItems(ctx, qid)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("failed to reload quote: %w", err)
	}
	return toQuoteResponse(*reloaded), nil
}

func (s *quoteService) GetMissionQuote(ctx context.Context, missionID string) (QuoteResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("invalid mission id: %w", err)
	}
	quote, err := s.quoteRepo.FindByMission(ctx, mid)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("quote not found: %w", err)
	}
	full, err := s.quoteRepo.FindByIDWithItems(ctx, quote.ID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("failed to load quote items: %w", err)
	}
	return toQuoteResponse(*full), nil
}

// --- Helpers ---

func toQuoteResponse(q model.Quote) QuoteResponse {
	resp := QuoteResponse{
		ID:             q.ID.String(),
		MissionID:      q.MissionID.String(),
		ClientID:       q.ClientID.String(),
		FeePct:         q.FeePct.String(),
		Currency:       q.Currency,
		Subtotal:       q.Subtotal.StringFixed(2),
		Total:          q.Total.StringFixed(2),
		ClientApproved: q.ClientApproved,
		ExpiresAt:      q.ExpiresAt.Format(time.RFC3339),
		CreatedAt:      q.CreatedAt.Format(time.RFC3339),
	}
	if q.ApprovedAt != nil {
		approvedAt := q.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &approvedAt
	}
	for _, item := range q.Items {
		resp.Items = append(resp.Items, QuoteItemResponse{
			ID:          item.ID.String(),
			Kind:        item.Kind,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Total:       item.Total.StringFixed(2),
		})
	}
	return resp
}
