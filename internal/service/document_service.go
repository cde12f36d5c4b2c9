package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateDocumentRequest struct {
	Type        string `json:"type" binding:"required,oneof=zero_hour_contract assignment_letter service_order final_invoice"`
	MissionID   string `json:"mission_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title" binding:"required"`
	StoragePath string `json:"storage_path"`
	Metadata    string `json:"metadata"` // JSON blob, stored as-is
}

type DocumentResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	MissionID   *string `json:"mission_id"`
	UserID      *string `json:"user_id"`
	Title       string  `json:"title"`
	StoragePath string  `json:"storage_path"`
	Metadata    string  `json:"metadata"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type DocumentService interface {
	CreateDocument(ctx context.Context, actorID string, req CreateDocumentRequest) (DocumentResponse, error)
	ListMissionDocuments(ctx context.Context, missionID string) ([]DocumentResponse, error)
}

type documentService struct {
	documentRepo repository.DocumentRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewDocumentService(
	documentRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *documentService) CreateDocument(ctx context.Context, actorID string, req CreateDocumentRequest) (DocumentResponse, error) {
	var missionID, userID *uuid.UUID
	if req.MissionID != "" {
		parsed, err := uuid.Parse(req.MissionID)
		if err != nil {
			return DocumentResponse{}, fmt.Errorf("invalid mission_id: %w", err)
		}
		missionID = &parsed
	}
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			return DocumentResponse{}, fmt.Errorf("invalid user_id: %w", err)
		}
		userID = &parsed
	}
	if missionID == nil && userID == nil {
		return DocumentResponse{}, fmt.Errorf("document needs at least a mission or a user reference")
	}
	if req.Metadata != "" && !json.Valid([]byte(req.Metadata)) {
		return DocumentResponse{}, fmt.Errorf("metadata must be valid JSON")
	}

	var actor *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		actor = &parsed
	}

	doc := model.Document{
		Type:        req.Type,
		MissionID:   missionID,
		UserID:      userID,
		Title:       req.Title,
		StoragePath: req.StoragePath,
		Metadata:    req.Metadata,
		CreatedBy:   actor,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.documentRepo.Create(txCtx, &doc); createErr != nil {
			return fmt.Errorf("failed to create document: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"type":  req.Type,
			"title": req.Title,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateDocument,
			EntityID:   doc.ID.String(),
			EntityName: req.Title,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	return toDocumentResponse(doc), nil
}

func (s *documentService) ListMissionDocuments(ctx context.Context, missionID string) ([]DocumentResponse, error) {
	mid, err := uuid.Parse(missionID)
	if err != nil {
		return nil, fmt.Errorf("invalid mission id: %w", err)
	}

	docs, err := s.documentRepo.ListByMission(ctx, mid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, toDocumentResponse(d))
	}
	return result, nil
}

// --- Helpers ---

func toDocumentResponse(d model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID.String(),
		Type:        d.Type,
		Title:       d.Title,
		StoragePath: d.StoragePath,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.MissionID != nil {
		mid := d.MissionID.String()
		resp.MissionID = &mid
	}
	if d.UserID != nil {
		uid := d.UserID.String()
		resp.UserID = &uid
	}
	return resp
}
