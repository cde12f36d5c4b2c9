package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"
	ws "crewops/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	MissionID *string `json:"mission_id"`
	ReadAt    *string `json:"read_at"`
	CreatedAt string  `json:"created_at"`
}

// Websocket payload
type NotificationEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// --- Interface ---

type NotificationService interface {
	Broadcast(ctx context.Context, notifType, title, body string, missionID *uuid.UUID) error
	NotifyUser(ctx context.Context, userID uuid.UUID, notifType, title, body string, missionID *uuid.UUID) error
	ListForUser(ctx context.Context, userID string, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	hub              *ws.Hub
}

func NewNotificationService(notificationRepo repository.NotificationRepository, hub *ws.Hub) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, hub: hub}
}

// --- Implementation ---

func (s *notificationService) Broadcast(ctx context.Context, notifType, title, body string, missionID *uuid.UUID) error {
	return s.deliver(ctx, nil, notifType, title, body, missionID)
}

func (s *notificationService) NotifyUser(ctx context.Context, userID uuid.UUID, notifType, title, body string, missionID *uuid.UUID) error {
	return s.deliver(ctx, &userID, notifType, title, body, missionID)
}

func (s *notificationService) deliver(ctx context.Context, userID *uuid.UUID, notifType, title, body string, missionID *uuid.UUID) error {
	notification := model.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		MissionID: missionID,
	}
	if err := s.notificationRepo.Create(ctx, &notification); err != nil {
		log.Printf("failed to persist notification %s: %v", notifType, err)
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	// best-effort live delivery; the stored row is the durable copy
	if s.hub != nil {
		data := map[string]interface{}{
			"id":    notification.ID.String(),
			"title": title,
			"body":  body,
		}
		if missionID != nil {
			data["mission_id"] = missionID.String()
		}
		payload, err := json.Marshal(NotificationEvent{Event: notifType, Data: data})
		if err == nil {
			select {
			case s.hub.Broadcast <- payload:
			default:
				log.Println("notification hub busy, dropping live broadcast")
			}
		}
	}
	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID string, page, limit int) ([]NotificationResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.notificationRepo.ListForUser(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	result := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		resp := NotificationResponse{
			ID:        n.ID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
		if n.MissionID != nil {
			mid := n.MissionID.String()
			resp.MissionID = &mid
		}
		if n.ReadAt != nil {
			readAt := n.ReadAt.Format(time.RFC3339)
			resp.ReadAt = &readAt
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.notificationRepo.MarkRead(ctx, nid, uid)
}
