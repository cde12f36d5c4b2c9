package service

import (
	"context"
	"fmt"
	"time"

	"crewops/internal/model"
	"crewops/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateClientRequest struct {
	Name           string `json:"name" binding:"required"`
	CompanyName    string `json:"company_name"`
	VATNumber      string `json:"vat_number"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
}

type UpdateClientRequest struct {
	Name           string `json:"name"`
	CompanyName    string `json:"company_name"`
	VATNumber      string `json:"vat_number"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	IsActive       *bool  `json:"is_active"`
}

type ClientResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CompanyName    string `json:"company_name"`
	VATNumber      string `json:"vat_number"`
	ContactPerson  string `json:"contact_person"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BillingAddress string `json:"billing_address"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	client := model.Client{
		Name:           req.Name,
		CompanyName:    req.CompanyName,
		VATNumber:      req.VATNumber,
		ContactPerson:  req.ContactPerson,
		Email:          req.Email,
		Phone:          req.Phone,
		BillingAddress: req.BillingAddress,
		IsActive:       true,
	}

	if err := s.repo.Create(ctx, &client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	return toClientResponse(client), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", err)
	}

	client, err := s.repo.FindByID(ctx, cid)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}

	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	clients, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		result = append(result, toClientResponse(c))
	}
	return result, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid client id: %w", err)
	}

	client, err := s.repo.FindByID(ctx, cid)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}

	if req.Name != "" {
		client.Name = req.Name
	}
	if req.CompanyName != "" {
		client.CompanyName = req.CompanyName
	}
	if req.VATNumber != "" {
		client.VATNumber = req.VATNumber
	}
	if req.ContactPerson != "" {
		client.ContactPerson = req.ContactPerson
	}
	if req.Email != "" {
		client.Email = req.Email
	}
	if req.Phone != "" {
		client.Phone = req.Phone
	}
	if req.BillingAddress != "" {
		client.BillingAddress = req.BillingAddress
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}

	return toClientResponse(*client), nil
}

// --- Helpers ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		CompanyName:    c.CompanyName,
		VATNumber:      c.VATNumber,
		ContactPerson:  c.ContactPerson,
		Email:          c.Email,
		Phone:          c.Phone,
		BillingAddress: c.BillingAddress,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}
