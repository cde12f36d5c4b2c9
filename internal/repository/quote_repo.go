package repository

import (
	"context"

	"crewops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	FindByMission(ctx context.Context, missionID uuid.UUID) (*model.Quote, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	CreateItems(ctx context.Context, items []model.QuoteItem) error
	Update(ctx context.Context, quote *model.Quote) error
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByMission(ctx context.Context, missionID uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).First(&quote, "mission_id = ?", missionID).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Client").First(&quote, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) CreateItems(ctx context.Context, items []model.QuoteItem) error {
	return GetDB(ctx, r.db).Create(&items).Error
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Save(quote).Error
}
