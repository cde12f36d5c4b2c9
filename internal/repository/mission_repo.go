package repository

import (
	"context"

	"crewops/internal/model"
	"crewops/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MissionFilter narrows mission listings.
type MissionFilter struct {
	Status   workflow.Status
	ClientID *uuid.UUID
	Page     int
	Limit    int
}

type MissionRepository interface {
	Create(ctx context.Context, mission *model.Mission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Mission, error)
	FindByIDWithClient(ctx context.Context, id uuid.UUID) (*model.Mission, error)
	List(ctx context.Context, filter MissionFilter) ([]model.Mission, int64, error)
	Update(ctx context.Context, mission *model.Mission) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type missionRepository struct {
	db *gorm.DB
}

func NewMissionRepository(db *gorm.DB) MissionRepository {
	return &missionRepository{db: db}
}

func (r *missionRepository) Create(ctx context.Context, mission *model.Mission) error {
	return GetDB(ctx, r.db).Create(mission).Error
}

func (r *missionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Mission, error) {
	var mission model.Mission
	if err := GetDB(ctx, r.db).First(&mission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mission, nil
}

func (r *missionRepository) FindByIDWithClient(ctx context.Context, id uuid.UUID) (*model.Mission, error) {
	var mission model.Mission
	if err := GetDB(ctx, r.db).Preload("Client").Preload("Requester").First(&mission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mission, nil
}

func (r *missionRepository) List(ctx context.Context, filter MissionFilter) ([]model.Mission, int64, error) {
	var missions []model.Mission
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Mission{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := db.Preload("Client")
	if filter.Status != "" {
		fetchQuery = fetchQuery.Where("status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		fetchQuery = fetchQuery.Where("client_id = ?", *filter.ClientID)
	}
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&missions).Error; err != nil {
		return nil, 0, err
	}

	return missions, total, nil
}

func (r *missionRepository) Update(ctx context.Context, mission *model.Mission) error {
	return GetDB(ctx, r.db).Save(mission).Error
}

func (r *missionRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Mission{}).Where("reference LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
