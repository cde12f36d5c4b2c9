package repository

import (
	"context"

	"crewops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *model.Invitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error)
	FindByToken(ctx context.Context, token string) (*model.Invitation, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Invitation, int64, error)
	Update(ctx context.Context, invitation *model.Invitation) error
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	return GetDB(ctx, r.db).Create(invitation).Error
}

func (r *invitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := GetDB(ctx, r.db).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) FindByToken(ctx context.Context, token string) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := GetDB(ctx, r.db).First(&invitation, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *invitationRepository) List(ctx context.Context, status string, page, limit int) ([]model.Invitation, int64, error) {
	var invitations []model.Invitation
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invitation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Inviter")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at desc").Offset(offset).Limit(limit).Find(&invitations).Error; err != nil {
		return nil, 0, err
	}

	return invitations, total, nil
}

func (r *invitationRepository) Update(ctx context.Context, invitation *model.Invitation) error {
	return GetDB(ctx, r.db).Save(invitation).Error
}
