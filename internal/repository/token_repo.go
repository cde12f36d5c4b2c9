package repository

import (
	"context"

	"crewops/internal/model"

	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(ctx context.Context, token *model.ClientApprovalToken) error
	FindByToken(ctx context.Context, token string) (*model.ClientApprovalToken, error)
	Update(ctx context.Context, token *model.ClientApprovalToken) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.ClientApprovalToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*model.ClientApprovalToken, error) {
	var t model.ClientApprovalToken
	err := GetDB(ctx, r.db).Preload("Mission").Preload("Quote").Preload("Quote.Items").Preload("Client").
		First(&t, "token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) Update(ctx context.Context, token *model.ClientApprovalToken) error {
	return GetDB(ctx, r.db).Save(token).Error
}
