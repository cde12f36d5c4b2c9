package repository

import (
	"context"

	"crewops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.Document, error)
	ExistsForUser(ctx context.Context, userID uuid.UUID, docType string) (bool, error)
	CountByTitlePrefix(ctx context.Context, prefix string) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := GetDB(ctx, r.db).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := GetDB(ctx, r.db).Where("mission_id = ?", missionID).Order("created_at desc").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// ExistsForUser is the zero-hour-contract existence check: presence of a
// document of the given type for the user, content never inspected.
func (r *documentRepository) ExistsForUser(ctx context.Context, userID uuid.UUID, docType string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Document{}).
		Where("user_id = ? AND type = ?", userID, docType).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *documentRepository) CountByTitlePrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Document{}).Where("title LIKE ?", prefix+"%").Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
