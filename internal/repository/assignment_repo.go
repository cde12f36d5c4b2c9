package repository

import (
	"context"
	"errors"

	"crewops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	FindByMissionAndUser(ctx context.Context, missionID, userID uuid.UUID) (*model.Assignment, error)
	ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.Assignment, error)
	Upsert(ctx context.Context, assignment *model.Assignment) error
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByMission(ctx context.Context, missionID uuid.UUID) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := GetDB(ctx, r.db).Preload("User").First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByMissionAndUser(ctx context.Context, missionID, userID uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	err := GetDB(ctx, r.db).First(&assignment, "mission_id = ? AND user_id = ?", missionID, userID).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) ListByMission(ctx context.Context, missionID uuid.UUID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := GetDB(ctx, r.db).Preload("User").Where("mission_id = ?", missionID).
		Order("start_date asc").Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Upsert inserts or updates keyed on (mission_id, user_id), matching the
// insert-or-update semantics of the crew assignment flow.
func (r *assignmentRepository) Upsert(ctx context.Context, assignment *model.Assignment) error {
	db := GetDB(ctx, r.db)

	var existing model.Assignment
	err := db.First(&existing, "mission_id = ? AND user_id = ?", assignment.MissionID, assignment.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(assignment).Error
	}
	if err != nil {
		return err
	}

	assignment.ID = existing.ID
	assignment.CreatedAt = existing.CreatedAt
	assignment.HasZeroHourContract = existing.HasZeroHourContract
	return db.Save(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *model.Assignment) error {
	return GetDB(ctx, r.db).Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Assignment{}).Error
}

func (r *assignmentRepository) CountByMission(ctx context.Context, missionID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Assignment{}).Where("mission_id = ?", missionID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
