package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	// UpsertAll reconciles the parsed descriptor set into storage: existing
	// rows matched on (CourseID, Order) are updated in place so their
	// submissions keep pointing at the same assignment ID, new ones are
	// inserted, and rows absent from the incoming set are left untouched.
	UpsertAll(ctx context.Context, incoming []models.Assignment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("GradingBenchmarks.Criteria").
		Preload("GradingBenchmarks").
		Where("course_id = ?", courseID).
		Order("assignment_order ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("GradingBenchmarks.Criteria").
		Preload("GradingBenchmarks").
		First(&assignment, id).Error
	if err != nil {
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (r *assignmentRepository) UpsertAll(ctx context.Context, incoming []models.Assignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range incoming {
			assignment := incoming[i]

			var existing models.Assignment
			err := tx.Where("course_id = ? AND assignment_order = ?", assignment.CourseID, assignment.Order).
				First(&existing).Error
			switch {
			case err == nil:
				update := tx.Model(&models.Assignment{}).
					Where("id = ?", existing.ID).
					Updates(map[string]interface{}{
						"name":         assignment.Name,
						"language":     assignment.Language,
						"deadline":     assignment.Deadline,
						"auto_approve": assignment.AutoApprove,
						"is_group_lab": assignment.IsGroupLab,
					})
				if update.Error != nil {
					return update.Error
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&assignment).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}
