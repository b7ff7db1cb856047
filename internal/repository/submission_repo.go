package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// SubmissionFilter narrows submission lookups.
type SubmissionFilter struct {
	AssignmentID *uint
	UserID       *uint
	GroupID      *uint
}

// SubmissionRepository defines persistence operations for submissions and
// their reviews.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	Update(ctx context.Context, submission *models.Submission) error
	CreateReview(ctx context.Context, review *models.Review) error
	UpdateReview(ctx context.Context, review *models.Review) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Preload("Reviews")
	if filter.AssignmentID != nil {
		query = query.Where("assignment_id = ?", *filter.AssignmentID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Reviews").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]interface{}{
			"score":    submission.Score,
			"approved": submission.Approved,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *submissionRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	result := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"feedback": review.Feedback,
			"score":    review.Score,
			"ready":    review.Ready,
			"edited":   review.Edited,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
