package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// RubricRepository defines persistence operations for grading benchmarks and
// criteria.
type RubricRepository interface {
	CreateBenchmark(ctx context.Context, benchmark *models.GradingBenchmark) error
	UpdateBenchmark(ctx context.Context, benchmark *models.GradingBenchmark) error
	DeleteBenchmark(ctx context.Context, id uint) error
	CreateCriterion(ctx context.Context, criterion *models.GradingCriterion) error
	UpdateCriterion(ctx context.Context, criterion *models.GradingCriterion) error
	DeleteCriterion(ctx context.Context, id uint) error
	// Replace swaps the assignment's entire rubric in one transaction.
	// When benchmarks already exist they are deleted together with their
	// criteria and every review of the assignment's submissions (their
	// scores reference criteria that are about to disappear); a first
	// import inserts the new set without touching reviews. Partial
	// replacement is never valid.
	Replace(ctx context.Context, assignmentID uint, benchmarks []models.GradingBenchmark) error
}

type rubricRepository struct {
	db *gorm.DB
}

// NewRubricRepository instantiates a GORM-backed repository.
func NewRubricRepository(db *gorm.DB) RubricRepository {
	return &rubricRepository{db: db}
}

func (r *rubricRepository) CreateBenchmark(ctx context.Context, benchmark *models.GradingBenchmark) error {
	return r.db.WithContext(ctx).Create(benchmark).Error
}

func (r *rubricRepository) UpdateBenchmark(ctx context.Context, benchmark *models.GradingBenchmark) error {
	result := r.db.WithContext(ctx).Model(&models.GradingBenchmark{}).
		Where("id = ?", benchmark.ID).
		Updates(map[string]interface{}{
			"heading": benchmark.Heading,
			"comment": benchmark.Comment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rubricRepository) DeleteBenchmark(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("benchmark_id = ?", id).Delete(&models.GradingCriterion{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GradingBenchmark{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *rubricRepository) CreateCriterion(ctx context.Context, criterion *models.GradingCriterion) error {
	return r.db.WithContext(ctx).Create(criterion).Error
}

func (r *rubricRepository) UpdateCriterion(ctx context.Context, criterion *models.GradingCriterion) error {
	result := r.db.WithContext(ctx).Model(&models.GradingCriterion{}).
		Where("id = ?", criterion.ID).
		Updates(map[string]interface{}{
			"description": criterion.Description,
			"points":      criterion.Points,
			"comment":     criterion.Comment,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rubricRepository) DeleteCriterion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.GradingCriterion{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *rubricRepository) Replace(ctx context.Context, assignmentID uint, benchmarks []models.GradingBenchmark) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldBenchmarkIDs []uint
		if err := tx.Model(&models.GradingBenchmark{}).
			Where("assignment_id = ?", assignmentID).
			Pluck("id", &oldBenchmarkIDs).Error; err != nil {
			return err
		}

		// Reviews are only destroyed when an actual rubric is being
		// replaced; a first import must leave existing reviews alone.
		if len(oldBenchmarkIDs) > 0 {
			if err := tx.Where("benchmark_id IN ?", oldBenchmarkIDs).
				Delete(&models.GradingCriterion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("assignment_id = ?", assignmentID).
				Delete(&models.GradingBenchmark{}).Error; err != nil {
				return err
			}

			var submissionIDs []uint
			if err := tx.Model(&models.Submission{}).
				Where("assignment_id = ?", assignmentID).
				Pluck("id", &submissionIDs).Error; err != nil {
				return err
			}
			if len(submissionIDs) > 0 {
				if err := tx.Where("submission_id IN ?", submissionIDs).
					Delete(&models.Review{}).Error; err != nil {
					return err
				}
			}
		}

		// benchmark rows must exist before their criteria can reference a
		// generated benchmark ID
		for i := range benchmarks {
			benchmarks[i].ID = 0
			benchmarks[i].AssignmentID = assignmentID
			criteria := benchmarks[i].Criteria
			benchmarks[i].Criteria = nil

			if err := tx.Create(&benchmarks[i]).Error; err != nil {
				return err
			}
			for j := range criteria {
				criteria[j].ID = 0
				criteria[j].BenchmarkID = benchmarks[i].ID
				if err := tx.Create(&criteria[j]).Error; err != nil {
					return err
				}
			}
			benchmarks[i].Criteria = criteria
		}
		return nil
	})
}
