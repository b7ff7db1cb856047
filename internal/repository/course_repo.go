package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// CourseRepository defines persistence operations for courses and their
// provisioned repository mirrors.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetByDirectory(ctx context.Context, directoryID uint64) (models.Course, error)
	Create(ctx context.Context, course *models.Course, repositories []models.Repository) error
	Update(ctx context.Context, course *models.Course) error
	AddRepository(ctx context.Context, repo *models.Repository) error
	GetRepository(ctx context.Context, courseID uint, repoType string) (models.Repository, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("year DESC, code ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetByDirectory(ctx context.Context, directoryID uint64) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("directory_id = ?", directoryID).First(&course).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

// Create persists the course together with the mirrors of its provisioned
// repositories in one transaction, so a crash cannot leave a course without
// its repository references.
func (r *courseRepository) Create(ctx context.Context, course *models.Course, repositories []models.Repository) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			return err
		}
		for i := range repositories {
			repositories[i].CourseID = course.ID
			if err := tx.Create(&repositories[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	result := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).Updates(map[string]interface{}{
		"name": course.Name,
		"code": course.Code,
		"year": course.Year,
		"tag":  course.Tag,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) AddRepository(ctx context.Context, repo *models.Repository) error {
	return r.db.WithContext(ctx).Create(repo).Error
}

func (r *courseRepository) GetRepository(ctx context.Context, courseID uint, repoType string) (models.Repository, error) {
	var repo models.Repository
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND type = ?", courseID, repoType).
		First(&repo).Error
	if err != nil {
		return models.Repository{}, err
	}
	return repo, nil
}
