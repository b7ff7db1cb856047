package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// UserRepository defines persistence operations for users and enrollments.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetEnrollment(ctx context.Context, userID, courseID uint) (models.Enrollment, error)
	ListEnrollmentsByCourse(ctx context.Context, courseID uint, statuses []string) ([]models.Enrollment, error)
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	UpdateEnrollmentStatus(ctx context.Context, userID, courseID uint, status string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("login ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"avatar_url": user.AvatarURL,
			"is_admin":   user.IsAdmin,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) GetEnrollment(ctx context.Context, userID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *userRepository) ListEnrollmentsByCourse(ctx context.Context, courseID uint, statuses []string) ([]models.Enrollment, error) {
	query := r.db.WithContext(ctx).Preload("User").Where("course_id = ?", courseID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var enrollments []models.Enrollment
	if err := query.Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *userRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *userRepository) UpdateEnrollmentStatus(ctx context.Context, userID, courseID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
