package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/models"
)

// GroupRepository defines persistence operations for student groups.
type GroupRepository interface {
	GetByID(ctx context.Context, id uint) (models.Group, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Group, error)
	GetByUserAndCourse(ctx context.Context, userID, courseID uint) (models.Group, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id uint) error
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository instantiates a GORM-backed repository.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Preload("Users").First(&group, id).Error; err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.WithContext(ctx).
		Preload("Users").
		Where("course_id = ?", courseID).
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (models.Group, error) {
	var group models.Group
	err := r.db.WithContext(ctx).
		Preload("Users").
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? AND groups.course_id = ?", userID, courseID).
		First(&group).Error
	if err != nil {
		return models.Group{}, err
	}
	return group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// Update persists group fields and replaces the membership association.
func (r *groupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Group{}).
			Where("id = ?", group.ID).
			Updates(map[string]interface{}{
				"name":   group.Name,
				"status": group.Status,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(group).Association("Users").Replace(group.Users)
	})
}

func (r *groupRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group := models.Group{ID: id}
		if err := tx.Model(&group).Association("Users").Clear(); err != nil {
			return err
		}
		result := tx.Delete(&models.Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
