package dto

import (
	"time"

	"github.com/gradehub/gradehub-api/internal/models"
)

// GroupCreateRequest is the payload for forming a new student group.
type GroupCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
	UserIDs  []uint `json:"user_ids" validate:"required,min=1,dive,required"`
}

// GroupUpdateRequest carries the mutable group fields; a nil UserIDs leaves
// membership unchanged.
type GroupUpdateRequest struct {
	Name    *string `json:"name"`
	UserIDs []uint  `json:"user_ids" validate:"omitempty,min=1,dive,required"`
}

// GroupResponse is the externally visible group representation.
type GroupResponse struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	CourseID  uint           `json:"course_id"`
	Status    string         `json:"status"`
	Users     []UserResponse `json:"users,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewGroupResponse maps a group model to its response shape.
func NewGroupResponse(group models.Group) GroupResponse {
	return GroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CourseID:  group.CourseID,
		Status:    group.Status,
		Users:     NewUserResponseSlice(group.Users),
		CreatedAt: group.CreatedAt,
	}
}

// NewGroupResponseSlice maps a list of groups.
func NewGroupResponseSlice(groups []models.Group) []GroupResponse {
	responses := make([]GroupResponse, 0, len(groups))
	for _, group := range groups {
		responses = append(responses, NewGroupResponse(group))
	}
	return responses
}
