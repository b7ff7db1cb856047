package dto

import "github.com/gradehub/gradehub-api/internal/models"

// UserResponse is the externally visible user representation.
type UserResponse struct {
	ID        uint   `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	IsAdmin   bool   `json:"is_admin"`
}

// NewUserResponse maps a user model to its response shape.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Login:     user.Login,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		IsAdmin:   user.IsAdmin,
	}
}

// NewUserResponseSlice maps a list of users.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}

// UserUpdateRequest carries the mutable user fields.
type UserUpdateRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	AvatarURL *string `json:"avatar_url"`
	IsAdmin   *bool   `json:"is_admin"`
}

// EnrollmentCreateRequest asks to enroll a user in a course.
type EnrollmentCreateRequest struct {
	UserID   uint `json:"user_id" validate:"required"`
	CourseID uint `json:"course_id" validate:"required"`
}

// EnrollmentUpdateRequest changes an enrollment's status.
type EnrollmentUpdateRequest struct {
	UserID   uint   `json:"user_id" validate:"required"`
	CourseID uint   `json:"course_id" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=pending rejected student teacher"`
}

// EnrollmentResponse is the externally visible enrollment representation.
type EnrollmentResponse struct {
	ID       uint         `json:"id"`
	UserID   uint         `json:"user_id"`
	CourseID uint         `json:"course_id"`
	Status   string       `json:"status"`
	User     UserResponse `json:"user,omitempty"`
}

// NewEnrollmentResponse maps an enrollment model to its response shape.
func NewEnrollmentResponse(enrollment models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:       enrollment.ID,
		UserID:   enrollment.UserID,
		CourseID: enrollment.CourseID,
		Status:   enrollment.Status,
		User:     NewUserResponse(enrollment.User),
	}
}

// NewEnrollmentResponseSlice maps a list of enrollments.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}
	return responses
}
