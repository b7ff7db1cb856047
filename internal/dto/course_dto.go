package dto

import (
	"time"

	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

// CourseCreateRequest is the payload for provisioning a new course. When
// DirectoryID is set the course is bound to an existing remote directory;
// otherwise a new directory is created under DirectoryPath.
type CourseCreateRequest struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required"`
	Year          uint   `json:"year" validate:"required,min=2000"`
	Tag           string `json:"tag"`
	Provider      string `json:"provider" validate:"required,oneof=github gitlab"`
	DirectoryID   uint64 `json:"directory_id"`
	DirectoryPath string `json:"directory_path" validate:"required_without=DirectoryID"`
}

// CourseUpdateRequest carries the mutable course fields.
type CourseUpdateRequest struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
	Year *uint   `json:"year" validate:"omitempty,min=2000"`
	Tag  *string `json:"tag"`
}

// CourseResponse is the externally visible course representation.
type CourseResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	Year          uint      `json:"year"`
	Tag           string    `json:"tag"`
	Provider      string    `json:"provider"`
	DirectoryID   uint64    `json:"directory_id"`
	DirectoryPath string    `json:"directory_path"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCourseResponse maps a course model to its response shape.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:            course.ID,
		Name:          course.Name,
		Code:          course.Code,
		Year:          course.Year,
		Tag:           course.Tag,
		Provider:      course.Provider,
		DirectoryID:   course.DirectoryID,
		DirectoryPath: course.DirectoryPath,
		CreatedAt:     course.CreatedAt,
	}
}

// NewCourseResponseSlice maps a list of courses.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}

// RepositoryResponse points a client at one of the course's provisioned
// repositories.
type RepositoryResponse struct {
	ID       uint   `json:"id"`
	RemoteID uint64 `json:"remote_id"`
	CourseID uint   `json:"course_id"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	HTMLURL  string `json:"html_url"`
	CloneURL string `json:"clone_url"`
}

// NewRepositoryResponse maps a repository mirror row.
func NewRepositoryResponse(repo models.Repository) RepositoryResponse {
	return RepositoryResponse{
		ID:       repo.ID,
		RemoteID: repo.RemoteID,
		CourseID: repo.CourseID,
		Path:     repo.Path,
		Type:     repo.Type,
		HTMLURL:  repo.HTMLURL,
		CloneURL: repo.CloneURL,
	}
}

// OrganizationResponse is a remote directory available for course creation.
type OrganizationResponse struct {
	ID     uint64 `json:"id"`
	Path   string `json:"path"`
	Avatar string `json:"avatar"`
}

// NewOrganizationResponse maps a remote directory.
func NewOrganizationResponse(directory *scm.Directory) OrganizationResponse {
	return OrganizationResponse{
		ID:     directory.ID,
		Path:   directory.Path,
		Avatar: directory.Avatar,
	}
}
