package dto

import "github.com/gradehub/gradehub-api/internal/models"

// AssignmentResponse is the externally visible assignment representation.
type AssignmentResponse struct {
	ID          uint                `json:"id"`
	CourseID    uint                `json:"course_id"`
	Name        string              `json:"name"`
	Language    string              `json:"language"`
	Deadline    string              `json:"deadline"`
	AutoApprove bool                `json:"auto_approve"`
	Order       uint                `json:"order"`
	IsGroupLab  bool                `json:"is_group_lab"`
	Reviewers   uint                `json:"reviewers"`
	Benchmarks  []BenchmarkResponse `json:"benchmarks,omitempty"`
}

// NewAssignmentResponse maps an assignment model to its response shape.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:          assignment.ID,
		CourseID:    assignment.CourseID,
		Name:        assignment.Name,
		Language:    assignment.Language,
		Deadline:    assignment.Deadline,
		AutoApprove: assignment.AutoApprove,
		Order:       assignment.Order,
		IsGroupLab:  assignment.IsGroupLab,
		Reviewers:   assignment.Reviewers,
		Benchmarks:  NewBenchmarkResponseSlice(assignment.GradingBenchmarks),
	}
}

// NewAssignmentResponseSlice maps a list of assignments.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}
