package dto

import (
	"time"

	"github.com/gradehub/gradehub-api/internal/models"
)

// SubmissionResponse is the externally visible submission representation.
type SubmissionResponse struct {
	ID           uint             `json:"id"`
	AssignmentID uint             `json:"assignment_id"`
	UserID       uint             `json:"user_id,omitempty"`
	GroupID      *uint            `json:"group_id,omitempty"`
	Score        uint             `json:"score"`
	Approved     bool             `json:"approved"`
	CommitHash   string           `json:"commit_hash,omitempty"`
	Reviews      []ReviewResponse `json:"reviews,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ReviewResponse is the externally visible review representation.
type ReviewResponse struct {
	ID           uint      `json:"id"`
	SubmissionID uint      `json:"submission_id"`
	ReviewerID   uint      `json:"reviewer_id"`
	Feedback     string    `json:"feedback,omitempty"`
	Score        uint      `json:"score"`
	Ready        bool      `json:"ready"`
	Edited       time.Time `json:"edited"`
}

// NewSubmissionResponse maps a submission model to its response shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	reviews := make([]ReviewResponse, 0, len(submission.Reviews))
	for _, review := range submission.Reviews {
		reviews = append(reviews, NewReviewResponse(review))
	}
	return SubmissionResponse{
		ID:           submission.ID,
		AssignmentID: submission.AssignmentID,
		UserID:       submission.UserID,
		GroupID:      submission.GroupID,
		Score:        submission.Score,
		Approved:     submission.Approved,
		CommitHash:   submission.CommitHash,
		Reviews:      reviews,
		CreatedAt:    submission.CreatedAt,
	}
}

// NewSubmissionResponseSlice maps a list of submissions.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// NewReviewResponse maps a review model to its response shape.
func NewReviewResponse(review models.Review) ReviewResponse {
	return ReviewResponse{
		ID:           review.ID,
		SubmissionID: review.SubmissionID,
		ReviewerID:   review.ReviewerID,
		Feedback:     review.Feedback,
		Score:        review.Score,
		Ready:        review.Ready,
		Edited:       review.Edited,
	}
}
