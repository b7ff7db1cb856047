package models

import "time"

// Submission is a graded delivery for an assignment, made either by a single
// student or by a group when the assignment is a group lab.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index" json:"assignment_id"`
	UserID       uint      `gorm:"index" json:"user_id"`
	GroupID      *uint     `gorm:"index" json:"group_id,omitempty"`
	Score        uint      `json:"score"`
	Approved     bool      `json:"approved"`
	CommitHash   string    `gorm:"size:64" json:"commit_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Reviews      []Review  `gorm:"foreignKey:SubmissionID" json:"reviews,omitempty"`
}

// Review is a manual grading record scored against the rubric that was
// current at review time. Reviews are destroyed when that rubric is
// replaced, since their scores reference criteria that no longer exist.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	ReviewerID   uint      `gorm:"not null" json:"reviewer_id"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	Score        uint      `json:"score"`
	Ready        bool      `json:"ready"`
	Edited       time.Time `json:"edited"`
}
