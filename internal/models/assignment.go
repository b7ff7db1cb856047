package models

import "time"

// Assignment is a gradable lab parsed from the course tests repository.
// Order carries the assignment-local identifier declared in the descriptor
// file; (CourseID, Order) is unique so re-synchronization updates in place
// instead of duplicating rows.
//
// Deadline is stored in RFC 3339 form. Rows written before the format was
// settled may still hold the legacy descriptor form and are normalized on
// read, never rewritten.
type Assignment struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	CourseID          uint               `gorm:"not null;uniqueIndex:idx_assignment_course_order" json:"course_id"`
	Name              string             `gorm:"size:255;not null" json:"name"`
	Language          string             `gorm:"size:64;not null" json:"language"`
	Deadline          string             `gorm:"size:64;not null" json:"deadline"`
	AutoApprove       bool               `json:"auto_approve"`
	Order             uint               `gorm:"column:assignment_order;not null;uniqueIndex:idx_assignment_course_order" json:"order"`
	IsGroupLab        bool               `json:"is_group_lab"`
	Reviewers         uint               `json:"reviewers"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	GradingBenchmarks []GradingBenchmark `gorm:"foreignKey:AssignmentID" json:"grading_benchmarks,omitempty"`
	Submissions       []Submission       `json:"submissions,omitempty"`
}

// DeadlineTime parses the stored deadline. It fails for legacy-shaped rows
// that have not passed through normalization.
func (a Assignment) DeadlineTime() (time.Time, error) {
	return time.Parse(time.RFC3339, a.Deadline)
}

// IsPastDue reports whether the deadline has passed at the reference time.
// Unparseable deadlines are never considered past due.
func (a Assignment) IsPastDue(reference time.Time) bool {
	deadline, err := a.DeadlineTime()
	if err != nil {
		return false
	}
	return reference.After(deadline)
}
