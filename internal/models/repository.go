package models

import "time"

// Repository types describe what a provisioned repository is used for.
const (
	RepoTests       = "tests"
	RepoInfo        = "info"
	RepoAssignments = "assignments"
	RepoSolutions   = "solutions"
	RepoGroup       = "group"
)

// Repository is the local mirror of a remote repository provisioned under a
// course's SCM directory. The remote side owns the canonical state; this row
// only records the reference so later operations can find it again.
type Repository struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RemoteID    uint64    `gorm:"not null" json:"remote_id"`
	DirectoryID uint64    `gorm:"not null;index" json:"directory_id"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	GroupID     *uint     `gorm:"index" json:"group_id,omitempty"`
	Path        string    `gorm:"size:255;not null" json:"path"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	HTMLURL     string    `gorm:"size:512" json:"html_url"`
	CloneURL    string    `gorm:"size:512" json:"clone_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
