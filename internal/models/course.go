package models

import "time"

// Course is a provisioned course bound to exactly one remote SCM directory.
// The directory and its base repositories are created remotely before the
// course row exists, so a persisted course always has a usable remote side.
type Course struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Code            string    `gorm:"size:64;not null" json:"code"`
	Year            uint      `gorm:"not null" json:"year"`
	Tag             string    `gorm:"size:64" json:"tag"`
	Provider        string    `gorm:"size:32;not null" json:"provider"`
	DirectoryID     uint64    `gorm:"not null;uniqueIndex" json:"directory_id"`
	DirectoryPath   string    `gorm:"size:255;not null" json:"directory_path"`
	CourseCreatorID uint      `gorm:"not null" json:"course_creator_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
