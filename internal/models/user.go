package models

import "time"

// User is an authenticated account, identified remotely by its SCM login.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Login     string    `gorm:"size:255;uniqueIndex;not null" json:"login"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrollment statuses. A pending enrollment must be accepted by a teacher
// before the user counts as a course member.
const (
	EnrollmentPending  = "pending"
	EnrollmentRejected = "rejected"
	EnrollmentStudent  = "student"
	EnrollmentTeacher  = "teacher"
)

// Enrollment ties a user to a course with a role.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"user,omitempty"`
}

// IsTeacher reports whether the enrollment grants teacher rights.
func (e Enrollment) IsTeacher() bool {
	return e.Status == EnrollmentTeacher
}

// IsMember reports whether the enrollment is an accepted course membership.
func (e Enrollment) IsMember() bool {
	return e.Status == EnrollmentStudent || e.Status == EnrollmentTeacher
}
