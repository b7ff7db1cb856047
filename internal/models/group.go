package models

import "time"

// Group statuses. A pending group has no remote repository yet; approval
// provisions the repository and activates the group.
const (
	GroupPending  = "pending"
	GroupApproved = "approved"
)

// Group is a set of students working together on group labs.
type Group struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_group_course_name" json:"name"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_group_course_name" json:"course_id"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Users     []User    `gorm:"many2many:group_members" json:"users,omitempty"`
}

// ContainsUser reports whether the given user is a member of the group.
func (g Group) ContainsUser(userID uint) bool {
	for _, u := range g.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
