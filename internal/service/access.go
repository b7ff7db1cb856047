package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/repository"
)

// ErrPermissionDenied indicates the acting user fails the operation's
// authorization predicate.
var ErrPermissionDenied = errors.New("permission denied")

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID      uint
	IsAdmin bool
}

// isCourseTeacher reports whether the actor is a teacher of the course or a
// global admin.
func isCourseTeacher(ctx context.Context, users repository.UserRepository, actor Actor, courseID uint) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	enrollment, err := users.GetEnrollment(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.IsTeacher(), nil
}

// isCourseMember reports whether the actor holds an accepted enrollment in
// the course.
func isCourseMember(ctx context.Context, users repository.UserRepository, actor Actor, courseID uint) (bool, error) {
	if actor.IsAdmin {
		return true, nil
	}
	enrollment, err := users.GetEnrollment(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.IsMember(), nil
}
