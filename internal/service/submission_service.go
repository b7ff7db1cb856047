package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/repository"
)

// SubmissionService exposes submission lookup and approval use cases.
type SubmissionService interface {
	ListForAssignment(ctx context.Context, courseID, assignmentID uint, actor Actor) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
	Approve(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	groups      repository.GroupRepository
	users       repository.UserRepository
	logger      zerolog.Logger
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	assignments repository.AssignmentRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		groups:      groups,
		users:       users,
		logger:      logger.With().Str("component", "submission_service").Logger(),
	}
}

// ListForAssignment returns the assignment's submissions. Teachers see all
// of them; students see only their own, including their group's.
func (s *submissionService) ListForAssignment(ctx context.Context, courseID, assignmentID uint, actor Actor) ([]dto.SubmissionResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CourseID != courseID {
		return nil, ErrAssignmentNotFound
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, courseID)
	if err != nil {
		return nil, err
	}

	filter := repository.SubmissionFilter{AssignmentID: &assignment.ID}
	if !teacher {
		member, err := isCourseMember(ctx, s.users, actor, courseID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrPermissionDenied
		}
		if assignment.IsGroupLab {
			group, err := s.groups.GetByUserAndCourse(ctx, actor.ID, courseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return []dto.SubmissionResponse{}, nil
				}
				return nil, err
			}
			filter.GroupID = &group.ID
		} else {
			userID := actor.ID
			filter.UserID = &userID
		}
	}

	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Get returns a single submission. Allowed for its owner, the members of
// its group, and course teachers.
func (s *submissionService) Get(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	allowed := submission.UserID == actor.ID
	if !allowed && submission.GroupID != nil {
		group, err := s.groups.GetByID(ctx, *submission.GroupID)
		if err == nil && group.ContainsUser(actor.ID) {
			allowed = true
		}
	}
	if !allowed {
		teacher, err := isCourseTeacher(ctx, s.users, actor, assignment.CourseID)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		allowed = teacher
	}
	if !allowed {
		return dto.SubmissionResponse{}, ErrPermissionDenied
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Approve marks a submission as accepted. Teachers only.
func (s *submissionService) Approve(ctx context.Context, id uint, actor Actor) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, assignment.CourseID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !teacher {
		return dto.SubmissionResponse{}, ErrPermissionDenied
	}

	submission.Approved = true
	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("approved_by", actor.ID).
		Msg("submission approved")
	return dto.NewSubmissionResponse(submission), nil
}
