package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

// ErrGroupNotFound indicates the requested group does not exist.
var ErrGroupNotFound = errors.New("group not found")

// ErrUserNotEnrolled indicates a proposed member is not an active member of
// the course.
var ErrUserNotEnrolled = errors.New("user not enrolled in course")

// ErrUserAlreadyGrouped indicates a proposed member already belongs to
// another group in the same course.
var ErrUserAlreadyGrouped = errors.New("user already in a group")

// ErrGroupAlreadyApproved indicates the group has a provisioned repository
// and cannot be approved again.
var ErrGroupAlreadyApproved = errors.New("group already approved")

// GroupService exposes group formation and approval use cases. Groups are
// created pending; a teacher's approval provisions the remote group
// repository and activates the group.
type GroupService interface {
	Create(ctx context.Context, payload dto.GroupCreateRequest, actor Actor) (dto.GroupResponse, error)
	Get(ctx context.Context, id uint) (dto.GroupResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.GroupResponse, error)
	Update(ctx context.Context, id uint, payload dto.GroupUpdateRequest, actor Actor) (dto.GroupResponse, error)
	Approve(ctx context.Context, id uint, actor Actor) (dto.GroupResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type groupService struct {
	groups    repository.GroupRepository
	courses   repository.CourseRepository
	users     repository.UserRepository
	scms      *scm.Manager
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGroupService builds a new group service.
func NewGroupService(
	groups repository.GroupRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	scms *scm.Manager,
	validate *validator.Validate,
	logger zerolog.Logger,
) GroupService {
	return &groupService{
		groups:    groups,
		courses:   courses,
		users:     users,
		scms:      scms,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
	}
}

// Create forms a pending group. Every proposed member must be an active
// course member and must not already belong to another group in the course.
func (s *groupService) Create(ctx context.Context, payload dto.GroupCreateRequest, actor Actor) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrCourseNotFound
		}
		return dto.GroupResponse{}, err
	}

	// a student may only form groups they are part of themselves
	if !actor.IsAdmin && !containsID(payload.UserIDs, actor.ID) {
		teacher, err := isCourseTeacher(ctx, s.users, actor, payload.CourseID)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		if !teacher {
			return dto.GroupResponse{}, ErrPermissionDenied
		}
	}

	members, err := s.resolveMembers(ctx, payload.CourseID, payload.UserIDs, 0)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	group := models.Group{
		Name:     payload.Name,
		CourseID: payload.CourseID,
		Status:   models.GroupPending,
		Users:    members,
	}
	if err := s.groups.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().
		Uint("group_id", group.ID).
		Uint("course_id", group.CourseID).
		Int("members", len(members)).
		Msg("group created")
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Get(ctx context.Context, id uint) (dto.GroupResponse, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) ListByCourse(ctx context.Context, courseID uint) ([]dto.GroupResponse, error) {
	groups, err := s.groups.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return dto.NewGroupResponseSlice(groups), nil
}

// Update renames a group or replaces its membership. Teachers only.
func (s *groupService) Update(ctx context.Context, id uint, payload dto.GroupUpdateRequest, actor Actor) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, group.CourseID)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	if !teacher {
		return dto.GroupResponse{}, ErrPermissionDenied
	}

	if payload.Name != nil {
		group.Name = *payload.Name
	}
	if payload.UserIDs != nil {
		members, err := s.resolveMembers(ctx, group.CourseID, payload.UserIDs, group.ID)
		if err != nil {
			return dto.GroupResponse{}, err
		}
		group.Users = members
	}

	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}
	return dto.NewGroupResponse(group), nil
}

// Approve provisions the group's remote repository and activates the group.
// The remote side is written first; the group stays pending if provisioning
// fails, so approval can simply be retried.
func (s *groupService) Approve(ctx context.Context, id uint, actor Actor) (dto.GroupResponse, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupResponse{}, ErrGroupNotFound
		}
		return dto.GroupResponse{}, err
	}
	if group.Status == models.GroupApproved {
		return dto.GroupResponse{}, ErrGroupAlreadyApproved
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, group.CourseID)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	if !teacher {
		return dto.GroupResponse{}, ErrPermissionDenied
	}

	course, err := s.courses.GetByID(ctx, group.CourseID)
	if err != nil {
		return dto.GroupResponse{}, err
	}
	sc, err := s.scms.Client(course.Provider)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	repo, err := sc.CreateRepository(ctx, &scm.CreateRepositoryOptions{
		Directory: &scm.Directory{ID: course.DirectoryID, Path: course.DirectoryPath},
		Path:      slugify(group.Name),
		Private:   true,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Uint("group_id", group.ID).
			Str("provider", course.Provider).
			Msg("failed to provision group repository")
		return dto.GroupResponse{}, fmt.Errorf("failed to provision group repository: %w", err)
	}

	groupID := group.ID
	mirror := models.Repository{
		RemoteID:    repo.ID,
		DirectoryID: repo.DirectoryID,
		CourseID:    course.ID,
		GroupID:     &groupID,
		Path:        repo.Path,
		Type:        models.RepoGroup,
		HTMLURL:     repo.WebURL,
		CloneURL:    repo.HTTPURL,
	}
	if err := s.courses.AddRepository(ctx, &mirror); err != nil {
		// remote repository exists but the mirror row does not; surface
		// the error and let a retried approval hit ErrAlreadyExists
		return dto.GroupResponse{}, err
	}

	group.Status = models.GroupApproved
	if err := s.groups.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().
		Uint("group_id", group.ID).
		Uint64("remote_id", repo.ID).
		Msg("group approved")
	return dto.NewGroupResponse(group), nil
}

func (s *groupService) Delete(ctx context.Context, id uint, actor Actor) error {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, group.CourseID)
	if err != nil {
		return err
	}
	if !teacher {
		return ErrPermissionDenied
	}

	return s.groups.Delete(ctx, id)
}

// resolveMembers validates the proposed membership and loads the user rows.
// When updating an existing group, excludeGroupID exempts its current
// members from the already-grouped check.
func (s *groupService) resolveMembers(ctx context.Context, courseID uint, userIDs []uint, excludeGroupID uint) ([]models.User, error) {
	members := make([]models.User, 0, len(userIDs))
	for _, userID := range userIDs {
		enrollment, err := s.users.GetEnrollment(ctx, userID, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: user %d", ErrUserNotEnrolled, userID)
			}
			return nil, err
		}
		if !enrollment.IsMember() {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotEnrolled, userID)
		}

		existing, err := s.groups.GetByUserAndCourse(ctx, userID, courseID)
		if err == nil && existing.ID != excludeGroupID {
			return nil, fmt.Errorf("%w: user %d in group %d", ErrUserAlreadyGrouped, userID, existing.ID)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		members = append(members, user)
	}
	return members, nil
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
