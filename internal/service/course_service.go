package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// ErrCourseAlreadyExists indicates the remote directory is already bound to
// a course, or the directory path collides remotely.
var ErrCourseAlreadyExists = errors.New("course already exists")

// ErrRepositoryNotFound indicates the course has no repository of the
// requested type.
var ErrRepositoryNotFound = errors.New("repository not found")

// baseRepositories are provisioned under every new course directory.
var baseRepositories = []string{
	models.RepoTests,
	models.RepoInfo,
	models.RepoAssignments,
	models.RepoSolutions,
}

// CourseService exposes course provisioning and lookup use cases.
type CourseService interface {
	Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error)
	ListOrganizations(ctx context.Context, provider string) ([]dto.OrganizationResponse, error)
	GetRepository(ctx context.Context, courseID uint, repoType string, actor Actor) (dto.RepositoryResponse, error)
	CreateEnrollment(ctx context.Context, payload dto.EnrollmentCreateRequest) error
	UpdateEnrollment(ctx context.Context, payload dto.EnrollmentUpdateRequest, actor Actor) error
	ListEnrollments(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error)
}

type courseService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	scms      *scm.Manager
	validator *validator.Validate
	logger    zerolog.Logger
	// orgWait bounds remote organization-listing calls, which have no
	// other deadline of their own.
	orgWait time.Duration
}

// NewCourseService builds a new course service.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, scms *scm.Manager, validate *validator.Validate, orgWait time.Duration, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		users:     users,
		scms:      scms,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
		orgWait:   orgWait,
	}
}

// Create provisions the remote side of a course and then persists the local
// record. The remote directory comes first; if anything after it fails and
// the directory was created by this call, it is deleted again so a failed
// provisioning attempt does not strand an orphaned organization.
func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	sc, err := s.scms.Client(payload.Provider)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	var directory *scm.Directory
	createdDirectory := false
	if payload.DirectoryID != 0 {
		directory, err = sc.GetDirectory(ctx, payload.DirectoryID)
	} else {
		directory, err = sc.CreateDirectory(ctx, &scm.CreateDirectoryOptions{
			Name: payload.Name,
			Path: slugify(payload.DirectoryPath),
		})
		createdDirectory = err == nil
	}
	if err != nil {
		if errors.Is(err, scm.ErrAlreadyExists) {
			return dto.CourseResponse{}, fmt.Errorf("%w: directory %s", ErrCourseAlreadyExists, payload.DirectoryPath)
		}
		return dto.CourseResponse{}, err
	}

	if _, err := s.courses.GetByDirectory(ctx, directory.ID); err == nil {
		return dto.CourseResponse{}, fmt.Errorf("%w: directory %s already bound", ErrCourseAlreadyExists, directory.Path)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CourseResponse{}, err
	}

	mirrors, err := s.provisionBaseRepositories(ctx, sc, directory)
	if err != nil {
		s.compensateDirectory(ctx, sc, directory, createdDirectory)
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Name:            payload.Name,
		Code:            payload.Code,
		Year:            payload.Year,
		Tag:             payload.Tag,
		Provider:        payload.Provider,
		DirectoryID:     directory.ID,
		DirectoryPath:   directory.Path,
		CourseCreatorID: actor.ID,
	}

	if err := s.courses.Create(ctx, &course, mirrors); err != nil {
		s.compensateDirectory(ctx, sc, directory, createdDirectory)
		return dto.CourseResponse{}, err
	}

	// the creator teaches the course they created
	enrollment := models.Enrollment{UserID: actor.ID, CourseID: course.ID, Status: models.EnrollmentTeacher}
	if err := s.users.CreateEnrollment(ctx, &enrollment); err != nil {
		s.logger.Error().Err(err).Uint("course_id", course.ID).Msg("failed to enroll course creator as teacher")
	}

	s.logger.Info().
		Uint("course_id", course.ID).
		Uint64("directory_id", directory.ID).
		Str("provider", payload.Provider).
		Msg("course provisioned")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) provisionBaseRepositories(ctx context.Context, sc scm.SCM, directory *scm.Directory) ([]models.Repository, error) {
	mirrors := make([]models.Repository, 0, len(baseRepositories))
	for _, repoType := range baseRepositories {
		repo, err := sc.CreateRepository(ctx, &scm.CreateRepositoryOptions{
			Directory: directory,
			Path:      repoType,
			Private:   repoType == models.RepoSolutions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s repository: %w", repoType, err)
		}
		mirrors = append(mirrors, models.Repository{
			RemoteID:    repo.ID,
			DirectoryID: directory.ID,
			Path:        repo.Path,
			Type:        repoType,
			HTMLURL:     repo.WebURL,
			CloneURL:    repo.HTTPURL,
		})
	}
	return mirrors, nil
}

// compensateDirectory rolls back a directory created earlier in a failed
// provisioning sequence. Best effort: a second failure is logged, not
// returned, so the original cause reaches the caller.
func (s *courseService) compensateDirectory(ctx context.Context, sc scm.SCM, directory *scm.Directory, created bool) {
	if !created {
		return
	}
	if err := sc.DeleteDirectory(ctx, directory.ID); err != nil {
		s.logger.Error().Err(err).
			Uint64("directory_id", directory.ID).
			Str("path", directory.Path).
			Msg("failed to clean up directory after provisioning failure; manual removal required")
		return
	}
	s.logger.Info().Uint64("directory_id", directory.ID).Msg("rolled back directory after provisioning failure")
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

// GetRepository resolves one of the course's provisioned repositories by
// type. The tests and solutions repositories carry grading material and
// are restricted to teachers; the rest is visible to every course member.
func (s *courseService) GetRepository(ctx context.Context, courseID uint, repoType string, actor Actor) (dto.RepositoryResponse, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RepositoryResponse{}, ErrCourseNotFound
		}
		return dto.RepositoryResponse{}, err
	}

	switch repoType {
	case models.RepoTests, models.RepoSolutions:
		teacher, err := isCourseTeacher(ctx, s.users, actor, courseID)
		if err != nil {
			return dto.RepositoryResponse{}, err
		}
		if !teacher {
			return dto.RepositoryResponse{}, ErrPermissionDenied
		}
	case models.RepoInfo, models.RepoAssignments:
		member, err := isCourseMember(ctx, s.users, actor, courseID)
		if err != nil {
			return dto.RepositoryResponse{}, err
		}
		if !member {
			return dto.RepositoryResponse{}, ErrPermissionDenied
		}
	default:
		return dto.RepositoryResponse{}, ErrRepositoryNotFound
	}

	repo, err := s.courses.GetRepository(ctx, courseID, repoType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RepositoryResponse{}, ErrRepositoryNotFound
		}
		return dto.RepositoryResponse{}, err
	}
	return dto.NewRepositoryResponse(repo), nil
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCourseResponseSlice(courses), nil
}

func (s *courseService) Update(ctx context.Context, id uint, payload dto.CourseUpdateRequest, actor Actor) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, id)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	if !teacher {
		return dto.CourseResponse{}, ErrPermissionDenied
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if payload.Name != nil {
		course.Name = *payload.Name
	}
	if payload.Code != nil {
		course.Code = *payload.Code
	}
	if payload.Year != nil {
		course.Year = *payload.Year
	}
	if payload.Tag != nil {
		course.Tag = *payload.Tag
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course updated")
	return dto.NewCourseResponse(course), nil
}

// ListOrganizations returns the remote directories the configured principal
// can see that are not yet bound to a course. The provider call is bounded
// by the configured wait so a stalled provider cannot hang the request.
func (s *courseService) ListOrganizations(ctx context.Context, provider string) ([]dto.OrganizationResponse, error) {
	sc, err := s.scms.Client(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.orgWait)
	defer cancel()

	directories, err := sc.ListDirectories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list directories: %w", err)
	}

	available := make([]dto.OrganizationResponse, 0, len(directories))
	for _, directory := range directories {
		_, err := s.courses.GetByDirectory(ctx, directory.ID)
		switch {
		case err == nil:
			continue // already bound to a course
		case errors.Is(err, gorm.ErrRecordNotFound):
			available = append(available, dto.NewOrganizationResponse(directory))
		default:
			return nil, err
		}
	}
	return available, nil
}

func (s *courseService) CreateEnrollment(ctx context.Context, payload dto.EnrollmentCreateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	if _, err := s.courses.GetByID(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	enrollment := models.Enrollment{
		UserID:   payload.UserID,
		CourseID: payload.CourseID,
		Status:   models.EnrollmentPending,
	}
	if err := s.users.CreateEnrollment(ctx, &enrollment); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", payload.UserID).Uint("course_id", payload.CourseID).Msg("enrollment requested")
	return nil
}

func (s *courseService) UpdateEnrollment(ctx context.Context, payload dto.EnrollmentUpdateRequest, actor Actor) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	teacher, err := isCourseTeacher(ctx, s.users, actor, payload.CourseID)
	if err != nil {
		return err
	}
	if !teacher {
		return ErrPermissionDenied
	}

	if err := s.users.UpdateEnrollmentStatus(ctx, payload.UserID, payload.CourseID, payload.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info().
		Uint("user_id", payload.UserID).
		Uint("course_id", payload.CourseID).
		Str("status", payload.Status).
		Msg("enrollment updated")
	return nil
}

func (s *courseService) ListEnrollments(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.users.ListEnrollmentsByCourse(ctx, courseID, nil)
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

// slugify lowercases a path and replaces anything a provider would reject.
func slugify(path string) string {
	slug := strings.ToLower(strings.TrimSpace(path))
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, slug)
	return strings.Trim(slug, "-")
}
