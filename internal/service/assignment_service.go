package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/gradehub/gradehub-api/internal/assignments"
	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/observability"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrInvalidRubric indicates the fetched criteria file is malformed; the
// existing rubric is left untouched when this is returned.
var ErrInvalidRubric = errors.New("invalid criteria file")

// ErrReviewLimitReached indicates the submission already has as many
// reviews as the assignment allows.
var ErrReviewLimitReached = errors.New("all reviews already created")

// criteriaFile is the per-assignment rubric file in the tests repository.
const criteriaFile = "criteria.json"

// criteriaSchema is validated against before a rubric import may replace an
// existing rubric; a malformed file must never destroy one.
var criteriaSchema = jsonschema.MustCompileString(criteriaFile, `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["heading", "criteria"],
		"properties": {
			"heading": {"type": "string", "minLength": 1},
			"comment": {"type": "string"},
			"criteria": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["description"],
					"properties": {
						"description": {"type": "string", "minLength": 1},
						"points": {"type": "integer", "minimum": 0}
					}
				}
			}
		}
	}
}`)

// AssignmentService exposes assignment listing, synchronization from the
// tests repository, rubric import, and review use cases.
type AssignmentService interface {
	List(ctx context.Context, courseID uint) ([]dto.AssignmentResponse, error)
	Sync(ctx context.Context, courseID uint, actor Actor) ([]dto.AssignmentResponse, error)
	LoadRubric(ctx context.Context, courseID, assignmentID uint, actor Actor) ([]dto.BenchmarkResponse, error)
	CreateBenchmark(ctx context.Context, payload dto.BenchmarkCreateRequest) (dto.BenchmarkResponse, error)
	UpdateBenchmark(ctx context.Context, id uint, payload dto.BenchmarkUpdateRequest) error
	DeleteBenchmark(ctx context.Context, id uint) error
	CreateCriterion(ctx context.Context, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error)
	UpdateCriterion(ctx context.Context, id uint, payload dto.CriterionUpdateRequest) error
	DeleteCriterion(ctx context.Context, id uint) error
	CreateReview(ctx context.Context, payload dto.ReviewCreateRequest, actor Actor) (dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, payload dto.ReviewUpdateRequest) error
}

type assignmentService struct {
	repo        repository.AssignmentRepository
	rubrics     repository.RubricRepository
	submissions repository.SubmissionRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	scms        *scm.Manager
	validator   *validator.Validate
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
	// fetch is swappable so tests can feed descriptor sets without a
	// remote clone
	fetch func(ctx context.Context, sc scm.SCM, course models.Course) ([]models.Assignment, error)
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(
	repo repository.AssignmentRepository,
	rubrics repository.RubricRepository,
	submissions repository.SubmissionRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	scms *scm.Manager,
	validate *validator.Validate,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		repo:        repo,
		rubrics:     rubrics,
		submissions: submissions,
		courses:     courses,
		users:       users,
		scms:        scms,
		validator:   validate,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
		fetch:       assignments.Fetch,
	}
}

// List returns the course's assignments with rubrics. Deadlines persisted in
// the legacy shape are normalized on the way out; the stored rows stay as
// they are.
func (s *assignmentService) List(ctx context.Context, courseID uint) ([]dto.AssignmentResponse, error) {
	cacheKey := fmt.Sprintf("assignments:course:%d", courseID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response []dto.AssignmentResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("course_id", courseID).Msg("assignment list cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read assignment cache")
		}
	}

	stored, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range stored {
		stored[i].Deadline = assignments.FixDeadline(stored[i].Deadline)
	}

	response := dto.NewAssignmentResponseSlice(stored)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store assignment cache")
			}
		}
	}
	return response, nil
}

// Sync fetches the descriptor tree of the course's tests repository and
// reconciles it into storage. Assignments that vanished remotely are kept:
// deleting them would destroy submission history.
func (s *assignmentService) Sync(ctx context.Context, courseID uint, actor Actor) ([]dto.AssignmentResponse, error) {
	tracer := otel.Tracer("github.com/gradehub/gradehub-api/internal/service/assignment")
	ctx, span := tracer.Start(ctx, "assignments.sync")
	span.SetAttributes(attribute.Int64("course_id", int64(courseID)))
	defer span.End()

	teacher, err := isCourseTeacher(ctx, s.users, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !teacher {
		span.SetStatus(codes.Error, "permission_denied")
		return nil, ErrPermissionDenied
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	sc, err := s.scms.Client(course.Provider)
	if err != nil {
		return nil, err
	}

	fetched, err := s.fetch(ctx, sc, course)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch_failed")
		observability.AssignmentSyncs().WithLabelValues("fetch_error").Inc()
		return nil, fmt.Errorf("failed to fetch assignments for course %s: %w", course.Code, err)
	}
	span.SetAttributes(attribute.Int("assignments.fetched", len(fetched)))

	if err := s.repo.UpsertAll(ctx, fetched); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert_failed")
		observability.AssignmentSyncs().WithLabelValues("store_error").Inc()
		return nil, err
	}
	observability.AssignmentSyncs().WithLabelValues("success").Inc()

	s.invalidateCache(ctx, courseID)
	s.logger.Info().
		Uint("course_id", courseID).
		Int("fetched", len(fetched)).
		Msg("assignments synchronized")

	return s.List(ctx, courseID)
}

// LoadRubric fetches the assignment's criteria file and replaces the stored
// rubric with its content. The file is schema-validated before anything is
// deleted, and the replacement itself is transactional, so the operation is
// all-or-nothing.
func (s *assignmentService) LoadRubric(ctx context.Context, courseID, assignmentID uint, actor Actor) ([]dto.BenchmarkResponse, error) {
	tracer := otel.Tracer("github.com/gradehub/gradehub-api/internal/service/assignment")
	ctx, span := tracer.Start(ctx, "assignments.load_rubric")
	span.SetAttributes(
		attribute.Int64("course_id", int64(courseID)),
		attribute.Int64("assignment_id", int64(assignmentID)),
	)
	defer span.End()

	teacher, err := isCourseTeacher(ctx, s.users, actor, courseID)
	if err != nil {
		return nil, err
	}
	if !teacher {
		span.SetStatus(codes.Error, "permission_denied")
		return nil, ErrPermissionDenied
	}

	assignment, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CourseID != courseID {
		return nil, ErrAssignmentNotFound
	}

	course, err := s.courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	sc, err := s.scms.Client(course.Provider)
	if err != nil {
		return nil, err
	}

	content, err := sc.GetFileContent(ctx, &scm.FileOptions{
		Path:       path.Join(assignment.Name, criteriaFile),
		Owner:      course.DirectoryPath,
		Repository: assignments.TestsRepo,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch_failed")
		return nil, err
	}

	imported, err := decodeCriteria(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_rubric")
		return nil, err
	}

	benchmarks := make([]models.GradingBenchmark, 0, len(imported))
	for _, bm := range imported {
		benchmarks = append(benchmarks, bm.ToModel())
	}

	if err := s.rubrics.Replace(ctx, assignment.ID, benchmarks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_failed")
		return nil, err
	}

	s.invalidateCache(ctx, assignment.CourseID)
	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int("benchmarks", len(benchmarks)).
		Msg("rubric replaced")

	return dto.NewBenchmarkResponseSlice(benchmarks), nil
}

func decodeCriteria(content string) ([]dto.BenchmarkImport, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	if err := criteriaSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}

	var imported []dto.BenchmarkImport
	if err := json.Unmarshal([]byte(content), &imported); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRubric, err)
	}
	return imported, nil
}

func (s *assignmentService) CreateBenchmark(ctx context.Context, payload dto.BenchmarkCreateRequest) (dto.BenchmarkResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BenchmarkResponse{}, err
	}
	assignment, err := s.repo.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BenchmarkResponse{}, ErrAssignmentNotFound
		}
		return dto.BenchmarkResponse{}, err
	}

	benchmark := models.GradingBenchmark{
		AssignmentID: assignment.ID,
		Heading:      payload.Heading,
		Comment:      payload.Comment,
	}
	if err := s.rubrics.CreateBenchmark(ctx, &benchmark); err != nil {
		return dto.BenchmarkResponse{}, err
	}

	s.invalidateCache(ctx, assignment.CourseID)
	return dto.NewBenchmarkResponse(benchmark), nil
}

func (s *assignmentService) UpdateBenchmark(ctx context.Context, id uint, payload dto.BenchmarkUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	err := s.rubrics.UpdateBenchmark(ctx, &models.GradingBenchmark{
		ID:      id,
		Heading: payload.Heading,
		Comment: payload.Comment,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

func (s *assignmentService) DeleteBenchmark(ctx context.Context, id uint) error {
	err := s.rubrics.DeleteBenchmark(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

func (s *assignmentService) CreateCriterion(ctx context.Context, payload dto.CriterionCreateRequest) (dto.CriterionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CriterionResponse{}, err
	}
	criterion := models.GradingCriterion{
		BenchmarkID: payload.BenchmarkID,
		Description: payload.Description,
		Points:      payload.Points,
	}
	if err := s.rubrics.CreateCriterion(ctx, &criterion); err != nil {
		return dto.CriterionResponse{}, err
	}
	return dto.CriterionResponse{
		ID:          criterion.ID,
		BenchmarkID: criterion.BenchmarkID,
		Description: criterion.Description,
		Points:      criterion.Points,
	}, nil
}

func (s *assignmentService) UpdateCriterion(ctx context.Context, id uint, payload dto.CriterionUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	err := s.rubrics.UpdateCriterion(ctx, &models.GradingCriterion{
		ID:          id,
		Description: payload.Description,
		Points:      payload.Points,
		Comment:     payload.Comment,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

func (s *assignmentService) DeleteCriterion(ctx context.Context, id uint) error {
	err := s.rubrics.DeleteCriterion(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAssignmentNotFound
	}
	return err
}

// CreateReview adds a manual review, capped at the assignment's configured
// reviewer count.
func (s *assignmentService) CreateReview(ctx context.Context, payload dto.ReviewCreateRequest, actor Actor) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReviewResponse{}, ErrSubmissionNotFound
		}
		return dto.ReviewResponse{}, err
	}

	assignment, err := s.repo.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		return dto.ReviewResponse{}, err
	}
	if len(submission.Reviews) >= int(assignment.Reviewers) {
		return dto.ReviewResponse{}, fmt.Errorf("%w: submission %d has %d of %d reviews",
			ErrReviewLimitReached, submission.ID, len(submission.Reviews), assignment.Reviewers)
	}

	review := models.Review{
		SubmissionID: submission.ID,
		ReviewerID:   actor.ID,
		Feedback:     payload.Feedback,
		Score:        payload.Score,
		Edited:       s.now(),
	}
	if err := s.submissions.CreateReview(ctx, &review); err != nil {
		return dto.ReviewResponse{}, err
	}
	return dto.NewReviewResponse(review), nil
}

func (s *assignmentService) UpdateReview(ctx context.Context, payload dto.ReviewUpdateRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}
	err := s.submissions.UpdateReview(ctx, &models.Review{
		ID:       payload.ID,
		Feedback: payload.Feedback,
		Score:    payload.Score,
		Ready:    payload.Ready,
		Edited:   s.now(),
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubmissionNotFound
	}
	return err
}

func (s *assignmentService) invalidateCache(ctx context.Context, courseID uint) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf("assignments:course:%d", courseID)
	if err := s.cache.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("failed to invalidate assignment cache")
	}
}
