package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/internal/utils"
)

// AssignmentHandler wires assignment, rubric, and review HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints under a course group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/:courseID/assignments", h.list)
	router.Post("/:courseID/assignments/sync", h.sync)
	router.Post("/:courseID/assignments/:id/rubric", h.loadRubric)
}

// RegisterRubric attaches standalone rubric and review endpoints.
func (h *AssignmentHandler) RegisterRubric(router fiber.Router) {
	router.Post("/benchmarks", h.createBenchmark)
	router.Patch("/benchmarks/:id", h.updateBenchmark)
	router.Delete("/benchmarks/:id", h.deleteBenchmark)
	router.Post("/criteria", h.createCriterion)
	router.Patch("/criteria/:id", h.updateCriterion)
	router.Delete("/criteria/:id", h.deleteCriterion)
	router.Post("/reviews", h.createReview)
	router.Patch("/reviews", h.updateReview)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignments, err := h.service.List(c.UserContext(), courseID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) sync(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignments, err := h.service.Sync(c.UserContext(), courseID, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "assignments synchronized", assignments)
}

func (h *AssignmentHandler) loadRubric(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	benchmarks, err := h.service.LoadRubric(c.UserContext(), courseID, assignmentID, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "rubric imported", benchmarks)
}

func (h *AssignmentHandler) createBenchmark(c *fiber.Ctx) error {
	var payload dto.BenchmarkCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	benchmark, err := h.service.CreateBenchmark(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "benchmark created", benchmark)
}

func (h *AssignmentHandler) updateBenchmark(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BenchmarkUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateBenchmark(c.UserContext(), id, payload); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "benchmark updated", nil)
}

func (h *AssignmentHandler) deleteBenchmark(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteBenchmark(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "benchmark deleted", nil)
}

func (h *AssignmentHandler) createCriterion(c *fiber.Ctx) error {
	var payload dto.CriterionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	criterion, err := h.service.CreateCriterion(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "criterion created", criterion)
}

func (h *AssignmentHandler) updateCriterion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CriterionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateCriterion(c.UserContext(), id, payload); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "criterion updated", nil)
}

func (h *AssignmentHandler) deleteCriterion(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCriterion(c.UserContext(), id); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "criterion deleted", nil)
}

func (h *AssignmentHandler) createReview(c *fiber.Ctx) error {
	var payload dto.ReviewCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.CreateReview(c.UserContext(), payload, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "review created", review)
}

func (h *AssignmentHandler) updateReview(c *fiber.Ctx) error {
	var payload dto.ReviewUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateReview(c.UserContext(), payload); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "review updated", nil)
}
