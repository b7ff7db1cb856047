package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterCourseScoped attaches the per-assignment submission listing.
func (h *SubmissionHandler) RegisterCourseScoped(router fiber.Router) {
	router.Get("/:courseID/assignments/:id/submissions", h.listForAssignment)
}

// Register attaches standalone submission endpoints.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Post("/:id/approve", h.approve)
}

func (h *SubmissionHandler) listForAssignment(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListForAssignment(c.UserContext(), courseID, assignmentID, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Approve(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission approved", submission)
}
