package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/internal/utils"
)

// CourseHandler wires course and enrollment HTTP routes.
type CourseHandler struct {
	service service.CourseService
	logger  zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service service.CourseService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service: service,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Get("/:id/repositories/:type", h.getRepository)
	router.Get("/:id/enrollments", h.listEnrollments)
	router.Post("/:id/enrollments", h.createEnrollment)
	router.Patch("/:id/enrollments", h.updateEnrollment)
}

// RegisterOrganizations attaches the provider directory listing endpoint.
func (h *CourseHandler) RegisterOrganizations(router fiber.Router) {
	router.Get("/:provider/organizations", h.listOrganizations)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	courses, err := h.service.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Create(c.UserContext(), payload, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) getRepository(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	repo, err := h.service.GetRepository(c.UserContext(), id, c.Params("type"), actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "repository retrieved", repo)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.Update(c.UserContext(), id, payload, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) listEnrollments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollments, err := h.service.ListEnrollments(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *CourseHandler) createEnrollment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EnrollmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.CourseID = id
	if payload.UserID == 0 {
		payload.UserID = actorFrom(c).ID
	}

	if err := h.service.CreateEnrollment(c.UserContext(), payload); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrollment requested", nil)
}

func (h *CourseHandler) updateEnrollment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EnrollmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.CourseID = id

	if err := h.service.UpdateEnrollment(c.UserContext(), payload, actorFrom(c)); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "enrollment updated", nil)
}

func (h *CourseHandler) listOrganizations(c *fiber.Ctx) error {
	provider := c.Params("provider")

	organizations, err := h.service.ListOrganizations(c.UserContext(), provider)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "organizations retrieved", organizations)
}
