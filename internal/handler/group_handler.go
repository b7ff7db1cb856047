package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/dto"
	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/internal/utils"
)

// GroupHandler wires student group HTTP routes.
type GroupHandler struct {
	service service.GroupService
	logger  zerolog.Logger
}

// NewGroupHandler constructs the handler.
func NewGroupHandler(service service.GroupService, logger zerolog.Logger) *GroupHandler {
	return &GroupHandler{
		service: service,
		logger:  logger.With().Str("component", "group_handler").Logger(),
	}
}

// Register attaches group endpoints to the router group.
func (h *GroupHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/approve", h.approve)
	router.Delete("/:id", h.delete)
}

// RegisterCourseScoped attaches the per-course group listing endpoint.
func (h *GroupHandler) RegisterCourseScoped(router fiber.Router) {
	router.Get("/:courseID/groups", h.listByCourse)
}

func (h *GroupHandler) create(c *fiber.Ctx) error {
	var payload dto.GroupCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Create(c.UserContext(), payload, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *GroupHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	group, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "group retrieved", group)
}

func (h *GroupHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	groups, err := h.service.ListByCourse(c.UserContext(), courseID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *GroupHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GroupUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.service.Update(c.UserContext(), id, payload, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "group updated", group)
}

func (h *GroupHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	group, err := h.service.Approve(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "group approved", group)
}

func (h *GroupHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id, actorFrom(c)); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "group deleted", nil)
}
