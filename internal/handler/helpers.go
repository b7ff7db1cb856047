package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/internal/utils"
	"github.com/gradehub/gradehub-api/pkg/scm"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// actorFrom reads the authenticated identity bound by the JWT middleware.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("user_id").(uint); ok {
		actor.ID = id
	}
	if admin, ok := c.Locals("is_admin").(bool); ok {
		actor.IsAdmin = admin
	}
	return actor
}

// sendServiceError maps service errors onto HTTP statuses. Unrecognized
// errors are logged with their cause and reported as a generic failure so
// internals never leak to clients.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrRepositoryNotFound),
		errors.Is(err, scm.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrPermissionDenied):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")

	case errors.Is(err, service.ErrCourseAlreadyExists),
		errors.Is(err, service.ErrUserAlreadyGrouped),
		errors.Is(err, service.ErrGroupAlreadyApproved),
		errors.Is(err, scm.ErrAlreadyExists):
		return utils.SendError(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidRubric),
		errors.Is(err, service.ErrUserNotEnrolled),
		errors.Is(err, service.ErrReviewLimitReached),
		errors.Is(err, scm.ErrUnknownProvider),
		errors.Is(err, scm.ErrNotSupported),
		isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return utils.SendError(c, fiber.StatusGatewayTimeout, "upstream provider timed out")
	}

	logger.Error().Err(err).
		Str("route", routePath(c)).
		Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "server error; check server logs for details")
}

func isValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

func routePath(c *fiber.Ctx) string {
	if c.Route() != nil && c.Route().Path != "" {
		return c.Route().Path
	}
	return c.Path()
}
