package handler

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/service"
	"github.com/luoxin-dev/survey-portal-api/internal/utils"
)

// AssignmentHandler manages the assignment registry endpoints.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler builds an assignment handler instance.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. Publishing is
// restricted by role middleware at the router level.
func (h *AssignmentHandler) Register(router fiber.Router, publishGuard fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	if publishGuard != nil {
		router.Post("", publishGuard, h.publish)
	} else {
		router.Post("", h.publish)
	}
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) publish(c *fiber.Ctx) error {
	payload := dto.AssignmentPublishRequest{
		Title:        c.FormValue("title"),
		Type:         c.FormValue("type"),
		Deadline:     c.FormValue("deadline"),
		Instructions: c.FormValue("instructions"),
	}

	// The attachment is optional; teachers may publish text-only briefs.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	assignment, err := h.service.Publish(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment published", assignment)
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	var parseError *time.ParseError
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrDeadlinePast):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.As(err, &parseError):
		return utils.SendError(c, fiber.StatusBadRequest, "deadline must be RFC3339")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
