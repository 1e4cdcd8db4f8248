package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/service"
	"github.com/luoxin-dev/survey-portal-api/internal/utils"
)

// AIHandler exposes the AI-assisted review tooling. Unavailability of the
// upstream model is reported inside the payload, never as an HTTP error.
type AIHandler struct {
	service service.FormatCheckService
	logger  zerolog.Logger
}

// NewAIHandler builds an AI handler instance.
func NewAIHandler(service service.FormatCheckService, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		service: service,
		logger:  logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/format-check", h.formatCheck)
	router.Post("/teaching-insight", h.teachingInsight)
}

func (h *AIHandler) formatCheck(c *fiber.Ctx) error {
	var payload dto.FormatCheckRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := h.service.CheckFormat(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "format check completed", report)
}

func (h *AIHandler) teachingInsight(c *fiber.Ctx) error {
	var payload dto.TeachingInsightRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	insight, err := h.service.TeachingInsight(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "teaching insight generated", insight)
}

func (h *AIHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
