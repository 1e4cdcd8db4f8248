package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/pkg/ai"
)

// Inline messages shown when the AI collaborator cannot serve a request.
// Failures at this boundary are deliberately converted into user-facing text
// instead of errors; callers only ever see a string.
const (
	formatCheckUnavailable     = "AI 分析服务暂时不可用，请稍后再试或检查网络连接。"
	formatCheckNotConfigured   = "API Key not configured. Unable to perform AI format check."
	teachingInsightUnavailable = "Could not generate insight."
)

// FormatCheckService fronts the AI text-analysis collaborator. Reports are
// opaque text; the service imposes the call timeout the upstream lacks.
type FormatCheckService interface {
	CheckFormat(ctx context.Context, payload dto.FormatCheckRequest) (dto.FormatCheckResponse, error)
	TeachingInsight(ctx context.Context, payload dto.TeachingInsightRequest) (dto.TeachingInsightResponse, error)
}

type formatCheckService struct {
	checker   ai.FormatChecker
	validator *validator.Validate
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewFormatCheckService constructs the format check boundary. A nil checker
// means no API key was configured; requests then return the inline
// not-configured message.
func NewFormatCheckService(checker ai.FormatChecker, validate *validator.Validate, timeout time.Duration, logger zerolog.Logger) FormatCheckService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &formatCheckService{
		checker:   checker,
		validator: validate,
		timeout:   timeout,
		logger:    logger.With().Str("component", "format_check_service").Logger(),
	}
}

func (s *formatCheckService) CheckFormat(ctx context.Context, payload dto.FormatCheckRequest) (dto.FormatCheckResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FormatCheckResponse{}, err
	}

	if s.checker == nil {
		return dto.FormatCheckResponse{Report: formatCheckNotConfigured}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.checker.CheckFormat(callCtx, payload.Text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("format check failed")
		return dto.FormatCheckResponse{Report: formatCheckUnavailable}, nil
	}

	return dto.FormatCheckResponse{Report: report, Available: true}, nil
}

func (s *formatCheckService) TeachingInsight(ctx context.Context, payload dto.TeachingInsightRequest) (dto.TeachingInsightResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeachingInsightResponse{}, err
	}

	if s.checker == nil {
		return dto.TeachingInsightResponse{Insight: formatCheckNotConfigured}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	insight, err := s.checker.TeachingInsight(callCtx, payload.Topic)
	if err != nil {
		s.logger.Warn().Err(err).Msg("teaching insight generation failed")
		return dto.TeachingInsightResponse{Insight: teachingInsightUnavailable}, nil
	}

	return dto.TeachingInsightResponse{Insight: insight, Available: true}, nil
}
