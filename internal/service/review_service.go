package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/observability"
)

// ReviewService is the teacher-facing orchestration over the submission
// store. Role enforcement happens in middleware; this layer only drives the
// state machine and records review observability.
type ReviewService interface {
	Open(ctx context.Context, submissionID, reviewerID uint) (dto.SubmissionResponse, error)
	Approve(ctx context.Context, submissionID uint, score float64, feedback string, reviewerID uint) (dto.SubmissionResponse, error)
	Reject(ctx context.Context, submissionID uint, feedback string, reviewerID uint) (dto.SubmissionResponse, error)
}

type reviewService struct {
	submissions SubmissionService
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewReviewService constructs the review engine.
func NewReviewService(submissions SubmissionService, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		tracer:      otel.Tracer("github.com/luoxin-dev/survey-portal-api/internal/service/review"),
		logger:      logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) Open(ctx context.Context, submissionID, reviewerID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.open", trace.WithAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.reviewer_id", int64(reviewerID)),
	))
	defer span.End()

	response, err := s.submissions.BeginReview(ctx, submissionID, reviewerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin_review_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.ReviewTransitions().WithLabelValues(models.SubmissionStatusReviewing).Inc()

	return response, nil
}

func (s *reviewService) Approve(ctx context.Context, submissionID uint, score float64, feedback string, reviewerID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.approve", trace.WithAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Float64("review.score", score),
	))
	defer span.End()

	payload := dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
		Feedback: feedback,
	}

	response, err := s.submissions.Decide(ctx, submissionID, payload, reviewerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approve_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.ReviewTransitions().WithLabelValues(models.SubmissionStatusApproved).Inc()
	s.logger.Info().
		Uint("submission_id", submissionID).
		Float64("score", score).
		Msg("submission approved")

	return response, nil
}

func (s *reviewService) Reject(ctx context.Context, submissionID uint, feedback string, reviewerID uint) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.reject", trace.WithAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
	))
	defer span.End()

	payload := dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusRejected,
		Feedback: feedback,
	}

	response, err := s.submissions.Decide(ctx, submissionID, payload, reviewerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reject_failed")
		return dto.SubmissionResponse{}, err
	}

	observability.ReviewTransitions().WithLabelValues(models.SubmissionStatusRejected).Inc()
	s.logger.Info().
		Uint("submission_id", submissionID).
		Msg("submission rejected")

	return response, nil
}
