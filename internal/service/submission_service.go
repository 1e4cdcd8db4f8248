package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
)

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrSubmissionLocked indicates a mutation attempt on an approved record.
	ErrSubmissionLocked = errors.New("submission is approved and locked")
	// ErrInvalidTransition indicates the requested status change is not
	// permitted from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyPayload indicates a submission without content or attachments.
	ErrEmptyPayload = errors.New("submission requires content or an attachment")
	// ErrInvalidScore indicates an approval score outside [0,100].
	ErrInvalidScore = errors.New("score must be between 0 and 100")
	// ErrMissingFeedback indicates a rejection without feedback.
	ErrMissingFeedback = errors.New("rejection requires feedback")
	// ErrConflict indicates the caller lost a concurrent-write race.
	ErrConflict = errors.New("submission was modified concurrently")
)

// SubmissionService owns the submission records and their status state
// machine. Every mutation is serialized per record through a revision
// compare-and-swap; the losing concurrent writer receives ErrConflict.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmissionSubmitRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	BeginReview(ctx context.Context, id, reviewerID uint) (dto.SubmissionResponse, error)
	Decide(ctx context.Context, id uint, payload dto.ReviewDecisionRequest, reviewerID uint) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	uploader    FileUploader
	events      TransitionPublisher
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. The events
// publisher may be nil when no notification collaborator is wired.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, validate *validator.Validate, uploader FileUploader, events TransitionPublisher, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		validator:   validate,
		uploader:    uploader,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionSubmitRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if content == "" && len(files) == 0 {
		return dto.SubmissionResponse{}, ErrEmptyPayload
	}

	if _, err := s.assignments.GetByID(ctx, payload.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, payload.AssignmentID, payload.StudentID)
	switch {
	case err == nil:
		if existing.IsLocked() {
			return dto.SubmissionResponse{}, ErrSubmissionLocked
		}
		if !existing.AcceptsResubmission() {
			return dto.SubmissionResponse{}, ErrInvalidTransition
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First submission for this (student, assignment) pair.
	default:
		return dto.SubmissionResponse{}, err
	}

	attachments, err := s.uploadAttachments(ctx, files)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submittedAt := s.now()

	if existing.ID == 0 {
		submission := models.Submission{
			AssignmentID: payload.AssignmentID,
			StudentID:    payload.StudentID,
			Status:       models.SubmissionStatusSubmitted,
			Content:      content,
			Attachments:  attachments,
			SubmittedAt:  submittedAt,
		}

		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}

		s.logger.Info().Uint("submission_id", submission.ID).Msg("submission created")
		s.emit(ctx, submission, "", models.SubmissionStatusSubmitted)

		return s.reload(ctx, submission.ID)
	}

	previousStatus := existing.Status
	expectedRevision := existing.Revision

	existing.Status = models.SubmissionStatusSubmitted
	existing.Content = content
	existing.Attachments = attachments
	existing.SubmittedAt = submittedAt
	existing.Score = nil
	existing.Feedback = ""
	existing.ReviewedAt = nil
	existing.ReviewedBy = nil

	if err := s.submissions.UpdateWithRevision(ctx, &existing, expectedRevision); err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			return dto.SubmissionResponse{}, ErrConflict
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", existing.ID).
		Str("previous_status", previousStatus).
		Msg("submission resubmitted")
	s.emit(ctx, existing, previousStatus, models.SubmissionStatusSubmitted)

	return s.reload(ctx, existing.ID)
}

func (s *submissionService) BeginReview(ctx context.Context, id, reviewerID uint) (dto.SubmissionResponse, error) {
	submission, err := s.getModel(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrInvalidTransition
	}

	expectedRevision := submission.Revision
	submission.Status = models.SubmissionStatusReviewing
	submission.ReviewedBy = &reviewerID

	if err := s.submissions.UpdateWithRevision(ctx, &submission, expectedRevision); err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			return dto.SubmissionResponse{}, ErrConflict
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("reviewer_id", reviewerID).
		Msg("review started")
	s.emit(ctx, submission, models.SubmissionStatusSubmitted, models.SubmissionStatusReviewing)

	return s.reload(ctx, submission.ID)
}

func (s *submissionService) Decide(ctx context.Context, id uint, payload dto.ReviewDecisionRequest, reviewerID uint) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getModel(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.Status != models.SubmissionStatusReviewing {
		if submission.IsLocked() {
			return dto.SubmissionResponse{}, ErrSubmissionLocked
		}
		return dto.SubmissionResponse{}, ErrInvalidTransition
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))

	switch payload.Decision {
	case models.SubmissionStatusApproved:
		if payload.Score == nil || *payload.Score < 0 || *payload.Score > 100 {
			return dto.SubmissionResponse{}, ErrInvalidScore
		}
		score := *payload.Score
		submission.Score = &score
	case models.SubmissionStatusRejected:
		if feedback == "" {
			return dto.SubmissionResponse{}, ErrMissingFeedback
		}
		submission.Score = nil
	default:
		return dto.SubmissionResponse{}, ErrInvalidTransition
	}

	expectedRevision := submission.Revision
	previousStatus := submission.Status

	reviewedAt := s.now()
	submission.Status = payload.Decision
	submission.Feedback = feedback
	submission.ReviewedAt = &reviewedAt
	submission.ReviewedBy = &reviewerID

	if err := s.submissions.UpdateWithRevision(ctx, &submission, expectedRevision); err != nil {
		if errors.Is(err, repository.ErrRevisionConflict) {
			return dto.SubmissionResponse{}, ErrConflict
		}
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Str("decision", payload.Decision).
		Uint("reviewer_id", reviewerID).
		Msg("submission decided")
	s.emit(ctx, submission, previousStatus, payload.Decision)

	return s.reload(ctx, submission.ID)
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.getModel(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) getModel(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrSubmissionNotFound
		}
		return models.Submission{}, err
	}

	return submission, nil
}

func (s *submissionService) reload(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) emit(ctx context.Context, submission models.Submission, from, to string) {
	if s.events == nil {
		return
	}

	event := TransitionEvent{
		SubmissionID: submission.ID,
		AssignmentID: submission.AssignmentID,
		StudentID:    submission.StudentID,
		From:         from,
		To:           to,
		OccurredAt:   s.now(),
	}

	if err := s.events.PublishTransition(ctx, event); err != nil {
		s.logger.Warn().Err(err).
			Uint("submission_id", submission.ID).
			Msg("failed to publish transition event")
	}
}

func (s *submissionService) uploadAttachments(ctx context.Context, files []*multipart.FileHeader) (datatypes.JSON, error) {
	if len(files) == 0 {
		return encodeAttachments(nil)
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if err := validateAttachmentType(file); err != nil {
			return nil, err
		}

		reader, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}

		url, err := s.uploader.Upload(ctx, file.Filename, reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}

		urls = append(urls, url)
	}

	return encodeAttachments(urls)
}

func encodeAttachments(urls []string) (datatypes.JSON, error) {
	if urls == nil {
		urls = []string{}
	}

	raw, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(raw), nil
}

func validateAttachmentType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file type: %s", mime.String())
}
