package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
)

// StudentDashboardService produces the per-student progress snapshot shown
// on the portal landing page.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator. The cache is
// optional; without it every call rebuilds from the repositories.
func NewStudentDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, err := s.assignments.List(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	filter := repository.SubmissionFilter{StudentID: &studentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()

	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		if _, exists := submissionByAssignment[submission.AssignmentID]; !exists {
			submissionByAssignment[submission.AssignmentID] = submission
		}
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))
	var scoreTotal float64
	var scoredCount int

	for _, assignment := range assignments {
		summary.TotalAssignments++
		submission, submitted := submissionByAssignment[assignment.ID]
		overdue := assignment.IsPastDeadline(now)

		status := "pending"
		var submissionID *uint
		var score *float64
		feedback := ""
		updatedAt := assignment.UpdatedAt

		if submitted {
			submissionID = &submission.ID
			status = submission.Status
			feedback = submission.Feedback
			updatedAt = submission.UpdatedAt
			summary.Submitted++
			overdue = false

			switch submission.Status {
			case models.SubmissionStatusApproved:
				summary.Approved++
				if submission.Score != nil {
					score = submission.Score
					scoreTotal += *submission.Score
					scoredCount++
				}
			case models.SubmissionStatusRejected:
				summary.Rejected++
			}
		} else {
			summary.Pending++
			if overdue {
				summary.Overdue++
			}
		}

		progress = append(progress, dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			Type:         assignment.Type,
			Deadline:     assignment.Deadline,
			Status:       status,
			SubmissionID: submissionID,
			Score:        score,
			Feedback:     feedback,
			UpdatedAt:    updatedAt,
			Overdue:      overdue,
		})
	}

	if scoredCount > 0 {
		summary.AverageScore = scoreTotal / float64(scoredCount)
	}
	if summary.TotalAssignments > 0 {
		summary.CompletionRate = float64(summary.Approved) / float64(summary.TotalAssignments)
	}

	return dto.StudentDashboardResponse{
		Summary:     summary,
		Assignments: progress,
	}
}
