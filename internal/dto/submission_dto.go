package dto

import (
	"encoding/json"
	"time"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

// SubmissionSubmitRequest describes the multipart payload for handing in
// work. Content may be empty when a file is attached, and vice versa.
type SubmissionSubmitRequest struct {
	AssignmentID uint   `form:"assignment_id" validate:"required,gt=0"`
	StudentID    uint   `form:"student_id" validate:"required,gt=0"`
	Content      string `form:"content" validate:"omitempty"`
}

// ReviewDecisionRequest carries a teacher's verdict on a submission.
type ReviewDecisionRequest struct {
	Decision string   `json:"decision" validate:"required,oneof=approved rejected"`
	// Score range is enforced by the review engine so approvals carry a
	// single authoritative error for out-of-range values.
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback" validate:"omitempty"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=submitted reviewing approved rejected"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint           `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	StudentID    uint           `json:"student_id"`
	Status       string         `json:"status"`
	Content      string         `json:"content"`
	Attachments  []string       `json:"attachments"`
	Score        *float64       `json:"score"`
	Feedback     string         `json:"feedback"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	ReviewedAt   *time.Time     `json:"reviewed_at"`
	ReviewedBy   *uint          `json:"reviewed_by"`
	Revision     uint           `json:"revision"`
	Assignment   AssignmentLite `json:"assignment"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Type     string    `json:"type"`
	Deadline time.Time `json:"deadline"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		AssignmentID: model.AssignmentID,
		StudentID:    model.StudentID,
		Status:       model.Status,
		Content:      model.Content,
		Attachments:  decodeAttachments(model.Attachments),
		Score:        model.Score,
		Feedback:     model.Feedback,
		SubmittedAt:  model.SubmittedAt,
		ReviewedAt:   model.ReviewedAt,
		ReviewedBy:   model.ReviewedBy,
		Revision:     model.Revision,
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:       model.Assignment.ID,
			Title:    model.Assignment.Title,
			Type:     model.Assignment.Type,
			Deadline: model.Assignment.Deadline,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

func decodeAttachments(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return []string{}
	}

	return urls
}
