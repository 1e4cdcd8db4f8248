package dto

import (
	"time"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

// AssignmentPublishRequest describes the multipart payload used by teachers
// to publish a new assignment.
type AssignmentPublishRequest struct {
	Title        string `form:"title" validate:"required,min=1,max=255"`
	Type         string `form:"type" validate:"required,oneof=theme_selection process_material final_report"`
	Deadline     string `form:"deadline" validate:"required"`
	Instructions string `form:"instructions" validate:"omitempty"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
type AssignmentResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Deadline     time.Time `json:"deadline"`
	Instructions string    `json:"instructions"`
	FileURL      string    `json:"file_url"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           model.ID,
		Title:        model.Title,
		Type:         model.Type,
		Deadline:     model.Deadline,
		Instructions: model.Instructions,
		FileURL:      model.FileURL,
		PublishedAt:  model.PublishedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(items []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(items))
	for _, assignment := range items {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
