package dto

import (
	"time"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

// UserCreateRequest describes the payload for manually registering a user.
type UserCreateRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Email         string `json:"email" validate:"required,email"`
	Role          string `json:"role" validate:"required,oneof=student teacher admin"`
	Code          string `json:"code" validate:"omitempty,max=64"`
	Major         string `json:"major" validate:"omitempty,max=128"`
	Class         string `json:"class" validate:"omitempty,max=64"`
	UploadLimitMB int    `json:"upload_limit_mb" validate:"omitempty,gt=0"`
}

// UserListRequest describes filters for browsing the directory.
type UserListRequest struct {
	Search string `query:"search" validate:"omitempty,max=255"`
	Role   string `query:"role" validate:"omitempty,oneof=student teacher admin"`
}

// UserResponse is returned to API clients when viewing users.
type UserResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Code          string    `json:"code"`
	Major         string    `json:"major"`
	Class         string    `json:"class"`
	UploadLimitMB int       `json:"upload_limit_mb"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserImportResult summarizes a CSV import run.
type UserImportResult struct {
	Imported int            `json:"imported"`
	Skipped  int            `json:"skipped"`
	Users    []UserResponse `json:"users"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:            model.ID,
		Name:          model.Name,
		Email:         model.Email,
		Role:          model.Role,
		Code:          model.Code,
		Major:         model.Major,
		Class:         model.Class,
		UploadLimitMB: model.UploadLimitMB,
		CreatedAt:     model.CreatedAt,
	}
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(items []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(items))
	for _, user := range items {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}
