package dto

import (
	"time"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

// GroupCreateRequest founds a new survey group with the caller as leader.
type GroupCreateRequest struct {
	LeaderID uint   `json:"leader_id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Slogan   string `json:"slogan" validate:"omitempty,max=255"`
	Major    string `json:"major" validate:"omitempty,max=128"`
}

// GroupInviteRequest adds a member to an existing group.
type GroupInviteRequest struct {
	UserID uint   `json:"user_id" validate:"required,gt=0"`
	Major  string `json:"major" validate:"omitempty,max=128"`
}

// GroupUpdateRequest partially updates the group profile. At least one field
// must be present.
type GroupUpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=255"`
	Slogan *string `json:"slogan" validate:"omitempty,max=255"`
}

// GroupResponse is returned to API clients when viewing groups.
type GroupResponse struct {
	ID        uint                  `json:"id"`
	Name      string                `json:"name"`
	Slogan    string                `json:"slogan"`
	Members   []GroupMemberResponse `json:"members"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// GroupMemberResponse serializes one group membership entry.
type GroupMemberResponse struct {
	UserID   uint      `json:"user_id"`
	Role     string    `json:"role"`
	Major    string    `json:"major"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewGroupResponse converts a Group model into a DTO.
func NewGroupResponse(model models.Group) GroupResponse {
	members := make([]GroupMemberResponse, 0, len(model.Members))
	for _, member := range model.Members {
		members = append(members, GroupMemberResponse{
			UserID:   member.UserID,
			Role:     member.Role,
			Major:    member.Major,
			JoinedAt: member.JoinedAt,
		})
	}

	return GroupResponse{
		ID:        model.ID,
		Name:      model.Name,
		Slogan:    model.Slogan,
		Members:   members,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
