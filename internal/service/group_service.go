package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
)

var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupFull indicates the group already holds the maximum members.
	ErrGroupFull = errors.New("group member capacity reached")
	// ErrDuplicateMember indicates the invited user already belongs to the group.
	ErrDuplicateMember = errors.New("user is already a group member")
	// ErrNoChanges indicates a partial update carrying no fields.
	ErrNoChanges = errors.New("update requires at least one field")
)

// Fallback shown by the portal when an invited member has no major on file.
const unknownMajor = "未知专业"

// GroupService manages survey team membership and group profile updates.
type GroupService interface {
	Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error)
	Invite(ctx context.Context, groupID uint, payload dto.GroupInviteRequest) (dto.GroupResponse, error)
	UpdateInfo(ctx context.Context, groupID uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error)
	Get(ctx context.Context, groupID uint) (dto.GroupResponse, error)
}

type groupService struct {
	repo      repository.GroupRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(repo repository.GroupRepository, validate *validator.Validate, logger zerolog.Logger) GroupService {
	return &groupService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "group_service").Logger(),
		now:       time.Now,
	}
}

func (s *groupService) Create(ctx context.Context, payload dto.GroupCreateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	major := payload.Major
	if major == "" {
		major = unknownMajor
	}

	group := models.Group{
		Name:   payload.Name,
		Slogan: payload.Slogan,
		Members: []models.GroupMember{{
			UserID:   payload.LeaderID,
			Role:     models.GroupRoleLeader,
			Major:    major,
			JoinedAt: s.now(),
		}},
	}

	if err := s.repo.Create(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().
		Uint("group_id", group.ID).
		Uint("leader_id", payload.LeaderID).
		Msg("group created")

	return s.reload(ctx, group.ID)
}

func (s *groupService) Invite(ctx context.Context, groupID uint, payload dto.GroupInviteRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	group, err := s.getModel(ctx, groupID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if group.IsFull() {
		return dto.GroupResponse{}, ErrGroupFull
	}

	if group.HasMember(payload.UserID) {
		return dto.GroupResponse{}, ErrDuplicateMember
	}

	major := payload.Major
	if major == "" {
		major = unknownMajor
	}

	member := models.GroupMember{
		GroupID:  groupID,
		UserID:   payload.UserID,
		Role:     models.GroupRoleMember,
		Major:    major,
		JoinedAt: s.now(),
	}

	if err := s.repo.AddMember(ctx, &member); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().
		Uint("group_id", groupID).
		Uint("user_id", payload.UserID).
		Msg("group member invited")

	return s.reload(ctx, groupID)
}

func (s *groupService) UpdateInfo(ctx context.Context, groupID uint, payload dto.GroupUpdateRequest) (dto.GroupResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GroupResponse{}, err
	}

	if payload.Name == nil && payload.Slogan == nil {
		return dto.GroupResponse{}, ErrNoChanges
	}

	group, err := s.getModel(ctx, groupID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	if payload.Name != nil {
		group.Name = *payload.Name
	}
	if payload.Slogan != nil {
		group.Slogan = *payload.Slogan
	}

	if err := s.repo.Update(ctx, &group); err != nil {
		return dto.GroupResponse{}, err
	}

	s.logger.Info().Uint("group_id", groupID).Msg("group info updated")

	return s.reload(ctx, groupID)
}

func (s *groupService) Get(ctx context.Context, groupID uint) (dto.GroupResponse, error) {
	group, err := s.getModel(ctx, groupID)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}

func (s *groupService) getModel(ctx context.Context, id uint) (models.Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, ErrGroupNotFound
		}
		return models.Group{}, err
	}

	return group, nil
}

func (s *groupService) reload(ctx context.Context, id uint) (dto.GroupResponse, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.GroupResponse{}, err
	}

	return dto.NewGroupResponse(group), nil
}
