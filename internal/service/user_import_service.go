package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserService manages the admin user directory, including bulk CSV import.
type UserService interface {
	Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error)
	List(ctx context.Context, payload dto.UserListRequest) ([]dto.UserResponse, error)
	ImportCSV(ctx context.Context, reader io.Reader) (dto.UserImportResult, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:          payload.Name,
		Email:         payload.Email,
		Role:          payload.Role,
		Code:          payload.Code,
		Major:         payload.Major,
		Class:         payload.Class,
		UploadLimitMB: payload.UploadLimitMB,
	}

	if user.UploadLimitMB <= 0 {
		user.UploadLimitMB = models.DefaultUploadLimitMB
	}
	if user.Code == "" {
		user.Code = generatedCode()
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")

	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, payload dto.UserListRequest) ([]dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(payload.Search),
		Role:   payload.Role,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewUserResponseSlice(users), nil
}

// ImportCSV ingests rows of the form name,role,email,uploadLimitMB,code.
// A header line is skipped when it mentions "name" or "姓名". Rows with fewer
// than three fields are silently dropped; missing quotas default to 50 and a
// blank code gets a generated placeholder. Importing zero rows is not an
// error.
func (s *userService) ImportCSV(ctx context.Context, reader io.Reader) (dto.UserImportResult, error) {
	parser := csv.NewReader(reader)
	parser.FieldsPerRecord = -1
	parser.TrimLeadingSpace = true

	users := make([]models.User, 0)
	skipped := 0
	first := true

	for {
		record, err := parser.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.UserImportResult{}, fmt.Errorf("failed to parse csv: %w", err)
		}

		if first {
			first = false
			if isHeaderRow(record) {
				continue
			}
		}

		if isBlankRow(record) {
			continue
		}

		user, ok := rowToUser(record)
		if !ok {
			skipped++
			continue
		}

		users = append(users, user)
	}

	if err := s.repo.CreateBatch(ctx, users); err != nil {
		return dto.UserImportResult{}, err
	}

	s.logger.Info().
		Int("imported", len(users)).
		Int("skipped", skipped).
		Msg("csv import completed")

	return dto.UserImportResult{
		Imported: len(users),
		Skipped:  skipped,
		Users:    dto.NewUserResponseSlice(users),
	}, nil
}

// rowToUser maps one csv record to a user. Rows with fewer than three
// fields, or with a blank name or email, do not carry enough identity to
// import and report false.
func rowToUser(record []string) (models.User, bool) {
	if len(record) < 3 {
		return models.User{}, false
	}

	fields := make([]string, 5)
	for i := range fields {
		if i < len(record) {
			fields[i] = strings.TrimSpace(record[i])
		}
	}
	name, role, email, limit, code := fields[0], fields[1], fields[2], fields[3], fields[4]

	if name == "" || email == "" {
		return models.User{}, false
	}

	user := models.User{
		Name:          name,
		Email:         email,
		Role:          normalizeRole(role),
		Code:          code,
		UploadLimitMB: models.DefaultUploadLimitMB,
	}

	if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
		user.UploadLimitMB = parsed
	}

	if user.Code == "" {
		user.Code = generatedCode()
	}

	return user, true
}

func normalizeRole(role string) string {
	switch {
	case strings.EqualFold(role, "teacher") || role == "教师":
		return models.UserRoleTeacher
	case strings.EqualFold(role, "admin") || role == "管理员":
		return models.UserRoleAdmin
	default:
		return models.UserRoleStudent
	}
}

func isHeaderRow(record []string) bool {
	line := strings.ToLower(strings.Join(record, ","))
	return strings.Contains(line, "name") || strings.Contains(line, "姓名")
}

func isBlankRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func generatedCode() string {
	return "U" + strings.ToUpper(uuid.NewString()[:8])
}
