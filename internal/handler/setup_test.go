package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luoxin-dev/survey-portal-api/internal/config"
	"github.com/luoxin-dev/survey-portal-api/internal/handler"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
	"github.com/luoxin-dev/survey-portal-api/internal/router"
	"github.com/luoxin-dev/survey-portal-api/internal/service"
)

type testUploader struct{}

func (t *testUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://cdn.example.com/" + name, nil
}

// setupApp wires the full route surface against an isolated in-memory
// database. The stub JWT middleware trusts the X-Test-User and X-Test-Role
// headers so tests can act as different principals.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	uploader := &testUploader{}

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, nil, "", nil, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploader, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, notificationService, logger)
	reviewService := service.NewReviewService(submissionService, logger)
	groupService := service.NewGroupService(groupRepo, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	formatCheckService := service.NewFormatCheckService(nil, validate, time.Second, logger)
	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, nil, time.Minute, logger)

	app := fiber.New()

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AssignmentHandler:       handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		ReviewHandler:           handler.NewReviewHandler(reviewService, logger),
		GroupHandler:            handler.NewGroupHandler(groupService, logger),
		AdminUserHandler:        handler.NewAdminUserHandler(userService, logger),
		AIHandler:               handler.NewAIHandler(formatCheckService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		NotificationHandler:     handler.NewNotificationHandler(notificationService, logger, time.Second),
		JWTMiddleware: func(c *fiber.Ctx) error {
			userID := uint(1)
			if header := c.Get("X-Test-User"); header != "" {
				var parsed uint
				_, err := fmt.Sscanf(header, "%d", &parsed)
				if err == nil {
					userID = parsed
				}
			}
			role := c.Get("X-Test-Role")
			if role == "" {
				role = models.UserRoleStudent
			}
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
