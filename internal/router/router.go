package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/luoxin-dev/survey-portal-api/internal/config"
	"github.com/luoxin-dev/survey-portal-api/internal/handler"
	"github.com/luoxin-dev/survey-portal-api/internal/middleware"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler       *handler.AssignmentHandler
	SubmissionHandler       *handler.SubmissionHandler
	ReviewHandler           *handler.ReviewHandler
	GroupHandler            *handler.GroupHandler
	AdminUserHandler        *handler.AdminUserHandler
	AIHandler               *handler.AIHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	NotificationHandler     *handler.NotificationHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.UserRoleTeacher, models.UserRoleAdmin)
	adminOnly := middleware.RequireRole(models.UserRoleAdmin)

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments, teacherOnly)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)

		if deps.ReviewHandler != nil {
			deps.ReviewHandler.Register(submissions, teacherOnly)
		}
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware)
		deps.GroupHandler.Register(groups)
	}

	if deps.AdminUserHandler != nil {
		users := api.Group("/admin/users", jwtMiddleware, adminOnly)
		deps.AdminUserHandler.Register(users)
	}

	if deps.AIHandler != nil {
		ai := api.Group("/ai", jwtMiddleware, teacherOnly)
		deps.AIHandler.Register(ai)
	}

	if deps.StudentDashboardHandler != nil {
		student := api.Group("/student", jwtMiddleware)
		deps.StudentDashboardHandler.Register(student)
	}

	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}
}
