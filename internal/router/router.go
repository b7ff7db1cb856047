package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gradehub/gradehub-api/internal/config"
	"github.com/gradehub/gradehub-api/internal/handler"
	"github.com/gradehub/gradehub-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	GroupHandler      *handler.GroupHandler
	UserHandler       *handler.UserHandler
	Providers         []string
	JWTMiddleware     fiber.Handler
	AdminMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Providers))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)

		providers := api.Group("/providers", jwtMiddleware)
		deps.CourseHandler.RegisterOrganizations(providers)

		// assignment, submission, and group listings are course scoped
		if deps.AssignmentHandler != nil {
			deps.AssignmentHandler.Register(courses)
		}
		if deps.SubmissionHandler != nil {
			deps.SubmissionHandler.RegisterCourseScoped(courses)
		}
		if deps.GroupHandler != nil {
			deps.GroupHandler.RegisterCourseScoped(courses)
		}
	}

	if deps.AssignmentHandler != nil {
		grading := api.Group("/grading", jwtMiddleware)
		deps.AssignmentHandler.RegisterRubric(grading)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware)
		deps.GroupHandler.Register(groups)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users, deps.AdminMiddleware)
	}
}
