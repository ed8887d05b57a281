package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-service/internal/api/http/handlers"
	"github.com/spec-kit/org-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	Membership     *handlers.MembershipHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.Token)

	org := app.Group("/org", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOrgAdmin))

	org.Post("/departments", cfg.Staff.CreateDepartment)
	org.Get("/departments", cfg.Staff.ListDepartments)
	org.Get("/departments/:id", cfg.Staff.GetDepartment)
	org.Get("/departments/:id/posts", cfg.Staff.ListPosts)
	org.Get("/departments/:id/staff", cfg.Staff.DepartmentRoster)

	org.Post("/posts", cfg.Staff.CreatePost)
	org.Get("/posts/:id", cfg.Staff.GetPost)

	org.Post("/staff", cfg.Staff.CreateStaff)
	org.Get("/staff", cfg.Staff.ListStaff)
	org.Get("/staff/:id", cfg.Staff.GetStaff)
	org.Put("/staff/:id", cfg.Staff.UpdateStaff)
	org.Delete("/staff/:id", cfg.Staff.DeleteStaff)

	org.Post("/staff/:id/join", cfg.Membership.Join)
	org.Post("/staff/:id/leave", cfg.Membership.Leave)
}
