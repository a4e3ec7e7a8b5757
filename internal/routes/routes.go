package routes

import (
	"github.com/aula-platform/aula/internal/auth"
	"github.com/aula-platform/aula/internal/handlers"
	"github.com/aula-platform/aula/internal/middleware"
	"github.com/aula-platform/aula/internal/models"
	"github.com/go-chi/chi/v5"
)

// Handlers bundles all HTTP handlers registered by the router
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Courses     *handlers.CourseHandler
	Subjects    *handlers.SubjectHandler
	Modules     *handlers.ModuleHandler
	Enrollments *handlers.EnrollmentHandler
	Admin       *handlers.AdminHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	authMW *auth.Middleware,
	rateLimit middleware.RateLimitConfig,
) {
	staffOnly := authMW.RequireRole(models.RoleAdmin, models.RoleTeacher)
	adminOnly := authMW.RequireRole(models.RoleAdmin)

	// Public routes. The transport rate limit is a coarse backstop; the
	// login guard inside the auth handler does the real failure tracking.
	router.With(middleware.RateLimitByIP(rateLimit)).Post("/auth/login", h.Auth.Login)
	router.With(middleware.RateLimitByIP(rateLimit)).Post("/auth/refresh", h.Auth.RefreshToken)
	router.With(middleware.RateLimitByIP(rateLimit)).Post("/auth/register", h.Auth.Register)

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)

		r.Post("/auth/logout", h.Auth.Logout)

		r.Get("/users/me", h.Users.Me)
		r.Post("/users/me/password", h.Users.ChangePassword)

		r.Get("/courses", h.Courses.List)
		r.Get("/courses/{id}", h.Courses.Get)
		r.Get("/courses/{courseID}/subjects", h.Subjects.ListByCourse)
		r.Get("/subjects/{id}", h.Subjects.Get)
		r.Get("/subjects/{subjectID}/modules", h.Modules.ListBySubject)
		r.Get("/modules/{id}", h.Modules.Get)

		r.Get("/enrollments/me", h.Enrollments.ListMine)

		// Catalog management for teachers and admins
		r.Group(func(r chi.Router) {
			r.Use(staffOnly)

			r.Post("/courses", h.Courses.Create)
			r.Put("/courses/{id}", h.Courses.Update)
			r.Delete("/courses/{id}", h.Courses.Delete)

			r.Post("/courses/{courseID}/subjects", h.Subjects.Create)
			r.Put("/subjects/{id}", h.Subjects.Update)
			r.Delete("/subjects/{id}", h.Subjects.Delete)

			r.Post("/subjects/{subjectID}/modules", h.Modules.Create)
			r.Put("/modules/{id}", h.Modules.Update)
			r.Delete("/modules/{id}", h.Modules.Delete)

			r.Post("/enrollments", h.Enrollments.Create)
			r.Get("/users/{userID}/enrollments", h.Enrollments.ListByUser)
			r.Put("/enrollments/{id}/modules", h.Enrollments.SetEnabledModules)
			r.Delete("/enrollments/{id}", h.Enrollments.Delete)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)

			r.Get("/users", h.Users.List)
			r.Post("/users", h.Users.Create)
			r.Get("/users/{id}", h.Users.Get)
			r.Put("/users/{id}", h.Users.Update)
			r.Put("/users/{id}/status", h.Users.SetStatus)
			r.Delete("/users/{id}", h.Users.Delete)

			r.Get("/admin/guard/stats", h.Admin.GuardStats)
		})
	})
}
