package routes

import (
	"net/http"

	"github.com/AKT74/shareulbi-backend/internal/app"
	"github.com/AKT74/shareulbi-backend/internal/handler"
	"github.com/AKT74/shareulbi-backend/internal/middleware"
	"github.com/AKT74/shareulbi-backend/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.UserService)
	profile := handler.NewProfileHandler(app.UserService)
	users := handler.NewUserHandler(app.UserService)
	reference := handler.NewReferenceHandler(app.ReferenceService)
	posts := handler.NewPostHandler(app.PostService, app.UploadLimits())
	validation := handler.NewValidationHandler(app.ValidationService)
	interactions := handler.NewInteractionHandler(app.InteractionService)
	moderation := handler.NewModerationHandler(app.ModerationService)

	adminOnly := middleware.RequireRole(model.RoleAdmin)
	lecturerOnly := middleware.RequireRole(model.RoleLecturer)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)

	// Uploaded media, when served from local disk
	if app.Cfg.StorageDriver != "s3" {
		mux.Handle("GET /media/", http.StripPrefix("/media/", handler.NewMediaHandler(app.Cfg.LocalStoragePath)))
	}

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)
	mux.HandleFunc("GET /api/auth/csrf", auth.CSRF)

	// Reference data is readable by anyone, registration needs the department list
	mux.HandleFunc("GET /api/departments", reference.ListDepartments)
	mux.HandleFunc("GET /api/categories", reference.ListCategories)
	mux.HandleFunc("GET /api/categories/{id}", reference.GetCategory)

	// ============================================================================
	// AUTHENTICATED ROUTES
	// ============================================================================

	// Account
	mux.HandleFunc("GET /api/me", middleware.RequireAuth(auth.Me))
	mux.HandleFunc("PUT /api/me", middleware.RequireAuth(profile.UpdateProfile))
	mux.HandleFunc("PUT /api/me/password", middleware.RequireAuth(profile.UpdatePassword))
	mux.HandleFunc("GET /api/me/posts", middleware.RequireAuth(posts.ListMine))

	// Posts
	mux.HandleFunc("GET /api/posts", middleware.RequireAuth(posts.List))
	mux.HandleFunc("POST /api/posts", middleware.RequireAuth(posts.Create))
	mux.HandleFunc("GET /api/posts/{id}", middleware.RequireAuth(posts.Get))
	mux.HandleFunc("PUT /api/posts/{id}", middleware.RequireAuth(posts.Update))
	mux.HandleFunc("DELETE /api/posts/{id}", middleware.RequireAuth(posts.Delete))
	mux.HandleFunc("GET /api/users/{id}/posts", middleware.RequireAuth(posts.ListByUser))

	mux.HandleFunc("GET /api/e-learning", middleware.RequireAuth(posts.ListTyped(model.PostTypeELearning)))
	mux.HandleFunc("POST /api/e-learning", middleware.RequireAuth(posts.CreateTyped(model.PostTypeELearning)))
	mux.HandleFunc("GET /api/works", middleware.RequireAuth(posts.ListTyped(model.PostTypeWorks)))
	mux.HandleFunc("POST /api/works", middleware.RequireAuth(posts.CreateTyped(model.PostTypeWorks)))

	// Interactions
	mux.HandleFunc("POST /api/posts/{id}/like", middleware.RequireAuth(interactions.ToggleLike))
	mux.HandleFunc("GET /api/posts/{id}/comments", middleware.RequireAuth(interactions.ListComments))
	mux.HandleFunc("POST /api/posts/{id}/comments", middleware.RequireAuth(interactions.AddComment))
	mux.HandleFunc("GET /api/posts/{id}/interactions", middleware.RequireAuth(interactions.Summary))
	mux.HandleFunc("POST /api/posts/{id}/bookmark", middleware.RequireAuth(interactions.ToggleBookmark))
	mux.HandleFunc("GET /api/bookmarks", middleware.RequireAuth(interactions.ListBookmarks))

	// Validation
	mux.HandleFunc("GET /api/validation/posts", lecturerOnly(validation.ListValidatable))
	mux.HandleFunc("POST /api/validation/posts/{id}/validate", lecturerOnly(validation.Validate))
	mux.HandleFunc("GET /api/posts/{id}/validations", middleware.RequireAuth(validation.History))

	// Feedback
	mux.HandleFunc("GET /api/feedback-topics", middleware.RequireAuth(moderation.ListTopics))
	mux.HandleFunc("POST /api/reports-feedbacks", middleware.RequireAuth(moderation.CreateReport))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/admin/users/pending", adminOnly(users.ListPending))
	mux.HandleFunc("GET /api/admin/users/pending/count", adminOnly(users.CountPending))
	mux.HandleFunc("POST /api/admin/users/{id}/approve", adminOnly(users.Approve))
	mux.HandleFunc("POST /api/admin/users/{id}/reject", adminOnly(users.Reject))
	mux.HandleFunc("PUT /api/admin/users/{id}/active", adminOnly(users.SetActive))

	mux.HandleFunc("POST /api/departments", adminOnly(reference.CreateDepartment))
	mux.HandleFunc("PUT /api/departments/{id}", adminOnly(reference.RenameDepartment))
	mux.HandleFunc("DELETE /api/departments/{id}", adminOnly(reference.DeleteDepartment))

	mux.HandleFunc("POST /api/categories", adminOnly(reference.CreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", adminOnly(reference.UpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", adminOnly(reference.DeleteCategory))

	mux.HandleFunc("POST /api/feedback-topics", adminOnly(moderation.CreateTopic))
	mux.HandleFunc("PUT /api/feedback-topics/{id}", adminOnly(moderation.UpdateTopic))
	mux.HandleFunc("DELETE /api/feedback-topics/{id}", adminOnly(moderation.DeleteTopic))

	mux.HandleFunc("GET /api/reports-feedbacks", adminOnly(moderation.ListReports))
	mux.HandleFunc("GET /api/reports-feedbacks/export", adminOnly(moderation.ExportReports))
	mux.HandleFunc("GET /api/reports-feedbacks/{id}", adminOnly(moderation.GetReport))
	mux.HandleFunc("PUT /api/reports-feedbacks/{id}/status", adminOnly(moderation.UpdateReportStatus))

	mux.HandleFunc("GET /api/activity-logs", adminOnly(users.ListActivity))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", health.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Recover,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CorsOrigins),
		middleware.AuthMiddleware(app.AuthService),
		middleware.CSRFProtection(app.Cfg.SecureCookies()), // needs the auth source set above
	)

	return handler
}
