package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"munhuwese/internal/delivery/http/controllers"
	h "munhuwese/internal/delivery/http/helpers"
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/domain"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewRouter initializes the HTTP router with all application routes.
// uploadsDir is served read-only under /uploads/.
func NewRouter(
	verifier domain.TokenVerifier,
	uploadsDir string,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	postController *controllers.PostController,
	userController *controllers.UserController,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)
	adminOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Health
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		h.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "OK", Message: "Community Portal API v1.0"})
	})

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/reset-request", authController.RequestPasswordReset)
	mux.HandleFunc("POST /auth/reset", authController.ResetPassword)

	// Events
	mux.HandleFunc("GET /events", optionalAuth(eventController.List))
	mux.HandleFunc("POST /events", adminOnly(eventController.Create))
	mux.HandleFunc("PUT /events/{eventID}", adminOnly(eventController.Update))
	mux.HandleFunc("DELETE /events/{eventID}", adminOnly(eventController.Delete))
	mux.HandleFunc("POST /events/{eventID}/register", requireAuth(eventController.Register))
	mux.HandleFunc("GET /events/{eventID}/registrations", adminOnly(eventController.ListRegistrations))

	// Posts and comments
	mux.HandleFunc("GET /posts", postController.List)
	mux.HandleFunc("POST /posts", requireAuth(postController.Create))
	mux.HandleFunc("GET /posts/{postID}", postController.Get)
	mux.HandleFunc("PUT /posts/{postID}", requireAuth(postController.Update))
	mux.HandleFunc("DELETE /posts/{postID}", requireAuth(postController.Delete))
	mux.HandleFunc("POST /posts/{postID}/like", requireAuth(postController.ToggleLike))
	mux.HandleFunc("GET /posts/{postID}/likes", postController.Likes)
	mux.HandleFunc("GET /posts/{postID}/comments", postController.ListComments)
	mux.HandleFunc("POST /posts/{postID}/comments", requireAuth(postController.AddComment))
	mux.HandleFunc("PUT /posts/comments/{commentID}", requireAuth(postController.UpdateComment))
	mux.HandleFunc("DELETE /posts/comments/{commentID}", requireAuth(postController.DeleteComment))

	// Profile and dashboard
	mux.HandleFunc("GET /users/me", requireAuth(userController.GetMe))
	mux.HandleFunc("PUT /users/profile", requireAuth(userController.UpdateProfile))
	mux.HandleFunc("DELETE /users/me", requireAuth(userController.DeleteMe))
	mux.HandleFunc("GET /users/registrations", requireAuth(userController.MyRegistrations))
	mux.HandleFunc("GET /dashboard", requireAuth(userController.Dashboard))

	// Uploaded images
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
