package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"waypost/internal/handler"
	"waypost/internal/httputil"
	authmw "waypost/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	RoadmapHandler *handler.RoadmapHandler
	AccessSecret   string
	FrontendURL    string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	requireAuth := authmw.AuthMiddleware(cfg.AccessSecret)
	optionalAuth := authmw.OptionalAuthMiddleware(cfg.AccessSecret)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Get("/email-verify", cfg.AuthHandler.EmailVerify)
		r.Post("/email-verify/resend", cfg.AuthHandler.ResendVerification)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/refresh", cfg.AuthHandler.Refresh)
		r.Post("/logout", cfg.AuthHandler.Logout)
		r.Post("/forgot", cfg.AuthHandler.Forgot)
		r.Post("/reset-password", cfg.AuthHandler.ResetPassword)
		r.With(requireAuth).Post("/logout-all", cfg.AuthHandler.LogoutAll)
	})

	// Public reads with optional authentication
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/profiles/{id}", cfg.ProfileHandler.Get)
		r.Get("/profiles/{id}/followers", cfg.ProfileHandler.GetFollowers)
		r.Get("/profiles/{id}/following", cfg.ProfileHandler.GetFollowing)
		r.Get("/profiles/{id}/posts", cfg.PostHandler.GetUserPosts)
		r.Get("/profiles/{id}/roadmaps", cfg.RoadmapHandler.ListByUser)

		r.Get("/posts/search", cfg.PostHandler.Search)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/posts/{id}/comments", cfg.CommentHandler.ListByPost)
		r.Get("/posts/{id}/likes", cfg.PostHandler.GetLikers)

		r.Get("/tags/{name}/posts", cfg.PostHandler.GetByTag)

		r.Get("/roadmaps/search", cfg.RoadmapHandler.Search)
		r.Get("/roadmaps/{id}", cfg.RoadmapHandler.GetByID)
		r.Get("/steps/{id}/lookbacks", cfg.RoadmapHandler.ListLookbacks)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/me", cfg.AuthHandler.Me)
		r.Delete("/me", cfg.AuthHandler.DeleteAccount)

		r.Patch("/profiles/me", cfg.ProfileHandler.UpdateMe)
		r.Post("/profiles/me/avatar", cfg.ProfileHandler.UploadAvatar)
		r.Post("/profiles/{id}/follow", cfg.ProfileHandler.ToggleFollow)

		r.Get("/feed", cfg.PostHandler.Feed)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Get("/posts/favorites", cfg.PostHandler.Favorites)
		r.Put("/posts/{id}", cfg.PostHandler.Update)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)
		r.Post("/posts/{id}/share", cfg.PostHandler.Share)
		r.Delete("/posts/{id}/share", cfg.PostHandler.Unshare)
		r.Post("/posts/{id}/like", cfg.PostHandler.ToggleLike)

		r.Post("/comments", cfg.CommentHandler.Create)
		r.Put("/comments/{id}", cfg.CommentHandler.Update)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		r.Get("/roadmaps/feed", cfg.RoadmapHandler.Feed)
		r.Post("/roadmaps", cfg.RoadmapHandler.Create)
		r.Put("/roadmaps/{id}", cfg.RoadmapHandler.Update)
		r.Delete("/roadmaps/{id}", cfg.RoadmapHandler.Delete)

		r.Post("/steps", cfg.RoadmapHandler.CreateStep)
		r.Post("/steps/order", cfg.RoadmapHandler.ChangeStepOrder)
		r.Put("/steps/{id}", cfg.RoadmapHandler.UpdateStep)
		r.Delete("/steps/{id}", cfg.RoadmapHandler.DeleteStep)

		r.Post("/lookbacks", cfg.RoadmapHandler.CreateLookback)
		r.Put("/lookbacks/{id}", cfg.RoadmapHandler.UpdateLookback)
		r.Delete("/lookbacks/{id}", cfg.RoadmapHandler.DeleteLookback)
	})

	return r
}
