package handler

import (
	"storefront-auth/internal/security"

	"github.com/go-chi/chi/v5"
)

// SetupAuthRoutes : signup/login/logout/refresh-token открыты, profile требует access токен
func SetupAuthRoutes(r chi.Router, auth *AuthenticationHandler, users *UserHandler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", auth.Signup)
		r.Post("/login", auth.Login)
		r.Post("/logout", auth.Logout)
		r.Post("/refresh-token", auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(security.ProtectRoute(auth.AuthenticationService))
			r.Get("/profile", users.Profile)
		})
	})
}

// SetupImageRoutes : только для администраторов
func SetupImageRoutes(r chi.Router, h *ImageHandler, users *UserHandler) {
	r.Route("/api/images", func(r chi.Router) {
		r.Use(security.ProtectRoute(users.AuthenticationService))
		r.Use(security.AdminRoute(users.AuthenticationService))
		r.Post("/presign", h.PresignUpload)
		r.Delete("/{key}", h.DeleteImage)
	})
}

func SetupHealthRoutes(r chi.Router, h *HealthHandler) {
	r.Get("/healthz", h.Health)
}
