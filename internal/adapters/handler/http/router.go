package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(authHandler *AuthHandler, userHandler *UserHandler, productHandler *ProductHandler, auth *AuthMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Post("/refresh-token", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(auth.Protect)
				r.Get("/profile", userHandler.GetProfile)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/featured", productHandler.Featured)

			// Admin routes: Protect must run first so AdminOnly sees
			// the attached user.
			r.Group(func(r chi.Router) {
				r.Use(auth.Protect)
				r.Use(auth.AdminOnly)
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
			})
		})
	})

	return r
}
