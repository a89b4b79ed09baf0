package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { Register("auth", registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", handlers.AuthLogin(d))
		r.Get("/callback", handlers.AuthCallback(d))
		r.Post("/logout", handlers.Logout(d))
		if d.DevLogin {
			r.Post("/dev", handlers.DevLogin(d))
		}
	})
}
