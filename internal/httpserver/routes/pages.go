package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
)

func init() { Register("pages", registerPages) }

func registerPages(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Home(d))
	r.Get("/login", handlers.Login(d))
	r.Post("/bookmarks", handlers.AddBookmarkForm(d))
	r.Post("/bookmarks/{id}/delete", handlers.DeleteBookmarkForm(d))
	r.Post("/tokens", handlers.IssueToken(d))
}
