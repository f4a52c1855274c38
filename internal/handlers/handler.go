package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/thepath/internal/db"
	"github.com/vaughan-dsouza/thepath/internal/middleware"
	"github.com/vaughan-dsouza/thepath/internal/utils"
)

type Handler struct {
	Store *db.Store
	Root  *RootHandler
	Posts *PostHandler
}

func NewHandler(store *db.Store) *Handler {
	return &Handler{
		Store: store,
		Root:  NewRootHandler(),
		Posts: NewPostHandler(store),
	}
}

// Routes builds the chi router serving the whole API.
func (h *Handler) Routes(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Stack(log)...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/", h.Root.Greet)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.Posts.GetPosts)
		r.Post("/", h.Posts.CreatePost)
		r.Get("/{id}", h.Posts.GetPostByID)
		r.Put("/{id}", h.Posts.UpdatePost)
		r.Delete("/{id}", h.Posts.DeletePost)
	})

	return r
}
