package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vaughan-dsouza/thepath/internal/db"
	"github.com/vaughan-dsouza/thepath/internal/models"
	"github.com/vaughan-dsouza/thepath/internal/utils"
	"github.com/vaughan-dsouza/thepath/internal/validation"
)

const postNotFound = "Post not found"

type PostHandler struct {
	Store *db.Store
}

func NewPostHandler(store *db.Store) *PostHandler {
	return &PostHandler{Store: store}
}

// ---------------------- CREATE ----------------------

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body models.PostCreate
	if err := validation.DecodeAndValidate(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	sess, err := h.Store.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sess.Close()

	post, err := sess.CreatePost(r.Context(), body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	hlog.FromRequest(r).Debug().Int64("post_id", post.ID).Msg("post created")

	utils.JSON(w, http.StatusCreated, models.NewPostOut(post))
}

// ---------------------- GET ONE ----------------------

func (h *PostHandler) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt64(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sess, err := h.Store.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sess.Close()

	post, err := sess.GetPost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if post == nil {
		utils.JSONError(w, http.StatusNotFound, postNotFound)
		return
	}

	utils.JSON(w, http.StatusOK, models.NewPostOut(*post))
}

// ---------------------- LIST ----------------------

func (h *PostHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Store.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sess.Close()

	posts, err := sess.ListPosts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.NewPostOuts(posts))
}

// ---------------------- UPDATE ----------------------

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt64(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var body models.PostCreate
	if err := validation.DecodeAndValidate(r, &body); err != nil {
		h.fail(w, r, err)
		return
	}

	sess, err := h.Store.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sess.Close()

	post, err := sess.UpdatePost(r.Context(), id, body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if post == nil {
		utils.JSONError(w, http.StatusNotFound, postNotFound)
		return
	}

	utils.JSON(w, http.StatusOK, models.NewPostOut(*post))
}

// ---------------------- DELETE ----------------------

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt64(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sess, err := h.Store.Session(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer sess.Close()

	deleted, err := sess.DeletePost(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		utils.JSONError(w, http.StatusNotFound, postNotFound)
		return
	}

	utils.NoContent(w, http.StatusNoContent)
}

// fail answers validation errors with 422 and anything else with a generic
// 500, logging the cause.
func (h *PostHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		utils.JSON(w, http.StatusUnprocessableEntity, verr)
		return
	}

	hlog.FromRequest(r).Error().Err(err).Msg("request failed")
	utils.JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
