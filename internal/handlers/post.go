package handlers

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"postboard/internal/auth"
	"postboard/internal/db"
	"postboard/internal/logging"
	"postboard/internal/metrics"
	"postboard/internal/models"
	"postboard/internal/validation"
)

// PostStore is the persistence the post, like and API handlers need.
type PostStore interface {
	ListPosts(ctx context.Context, query string) ([]models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, authorID int64, content string) (*models.Post, error)
	UpdatePostContent(ctx context.Context, id int64, content string) error
	DeletePost(ctx context.Context, id int64) error
	HasLiked(ctx context.Context, postID, userID int64) (bool, error)
	ToggleLike(ctx context.Context, postID, userID int64) (models.LikeResult, error)
	Likers(ctx context.Context) (map[int64][]int64, error)
}

type PostHandler struct {
	Store     PostStore
	Templates *template.Template
	Err       *ErrorHandler
}

// ListPosts is the timeline, optionally filtered by ?q=.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	posts, err := h.Store.ListPosts(r.Context(), query)
	if err != nil {
		h.Err.Internal(w, r, err, "list posts")
		return
	}

	renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
		"Page":  "timeline",
		"Posts": posts,
		"Query": query,
	})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	isAuthor := false
	if u, ok := auth.UserFromContext(r.Context()); ok {
		isAuthor = u.ID == post.AuthorID
		liked, err := h.Store.HasLiked(r.Context(), post.ID, u.ID)
		if err != nil {
			h.Err.Internal(w, r, err, "check like")
			return
		}
		post.LikedByMe = liked
	}

	renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
		"Page":     "post",
		"Post":     post,
		"IsAuthor": isAuthor,
	})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if r.Method == http.MethodGet {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{"Page": "create"})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Err.Render(w, r, http.StatusBadRequest, "Malformed form")
		return
	}

	raw := r.PostForm.Get("content")
	form := validation.NewPostForm(raw)
	if errs := form.Validate(); errs != nil {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "create",
			"FormErrors": errs,
			"FormValues": map[string]string{"Content": raw},
		})
		return
	}

	post, err := h.Store.CreatePost(r.Context(), user.ID, form.Content)
	if err != nil {
		h.Err.Internal(w, r, err, "create post")
		return
	}
	metrics.PostsCreated.Inc()
	logging.Ctx(r.Context()).Info().Int64("post_id", post.ID).Int64("author_id", user.ID).Msg("post created")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PostHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "edit",
			"Post":       post,
			"FormValues": map[string]string{"Content": post.Content},
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Err.Render(w, r, http.StatusBadRequest, "Malformed form")
		return
	}

	raw := r.PostForm.Get("content")
	form := validation.NewPostForm(raw)
	if errs := form.Validate(); errs != nil {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "edit",
			"Post":       post,
			"FormErrors": errs,
			"FormValues": map[string]string{"Content": raw},
		})
		return
	}

	if err := h.Store.UpdatePostContent(r.Context(), post.ID, form.Content); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			h.Err.NotFound(w, r)
			return
		}
		h.Err.Internal(w, r, err, "update post")
		return
	}

	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

// DeletePost shows a confirmation on GET and deletes on POST.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwnPost(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page": "delete",
			"Post": post,
		})
		return
	}

	if err := h.Store.DeletePost(r.Context(), post.ID); err != nil && !errors.Is(err, db.ErrPostNotFound) {
		h.Err.Internal(w, r, err, "delete post")
		return
	}
	logging.Ctx(r.Context()).Info().Int64("post_id", post.ID).Msg("post deleted")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadPost fetches the post named in the URL, answering 404 itself when
// there is none.
func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := postID(r)
	if !ok {
		h.Err.NotFound(w, r)
		return nil, false
	}
	post, err := h.Store.GetPost(r.Context(), id)
	if errors.Is(err, db.ErrPostNotFound) {
		h.Err.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		h.Err.Internal(w, r, err, "get post")
		return nil, false
	}
	return post, true
}

// loadOwnPost is loadPost for the author only. Anyone else is sent back to
// the post page without a message.
func (h *PostHandler) loadOwnPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return nil, false
	}
	user, _ := auth.UserFromContext(r.Context())
	if user == nil || user.ID != post.AuthorID {
		http.Redirect(w, r, postURL(post.ID), http.StatusFound)
		return nil, false
	}
	return post, true
}

func postURL(id int64) string {
	return fmt.Sprintf("/post/%d", id)
}
