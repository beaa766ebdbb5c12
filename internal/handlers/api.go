package handlers

import (
	"net/http"

	"postboard/internal/logging"
	"postboard/internal/models"
)

type APIHandler struct {
	Store PostStore
}

// ListPosts returns every post as JSON, newest first.
func (h *APIHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Store.ListPosts(r.Context(), "")
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("api list posts")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	likers, err := h.Store.Likers(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("api list likers")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := make([]models.PostJSON, 0, len(posts))
	for _, p := range posts {
		likes := likers[p.ID]
		if likes == nil {
			likes = []int64{}
		}
		out = append(out, models.PostJSON{
			ID:             p.ID,
			Content:        p.Content,
			CreatedAt:      p.CreatedAt,
			Author:         p.AuthorID,
			AuthorUsername: p.Author,
			Likes:          likes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
