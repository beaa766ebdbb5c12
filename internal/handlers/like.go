package handlers

import (
	"errors"
	"net/http"

	"postboard/internal/auth"
	"postboard/internal/db"
	"postboard/internal/logging"
	"postboard/internal/metrics"
)

type LikeHandler struct {
	Store PostStore
}

// Like toggles the current user's like on the post and answers with the
// new state as JSON.
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	id, ok := postID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}

	res, err := h.Store.ToggleLike(r.Context(), id, user.ID)
	if errors.Is(err, db.ErrPostNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int64("post_id", id).Msg("toggle like")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	result := "unliked"
	if res.Liked {
		result = "liked"
	}
	metrics.LikeToggles.WithLabelValues(result).Inc()

	writeJSON(w, http.StatusOK, res)
}
