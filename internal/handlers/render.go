package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"postboard/internal/auth"
	"postboard/internal/logging"
)

// renderPage executes the layout with data into a buffer first, so a
// template failure turns into a clean 500 instead of half a page.
func renderPage(w http.ResponseWriter, r *http.Request, t *template.Template, status int, data map[string]interface{}) {
	if u, ok := auth.UserFromContext(r.Context()); ok {
		data["User"] = u
	}
	if _, set := data["Flash"]; !set {
		data["Flash"] = auth.PopFlash(w, r)
	}
	for _, k := range []string{"FormErrors", "FormValues"} {
		if _, set := data[k]; !set {
			data[k] = map[string]string{}
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Interface("page", data["Page"]).Msg("template render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Err(err).Msg("encode json response")
	}
}

// postID parses the {id} route parameter.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
