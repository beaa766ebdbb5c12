package handlers

import (
	"html/template"
	"net/http"
	"runtime/debug"

	"postboard/internal/logging"
)

type ErrorHandler struct {
	Templates *template.Template
}

func (h *ErrorHandler) Render(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if h == nil || h.Templates == nil {
		http.Error(w, msg, status)
		return
	}
	renderPage(w, r, h.Templates, status, map[string]interface{}{
		"Page":   "error",
		"Error":  msg,
		"Status": status,
	})
}

func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusNotFound, "Page not found")
}

func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}

// Internal logs err and renders a generic 500.
func (h *ErrorHandler) Internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	h.Render(w, r, http.StatusInternalServerError, "Internal server error")
}

func (h *ErrorHandler) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logging.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				h.Render(w, r, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
