package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"postboard/internal/auth"
	"postboard/internal/db"
	"postboard/internal/logging"
	"postboard/internal/models"
	"postboard/internal/validation"
)

// UserStore is the account persistence the auth handlers need.
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	Credentials(ctx context.Context, username string) (*models.User, string, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	DeleteUser(ctx context.Context, id int64) error
}

type AuthHandler struct {
	Users     UserStore
	Sessions  *auth.Sessions
	Templates *template.Template
	Err       *ErrorHandler
}

const badLoginMessage = "Please enter a correct username and password. Note that both fields may be case-sensitive."

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{"Page": "signup"})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Err.Render(w, r, http.StatusBadRequest, "Malformed form")
		return
	}

	form := validation.NewSignupForm(
		r.PostForm.Get("username"),
		r.PostForm.Get("password1"),
		r.PostForm.Get("password2"),
	)
	values := map[string]string{"Username": form.Username}

	errs := form.Validate()
	if _, bad := errs["Username"]; !bad && form.Username != "" {
		taken, err := h.Users.UsernameExists(r.Context(), form.Username)
		if err != nil {
			h.Err.Internal(w, r, err, "check username")
			return
		}
		if taken {
			if errs == nil {
				errs = validation.FieldErrors{}
			}
			errs["Username"] = "A user with that username already exists."
		}
	}
	if len(errs) > 0 {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "signup",
			"FormErrors": errs,
			"FormValues": values,
		})
		return
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		h.Err.Internal(w, r, err, "hash password")
		return
	}
	u, err := h.Users.CreateUser(r.Context(), form.Username, hash)
	if errors.Is(err, db.ErrUsernameTaken) {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "signup",
			"FormErrors": validation.FieldErrors{"Username": "A user with that username already exists."},
			"FormValues": values,
		})
		return
	}
	if err != nil {
		h.Err.Internal(w, r, err, "create user")
		return
	}
	logging.Ctx(r.Context()).Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user signed up")

	auth.SetFlash(w, "Account created. You can log in now.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page": "login",
			"Next": safeNext(r.URL.Query().Get("next")),
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		h.Err.Render(w, r, http.StatusBadRequest, "Malformed form")
		return
	}

	form := validation.LoginForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	next := safeNext(r.PostForm.Get("next"))
	fail := func(errs validation.FieldErrors) {
		renderPage(w, r, h.Templates, http.StatusOK, map[string]interface{}{
			"Page":       "login",
			"Next":       next,
			"FormErrors": errs,
			"FormValues": map[string]string{"Username": form.Username},
		})
	}

	if errs := form.Validate(); errs != nil {
		fail(errs)
		return
	}

	u, hash, err := h.Users.Credentials(r.Context(), form.Username)
	if errors.Is(err, db.ErrUserNotFound) {
		fail(validation.FieldErrors{"NonField": badLoginMessage})
		return
	}
	if err != nil {
		h.Err.Internal(w, r, err, "load credentials")
		return
	}
	if err := auth.CheckPassword(hash, form.Password); err != nil {
		logging.Ctx(r.Context()).Info().Str("username", form.Username).Msg("failed login")
		fail(validation.FieldErrors{"NonField": badLoginMessage})
		return
	}

	if err := h.Sessions.Login(w, r, u); err != nil {
		h.Err.Internal(w, r, err, "create session")
		return
	}

	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("delete session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteAccount removes the current user. Their posts and likes go with
// them; every session they hold is revoked.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	if err := h.Users.DeleteUser(r.Context(), u.ID); err != nil && !errors.Is(err, db.ErrUserNotFound) {
		h.Err.Internal(w, r, err, "delete user")
		return
	}
	// The sqlite store already lost the rows by cascade; badger did not.
	if _, err := h.Sessions.Store.DeleteByUserID(r.Context(), u.ID); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("user_id", u.ID).Msg("revoke sessions")
	}
	if err := h.Sessions.Logout(w, r); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("delete session")
	}
	logging.Ctx(r.Context()).Info().Int64("user_id", u.ID).Msg("account deleted")

	auth.SetFlash(w, "Your account has been deleted.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
