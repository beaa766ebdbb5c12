package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"postboard/internal/logging"
	"postboard/internal/models"
)

type userKeyType struct{}

// UserGetter resolves the user a session points at.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Sessions ties the session store to the session cookie.
type Sessions struct {
	Store        SessionStore
	Users        UserGetter
	CookieName   string
	TTL          time.Duration
	SecureCookie bool
}

// UserFromContext returns the logged-in user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKeyType{}).(*models.User)
	return u, ok && u != nil
}

// ContextWithUser is used by LoadUser and by tests.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKeyType{}, u)
}

// Login creates a session for u and sets the cookie.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, u *models.User) error {
	sess := NewSession(u.ID, s.TTL)
	if err := s.Store.Create(r.Context(), sess); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    sess.ID,
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// Logout drops the current session, if any, and expires the cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(s.CookieName); cerr == nil {
		err = s.Store.Delete(r.Context(), c.Value)
	}
	s.clearCookie(w)
	return err
}

func (s *Sessions) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

// LoadUser resolves the session cookie into a user on the request context.
// Requests without a valid session pass through anonymously.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.CookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		sess, err := s.Store.Get(ctx, c.Value)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Ctx(ctx).Error().Err(err).Msg("session lookup failed")
			}
			s.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		u, err := s.Users.GetUser(ctx, sess.UserID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int64("user_id", sess.UserID).Msg("session points at missing user")
			s.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, u)))
	})
}

// RequireAuth redirects anonymous requests to the login page, remembering
// where they were going.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if _, ok := UserFromContext(r.Context()); !ok {
			SetFlash(w, "Log in to continue")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthJSON rejects anonymous requests with 401 and a JSON body, for
// endpoints called from scripts.
func RequireAuthJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
