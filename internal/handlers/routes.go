package handlers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postboard/internal/auth"
	"postboard/internal/middleware"
)

// Store is everything the handlers read and write.
type Store interface {
	PostStore
	UserStore
	Pinger
}

type Deps struct {
	Store       Store
	Sessions    *auth.Sessions
	Templates   *template.Template
	Weather     WeatherClient
	CORSOrigins []string
}

// NewRouter wires every route of the site.
func NewRouter(d Deps) http.Handler {
	errh := &ErrorHandler{Templates: d.Templates}
	posts := &PostHandler{Store: d.Store, Templates: d.Templates, Err: errh}
	likes := &LikeHandler{Store: d.Store}
	api := &APIHandler{Store: d.Store}
	authh := &AuthHandler{Users: d.Store, Sessions: d.Sessions, Templates: d.Templates, Err: errh}
	wh := &WeatherHandler{Client: d.Weather, Templates: d.Templates, Err: errh}
	health := &HealthHandler{DB: d.Store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(errh.RecoveryMiddleware)
	r.Use(middleware.Instrument)
	r.Use(d.Sessions.LoadUser)

	r.NotFound(errh.NotFound)
	r.MethodNotAllowed(errh.MethodNotAllowed)

	r.Get("/", posts.ListPosts)
	r.Get("/post/{id}", posts.GetPost)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/post/new", posts.CreatePost)
		r.Post("/post/new", posts.CreatePost)
		r.Get("/post/{id}/edit", posts.EditPost)
		r.Post("/post/{id}/edit", posts.EditPost)
		r.Get("/post/{id}/delete", posts.DeletePost)
		r.Post("/post/{id}/delete", posts.DeletePost)
		r.Post("/account/delete", authh.DeleteAccount)
	})
	r.With(auth.RequireAuthJSON).Post("/post/{id}/like", likes.Like)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			MaxAge:         300,
		}))
		r.Get("/posts/", api.ListPosts)
	})

	r.Get("/signup", authh.Signup)
	r.Post("/signup", authh.Signup)
	r.Get("/login", authh.Login)
	r.Post("/login", authh.Login)
	r.Post("/logout", authh.Logout)

	r.Get("/weather", wh.Show)
	r.Get("/healthz", health.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
