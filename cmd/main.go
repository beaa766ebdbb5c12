package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"postboard/internal/auth"
	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/handlers"
	"postboard/internal/logging"
	"postboard/internal/supervisor"
	"postboard/internal/weather"
	"postboard/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	conn, err := db.Open(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer conn.Close()

	if err := db.InitDatabase(conn); err != nil {
		logging.Fatal().Err(err).Msg("init schema")
	}
	store := db.NewStore(conn)

	sessions, err := auth.NewSessionStore(cfg.Session.Store, conn, cfg.Session.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("store", cfg.Session.Store).Msg("open session store")
	}
	defer sessions.Close()

	tmpl, err := templates.Parse()
	if err != nil {
		logging.Fatal().Err(err).Msg("parse templates")
	}

	router := handlers.NewRouter(handlers.Deps{
		Store: store,
		Sessions: &auth.Sessions{
			Store:        sessions,
			Users:        store,
			CookieName:   cfg.Session.CookieName,
			TTL:          cfg.Session.TTL,
			SecureCookie: cfg.Session.SecureCookie,
		},
		Templates:   tmpl,
		Weather:     weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout),
		CORSOrigins: cfg.API.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddWebService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(supervisor.NewSessionJanitor(sessions, cfg.Session.CleanupInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("addr", server.Addr).
		Str("session_store", cfg.Session.Store).
		Msg("postboard listening")

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("supervisor stopped")
		os.Exit(1)
	}
	logging.Info().Msg("postboard stopped")
}
