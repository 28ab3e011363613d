package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "tutelo/internal/adapters/http_server"
	"tutelo/internal/adapters/observability"
	"tutelo/internal/app"
	"tutelo/internal/shared"
	mysqlrepo "tutelo/internal/storage/mysql"
	"tutelo/internal/storage/uploads"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve(cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// uploads root
	store, err := uploads.New(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("uploads store init failed")
	}
	log.Info().Str("dir", store.Root()).Msg("uploads root ready")

	// deps
	repo := mysqlrepo.New(db)
	hotels := app.NewHotelService(repo, store)
	images := app.NewImageService(repo, store)
	auth := server.NewAuth(cfg.JWTSecret, cfg.AdminUser, cfg.AdminPassHash, cfg.LoginRPS)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountUploads(store.Root())
	srv.MountHandlers(&server.Handlers{
		Hotels:    hotels,
		Images:    images,
		MaxUpload: cfg.MaxUploadBytes,
	}, auth)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
