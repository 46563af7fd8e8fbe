// Command zeitgeist-api serves the moments read API plus the stateless
// qualify and decision endpoints
package main

import (
	"context"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"zeitgeist/internal/core/version"
	"zeitgeist/internal/platform/config"
	"zeitgeist/internal/platform/logger"
	phttp "zeitgeist/internal/platform/net/http"
	"zeitgeist/internal/platform/net/middleware"
	"zeitgeist/internal/platform/store/pg"
	mhttp "zeitgeist/internal/services/moments/http"
	"zeitgeist/internal/services/moments/repo"
)

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Named("api")

	cfg := config.New().Prefix("ZEITGEIST_API_")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := pg.Open(ctx, pg.Config{
		URL:      cfg.MustString("PGSQL_URL"),
		MaxConns: int32(cfg.MayInt("PGSQL_MAX_CONNS", 8)),
		SlowMs:   cfg.MayInt("PGSQL_SLOW_MS", 250),
	}, pg.Tracer(*logger.Get()))
	if err != nil {
		l.Panic().Err(err).Msg("postgres open failed")
	}
	defer db.Close()

	srv := phttp.NewServer(cfg)
	r := srv.Router()
	r.Use(middleware.Defaults()...)
	r.Use(middleware.Heartbeat("/healthz"))
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{
		Slow: cfg.MayDuration("SLOW_REQUEST", 2*time.Second),
	}))
	r.Use(middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: cfg.MayCSV("CORS_ORIGINS", []string{"*"}),
	}))

	mhttp.NewHandlers(repo.NewPG(db.Pool), nil).Routes(r)
	r.Get("/version", func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		phttp.RespondOK(w, req, version.Info("zeitgeist-api"))
	})

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server failed")
	}
	l.Info().Msg("api stopped")
}
