package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hourbook/hourbook/internal/common/logtrace"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auditlog"
	"github.com/hourbook/hourbook/internal/hourbooksrv/auth"
	"github.com/hourbook/hourbook/internal/hourbooksrv/config"
	"github.com/hourbook/hourbook/internal/hourbooksrv/db"
	"github.com/hourbook/hourbook/internal/hourbooksrv/ledger"
	"github.com/hourbook/hourbook/internal/hourbooksrv/server"
	"github.com/hourbook/hourbook/internal/hourbooksrv/settings"
)

type cmdoptions struct {
	configFile string
	migrate    bool
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	flag.StringVar(&opt.configFile, "config", "hourbooksrv.conf", "path to the server config file")
	flag.BoolVar(&opt.migrate, "migrate", false, "apply the database schema before serving")
	flag.Parse()
	return opt
}

func main() {
	logtrace.InitLogger("info")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog := log.With().Str("state", "init").Logger()
	ctx = slog.WithContext(ctx)

	opt := parseFlags()

	slog.Info().Str("config_file", opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(opt.configFile); err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	cfg := config.Config()
	logtrace.InitLogger(cfg.LogLevel)

	if err := db.Init(ctx); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if opt.migrate {
		slog.Info().Msg("applying schema")
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	var store db.ContextStore
	authSvc := auth.NewService(store, &cfg.Auth)
	if err := seedRoot(ctx, authSvc); err != nil {
		return fmt.Errorf("seeding root member: %w", err)
	}

	var sink auditlog.Sink = auditlog.Nop{}
	if cfg.AuditLog.Path != "" {
		fs, err := auditlog.NewFileSink(cfg.AuditLog.Path)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer fs.Close()
		sink = fs
	}

	l := ledger.New(store,
		ledger.WithSessionCap(cfg.Ledger.SessionCapHours()),
		ledger.WithAuditSink(sink),
	)

	srv, err := server.CreateNewServer(server.Options{
		Ledger:             l,
		Auth:               authSvc,
		Settings:           settings.NewStore(cfg.Auth.GetTokenValidityOrDefault(), authSvc.IsRoot, cfg.Auth.RootMemberCode),
		ConnMiddleware:     db.LoadScopedDBMiddleware,
		Ready:              db.Ping,
		HandleCORS:         cfg.HandleCORS,
		AllowedOrigins:     []string{"*"},
		RequestTimeout:     cfg.GetRequestTimeoutOrDefault(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.MountHandlers()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           srv.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info().Str("port", cfg.ServerPort).Float64("session_cap_hours", l.SessionCap()).Msg("server started")
		serverErrors <- httpSrv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		slog.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error().Err(err).Msg("could not stop server gracefully")
			if err := httpSrv.Close(); err != nil {
				slog.Error().Err(err).Msg("could not stop server")
			}
		}
	}

	slog.Info().Msg("server stopped")
	return nil
}

// seedRoot makes sure the root administrator exists before the first login.
func seedRoot(ctx context.Context, a *auth.Service) error {
	ctx, err := db.ConnCtx(ctx)
	if err != nil {
		return err
	}
	defer db.DB(ctx).Close(context.Background())
	return a.SeedRoot(ctx)
}
