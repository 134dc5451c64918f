package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vncsmyrnk/pollvotes/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollvotes/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollvotes/internal/adapters/tally/redis"
	"github.com/vncsmyrnk/pollvotes/internal/config"
	"github.com/vncsmyrnk/pollvotes/internal/core/ports"
	"github.com/vncsmyrnk/pollvotes/internal/core/services"
	"github.com/vncsmyrnk/pollvotes/internal/telemetry"
)

const serviceName = "pollvotes"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg.Env))

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	if env == config.EnvLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var spans io.Writer
	if cfg.Tracing.Stdout || cfg.Env == config.EnvLocal {
		spans = os.Stdout
	}
	shutdownTracing, err := telemetry.SetupTracing(serviceName, spans)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		return err
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}

	voteRepo := postgres.NewVoteRepository(db)
	checks := map[string]http.Pinger{"postgres": voteRepo}

	var (
		tally       ports.TallyCounter
		broadcaster ports.TallyBroadcaster
	)
	if cfg.Redis.Enabled() {
		opts, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return err
		}
		client := goredis.NewClient(opts)
		defer client.Close()

		tally = redis.NewCounter(client)
		broadcaster = redis.NewPublisher(client)
		checks["redis"] = http.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		slog.Warn("REDIS_URL not set, running without live tally")
	}

	voteService := services.NewVoteService(voteRepo, tally, broadcaster)

	sessions := http.NewSessionCookies(cfg.Cookie.Secret, cfg.Cookie.Domain, cfg.Cookie.Secure, cfg.Cookie.SameSiteMode())
	voteHandler := http.NewVoteHandler(voteService, sessions)
	healthHandler := http.NewHealthHandler(checks)

	handler := otelhttp.NewHandler(http.NewHandler(voteHandler, healthHandler, cfg.HTTP.AllowedOrigins), serviceName)
	server := &stdhttp.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
