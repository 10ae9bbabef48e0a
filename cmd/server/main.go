package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/credkit/modules/auth"
	"github.com/dmitrymomot/credkit/pkg/config"
	"github.com/dmitrymomot/credkit/pkg/email"
	"github.com/dmitrymomot/credkit/pkg/httpserver"
	"github.com/dmitrymomot/credkit/pkg/jwt"
	"github.com/dmitrymomot/credkit/pkg/logger"
	"github.com/dmitrymomot/credkit/pkg/pg"
	"github.com/dmitrymomot/credkit/pkg/redis"
)

type appConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`

	// VerificationStore selects where challenge token records live:
	// "postgres" (default) or "redis".
	VerificationStore string `env:"VERIFICATION_STORE" envDefault:"postgres"`

	Auth   auth.Config
	Log    logger.Config
	DB     pg.Config
	Redis  redis.Config
	Email  email.Config
	Server httpserver.Config
}

// tokenSweepInterval is how often expired verification token records are
// physically evicted. Expired records are already invisible to lookups;
// the sweep only keeps the table from growing.
const tokenSweepInterval = time.Hour

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithAttrs(slog.String("app", "credkit")))

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return err
	}

	var mailer email.EmailSender
	if cfg.Email.DevDir != "" {
		mailer = email.NewDevSender(cfg.Email.DevDir)
		log.Info("using dev email sender", slog.String("dir", cfg.Email.DevDir))
	} else {
		mailer, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return err
		}
	}

	codec, err := jwt.New([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	store := auth.NewPostgresStorage(pool)

	var tokens auth.VerificationStorage = store
	if cfg.VerificationStore == "redis" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		tokens = auth.NewRedisVerificationStorage(client)
		log.Info("using redis verification token store")
	}

	svc := auth.NewService(cfg.Auth, store, tokens, codec, mailer, auth.WithLogger(log))
	handler := auth.NewHandler(svc, auth.WithHandlerLogger(log))

	go sweepExpiredTokens(ctx, tokens, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", healthz(pg.Healthcheck(pool)))
	r.Mount("/", handler.Routes())

	srv := httpserver.NewFromConfig(cfg.Server, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func healthz(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := check(r.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func sweepExpiredTokens(ctx context.Context, store auth.VerificationStorage, log *slog.Logger) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.DeleteExpiredTokens(ctx); err != nil {
				log.Error("failed to sweep expired tokens", logger.Error(err))
			}
		}
	}
}
