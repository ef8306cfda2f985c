package cli

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"sustainability-quiz-service/internal/app"
	"sustainability-quiz-service/internal/config"
	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/infra/memory"
	"sustainability-quiz-service/internal/infra/postgres"
	redisinfra "sustainability-quiz-service/internal/infra/redis"
	"sustainability-quiz-service/internal/logger"
)

// services is the wired application layer plus the handles to release on exit.
type services struct {
	quiz      *app.QuizService
	analytics *app.AnalyticsService
	auth      *app.AuthService
	closers   []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func loadConfig(path string) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// openServices picks Postgres and Redis backed stores when configured and
// falls back to the in-memory ones otherwise.
func openServices(ctx context.Context, cfg config.Config, log *logger.Logger) (*services, error) {
	svc := &services{}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	abandonAfter := config.Duration(cfg.Quiz.AbandonAfter, app.DefaultAbandonAfter)
	catalogTTL := config.Duration(cfg.Quiz.CatalogTTL, 10*time.Minute)

	var (
		sessions  app.SessionStore
		aggregate app.AnalyticsStore
		users     app.UserStore
		loader    memory.CatalogLoader = memory.StaticCatalogLoader{}
		activity  app.ActivityTracker
	)

	if cfg.Postgres.URL != "" {
		db := postgres.OpenDB(cfg.Postgres.URL)
		svc.closers = append(svc.closers, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, pool.Close)

		store := postgres.NewStore(db)
		sessions, users = store, store
		aggregate = postgres.NewAnalyticsReader(pool)
		loader = postgres.NewCatalogLoader(pool)
		log.Info("using postgres storage")
	} else {
		store := memory.NewStore()
		sessions, users, aggregate = store, store, store
		log.Warn("postgres not configured, using in-memory storage")
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		activity = redisinfra.NewActivityTracker(client, abandonAfter)
		loader = redisinfra.NewCatalogCache(client, loader, catalogTTL)
		log.Info("using redis activity tracking", "addr", cfg.Redis.Addr)
	} else {
		activity = memory.NewActivityTracker(abandonAfter)
	}

	catalog := memory.NewCatalogRepository(loader, catalogTTL)

	secret := []byte(cfg.Auth.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			svc.Close()
			return nil, err
		}
		log.Warn("auth.jwtSecret not set, tokens will not survive a restart")
	}

	svc.quiz = app.NewQuizService(sessions, catalog, activity, log)
	svc.analytics = app.NewAnalyticsService(aggregate, activity, loc, abandonAfter, log)
	svc.auth = app.NewAuthService(users, secret, config.Duration(cfg.Auth.TokenTTL, app.DefaultTokenTTL))

	if err := seedAdmin(ctx, svc.auth, cfg, log); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}

// seedAdmin creates the configured dashboard admin. An existing account is left untouched.
func seedAdmin(ctx context.Context, auth *app.AuthService, cfg config.Config, log *logger.Logger) error {
	email, password := cfg.Auth.AdminEmail, cfg.Auth.AdminPassword
	if email == "" || password == "" {
		if email != "" || password != "" {
			log.Warn("auth.adminEmail and auth.adminPassword must both be set, skipping admin seed")
		}
		return nil
	}
	u, err := auth.CreateUser(ctx, email, password, domain.RoleAdmin)
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return nil
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("admin user created", "id", u.ID, "email", u.Email)
	return nil
}
