// @title         bonsai API
// @version       1.0
// @description   Task manager API with bearer-token authentication.
// @BasePath      /
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token: "Bearer <JWT>".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/artem13815/bonsai/api/http"
	"github.com/artem13815/bonsai/api/http/handlers"
	"github.com/artem13815/bonsai/api/http/middleware"
	_ "github.com/artem13815/bonsai/docs"
	"github.com/artem13815/bonsai/pkg/auth"
	"github.com/artem13815/bonsai/pkg/config"
	"github.com/artem13815/bonsai/pkg/health"
	"github.com/artem13815/bonsai/pkg/health/checkers"
	"github.com/artem13815/bonsai/pkg/logger"
	"github.com/artem13815/bonsai/pkg/metrics"
	"github.com/artem13815/bonsai/pkg/repository/memory"
	pgrepo "github.com/artem13815/bonsai/pkg/repository/postgres"
	"github.com/artem13815/bonsai/pkg/scheduler"
	"github.com/artem13815/bonsai/pkg/security/jwt"
	"github.com/artem13815/bonsai/pkg/security/password"
	"github.com/artem13815/bonsai/pkg/storage/postgres"
	redisstore "github.com/artem13815/bonsai/pkg/storage/redis"
	"github.com/artem13815/bonsai/pkg/task"
)

// stores groups the repositories selected by STORAGE.
type stores struct {
	users interface {
		auth.UserRepository
		scheduler.Counter
	}
	tasks task.Repository
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bonsai: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from env/.env
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	var checks []health.Checker

	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		st = stores{users: memory.NewUserRepository(), tasks: memory.NewTaskRepository()}
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}
		st = postgresStores(pool)
		checks = append(checks, checkers.NewPostgresChecker(pool))
	}

	var limiterStorage fiber.Storage
	if cfg.RedisAddr != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer closeRedis(log, client)
		limiterStorage = redisstore.NewStorage(client, "bonsai:")
		checks = append(checks, checkers.NewRedisChecker(client))
	}

	// Wire dependencies
	codec, err := jwt.NewCodec(cfg.JWTSecret)
	if err != nil {
		return err
	}
	authOpts := []auth.Option{
		auth.WithLogger(log.Named("auth")),
		auth.WithObserver(m),
	}
	session, err := auth.NewSessionService(st.users, password.NewArgon2idHasher(password.DefaultParams), codec, authOpts...)
	if err != nil {
		return err
	}
	gate := auth.NewGate(auth.NewResolver(codec, st.users, authOpts...))

	app := http.NewApp(http.AppOptions{
		Logger:      log.Named("http"),
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins,
	})
	http.Register(app, http.Routes{
		Auth:         handlers.NewAuthHandler(session),
		Tasks:        handlers.NewTaskHandler(task.NewService(st.tasks)),
		Health:       handlers.NewHealthHandler(health.NewService(checks...)),
		Metrics:      m,
		RequireAuth:  middleware.RequireAuth(gate),
		LoginLimiter: http.NewLoginLimiter(cfg.LoginRateLimit, limiterStorage),
	})

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	var sched *scheduler.Scheduler
	if cfg.EnableCronJobs {
		sched = scheduler.New(log.Named("scheduler"), m)
		if err := sched.Add(scheduler.MaintenanceJobs(log.Named("maintenance"), st.users, st.tasks)...); err != nil {
			return err
		}
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	return nil
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{users: pgrepo.NewUserRepository(pool), tasks: pgrepo.NewTaskRepository(pool)}
}

func closeRedis(log *zap.Logger, client *goredis.Client) {
	if err := client.Close(); err != nil {
		log.Warn("redis close", zap.Error(err))
	}
}
