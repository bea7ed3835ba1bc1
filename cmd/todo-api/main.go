package main

import (
	"context"
	"os"
	"time"

	"github.com/Varun5711/todocal/internal/auth"
	"github.com/Varun5711/todocal/internal/cache"
	"github.com/Varun5711/todocal/internal/config"
	"github.com/Varun5711/todocal/internal/database"
	"github.com/Varun5711/todocal/internal/logger"
	"github.com/Varun5711/todocal/internal/middleware"
	redisclient "github.com/Varun5711/todocal/internal/redis"
	"github.com/Varun5711/todocal/internal/server"
	"github.com/Varun5711/todocal/internal/service"
	"github.com/Varun5711/todocal/internal/storage"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New("todo-api")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid config: %v", err)
	}
	log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	log.SetColors(cfg.Log.Colors)

	ctx := context.Background()

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbManager, err := database.NewDBManager(dbCtx, database.Config{
		PrimaryDSN:      cfg.Database.PrimaryDSN,
		ReplicaDSNs:     cfg.Database.ReplicaDSNs,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	log.Info("Connected to PostgreSQL (%d replicas)", len(cfg.Database.ReplicaDSNs))

	if err := dbManager.EnsureSchema(ctx); err != nil {
		dbManager.Close()
		log.Fatal("Failed to prepare schema: %v", err)
	}

	var rdb *redisclient.RedisClient
	var redisConn *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisclient.NewRedisClient(ctx, redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, continuing without it: %v", err)
		} else {
			redisConn = rdb.GetClient()
			log.Info("Connected to Redis at %s", cfg.Redis.Addr)
		}
	}

	userCache := cache.NewMultiTierCache(cfg.Cache.L1Capacity, redisConn, cfg.Cache.L2TTL)

	userService := service.NewUserService(
		storage.NewUserStorage(dbManager),
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		userCache,
		log.With("user-service"),
	)
	todoService := service.NewTodoService(storage.NewTodoStorage(dbManager), nil)

	var limiter *middleware.RateLimiter
	if redisConn != nil {
		limiter = middleware.NewRateLimiter(redisConn, cfg.RateLimit.Requests, cfg.RateLimit.Window, log.With("ratelimit"))
		log.Info("Auth rate limit: %s", limiter)
	}

	app := server.New(server.Deps{
		Users:       userService,
		Todos:       todoService,
		Limiter:     limiter,
		Log:         log.With("http"),
		Environment: cfg.Server.Environment,
		CORSOrigin:  cfg.Server.CORSOrigin,
	})

	go func() {
		log.Info("Listening on :%s (%s)", cfg.Server.Port, cfg.Server.Environment)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// In-flight requests drain before the pools they use are closed.
	wait := gfshutdown.GracefulShutdown(ctx, cfg.Server.ShutdownTimeout, map[string]gfshutdown.Operation{
		"todo-api": func(ctx context.Context) error {
			log.Info("Shutting down...")
			err := app.ShutdownWithContext(ctx)
			log.Info("Database pools: %v", dbManager.Stats())
			dbManager.Close()
			if rdb != nil {
				log.Info("Redis pool: %v", rdb.Stats())
				if cerr := rdb.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
			return err
		},
	})

	exitCode := <-wait
	log.Info("Shutdown complete (exit code %d)", exitCode)
	os.Exit(exitCode)
}
