// main.go
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"ppob-backend/cmd"
	"ppob-backend/internal/data/repository"
	"ppob-backend/internal/usecase"
	"ppob-backend/internal/wire"
	"ppob-backend/pkg/cache"
	"ppob-backend/pkg/database"
	"ppob-backend/pkg/digiflazz"
	"ppob-backend/pkg/events"
	"ppob-backend/pkg/token"
	"ppob-backend/pkg/utils"
)

func main() {
	// Load config
	config, err := utils.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("storage", config.App.Storage),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	var repos *repository.Repository
	if config.App.Storage == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		repos = repository.NewMemoryRepository()
	} else {
		db, err := database.InitDB(ctx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		logger.Info("Database connected successfully")

		repos = repository.NewRepository(db, logger)
	}

	deps := usecase.Dependencies{
		Tokens: token.NewManager(config.JWT.Secret, config.JWT.AccessTTL, config.JWT.RefreshTTL),
		Provider: digiflazz.NewClient(digiflazz.Config{
			Username: config.Digiflazz.Username,
			APIKey:   config.Digiflazz.APIKey,
			BaseURL:  config.Digiflazz.BaseURL,
			Timeout:  config.Digiflazz.Timeout,
			Testing:  config.Digiflazz.Testing,
		}, logger),
	}

	// Status cache + webhook dedup
	if config.Redis.Addr != "" {
		rdb := cache.NewRedis(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("Redis unreachable, status cache will retry per request", zap.Error(err))
		}
		deps.Cache, deps.Dedup = rdb, rdb
	} else {
		mem := cache.NewMemory()
		deps.Cache, deps.Dedup = mem, mem
	}

	// Transaction events
	if len(config.Kafka.Brokers) > 0 {
		pub := events.NewKafka(config.Kafka.Brokers, config.Kafka.Topic, config.App.Name, 1024, logger)
		defer func() {
			if err := pub.Close(); err != nil {
				logger.Error("Failed to close event publisher", zap.Error(err))
			}
		}()
		deps.Events = pub
	}

	// Wire all dependencies
	app := wire.Wiring(repos, config, deps, logger)

	go cmd.RunEvery(ctx, time.Hour, func(ctx context.Context) {
		n, err := app.Service.Token.PruneExpired(ctx)
		if err != nil {
			logger.Error("Failed to prune refresh tokens", zap.Error(err))
			return
		}
		logger.Debug("Refresh tokens pruned", zap.Int64("deleted", n))
	})

	// Start server
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}
