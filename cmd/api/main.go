package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/bakery_ledger/internal/config"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/bakery_ledger/internal/delivery/http"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/http/handler"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/cache"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/database"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/bakery_ledger/internal/repository/cache"
	"github.com/Pesokrava/bakery_ledger/internal/repository/memory"
	"github.com/Pesokrava/bakery_ledger/internal/repository/postgres"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/product"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/sale"
	"github.com/Pesokrava/bakery_ledger/internal/usecase/stats"

	_ "github.com/Pesokrava/bakery_ledger/docs"
)

// @title Bakery Ledger API
// @version 1.0
// @description Product catalog, append-only sale ledger and inventory statistics for a bakery.

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/bakery_ledger

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Products
// @tag.description Product catalog endpoints

// @tag.name Sales
// @tag.description Sale ledger endpoints

// @tag.name Stats
// @tag.description Inventory summary and best sellers

// repositories bundles the storage ports used by the services
type repositories struct {
	products domain.ProductRepository
	sales    domain.SaleRepository
	stats    domain.StatsRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	logger.SetGlobalLogger(appLogger)
	appLogger.Infof("Starting Bakery Ledger API (storage: %s)...", cfg.Storage.Driver)

	var (
		repos          repositories
		productCache   product.Cache
		eventPublisher domain.EventPublisher
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		repos = repositories{products: store.Products(), sales: store.Sales(), stats: store.Stats()}
		appLogger.Warn("Using in-memory storage: cache and events are disabled, data is lost on exit")

	default:
		appLogger.Info("Connecting to PostgreSQL...")
		db, err := database.WaitForDB(cfg, 10, 2*time.Second)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", err)
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL successfully")

		if err := database.RunMigrations(db, cfg.Database.MigrationsDir); err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}

		repos = repositories{
			products: postgres.NewProductRepository(db),
			sales:    postgres.NewSaleRepository(db, cfg.Ledger.SaleMaxRetries),
			stats:    postgres.NewStatsRepository(db),
		}

		appLogger.Info("Connecting to Redis...")
		redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis successfully")
		productCache = cacheRepo.NewRedisCache(redisClient, cfg.Cache.ProductTTL)

		appLogger.Info("Connecting to NATS...")
		publisher, err := events.NewPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create NATS publisher", err)
		}
		defer publisher.Close()
		eventPublisher = publisher
	}

	productService := product.NewService(repos.products, productCache, eventPublisher, appLogger)
	saleService := sale.NewService(repos.sales, repos.products, eventPublisher, appLogger)
	statsService := stats.NewService(repos.stats, repos.products, appLogger)

	router := httpDelivery.NewRouter(
		handler.NewProductHandler(productService, appLogger),
		handler.NewSaleHandler(saleService, appLogger),
		handler.NewStatsHandler(statsService, appLogger),
		cfg,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
		return
	}

	appLogger.Info("Server stopped gracefully")
}
