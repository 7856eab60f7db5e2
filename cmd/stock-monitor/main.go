package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/bakery_ledger/internal/config"
	"github.com/Pesokrava/bakery_ledger/internal/delivery/events"
	"github.com/Pesokrava/bakery_ledger/internal/domain"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/database"
	"github.com/Pesokrava/bakery_ledger/internal/pkg/logger"
	"github.com/Pesokrava/bakery_ledger/internal/repository/postgres"
	"github.com/Pesokrava/bakery_ledger/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting stock monitor...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to database")

	checker := worker.NewChecker(postgres.NewProductRepository(db), cfg.Ledger.LowStockThreshold, appLogger)
	stockWorker := worker.NewStockWorker(checker, func(a worker.Alert) {
		appLogger.WithFields(map[string]any{
			"alert":           a.Level,
			"product_id":      a.Stock.ProductID.String(),
			"name":            a.Name,
			"remaining_stock": a.Stock.RemainingStock,
		}).Warn("Stock alert")
	}, appLogger)

	appLogger.Info("Connecting to NATS JetStream...")
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	appLogger.WithFields(map[string]any{
		"url": cfg.NATS.URL,
	}).Info("Connected to NATS JetStream")

	streamConfig := events.NewStreamConfig(js, appLogger)
	if err := streamConfig.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure stream", err)
	}
	if err := streamConfig.EnsureConsumer(); err != nil {
		appLogger.Fatal("Failed to ensure consumer", err)
	}

	sub, err := js.PullSubscribe(domain.SubjectSales, events.StockMonitorConsumer, nats.ManualAck())
	if err != nil {
		appLogger.Fatal("Failed to subscribe to JetStream consumer", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			appLogger.Error("Failed to unsubscribe from JetStream", err)
		}
	}()

	appLogger.WithFields(map[string]any{
		"stream":   events.StreamName,
		"consumer": events.StockMonitorConsumer,
	}).Info("Subscribed to JetStream consumer")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	go func() {
		for ctx.Err() == nil {
			msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				appLogger.Error("Failed to fetch messages from JetStream", err)
				time.Sleep(5 * time.Second)
				continue
			}

			for _, msg := range msgs {
				if err := stockWorker.HandleEvent(msg.Data); err != nil {
					// Malformed payloads are redelivered with backoff until MaxDeliver, then dropped
					if nakErr := msg.Nak(); nakErr != nil {
						appLogger.Error("Failed to NAK message", nakErr)
					}
					continue
				}

				if ackErr := msg.Ack(); ackErr != nil {
					appLogger.Error("Failed to ACK message", ackErr)
				}
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	appLogger.Info("Received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := stockWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Stock monitor stopped")
}
