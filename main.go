package main

import (
	"context"
	"delivery-tracking-client/config"
	"delivery-tracking-client/core"
	"delivery-tracking-client/gateway"
	"delivery-tracking-client/session"
	workersync "delivery-tracking-client/workers/sync"
	"delivery-tracking-client/workers/sync/repositories"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.LoadConfig()
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})

	if err != nil {
		log.Fatal(err)
	}

	if err := db.AutoMigrate(&session.Record{}, &repositories.OrderSnapshot{}); err != nil {
		log.Fatal(err)
	}

	logger, err := core.NewLogger(*cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	sessions := session.NewStore(session.NewRepository(db), logger)
	client := gateway.NewClient(cfg.Api, sessions, logger)

	if sessions.Restore() == nil {
		logger.Info("No persisted session found, waiting for login")
	}

	orchestrator := core.NewOrchestrator(logger, []core.Worker{
		workersync.NewWorker(logger, repositories.NewRepository(db), client, cfg.SyncSchedule),
	})

	c, err := orchestrator.Start(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Stop()

	logger.Info("Delivery tracking client started", zap.String("api_base", cfg.Api.BaseURL))

	// Wait for termination signal to exit gracefully
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
