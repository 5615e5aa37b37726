package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cosmo-agent/internal/client"
	"cosmo-agent/internal/config"
	"cosmo-agent/internal/logger"
	"cosmo-agent/internal/metrics"
	"cosmo-agent/internal/repository"
	"cosmo-agent/internal/server"
	"cosmo-agent/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New("cosmo", cfg.Log, cfg.Debug)

	var store service.Store
	switch cfg.Store.Backend {
	case config.BackendMySQL:
		db, err := client.InitMysqlClient(cfg.Store.DatabaseURL, cfg.Debug)
		if err != nil {
			appLogger.Fatalf("init store database: %v", err)
		}
		store = repository.NewStoreRepository(db, cfg.Store.ServerID)
	default:
		store = client.NewStoreClient(&cfg.Store)
	}

	rconClient := client.NewRconClient(&cfg.Rcon)
	defer rconClient.Close()

	metrics.Register()

	reconcileService := service.NewReconcileService(store, rconClient, rconClient, appLogger)
	scheduler := service.NewScheduler(cfg.Store.FetchInterval(), reconcileService, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schedulerDone := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(schedulerDone)
	}()

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(scheduler, cfg.Store.ServerToken, appLogger)

	appLogger.Infof("Starting HTTP server on %s (%s, store backend %s)", serverAddr, cfg.Environment.Name, cfg.Store.Backend)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	appLogger.Info("Signal received, starting graceful shutdown...")

	// a running cycle finishes before the timer loop returns
	cancel()
	<-schedulerDone

	if err := srv.Shutdown(); err != nil {
		appLogger.Fatalf("HTTP server shutdown error: %v", err)
	}
}
