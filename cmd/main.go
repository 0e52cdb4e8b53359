package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chillerd/internal/clients"
	"chillerd/internal/config"
	"chillerd/internal/control"
	"chillerd/internal/handlers"
	"chillerd/internal/logger"
	"chillerd/internal/serial"
	"chillerd/internal/server"
	"chillerd/internal/service"
	"chillerd/internal/store"

	_ "chillerd/docs"
)

const shutdownTimeout = 10 * time.Second

// @title        chillerd API
// @version      1.0
// @description  Remote control surface for the liquid chiller daemon.
func main() {
	// load configs/config.yml
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// wire dependencies
	ctrl, err := control.New(cfg.Controller)
	if err != nil {
		log.Fatalw("invalid controller configuration", "err", err)
	}
	st := store.New()
	link := serial.NewLink(serial.Config{
		Port:    cfg.Serial.Port,
		Baud:    cfg.Serial.Baud,
		Timeout: cfg.Serial.Timeout,
	})
	env := clients.NewEnvironment(cfg.Environment)
	power := clients.NewPower(cfg.Power)
	services := service.NewService(cfg, st, link, env, power, ctrl, log)
	apiHandler := handlers.NewHandler(services, cfg.Allowlists, log)

	// context for the poll loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the poll loop; it owns the serial connection
	go services.Poller.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	go func() {
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop the poll loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
