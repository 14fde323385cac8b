package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tsreminder/internal/config"
	"tsreminder/internal/listener"
	"tsreminder/internal/logger"
	"tsreminder/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	log := logger.New(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	svc, err := listener.NewService(db, cfg, log)
	must(err)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
