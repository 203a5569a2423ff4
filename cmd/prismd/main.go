package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prism-press/prism/internal/app"
	"github.com/prism-press/prism/internal/config"
	"github.com/prism-press/prism/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "prismd start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	log.InfoObj("prismd starting", "config_meta", map[string]any{
		"env":         cfg.Env,
		"chain_id":    cfg.ChainID,
		"listen_addr": cfg.ListenAddr,
		"page_size":   cfg.PageSize,
		"maintenance": cfg.MaintenanceMode,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize service", "error", err.Error())
		return err
	}
	defer application.Close()

	handlers := app.NewHandlers(application.Reader(), application.Writer(), application.Fanout(), cfg.PageSize, log)
	server := app.NewServer(cfg, handlers, log)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server run: %w", err)
	}
	return nil
}
