package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/erazemk/sitestock/internal/api"
	"github.com/erazemk/sitestock/internal/db"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/store"
	"github.com/erazemk/sitestock/internal/web"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "listen address (default :8080)"},
			&cli.BoolFlag{Name: "production", Usage: "mark session cookies Secure"},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, c *cli.Command) error {
	cfg, closeLog, err := setup(c)
	if err != nil {
		return err
	}
	defer closeLog()

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	partitions := db.NewPartitions(cfg.DataDir)
	defer func() {
		slog.Info("closing partitions")
		if err := partitions.Close(); err != nil {
			slog.Error("failed to close partitions", "error", err)
		}
	}()

	warehouse, err := partitions.Get(ctx, reg.Warehouse().Partition)
	if err != nil {
		return err
	}

	// First run: create an admin so someone can sign in.
	admins, err := store.CountUsers(ctx, warehouse, model.RoleAdmin)
	if err != nil {
		return err
	}
	if admins == 0 {
		password, err := createAdmin(ctx, warehouse, defaultAdmin, "Administrator")
		if err != nil {
			return fmt.Errorf("creating first admin: %w", err)
		}
		printAdmin(defaultAdmin, password)
	}

	// The session secret lives in the warehouse partition, generated on first run.
	secret, err := store.GetSessionSecret(ctx, warehouse)
	if err != nil {
		return err
	}

	env := &api.Env{
		Sites:             reg,
		Partitions:        partitions,
		Secret:            secret,
		SecureCookies:     cfg.Production,
		LowStockThreshold: cfg.LowStockThreshold,
	}

	webRouter, err := web.NewRouter(env)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(env))
	mux.Handle("/", webRouter)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Addr, "data_dir", cfg.DataDir,
			"sites", len(reg.Sites()), "production", cfg.Production)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	slog.Info("server stopped")
	return nil
}
