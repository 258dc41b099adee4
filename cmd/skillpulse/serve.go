package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/skillpulse/internal/refresh"
	"github.com/amishk599/skillpulse/internal/scheduler"
	"github.com/amishk599/skillpulse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and optionally MCP over stdio)",
	Long:  "Starts the HTTP API, the optional MCP stdio server and the refresh scheduler; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// stdout carries the MCP protocol, so logs move to stderr.
	if cfg.Server.MCPStdio {
		logger = newLogger(os.Stderr, debug)
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Driver,
		"ai_enabled", cfg.AI.Enabled,
		"notification", cfg.Notification.Type,
		"refresh", cfg.Refresh.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	handler := server.NewHandler(a.service, logger)
	g.Go(func() error {
		return server.ListenAndServe(gCtx, cfg.Server.Addr, handler, cfg.Server.ReadTimeout, logger)
	})

	if cfg.Server.MCPStdio {
		mcpServer := server.NewMCPServer(a.service, version)
		g.Go(func() error {
			return server.ServeStdio(gCtx, mcpServer, os.Stdin, os.Stdout, logger)
		})
	}

	if cfg.Refresh.Enabled {
		sched := scheduler.NewScheduler(refresh.Jobs(a.store, a.demand, logger), cfg.Refresh.Interval, logger)
		g.Go(func() error {
			return sched.Run(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
