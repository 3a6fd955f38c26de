package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"intentions/internal/mcp"
	"intentions/internal/platform/config"
	"intentions/internal/platform/httpserver"
	"intentions/internal/platform/logger"
)

// main wires the commands. Business logic lives in the internal family packages.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:          "intentions",
		Short:        "Users, items and intents over HTTP and the Model Context Protocol",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.AddCommand(
		newServeCmd(&configPath),
		newMCPCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the tool endpoint at /mcp",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			return serve(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	if cfg.MCP.APIKey == "" {
		log.Warn("MCP_API_KEY is not set; API and tool endpoints are unauthenticated")
	}
	if cfg.MCP.AllowsAnyOrigin() {
		log.Warn("tool endpoint accepts any Origin")
	}

	srv := httpserver.New(cfg.Server, a.handler())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting intentions", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver, "mcp", cfg.MCP.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newMCPCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tool catalog over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			s := mcp.NewServer(a.catalog(), cfg.MCP.ServerName, cfg.MCP.ServerVersion)
			log.Info("serving tools on stdio", "storage", cfg.Storage.Driver)
			if err := mcp.ServeStdio(ctx, s, os.Stdin, os.Stdout, log); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			db, err := openSQL(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("schema applied", "driver", cfg.Storage.Driver)
			return nil
		},
	}
}
