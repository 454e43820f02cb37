package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"relaychat/internal/app/chat"
	"relaychat/internal/app/relay"
	"relaychat/internal/configs"
	"relaychat/internal/handler"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/metrics"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			return serve(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("environment", configs.EnvDevelopment, "running environment (development enables console logs and open CORS)")
	flags.Int("port", 8080, "HTTP listen port")
	flags.String("log-level", "", "zerolog level override (debug, info, warn, error)")
	flags.String("allowed-origins", "", "comma-separated origins allowed to connect outside development")
	flags.Int("room-capacity", relay.DefaultCapacity, "members per room, 0 for unbounded")
	flags.Int("text-rate-limit", relay.DefaultTextLimit.Max, "text messages per sender per window")
	flags.Duration("text-rate-window", relay.DefaultTextLimit.Window, "text rate window")
	flags.Int("file-rate-limit", relay.DefaultFileLimit.Max, "file messages per sender per window")
	flags.Duration("file-rate-window", relay.DefaultFileLimit.Window, "file rate window")
	flags.Int64("max-frame-bytes", chat.DefaultMaxFrameBytes, "largest inbound websocket frame")
	flags.Duration("invite-ttl", 24*time.Hour, "lifetime of invite links")

	return cmd
}

func serve(parent context.Context, cfg *configs.AppConfig) error {
	logx.InitGlobalLogger(logx.Options{
		Development: cfg.IsDevelopment(),
		Level:       cfg.LogLevel,
	})
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("room_capacity", cfg.RoomCapacity).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := relay.NewEngine(relay.NewRegistry(cfg.RelayConfig()))
	hub := chat.NewHub(engine)
	m := metrics.New(hub)
	hub.SetMetrics(m)

	router := handler.Router(ctx, &handler.AppDeps{
		Hub:     hub,
		Config:  cfg,
		Metrics: m,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logx.Info(fmt.Sprintf("relaychat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
		logx.Info("Received shutdown signal. Starting graceful shutdown...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Websocket connections are hijacked and not tracked by Shutdown; the hub
	// closes them.
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logx.Info("Server gracefully stopped.")
	return nil
}
