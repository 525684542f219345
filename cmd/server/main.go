package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	handler "github.com/Wyydra/tourcast/internal/adapter/driving/http"
	"github.com/Wyydra/tourcast/internal/config"
	"github.com/Wyydra/tourcast/internal/core/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile string
	addr    string
)

var rootCmd = &cobra.Command{
	Use:           "tourcast",
	Short:         "WebRTC signaling relay for guided tours",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HOST and PORT")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	var w io.Writer = os.Stdout
	if cfg.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger(), nil
}

func run(ctx context.Context, cfg config.Config) error {
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}
	log.Logger = l

	listen := addr
	if listen == "" {
		listen = cfg.Addr()
	}

	hub := service.NewHub(cfg.HubOptions())
	h := handler.NewHandler(hub, handler.Options{
		AllowedOrigins:  cfg.Origins(),
		MaxMessageBytes: cfg.MaxMessageBytes,
		SendQueueSize:   cfg.SendQueueSize,
		WriteWait:       cfg.WriteWait,
	})

	go hub.Run()

	srv := &http.Server{
		Addr:    listen,
		Handler: h.NewRouter(),
	}

	errChan := make(chan error, 1)
	go func() {
		l.Info().
			Str("addr", listen).
			Str("guide_leave_policy", cfg.GuideLeavePolicy).
			Str("duplicate_user_policy", cfg.DuplicateUserPolicy).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		l.Info().Msg("Shutting down server...")
	case err := <-errChan:
		hub.Stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown leaves hijacked websockets alone; hub.Stop closes them.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	hub.Stop()
	l.Info().Msg("Server exited")
	return nil
}
