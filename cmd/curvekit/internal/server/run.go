package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/meenmo/curvekit/cmd/curvekit/internal/job"
	"github.com/meenmo/curvekit/config"
	"github.com/meenmo/curvekit/utils"
)

const shutdownTimeout = 10 * time.Second

// Run starts the HTTP API and blocks until SIGINT or SIGTERM.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config path (optional)")
	addr := fs.String("addr", "", "Listen address (overrides config and "+config.EnvAddr+")")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	file, err := config.Load(strings.TrimSpace(*configPath))
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if a := strings.TrimSpace(*addr); a != "" {
		file.Server.Addr = a
	}
	logger := utils.NewLoggerTo(stderr, file.App.LogLevel)

	srv := New(job.NewRunner(file, logger), file.Server.AllowedOrigins, logger)
	httpServer := &http.Server{
		Addr:              file.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", file.Server.Addr).Str("app", file.App.Name).Msg("API server starting")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server failed")
			return 1
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
			return 1
		}
	}
	fmt.Fprintln(stdout, "stopped")
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  curvekit serve [-config curvekit.yaml] [-addr :8080]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Start the HTTP API: POST /api/v1/bootstrap, POST /api/v1/compare, GET /api/v1/methods,")
	fmt.Fprintln(w, "GET /api/v1/conventions/{currency}, GET /api/v1/health, GET /metrics.")
}
