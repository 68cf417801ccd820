package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/artis101/rustrate/config"
	"github.com/artis101/rustrate/internal/dashboard"
	"github.com/artis101/rustrate/internal/delay"
	"github.com/artis101/rustrate/internal/metrics"
	"github.com/artis101/rustrate/internal/server"
	"github.com/artis101/rustrate/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp()
			return
		}
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.Version {
		printVersion()
		return
	}

	if !cfg.Run {
		printHelp()
		return
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		slog.Error("failed to open log file", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeLog()

	h, events, err := buildHandler(cfg, log)
	if err != nil {
		log.Error("Failed to build handler", slog.Any("err", err))
		os.Exit(1)
	}

	srv, err := server.New(cfg.Addr(), h)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Server started",
		slog.String("addr", cfg.Addr()),
		slog.String("delay", cfg.Response.Delay),
		slog.String("format", cfg.Response.Format))

	fmt.Printf("Server listening on http://%s (press 'q' in TUI or Ctrl+C to quit)\n", cfg.Addr())

	// The dashboard quits on 'q' or Ctrl+C by itself; stopped covers the
	// other direction, a server that dies or a SIGTERM from outside.
	stopped := make(chan struct{})
	var srvFailed atomic.Bool

	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case err := <-srvErrCh:
			if err != nil {
				srvFailed.Store(true)
				log.Error("Server failed", slog.Any("err", err))
			}
		}
	}()

	agg := metrics.NewAggregator()
	model := dashboard.New(agg, events, cfg.Server.Port, cfg.RefreshInterval(), stopped)
	if err := dashboard.Run(model); err != nil {
		log.Error("Dashboard failed", slog.Any("err", err))
	}

	log.Info("Shutting down gracefully...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Error("Error during shutdown", slog.Any("err", err))
	}

	if srvFailed.Load() {
		os.Exit(1)
	}
}

// openLogger builds the process logger. The dashboard owns the terminal, so
// logs go to the configured file, or nowhere at all.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.Logging.File == "" {
		return logger.New(io.Discard, cfg.Logging.Level, true), func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	return logger.New(f, cfg.Logging.Level, true), func() { f.Close() }, nil
}

func buildHandler(cfg *config.Config, log *slog.Logger) (*server.Handler, *metrics.Channel, error) {
	policy, err := delay.Parse(cfg.Response.Delay)
	if err != nil {
		return nil, nil, err
	}

	format, err := server.ParseFormat(cfg.Response.Format)
	if err != nil {
		return nil, nil, err
	}

	events := metrics.NewChannel(metrics.DefaultCapacity)

	return server.NewHandler(log, policy, events, format), events, nil
}
