package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"devmon/collector"
	"devmon/config"
	"devmon/log"
	"devmon/render"
	"devmon/scheduler"
)

// Build info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const shutdownTimeout = 2 * time.Second

func main() {
	// Load config
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}
	if cfg.ShowVersion {
		fmt.Printf("devmon %s (%s) built on %s\n", version, commit, date)
		return
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.SetLevel(cfg.LogLevel)
	if logFile := redirectLogs(cfg); logFile != nil {
		defer logFile.Close()
	}

	log.Info().Str("version", version).Str("commit", commit).Str("built", date).Msg("Device monitor starting")
	log.Info().Dur("interval", cfg.RefreshInterval).Dur("cpu_window", cfg.CPUSampleWindow).
		Str("renderer", cfg.Renderer).Msg("Configuration loaded")

	caps := collector.DetectCapabilities()
	monitor := collector.New(cfg, caps)

	renderer, err := render.New(cfg.Renderer, os.Stdout)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal().Err(err).Msg("Failed to create renderer")
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		scheduler.New(monitor, renderer, cfg.RefreshInterval).Run(ctx)
	}()

	// Wait for signal or for the user to close the display
	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down...")
	case <-renderer.Done():
		log.Info().Msg("Display closed, shutting down...")
	}
	cancel()
	renderer.Close()

	select {
	case <-loopDone:
	case <-time.After(shutdownTimeout):
		log.Warn().Msg("Refresh loop did not stop in time")
	}
}

// redirectLogs keeps log output off the screen while the terminal renderer
// owns it. The returned file, if any, must be closed by the caller.
func redirectLogs(cfg *config.Config) *os.File {
	if cfg.Renderer != config.RendererTerminal {
		return nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.LogFile).Msg("Cannot open log file, logging disabled")
		log.Discard()
		return nil
	}
	log.SetOutput(f)
	return f
}
