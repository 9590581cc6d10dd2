package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/api"
	"github.com/ramonehamilton/draft-claw/internal/config"
)

func runCaptureCommand(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	gameID := fs.String("game-id", "", "Game the observations belong to (default: config, then current game)")
	inbox := fs.String("inbox", "", "Observation inbox directory (overrides config)")
	lenient := fs.Bool("lenient", false, "Accept packs with unresolved cards")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *inbox != "" {
		cfg.Capture.InboxDir = *inbox
	}
	if *lenient {
		cfg.Capture.Lenient = true
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.loadCatalog(ctx); err != nil {
		return err
	}
	a.logger.Info("capture started", "inbox", cfg.Capture.InboxDir)
	err = a.captureLoop(*gameID).Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.logger.Info("capture stopped", "stats", a.metrics.GetStats())
	return err
}

func runServeCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	port := fs.Int("port", 0, "API server port (overrides config)")
	gameID := fs.String("game-id", "", "Game the observations belong to (default: config, then current game)")
	noCapture := fs.Bool("no-capture", false, "Do not watch the observation inbox")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.API.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg, *gameID, !*noCapture)
}

// serve runs the API server, and the capture loop when card data is
// available, until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, gameID string, withCapture bool) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	deps := api.Deps{
		Service:    a.service,
		InboxDir:   cfg.Capture.InboxDir,
		Dispatcher: a.dispatcher,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}
	switch err := a.loadCatalog(ctx); {
	case err == nil:
		deps.Pipeline = a.pipeline()
		deps.Processor = a.processor()
		deps.Catalog = a.catalog
		deps.Resolver = a.resolver
	case errors.Is(err, errNoCardData):
		a.logger.Warn("serving without card data; observations and commands are disabled")
		withCapture = false
	default:
		return err
	}

	server := api.NewServer(&api.Config{
		Host:           cfg.API.Host,
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, deps)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Printf("API server running at http://%s\n", net.JoinHostPort(server.Host(), strconv.Itoa(server.Port())))

	loopErr := make(chan error, 1)
	if withCapture {
		go func() {
			loopErr <- a.captureLoop(gameID).Run(ctx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-loopErr:
		if errors.Is(runErr, context.Canceled) {
			runErr = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("error during shutdown", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("capture loop stopped: %w", runErr)
	}
	return nil
}
