package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/draft-claw/internal/capture"
	"github.com/ramonehamilton/draft-claw/internal/commands"
	"github.com/ramonehamilton/draft-claw/internal/config"
	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/logging"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
	"github.com/ramonehamilton/draft-claw/internal/storage"
)

// commonFlags are accepted by every command that touches the database.
type commonFlags struct {
	configPath string
	dbPath     string
	debug      bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.draft-claw/config.toml)")
	fs.StringVar(&c.dbPath, "db-path", "", "Database path (overrides config)")
	fs.BoolVar(&c.debug, "debug-mode", false, "Enable verbose debug logging")
	fs.BoolVar(&c.debug, "d", false, "Enable debug logging (shorthand for -debug-mode)")
}

// loadConfig reads the config file and applies flag overrides.
func (c *commonFlags) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if c.dbPath != "" {
		cfg.Database.Path = c.dbPath
	}
	if c.debug {
		cfg.App.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app holds the long-lived collaborators shared by the commands.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *storage.DB
	service    *storage.Service
	catalog    *cards.Catalog
	resolver   *resolver.Resolver
	ratings    cards.Ratings
	dispatcher *events.EventDispatcher
	metrics    *metrics.DraftMetrics
}

// openApp opens the database and wires the event dispatcher.
func openApp(cfg *config.Config) (*app, error) {
	logger := logging.New(logging.LevelFor(cfg.App.DebugMode), cfg.App.LogFormat)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.BusyTimeout = cfg.BusyTimeout()
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", cfg.Database.Path)

	dispatcher := events.NewEventDispatcher(logger)
	dispatcher.Register(events.NewLogObserver(logger, slog.LevelInfo))

	return &app{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		service:    storage.NewService(db, logger),
		dispatcher: dispatcher,
		metrics:    metrics.NewDraftMetrics(),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}

var errNoCardData = errors.New("no card data configured (set catalog.card_data_path or DRAFT_CLAW_CARD_DATA)")

// loadCatalog reads the card data and ratings. Ratings come from the
// configured sheet when set, otherwise from the imported table.
func (a *app) loadCatalog(ctx context.Context) error {
	if a.cfg.Catalog.CardDataPath == "" {
		return errNoCardData
	}
	catalog, err := cards.LoadCatalog(a.cfg.Catalog.CardDataPath)
	if err != nil {
		return err
	}
	a.catalog = catalog
	a.resolver = resolver.New(catalog)

	if a.cfg.Catalog.RatingPath != "" {
		a.ratings, err = cards.LoadRatings(a.cfg.Catalog.RatingPath)
	} else {
		a.ratings, err = a.service.Ratings(ctx, a.cfg.Catalog.RatingFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	a.logger.Info("card data loaded", "cards", catalog.Len(), "ratings", len(a.ratings))
	return nil
}

func (a *app) pipeline() *capture.Pipeline {
	uploader := capture.NewUploader(capture.UploaderConfig{
		Endpoint: a.cfg.Upload.Endpoint,
		ClientID: a.cfg.Upload.ClientID,
		Interval: a.cfg.UploadInterval(),
		Burst:    a.cfg.Upload.Burst,
		Timeout:  a.cfg.UploadTimeout(),
	})
	return capture.NewPipeline(capture.PipelineConfig{
		Catalog:    a.catalog,
		Resolver:   a.resolver,
		Ratings:    a.ratings,
		Lenient:    a.cfg.Capture.Lenient,
		Store:      a.service,
		Uploader:   uploader,
		Dispatcher: a.dispatcher,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
}

func (a *app) processor() *commands.Processor {
	channels := append([]string{commands.REPLChannel}, a.cfg.Commands.Channels...)
	return commands.NewProcessor(commands.Config{
		Options: commands.Options{
			Prefix:        a.cfg.Commands.Prefix,
			CardPrefix:    a.cfg.Commands.CardPrefix,
			Channels:      channels,
			ChannelPrefix: a.cfg.Commands.ChannelPrefix,
			UserInterval:  a.cfg.UserInterval(),
			UserBurst:     a.cfg.Commands.UserBurst,
		},
		Store:      a.service,
		Catalog:    a.catalog,
		Resolver:   a.resolver,
		Dispatcher: a.dispatcher,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})
}

// gameIDFunc picks the game observations belong to: the flag, then the
// configured id, then the stored current game, read on every call so
// "game new" takes effect without a restart.
func (a *app) gameIDFunc(flagGameID string) capture.GameIDFunc {
	if flagGameID != "" {
		return capture.StaticGameID(flagGameID)
	}
	if a.cfg.Capture.GameID != "" {
		return capture.StaticGameID(a.cfg.Capture.GameID)
	}
	return func(ctx context.Context) (string, error) {
		id, err := a.service.CurrentGameID(ctx)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", errors.New("no current game; run 'draft-claw game new'")
		}
		return id, nil
	}
}

func (a *app) captureLoop(flagGameID string) *capture.Loop {
	return capture.NewLoop(capture.LoopConfig{
		InboxDir:      a.cfg.Capture.InboxDir,
		PollInterval:  a.cfg.PollInterval(),
		UseFsnotify:   a.cfg.Capture.UseFsnotify,
		Settle:        a.cfg.SettleDelay(),
		KeepProcessed: a.cfg.Capture.KeepProcessed,
		GameID:        a.gameIDFunc(flagGameID),
		Logger:        a.logger,
	}, a.pipeline())
}
