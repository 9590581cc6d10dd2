package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// ErrUnsafeImagePath is returned for image paths that would leave the inbox.
var ErrUnsafeImagePath = errors.New("image path must be relative to the inbox")

// ResolveImagePath joins a screenshot path received from outside the host
// with inboxDir. Absolute paths and paths climbing out of inboxDir are
// rejected.
func ResolveImagePath(inboxDir, p string) (string, error) {
	if inboxDir == "" {
		return "", fmt.Errorf("%w: no inbox configured", ErrUnsafeImagePath)
	}
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\\`) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeImagePath, p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeImagePath, p)
	}
	return filepath.Join(inboxDir, clean), nil
}

// InboxFile is the JSON document a screen reader drops into the inbox.
// GameID is optional and overrides the loop's game.
type InboxFile struct {
	GameID string `json:"game_id,omitempty"`
	draft.Observation
}

// GameIDFunc returns the game observations belong to.
type GameIDFunc func(ctx context.Context) (string, error)

// StaticGameID always returns id.
func StaticGameID(id string) GameIDFunc {
	return func(context.Context) (string, error) {
		if id == "" {
			return "", errors.New("no game id configured")
		}
		return id, nil
	}
}

// LoopConfig configures the inbox loop.
type LoopConfig struct {
	InboxDir      string
	PollInterval  time.Duration
	UseFsnotify   bool
	KeepProcessed bool
	// Settle is how long a file must stay unmodified before it is read.
	Settle time.Duration
	GameID GameIDFunc
	Logger *slog.Logger
}

// Loop watches an inbox directory for observation files and feeds them
// through a Pipeline. A ticker rescans the inbox on every PollInterval in
// case file events are missed.
type Loop struct {
	cfg      LoopConfig
	pipeline *Pipeline
	logger   *slog.Logger
	now      func() time.Time
}

// NewLoop creates an inbox loop.
func NewLoop(cfg LoopConfig, pipeline *Pipeline) *Loop {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Settle < 0 {
		cfg.Settle = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		cfg:      cfg,
		pipeline: pipeline,
		logger:   cfg.Logger.With("component", "capture"),
		now:      time.Now,
	}
}

// Run processes the inbox until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) (err error) {
	if err := os.MkdirAll(l.cfg.InboxDir, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	var fileEvents chan fsnotify.Event
	var watchErrors chan error
	if l.cfg.UseFsnotify {
		watcher, werr := fsnotify.NewWatcher()
		if werr != nil {
			return fmt.Errorf("failed to create file watcher: %w", werr)
		}
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close file watcher: %w", closeErr)
			}
		}()
		if werr := watcher.Add(l.cfg.InboxDir); werr != nil {
			return fmt.Errorf("failed to watch inbox: %w", werr)
		}
		fileEvents = watcher.Events
		watchErrors = watcher.Errors
	}

	l.logger.Info("watching inbox", "dir", l.cfg.InboxDir, "poll_interval", l.cfg.PollInterval, "fsnotify", l.cfg.UseFsnotify)
	l.Scan(ctx)

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fileEvents:
			if !ok {
				fileEvents = nil
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				l.Scan(ctx)
			}
		case werr, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			l.logger.Warn("file watcher error", "error", werr)
		case <-ticker.C:
			l.Scan(ctx)
		}
	}
}

// Scan processes every settled observation file in the inbox in name order
// and returns the number handled.
func (l *Loop) Scan(ctx context.Context) int {
	entries, err := os.ReadDir(l.cfg.InboxDir)
	if err != nil {
		l.logger.Warn("failed to read inbox", "error", err)
		return 0
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		if l.cfg.Settle > 0 {
			info, err := entry.Info()
			if err != nil || l.now().Sub(info.ModTime()) < l.cfg.Settle {
				continue
			}
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	handled := 0
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		l.handle(ctx, filepath.Join(l.cfg.InboxDir, name))
		handled++
	}
	return handled
}

func (l *Loop) handle(ctx context.Context, path string) {
	err := l.processFile(ctx, path)
	switch {
	case err == nil:
		l.finish(path, processedDir)
	case errors.Is(err, context.Canceled):
		// leave the file for the next run
	default:
		l.logger.Warn("observation failed", "file", filepath.Base(path), "error", err)
		l.finish(path, failedDir)
	}
}

func (l *Loop) processFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read observation: %w", err)
	}
	var file InboxFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse observation: %w", err)
	}
	if file.ImagePath != "" && !filepath.IsAbs(file.ImagePath) {
		file.ImagePath = filepath.Join(l.cfg.InboxDir, file.ImagePath)
	}

	gameID := file.GameID
	if gameID == "" {
		if l.cfg.GameID == nil {
			return errors.New("no game id for observation")
		}
		if gameID, err = l.cfg.GameID(ctx); err != nil {
			return err
		}
	}

	_, err = l.pipeline.Process(ctx, gameID, file.Observation)
	return err
}

// finish moves the file into dir when processed files are kept, and
// removes it otherwise. Failed files are always kept for inspection.
func (l *Loop) finish(path, dir string) {
	if dir == processedDir && !l.cfg.KeepProcessed {
		if err := os.Remove(path); err != nil {
			l.logger.Warn("failed to remove observation", "file", path, "error", err)
		}
		return
	}
	target := filepath.Join(l.cfg.InboxDir, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		l.logger.Warn("failed to create directory", "dir", target, "error", err)
		return
	}
	if err := os.Rename(path, filepath.Join(target, filepath.Base(path))); err != nil {
		l.logger.Warn("failed to move observation", "file", path, "error", err)
	}
}
