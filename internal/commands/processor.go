package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
	"github.com/ramonehamilton/draft-claw/internal/metrics"
)

// PingCommand answers with Pong!.
const PingCommand = "!ping"

// ErrNotOwner is returned when someone other than the owner commits.
var ErrNotOwner = draft.ErrNotOwner

// ErrRateLimited is reported when a user sends commands too quickly.
var ErrRateLimited = errors.New("rate limited")

// Store is the storage the command surface needs.
type Store interface {
	OwnerLookup
	OwnGame(ctx context.Context, gameID, user string) (*draft.Game, error)
	LatestRecord(ctx context.Context, gameID string) (*draft.Record, error)
	UpsertVote(ctx context.Context, vote *draft.Vote) error
	CommitPick(ctx context.Context, gameID string, pickID int, user string) (draft.Record, bool, error)
	ChannelList(ctx context.Context) ([]string, error)
}

// Options configures a Processor.
type Options struct {
	Prefix        string // "!draft"
	CardPrefix    string // "!card"
	Channels      []string
	ChannelPrefix string // channels named like this are always allowed
	UserInterval  time.Duration
	UserBurst     int
}

// DefaultOptions returns the standard command names and limits.
func DefaultOptions() Options {
	return Options{
		Prefix:        "!draft",
		CardPrefix:    "!card",
		ChannelPrefix: "draft",
		UserInterval:  2 * time.Second,
		UserBurst:     3,
	}
}

// Processor routes chat messages to commands. It is safe for concurrent
// use.
type Processor struct {
	opts       Options
	store      Store
	catalog    *cards.Catalog
	resolver   *resolver.Resolver
	registry   *Registry
	dispatcher *events.EventDispatcher
	metrics    *metrics.DraftMetrics
	logger     *slog.Logger

	commands map[string]Command
	order    []string

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

// Config holds the collaborators of a Processor. Dispatcher and Metrics
// are optional.
type Config struct {
	Options    Options
	Store      Store
	Catalog    *cards.Catalog
	Resolver   *resolver.Resolver
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.DraftMetrics
	Logger     *slog.Logger
}

// NewProcessor creates a processor with the "!draft" sub-commands
// registered.
func NewProcessor(cfg Config) *Processor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = events.NewEventDispatcher(cfg.Logger)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewDraftMetrics()
	}
	defaults := DefaultOptions()
	if cfg.Options.Prefix == "" {
		cfg.Options.Prefix = defaults.Prefix
	}
	if cfg.Options.CardPrefix == "" {
		cfg.Options.CardPrefix = defaults.CardPrefix
	}
	if cfg.Options.UserBurst < 1 {
		cfg.Options.UserBurst = defaults.UserBurst
	}

	p := &Processor{
		opts:       cfg.Options,
		store:      cfg.Store,
		catalog:    cfg.Catalog,
		resolver:   cfg.Resolver,
		registry:   NewRegistry(cfg.Store),
		dispatcher: cfg.Dispatcher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With("component", "commands"),
		commands:   make(map[string]Command),
		limiters:   make(map[string]*rate.Limiter),
	}
	p.registerDraftCommands()
	return p
}

// Register adds a "!draft" sub-command.
func (p *Processor) Register(cmd Command) {
	if _, exists := p.commands[cmd.GetName()]; !exists {
		p.order = append(p.order, cmd.GetName())
	}
	p.commands[cmd.GetName()] = cmd
}

// Registry returns the user to game registrations.
func (p *Processor) Registry() *Registry {
	return p.registry
}

// Handle answers one message. handled is false for messages that are not
// commands or come from channels commands are not accepted in.
func (p *Processor) Handle(ctx context.Context, req Request) (reply string, handled bool) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	name, args := splitCommand(req.Text)
	switch name {
	case p.opts.Prefix, p.opts.CardPrefix, PingCommand:
	default:
		return "", false
	}
	if !p.channelAllowed(ctx, req) {
		p.logger.Debug("channel not allowed", "request_id", req.ID, "channel", req.Channel)
		return "", false
	}
	if !p.allow(req.User) {
		p.logger.Info("command rate limited", "request_id", req.ID, "user", req.User)
		return fmt.Sprintf("Slow down [%s]: %v", req.User, ErrRateLimited), true
	}

	p.logger.Debug("command", "request_id", req.ID, "user", req.User, "text", req.Text)
	out := &Reply{}
	switch name {
	case PingCommand:
		out.Add("Pong!")
	case p.opts.CardPrefix:
		p.card(args, out)
	default:
		p.draft(ctx, req, args, out)
	}
	return out.String(), true
}

func (p *Processor) channelAllowed(ctx context.Context, req Request) bool {
	if p.opts.ChannelPrefix != "" && strings.HasPrefix(req.ChannelName, p.opts.ChannelPrefix) {
		return true
	}
	if slices.Contains(p.opts.Channels, req.Channel) {
		return true
	}
	stored, err := p.store.ChannelList(ctx)
	if err != nil {
		p.logger.Warn("failed to load channel list", "error", err)
		return false
	}
	return slices.Contains(stored, req.Channel)
}

func (p *Processor) allow(user string) bool {
	if p.opts.UserInterval <= 0 {
		return true
	}
	p.limitMu.Lock()
	defer p.limitMu.Unlock()

	limiter, ok := p.limiters[user]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(p.opts.UserInterval), p.opts.UserBurst)
		p.limiters[user] = limiter
	}
	return limiter.Allow()
}

func (p *Processor) draft(ctx context.Context, req Request, args string, reply *Reply) {
	sub, rest := splitCommand(args)
	cmd, ok := p.commands[sub]
	if !ok {
		cmd = p.commands[""]
	}
	if err := cmd.Execute(ctx, req, rest, reply); err != nil {
		p.logger.Warn("command failed", "request_id", req.ID, "command", cmd.GetName(), "error", err)
	}
}

// HelpText renders the "!draft help" listing.
func (p *Processor) HelpText() string {
	var b strings.Builder
	b.WriteString("```\n")
	for _, name := range p.order {
		cmd := p.commands[name]
		usage := strings.TrimSpace(p.opts.Prefix + " " + name)
		if u, ok := cmd.(interface{ Usage() string }); ok && u.Usage() != "" {
			usage += " " + u.Usage()
		}
		fmt.Fprintf(&b, "%s - %s\n", usage, cmd.GetDescription())
	}
	b.WriteString("```")
	return b.String()
}
