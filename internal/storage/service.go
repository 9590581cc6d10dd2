package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/storage/repository"
)

var (
	// ErrNotFound is returned when a game or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGameOwned is returned when claiming a game someone else owns.
	ErrGameOwned = errors.New("game already has an owner")
)

// PrepareFunc runs after Reconcile decided to write and before the write
// happens. It may enrich the merged record (for example with an uploaded
// image link). Returning an error aborts the write.
type PrepareFunc func(ctx context.Context, merged draft.Record) (draft.Record, error)

// SaveResult describes what SaveObservation did.
type SaveResult struct {
	Record  draft.Record
	Written bool
}

// Service is the storage collaborator of the draft core. Record writes are
// serialized per (game, pick) so concurrent observations of the same pick
// cannot both decide to overwrite.
type Service struct {
	db       *DB
	games    repository.GameRepository
	records  repository.RecordRepository
	votes    repository.VoteRepository
	ratings  repository.RatingRepository
	settings repository.SettingsRepository
	locks    keyedMutex
	logger   *slog.Logger
}

// NewService creates a new storage service.
func NewService(db *DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		games:    repository.NewGameRepository(db.Conn()),
		records:  repository.NewRecordRepository(db.Conn()),
		votes:    repository.NewVoteRepository(db.Conn()),
		ratings:  repository.NewRatingRepository(db.Conn()),
		settings: repository.NewSettingsRepository(db.Conn()),
		locks:    keyedMutex{locks: make(map[string]*sync.Mutex)},
		logger:   logger.With("component", "storage"),
	}
}

// Settings returns the runtime settings repository.
func (s *Service) Settings() repository.SettingsRepository {
	return s.settings
}

// Ping verifies the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Conn().PingContext(ctx)
}

// CreateGame stores a new game with a freshly generated id.
func (s *Service) CreateGame(ctx context.Context) (*draft.Game, error) {
	id, err := draft.NewGameID()
	if err != nil {
		return nil, err
	}
	return s.EnsureGame(ctx, id)
}

// EnsureGame returns the game, creating it first when it does not exist.
func (s *Service) EnsureGame(ctx context.Context, gameID string) (*draft.Game, error) {
	if gameID == "" {
		return nil, fmt.Errorf("game id cannot be empty")
	}
	if err := s.games.Create(ctx, &draft.Game{ID: gameID}); err != nil {
		return nil, err
	}
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return game, nil
}

// GetGame returns the game or ErrNotFound.
func (s *Service) GetGame(ctx context.Context, gameID string) (*draft.Game, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	return game, nil
}

// ListGames returns the most recent games.
func (s *Service) ListGames(ctx context.Context, limit int) ([]*draft.Game, error) {
	return s.games.List(ctx, limit)
}

// OwnGame makes user the owner of the game, creating the game if needed.
// Claiming a game owned by someone else fails with ErrGameOwned.
func (s *Service) OwnGame(ctx context.Context, gameID, user string) (*draft.Game, error) {
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}
	var out *draft.Game
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		games := repository.NewGameRepository(tx)
		if err := games.Create(ctx, &draft.Game{ID: gameID}); err != nil {
			return err
		}
		game, err := games.Get(ctx, gameID)
		if err != nil {
			return err
		}
		if game.OwnerID != "" && game.OwnerID != user {
			return fmt.Errorf("game %s is owned by %s: %w", gameID, game.OwnerID, ErrGameOwned)
		}
		if err := games.SetOwner(ctx, gameID, user); err != nil {
			return err
		}
		game.OwnerID = user
		out = game
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("game owned", "game_id", gameID, "user", user)
	return out, nil
}

// LatestGameByOwner returns the newest game owned by user, or nil.
func (s *Service) LatestGameByOwner(ctx context.Context, user string) (*draft.Game, error) {
	return s.games.LatestByOwner(ctx, user)
}

// GetRecord returns the stored record for the pick, or nil.
func (s *Service) GetRecord(ctx context.Context, gameID string, pickID int) (*draft.Record, error) {
	if _, err := draft.PositionOf(pickID); err != nil {
		return nil, err
	}
	return s.records.Get(ctx, gameID, pickID)
}

// PutRecord writes the record, creating its game if needed.
func (s *Service) PutRecord(ctx context.Context, rec *draft.Record) error {
	if _, err := draft.PositionOf(rec.PickID); err != nil {
		return err
	}
	if _, err := s.EnsureGame(ctx, rec.GameID); err != nil {
		return err
	}
	return s.records.Upsert(ctx, rec)
}

// LatestRecord returns the record with the highest pick id of the game,
// or nil when nothing has been captured yet.
func (s *Service) LatestRecord(ctx context.Context, gameID string) (*draft.Record, error) {
	return s.records.Latest(ctx, gameID)
}

// ListRecords returns every record of the game in pick order.
func (s *Service) ListRecords(ctx context.Context, gameID string) ([]*draft.Record, error) {
	return s.records.ListByGame(ctx, gameID)
}

// SaveObservation reconciles an observed record with what is stored for
// its pick and writes the merge when needed. The read, the decision and the
// write happen under the pick's lock. prepare may be nil.
func (s *Service) SaveObservation(ctx context.Context, observed draft.Record, prepare PrepareFunc) (SaveResult, error) {
	if _, err := draft.PositionOf(observed.PickID); err != nil {
		return SaveResult{}, err
	}

	unlock := s.locks.lock(recordKey(observed.GameID, observed.PickID))
	defer unlock()

	stored, err := s.records.Get(ctx, observed.GameID, observed.PickID)
	if err != nil {
		return SaveResult{}, err
	}

	merged, overwrite := draft.Reconcile(observed, stored)
	if !overwrite {
		s.logger.Debug("record unchanged", "game_id", observed.GameID, "pick", merged.Label())
		return SaveResult{Record: merged}, nil
	}

	if prepare != nil {
		merged, err = prepare(ctx, merged)
		if err != nil {
			return SaveResult{}, err
		}
	}

	if err := s.PutRecord(ctx, &merged); err != nil {
		return SaveResult{}, err
	}
	s.logger.Info("record saved", "game_id", merged.GameID, "pick", merged.Label(), "cards", len(merged.OfferedCards))
	return SaveResult{Record: merged, Written: true}, nil
}

// UpsertVote records a vote, replacing the user's earlier vote for the pick.
func (s *Service) UpsertVote(ctx context.Context, vote *draft.Vote) error {
	if _, err := draft.PositionOf(vote.PickID); err != nil {
		return err
	}
	if vote.UserID == "" {
		return fmt.Errorf("vote user cannot be empty")
	}
	if vote.Index < 0 {
		return fmt.Errorf("%w: %d", draft.ErrInvalidIndex, vote.Index)
	}
	if _, err := s.EnsureGame(ctx, vote.GameID); err != nil {
		return err
	}
	return s.votes.Upsert(ctx, vote)
}

// GetVotes returns the live votes for a pick.
func (s *Service) GetVotes(ctx context.Context, gameID string, pickID int) ([]draft.Vote, error) {
	return s.votes.ListByPick(ctx, gameID, pickID)
}

// CommitPick tallies the votes of a pick and commits the winner for user,
// who must own the game. changed is false when the same index was already
// committed.
func (s *Service) CommitPick(ctx context.Context, gameID string, pickID int, user string) (rec draft.Record, changed bool, err error) {
	unlock := s.locks.lock(recordKey(gameID, pickID))
	defer unlock()

	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return draft.Record{}, false, err
	}
	stored, err := s.records.Get(ctx, gameID, pickID)
	if err != nil {
		return draft.Record{}, false, err
	}
	if stored == nil {
		return draft.Record{}, false, fmt.Errorf("record %s/%d: %w", gameID, pickID, ErrNotFound)
	}
	votes, err := s.votes.ListByPick(ctx, gameID, pickID)
	if err != nil {
		return draft.Record{}, false, err
	}

	rec, changed, err = draft.CommitVotes(*game, user, *stored, votes)
	if err != nil {
		return rec, false, err
	}
	if changed {
		if err := s.records.Upsert(ctx, &rec); err != nil {
			return rec, false, err
		}
		s.logger.Info("pick committed", "game_id", gameID, "pick", rec.Label(), "index", *rec.SelectedIndex)
	}
	return rec, changed, nil
}

// ImportRatings replaces every rating of the format in one transaction.
func (s *Service) ImportRatings(ctx context.Context, format string, ratings cards.Ratings) (int, error) {
	list := ratings.List(format)
	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		repo := repository.NewRatingRepository(tx)
		if _, err := repo.DeleteFormat(ctx, format); err != nil {
			return err
		}
		return repo.Upsert(ctx, list)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("ratings imported", "format", format, "count", len(list))
	return len(list), nil
}

// Ratings returns the imported tiers of a format.
func (s *Service) Ratings(ctx context.Context, format string) (cards.Ratings, error) {
	return s.ratings.GetByFormat(ctx, format)
}

// CurrentGameID returns the game id remembered by "game new", if any.
func (s *Service) CurrentGameID(ctx context.Context) (string, error) {
	var id string
	if _, err := s.settings.GetTyped(ctx, repository.SettingCurrentGameID, &id); err != nil {
		return "", err
	}
	return id, nil
}

// SetCurrentGameID remembers the game the capture loop should use.
func (s *Service) SetCurrentGameID(ctx context.Context, gameID string) error {
	return s.settings.Set(ctx, repository.SettingCurrentGameID, gameID)
}

// ChannelList returns the chat channels commands are accepted from.
func (s *Service) ChannelList(ctx context.Context) ([]string, error) {
	var channels []string
	if _, err := s.settings.GetTyped(ctx, repository.SettingChannelList, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// SetChannelList replaces the allowed chat channels.
func (s *Service) SetChannelList(ctx context.Context, channels []string) error {
	return s.settings.Set(ctx, repository.SettingChannelList, channels)
}

func recordKey(gameID string, pickID int) string {
	return fmt.Sprintf("%s/%d", gameID, pickID)
}

// keyedMutex hands out one mutex per key. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	refs  map[string]int
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.refs == nil {
		k.refs = make(map[string]int)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.refs[key]++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		k.refs[key]--
		if k.refs[key] == 0 {
			delete(k.refs, key)
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
