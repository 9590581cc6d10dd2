package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

// GameRepository stores draft games and their owners.
type GameRepository interface {
	// Create inserts the game unless it already exists.
	Create(ctx context.Context, game *draft.Game) error

	// Get returns the game or nil if it does not exist.
	Get(ctx context.Context, gameID string) (*draft.Game, error)

	// SetOwner assigns the owner of an existing game.
	SetOwner(ctx context.Context, gameID, ownerID string) error

	// LatestByOwner returns the most recently created game owned by ownerID.
	LatestByOwner(ctx context.Context, ownerID string) (*draft.Game, error)

	// List returns the most recent games first.
	List(ctx context.Context, limit int) ([]*draft.Game, error)
}

type gameRepository struct {
	db Querier
}

// NewGameRepository creates a new game repository.
func NewGameRepository(db Querier) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) Create(ctx context.Context, game *draft.Game) error {
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_games (game_id, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id) DO NOTHING
	`, game.ID, nullString(game.OwnerID), game.CreatedAt, game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}
	return nil
}

func (r *gameRepository) Get(ctx context.Context, gameID string) (*draft.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT game_id, owner_id, created_at FROM draft_games WHERE game_id = ?
	`, gameID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}
	return game, nil
}

func (r *gameRepository) SetOwner(ctx context.Context, gameID, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE draft_games SET owner_id = ?, updated_at = ? WHERE game_id = ?
	`, nullString(ownerID), time.Now().UTC(), gameID)
	if err != nil {
		return fmt.Errorf("failed to set owner of game %s: %w", gameID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("game %s: %w", gameID, sql.ErrNoRows)
	}
	return nil
}

func (r *gameRepository) LatestByOwner(ctx context.Context, ownerID string) (*draft.Game, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT game_id, owner_id, created_at FROM draft_games
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`, ownerID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest game for %s: %w", ownerID, err)
	}
	return game, nil
}

func (r *gameRepository) List(ctx context.Context, limit int) ([]*draft.Game, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT game_id, owner_id, created_at FROM draft_games
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var games []*draft.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*draft.Game, error) {
	var game draft.Game
	var owner sql.NullString
	if err := s.Scan(&game.ID, &owner, &game.CreatedAt); err != nil {
		return nil, err
	}
	game.OwnerID = owner.String
	return &game, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
