package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

// VoteRepository stores one live vote per (game, pick, user).
type VoteRepository interface {
	// Upsert records the vote, replacing the user's earlier vote for the pick.
	Upsert(ctx context.Context, vote *draft.Vote) error

	// ListByPick returns the live votes for a pick, oldest first.
	ListByPick(ctx context.Context, gameID string, pickID int) ([]draft.Vote, error)

	// DeleteByPick removes every vote for a pick.
	DeleteByPick(ctx context.Context, gameID string, pickID int) (int64, error)
}

type voteRepository struct {
	db Querier
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db Querier) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *draft.Vote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO draft_votes (game_id, pick_id, user_id, vote_index, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(game_id, pick_id, user_id) DO UPDATE SET
			vote_index = excluded.vote_index,
			created_at = excluded.created_at
	`, vote.GameID, vote.PickID, vote.UserID, vote.Index, vote.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}
	return nil
}

func (r *voteRepository) ListByPick(ctx context.Context, gameID string, pickID int) ([]draft.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT game_id, pick_id, user_id, vote_index, created_at
		FROM draft_votes
		WHERE game_id = ? AND pick_id = ?
		ORDER BY created_at ASC, user_id ASC
	`, gameID, pickID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var votes []draft.Vote
	for rows.Next() {
		var v draft.Vote
		if err := rows.Scan(&v.GameID, &v.PickID, &v.UserID, &v.Index, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) DeleteByPick(ctx context.Context, gameID string, pickID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM draft_votes WHERE game_id = ? AND pick_id = ?`, gameID, pickID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.RowsAffected()
}
