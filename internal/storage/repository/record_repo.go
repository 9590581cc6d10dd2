package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
)

// RecordRepository stores one draft record per (game, pick).
type RecordRepository interface {
	// Get returns the record or nil if none exists.
	Get(ctx context.Context, gameID string, pickID int) (*draft.Record, error)

	// Upsert inserts or replaces the record for its key.
	Upsert(ctx context.Context, rec *draft.Record) error

	// Latest returns the record with the highest pick id of the game.
	Latest(ctx context.Context, gameID string) (*draft.Record, error)

	// ListByGame returns every record of the game ordered by pick id.
	ListByGame(ctx context.Context, gameID string) ([]*draft.Record, error)
}

type recordRepository struct {
	db Querier
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db Querier) RecordRepository {
	return &recordRepository{db: db}
}

const recordColumns = `game_id, pick_id, offered_cards, selected_index, image_url,
	selection_text, decklist, created_at, updated_at`

func (r *recordRepository) Get(ctx context.Context, gameID string, pickID int) (*draft.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM draft_records WHERE game_id = ? AND pick_id = ?
	`, gameID, pickID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s/%d: %w", gameID, pickID, err)
	}
	return rec, nil
}

func (r *recordRepository) Upsert(ctx context.Context, rec *draft.Record) error {
	offered, err := json.Marshal(nonNil(rec.OfferedCards))
	if err != nil {
		return fmt.Errorf("failed to marshal offered cards: %w", err)
	}
	decklist, err := json.Marshal(nonNil(rec.Decklist))
	if err != nil {
		return fmt.Errorf("failed to marshal decklist: %w", err)
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	var selected sql.NullInt64
	if rec.SelectedIndex != nil {
		selected = sql.NullInt64{Int64: int64(*rec.SelectedIndex), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO draft_records (
			game_id, pick_id, label, offered_cards, selected_index, image_url,
			selection_text, decklist, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id, pick_id) DO UPDATE SET
			offered_cards = excluded.offered_cards,
			selected_index = excluded.selected_index,
			image_url = excluded.image_url,
			selection_text = excluded.selection_text,
			decklist = excluded.decklist,
			updated_at = excluded.updated_at
	`,
		rec.GameID,
		rec.PickID,
		rec.Label(),
		string(offered),
		selected,
		nullString(rec.ImageURL),
		rec.SelectionText,
		string(decklist),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s/%d: %w", rec.GameID, rec.PickID, err)
	}
	return nil
}

func (r *recordRepository) Latest(ctx context.Context, gameID string) (*draft.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM draft_records
		WHERE game_id = ?
		ORDER BY pick_id DESC
		LIMIT 1
	`, gameID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest record for %s: %w", gameID, err)
	}
	return rec, nil
}

func (r *recordRepository) ListByGame(ctx context.Context, gameID string) ([]*draft.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM draft_records
		WHERE game_id = ?
		ORDER BY pick_id ASC
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %s: %w", gameID, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*draft.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

func scanRecord(s scanner) (*draft.Record, error) {
	var rec draft.Record
	var offered, decklist string
	var selected sql.NullInt64
	var imageURL sql.NullString

	err := s.Scan(
		&rec.GameID,
		&rec.PickID,
		&offered,
		&selected,
		&imageURL,
		&rec.SelectionText,
		&decklist,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(offered), &rec.OfferedCards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal offered cards: %w", err)
	}
	if err := json.Unmarshal([]byte(decklist), &rec.Decklist); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decklist: %w", err)
	}
	if selected.Valid {
		i := int(selected.Int64)
		rec.SelectedIndex = &i
	}
	rec.ImageURL = imageURL.String
	return &rec, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
