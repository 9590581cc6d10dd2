package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
)

// RatingRepository stores card tiers per rating format.
type RatingRepository interface {
	// Upsert stores the ratings, replacing existing tiers for the same card.
	Upsert(ctx context.Context, ratings []cards.Rating) error

	// DeleteFormat removes every rating of a format.
	DeleteFormat(ctx context.Context, format string) (int64, error)

	// GetByFormat returns the tiers of a format keyed by card name.
	GetByFormat(ctx context.Context, format string) (cards.Ratings, error)

	// Formats lists the imported formats.
	Formats(ctx context.Context) ([]string, error)
}

type ratingRepository struct {
	db Querier
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db Querier) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, ratings []cards.Rating) error {
	now := time.Now().UTC()
	for _, rating := range ratings {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO card_ratings (format, name, rating, imported_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(format, name) DO UPDATE SET
				rating = excluded.rating,
				imported_at = excluded.imported_at
		`, rating.Format, rating.Name, rating.Rating, now)
		if err != nil {
			return fmt.Errorf("failed to upsert rating for %s: %w", rating.Name, err)
		}
	}
	return nil
}

func (r *ratingRepository) DeleteFormat(ctx context.Context, format string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM card_ratings WHERE format = ?`, format)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ratings for %s: %w", format, err)
	}
	return res.RowsAffected()
}

func (r *ratingRepository) GetByFormat(ctx context.Context, format string) (cards.Ratings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, rating FROM card_ratings WHERE format = ?`, format)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ratings := cards.Ratings{}
	for rows.Next() {
		var name, tier string
		if err := rows.Scan(&name, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings[name] = tier
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return ratings, nil
}

func (r *ratingRepository) Formats(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT format FROM card_ratings ORDER BY format`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating formats: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var formats []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan rating format: %w", err)
		}
		formats = append(formats, f)
	}
	return formats, rows.Err()
}
