package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTransaction(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	err := svc.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('a', '1')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = svc.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('b', '2')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, err := svc.Settings().Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = svc.Settings().Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, found, "rolled back insert must not be visible")
}

func TestWithTransactionPanic(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = svc.db.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('p', '1')`)
			panic("boom")
		})
	})

	_, found, err := svc.Settings().Get(ctx, "p")
	require.NoError(t, err)
	assert.False(t, found)
}
