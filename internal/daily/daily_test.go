package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/store"
)

func TestSecretIndex_Deterministic(t *testing.T) {
	day := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	sameDay := time.Date(2026, 3, 14, 1, 0, 0, 0, time.UTC)

	idx := SecretIndex(day, "salt")
	assert.Equal(t, idx, SecretIndex(sameDay, "salt"))
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, mastermind.Size)
	ch := For(day, "salt")
	assert.Equal(t, "2026-03-14", ch.Date)
	assert.Equal(t, idx, ch.SecretIndex)
	assert.Equal(t, mastermind.FromIndex(idx), ch.Secret)

	// consecutive days spread over the universe
	seen := map[int]struct{}{}
	for d := 0; d < 10; d++ {
		seen[SecretIndex(day.AddDate(0, 0, d), "salt")] = struct{}{}
	}
	assert.Greater(t, len(seen), 5)
	assert.NotEqual(t, idx, SecretIndex(day, "pepper"))
}

func TestStore_Leaderboard(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenMigrated(ctx, filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	defer db.Close()
	s := NewStore(db)

	played, err := s.AlreadyPlayed(ctx, "u1", "2026-03-14")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-03-14", SecretIndex: 7, Guesses: 6, ElapsedMs: 1000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u2", Date: "2026-03-14", SecretIndex: 7, Guesses: 4, ElapsedMs: 9000}))
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u3", Date: "2026-03-14", SecretIndex: 7, Guesses: 4, ElapsedMs: 3000}))
	// duplicate is ignored
	require.NoError(t, s.InsertResult(ctx, Result{UserID: "u1", Date: "2026-03-14", SecretIndex: 7, Guesses: 1, ElapsedMs: 1}))

	played, err = s.AlreadyPlayed(ctx, "u1", "2026-03-14")
	require.NoError(t, err)
	assert.True(t, played)

	top, err := s.Leaderboard(ctx, "2026-03-14", 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"u3", "u2", "u1"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	assert.Equal(t, 6, top[2].Guesses)

	empty, err := s.Leaderboard(ctx, "2001-01-01", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
