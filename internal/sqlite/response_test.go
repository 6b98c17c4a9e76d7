package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseRepository_IncrementCounts(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewResponseRepository(db)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	require.Empty(t, counts)

	require.NoError(t, repo.Increment(ctx, "a.jpg"))
	require.NoError(t, repo.Increment(ctx, "a.jpg"))
	require.NoError(t, repo.Increment(ctx, "b.jpg"))

	counts, err = repo.Counts(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a.jpg": 2, "b.jpg": 1}, counts)
}
