package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func TestMemoryExpiresEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "tabular:wb:Drive_Requests", [][]string{{"Request ID"}}, time.Minute))

	var rows [][]string
	require.NoError(t, m.Get(ctx, "tabular:wb:Drive_Requests", &rows))
	assert.Equal(t, [][]string{{"Request ID"}}, rows)

	now = now.Add(2 * time.Minute)
	err := m.Get(ctx, "tabular:wb:Drive_Requests", &rows)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestMemoryDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "tabular:wb:A", 1, 0))
	require.NoError(t, m.Set(ctx, "tabular:wb:B", 2, 0))
	require.NoError(t, m.Set(ctx, "other", 3, 0))

	require.NoError(t, m.DeleteByPattern(ctx, "tabular:wb:A"))
	var v int
	assert.Error(t, m.Get(ctx, "tabular:wb:A", &v))
	require.NoError(t, m.Get(ctx, "tabular:wb:B", &v))

	require.NoError(t, m.DeleteByPattern(ctx, "tabular:*"))
	assert.Error(t, m.Get(ctx, "tabular:wb:B", &v))
	require.NoError(t, m.Get(ctx, "other", &v))
	assert.Equal(t, 3, v)
}
