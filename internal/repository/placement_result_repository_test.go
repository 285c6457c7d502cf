package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
)

func TestPlacementResultRepositorySaveOverwrites(t *testing.T) {
	ctx := context.Background()
	mem, store := newTestStore(t)
	repo := NewPlacementResultRepository(store, testWorkbook)
	require.NoError(t, repo.EnsureSchema(ctx))

	require.NoError(t, repo.Save(ctx, models.PlacementResult{Company: "Acme", RequestID: "r1", RollNumbers: []string{"A", "B"}, LastUpdated: "t1"}))
	require.NoError(t, repo.Save(ctx, models.PlacementResult{Company: "Acme", RequestID: "r1", RollNumbers: []string{"B", "C"}, LastUpdated: "t2"}))

	rows := readSheet(t, mem, testWorkbook, PlacementResultsSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Acme", "r1", "B, C", "t2"}, rows[1])

	result, err := repo.FindByRequestID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, []string{"B", "C"}, result.RollNumbers)
}

func TestSplitRolls(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, SplitRolls(" A, ,B ,"))
	assert.Empty(t, SplitRolls(""))
}
