package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

const testWorkbook = "calendar"

func newTestStore(t *testing.T) (*tabular.MemoryStore, *tabular.CachedStore) {
	t.Helper()
	mem := tabular.NewMemoryStore()
	mem.AddWorkbook(testWorkbook, "Placement Calendar")
	return mem, tabular.NewCachedStore(mem, nil, 0, nil)
}

func readSheet(t *testing.T, mem *tabular.MemoryStore, wb, sheet string) [][]string {
	t.Helper()
	rows, err := mem.ReadAll(context.Background(), tabular.TableRef{Workbook: wb, Sheet: sheet})
	require.NoError(t, err)
	return rows
}
