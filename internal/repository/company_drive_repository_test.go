package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

func TestCompanyDriveRepositorySchemaGuard(t *testing.T) {
	ctx := context.Background()
	mem, store := newTestStore(t)
	ref := tabular.TableRef{Workbook: testWorkbook, Sheet: CompanyDrivesSheet}
	require.NoError(t, mem.CreateSheet(ctx, ref, []string{"Company", "Request ID"}))

	repo := NewCompanyDriveRepository(store, testWorkbook)
	_, _, err := repo.Find(ctx, "r1")
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Missing, "Last Updated")
	assert.NotContains(t, schemaErr.Missing, "Company")
}

func TestCompanyDriveRepositoryAppendAndFind(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	repo := NewCompanyDriveRepository(store, testWorkbook)
	require.NoError(t, repo.EnsureSchema(ctx))

	row, drive, err := repo.Find(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, -1, row)
	assert.Nil(t, drive)

	require.NoError(t, repo.Append(ctx, []Change{
		{Column: ColCompany, Value: "Acme"},
		{Column: ColRequestID, Value: "r1"},
		{Column: ColDriveStatus, Value: "Scheduled"},
	}))

	row, drive, err = repo.Find(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	require.NotNil(t, drive)
	assert.Equal(t, "Acme", drive.Company)

	require.NoError(t, repo.Update(ctx, row, []Change{
		{Column: ColActualHires, Value: "2", Optional: true},
		{Column: "Not A Column", Value: "x", Optional: true},
	}))
	drives, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, drives, 1)
	assert.Equal(t, "2", drives[0].ActualHires)
}
