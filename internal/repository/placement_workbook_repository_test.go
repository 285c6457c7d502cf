package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

func TestPlacementWorkbookRepositoryEnsureBranch(t *testing.T) {
	ctx := context.Background()
	mem, store := newTestStore(t)
	repo := NewPlacementWorkbookRepository(store)

	wb, err := repo.ResolveWorkbook(ctx, "2025-26", models.DegreeUG)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureBranch(ctx, wb, "CS"))

	sheets, err := mem.ListSheets(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, []string{"Students_CS", "Offers_CS", "Company_Drives_CS", "Placement_Stats_CS", "CTC_Distribution_CS"}, sheets)
	assert.Equal(t, BranchDriveHeaders, readSheet(t, mem, wb, "Company_Drives_CS")[0])
	assert.Len(t, BranchDriveHeaders, 20)

	require.NoError(t, repo.EnsureBranch(ctx, wb, "EE"))
	branches, err := repo.ListBranches(ctx, wb)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "EE"}, branches)
}

func TestPlacementWorkbookRepositoryFindStudentDetectsHeaders(t *testing.T) {
	ctx := context.Background()
	mem, store := newTestStore(t)
	ref := tabular.TableRef{Workbook: testWorkbook, Sheet: "Students_CS"}
	require.NoError(t, mem.CreateSheet(ctx, ref, []string{"Roll Number", "Student Name", "Branch", "CGPA"}))
	require.NoError(t, mem.AppendRow(ctx, ref, []string{"22CS10001", "Asha", "CS", "8.1"}))

	repo := NewPlacementWorkbookRepository(store)
	student, err := repo.FindStudent(ctx, testWorkbook, "CS", "22cs10001")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, "Asha", student.Name)
	assert.Equal(t, 1, student.Row)

	missing, err := repo.FindStudent(ctx, testWorkbook, "CS", "22CS99999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlacementWorkbookRepositoryOffers(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)
	repo := NewPlacementWorkbookRepository(store)
	require.NoError(t, repo.EnsureBranch(ctx, testWorkbook, "CS"))

	require.NoError(t, repo.AppendOffer(ctx, testWorkbook, "CS", models.Offer{RollNo: "R1", Company: "Acme", OfferType: "FTE", CTC: 12.5, Status: models.OfferActive}))

	active, err := repo.HasActiveOffer(ctx, testWorkbook, "CS", "R1", "Acme", "FTE")
	require.NoError(t, err)
	assert.True(t, active)

	active, err = repo.HasActiveOffer(ctx, testWorkbook, "CS", "R1", "Acme", "Internship")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestPlacementWorkbookRepositoryWriteStatsClearsStaleRows(t *testing.T) {
	ctx := context.Background()
	mem, store := newTestStore(t)
	repo := NewPlacementWorkbookRepository(store)
	require.NoError(t, repo.EnsureBranch(ctx, testWorkbook, "CS"))

	require.NoError(t, repo.WriteStats(ctx, testWorkbook, "CS",
		[][]string{{"Total Students", "3"}, {"Placed", "1"}},
		[][]string{{"0-5", "1"}, {"5-10", "0"}, {"10+", "0"}}))
	require.NoError(t, repo.WriteStats(ctx, testWorkbook, "CS",
		[][]string{{"Total Students", "4"}},
		[][]string{{"0-5", "2"}}))

	stats := readSheet(t, mem, testWorkbook, "Placement_Stats_CS")
	assert.Equal(t, []string{"Total Students", "4"}, stats[1])
	assert.Equal(t, []string{"", ""}, stats[2])

	dist := readSheet(t, mem, testWorkbook, "CTC_Distribution_CS")
	assert.Equal(t, []string{"0-5", "2"}, dist[1])
	assert.Equal(t, []string{"", ""}, dist[3])
}
