package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func seedStats(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()
	wb := f.enroll(t, "CS",
		models.Student{RollNo: "24CS1001", Name: "Asha", Gender: "F", CGPA: "8.1", Eligible: "Yes"},
		models.Student{RollNo: "24CS1002", Name: "Bilal", Gender: "M", CGPA: "7.4", Eligible: "Yes"},
		models.Student{RollNo: "24CS1003", Name: "Chen", Gender: "Male", CGPA: "6.9"},
		models.Student{RollNo: "24CS1004", Name: "Dana", Gender: "F", CGPA: "6.0", Eligible: "No"},
	)
	f.enroll(t, "EE", models.Student{RollNo: "24EE1001", Name: "Esha", Gender: "F", CGPA: "9.0"})

	fte := offerFor("24CS1001", 12)
	_, err := f.workbooks.ApplyOffer(ctx, fte)
	require.NoError(t, err)
	intern := offerFor("24CS1002", 6)
	intern.OfferType = "Internship"
	_, err = f.workbooks.ApplyOffer(ctx, intern)
	require.NoError(t, err)
	return wb
}

func TestStatsServiceBranch(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)

	st, err := f.stats.Branch(context.Background(), models.DegreeUG, "cse")
	require.NoError(t, err)
	assert.Equal(t, "CS", st.Branch)
	assert.Equal(t, 4, st.TotalStudents)
	assert.Equal(t, models.GenderSplit{Male: 2, Female: 2}, st.Students)
	assert.Equal(t, 3, st.EligibleStudents)
	assert.Equal(t, models.GenderSplit{Male: 2, Female: 1}, st.Eligible)
	assert.Equal(t, 2, st.PlacedStudents)
	assert.Equal(t, models.GenderSplit{Male: 1, Female: 1}, st.Placed)
	assert.Equal(t, 50.0, st.PlacementRateOfTotal)
	assert.Equal(t, 66.67, st.PlacementRate)
	assert.Equal(t, 12.0, st.HighestCTC)
	assert.Equal(t, 9.0, st.AverageCTC)
	assert.Equal(t, 9.0, st.MedianCTC)
	assert.Equal(t, 6.0, st.LowestCTC)
	assert.Equal(t, 1, st.OnlyFTEOffers)
	assert.Equal(t, 1, st.OnlyInternshipOffers)
	assert.Zero(t, st.BothOffers)
	assert.Equal(t, map[string]int{">=8": 0, ">=7.5": 0, ">=7": 0, ">=6.5": 1}, st.UnplacedByCGPA)

	require.Len(t, st.Distribution, 6)
	assert.Equal(t, models.CTCBucket{Range: "5-10 LPA", Count: 1}, st.Distribution[1])
	assert.Equal(t, models.CTCBucket{Range: "10-15 LPA", Count: 1}, st.Distribution[2])
}

func TestStatsServiceRecalculateWritesValues(t *testing.T) {
	f := newFixture(t)
	wb := seedStats(t, f)

	_, err := f.stats.Recalculate(context.Background(), dto.RecalculateStatsRequest{DegreeType: "ug", Branch: "CS"})
	require.NoError(t, err)

	stats := f.sheet(t, wb, repository.StatsSheet("CS"))
	assert.Equal(t, []string{"Total Students", "4"}, stats[1])
	assert.Equal(t, []string{"Highest CTC (LPA)", "12"}, stats[16])
	assert.Equal(t, []string{"Unplaced (CGPA >= 6.5)", "1"}, stats[len(stats)-1])

	dist := f.sheet(t, wb, repository.DistributionSheet("CS"))
	require.Len(t, dist, 7)
	assert.Equal(t, []string{"0-5 LPA", "0"}, dist[1])
	assert.Equal(t, []string{"30+ LPA", "0"}, dist[6])

	_, err = f.stats.Recalculate(context.Background(), dto.RecalculateStatsRequest{DegreeType: "MBA", Branch: "CS"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestStatsServiceBranchwiseAndOverview(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)
	ctx := context.Background()

	branches, err := f.stats.Branchwise(ctx, models.DegreeUG)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "CS", branches[0].Branch)
	assert.Equal(t, "EE", branches[1].Branch)
	assert.Equal(t, 1, branches[1].EligibleStudents)

	overview, err := f.stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAcademicYear, overview.AcademicYear)
	assert.Equal(t, 5, overview.TotalStudents)
	assert.Equal(t, 2, overview.PlacedStudents)
	assert.Equal(t, 40.0, overview.PlacementPercentage)
	assert.Equal(t, 12.0, overview.HighestCTC)
	assert.Equal(t, 9.0, overview.MedianCTC)
	assert.Len(t, overview.Branches, 2)
}

func TestSummarize(t *testing.T) {
	high, avg, low, median := summarize([]float64{4, 10, 7})
	assert.Equal(t, 10.0, high)
	assert.Equal(t, 7.0, avg)
	assert.Equal(t, 4.0, low)
	assert.Equal(t, 7.0, median)

	high, avg, low, median = summarize(nil)
	assert.Zero(t, high+avg+low+median)
}
