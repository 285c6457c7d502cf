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

func offerFor(roll string, ctc float64) dto.OfferInput {
	return dto.OfferInput{DegreeType: models.DegreeUG, Branch: "cs", RollNo: roll, Company: "Acme", OfferType: "FTE", CTC: ctc}
}

func TestWorkbookServiceDuplicateOfferSuppressed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)

	first, err := f.workbooks.ApplyOffer(ctx, offerFor("24CS1001", 10))
	require.NoError(t, err)
	assert.True(t, first.OfferRecorded)
	assert.False(t, first.Partial())

	second, err := f.workbooks.ApplyOffer(ctx, offerFor("24CS1001", 10))
	require.NoError(t, err)
	assert.True(t, second.OfferSkipped)
	assert.False(t, second.OfferRecorded)

	offers, err := f.books.ListOffers(ctx, wb, "CS")
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, models.OfferActive, offers[0].Status)
}

func TestWorkbookServiceHighestCTCIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)

	_, err := f.workbooks.ApplyOffer(ctx, offerFor("24CS1001", 8))
	require.NoError(t, err)
	lower := offerFor("24CS1001", 6)
	lower.Company = "Globex"
	_, err = f.workbooks.ApplyOffer(ctx, lower)
	require.NoError(t, err)

	st := f.student(t, wb, "CS", "24CS1001")
	assert.Equal(t, 8.0, st.HighestCTC)
	assert.Equal(t, "Globex", st.Company)
}

func TestWorkbookServiceMissingStudentStillRecordsOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS")

	out, err := f.workbooks.ApplyOffer(ctx, offerFor("24CS4242", 5))
	require.NoError(t, err)
	assert.True(t, out.OfferRecorded)
	assert.False(t, out.StudentUpdated)
	assert.False(t, out.Partial())

	offers, err := f.books.ListOffers(ctx, wb, "CS")
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestWorkbookServiceRecordsBranchDrive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)

	info := models.DriveInfo{RequestID: "r1", Company: "Acme", DriveType: "FTE", ResultsPublished: true}
	for _, roll := range []string{"24CS1001", "24CS1002"} {
		in := offerFor(roll, 12)
		in.Drive = &info
		out, err := f.workbooks.ApplyOffer(ctx, in)
		require.NoError(t, err)
		assert.True(t, out.DriveRecorded)
	}

	row, hires, err := f.books.FindBranchDrive(ctx, wb, "CS", "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, row)
	assert.Equal(t, 2, hires)

	rows := f.sheet(t, wb, repository.BranchDrivesSheet("CS"))
	assert.Equal(t, repository.BranchDriveHeaders, rows[0])
}

func TestWorkbookServiceRevoke(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)
	_, err := f.workbooks.ApplyOffer(ctx, offerFor("24CS1002", 9))
	require.NoError(t, err)

	require.NoError(t, f.workbooks.RevokeRoll(ctx, "24CS1002"))
	st := f.student(t, wb, "CS", "24CS1002")
	assert.Empty(t, st.PlacementStatus)
	assert.Empty(t, st.PlacementType)

	assert.NoError(t, f.workbooks.RevokeRoll(ctx, "24CS7777"))

	err = f.workbooks.RevokeRoll(ctx, "x")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestWorkbookServiceLocateUsesDegreeMarker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ug, err := f.workbooks.Locate(ctx, "24CS1001")
	require.NoError(t, err)
	pg, err := f.workbooks.Locate(ctx, "23EE10M12")
	require.NoError(t, err)

	assert.Equal(t, models.DegreeUG, ug.Roll.Degree)
	assert.Equal(t, models.DegreePG, pg.Roll.Degree)
	assert.Equal(t, "EE", pg.Branch)
	assert.NotEqual(t, ug.WorkbookID, pg.WorkbookID)

	sheets, err := f.mem.ListSheets(ctx, pg.WorkbookID)
	require.NoError(t, err)
	assert.Contains(t, sheets, repository.StudentsSheet("EE"))
	assert.Contains(t, sheets, repository.StatsSheet("EE"))

	_, err = f.workbooks.FindStudent(ctx, pg.WorkbookID, "EE", "23EE10M12")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
