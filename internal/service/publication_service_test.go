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

func csStudents() []models.Student {
	return []models.Student{
		{RollNo: "24CS1001", Name: "Asha", Gender: "F", CGPA: "8.1", Eligible: "Yes"},
		{RollNo: "24CS1002", Name: "Bilal", Gender: "M", CGPA: "7.4", Eligible: "Yes"},
		{RollNo: "24CS1003", Name: "Chen", Gender: "M", CGPA: "6.9", Eligible: "Yes"},
	}
}

func TestPublicationEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)

	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)
	drive, err := f.drives.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SlotPending, drive.Slot(models.SlotPPT).Status)

	require.NoError(t, f.driveSvc.Approve(ctx, dto.ApproveSlotRequest{RequestID: id, Slot: "PPT", Action: "APPROVE"}))
	_, entry, err := f.cal.Find(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "APPROVED", entry.PPTStatus)

	resp, err := f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1001, 24CS1002"}, spocClaims)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Selected)
	assert.Equal(t, 2, resp.Added)
	assert.Zero(t, resp.Removed)
	assert.Equal(t, []string{"24CS1001", "24CS1002"}, resp.AddedRolls)
	assert.Empty(t, resp.FailedAdds)
	assert.Empty(t, resp.PartialAdds)

	for _, roll := range []string{"24CS1001", "24CS1002"} {
		st := f.student(t, wb, "CS", roll)
		assert.Equal(t, models.PlacementPlaced, st.PlacementStatus, roll)
		assert.Equal(t, "Acme", st.Company, roll)
		assert.Equal(t, "FTE", st.PlacementType, roll)
		assert.Equal(t, 12.0, st.HighestCTC, roll)
		assert.Equal(t, "No", st.OfferRevoked, roll)
	}
	drive, err = f.drives.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DriveStatusCompleted, drive.DriveStatus)

	_, entry, err = f.cal.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2", entry.ActualHires)
	assert.Equal(t, "Yes", entry.ResultsPublished)
	assert.Equal(t, models.DriveStatusCompleted, entry.DriveStatus)

	branchDrives := f.sheet(t, wb, repository.BranchDrivesSheet("CS"))
	require.Len(t, branchDrives, 2)

	resp, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1002, 24CS1003"}, spocClaims)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 1, resp.Removed)
	assert.Equal(t, []string{"24CS1003"}, resp.AddedRolls)
	assert.Equal(t, []string{"24CS1001"}, resp.RemovedRolls)
	assert.Empty(t, resp.FailedRemoves)

	revoked := f.student(t, wb, "CS", "24CS1001")
	assert.Empty(t, revoked.PlacementStatus)
	assert.Empty(t, revoked.Company)
	assert.Zero(t, revoked.HighestCTC)
	assert.Equal(t, models.PlacementPlaced, f.student(t, wb, "CS", "24CS1002").PlacementStatus)
	assert.Equal(t, models.PlacementPlaced, f.student(t, wb, "CS", "24CS1003").PlacementStatus)

	offers, err := f.books.ListOffers(ctx, wb, "CS")
	require.NoError(t, err)
	assert.Len(t, offers, 3)

	results, err := f.publisher.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "24CS1002, 24CS1003", results.Results)
	assert.Equal(t, 2, results.Count)

	require.Len(t, f.notify.events, 2)
	assert.Equal(t, []string{"24CS1001"}, f.notify.events[1].Removed)
	assert.Equal(t, spocClaims.Email, f.notify.events[1].PublishedBy)
}

func TestPublicationRepublishSameSelectionIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)
	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)

	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1001"}, spocClaims)
	require.NoError(t, err)
	resp, err := f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: " 24CS1001 ,24CS1001"}, spocClaims)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Selected)
	assert.Zero(t, resp.Added)
	assert.Zero(t, resp.Removed)

	offers, err := f.books.ListOffers(ctx, wb, "CS")
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestPublicationNotFoundRollsDoNotAbortSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	wb := f.enroll(t, "CS", csStudents()...)
	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)

	resp, err := f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS9999, BAD, 24CS1001, 24CS1003"}, spocClaims)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Selected)
	assert.Equal(t, 2, resp.Added)
	assert.Equal(t, []string{"24CS1001", "24CS1003"}, resp.AddedRolls)
	assert.ElementsMatch(t, []string{"24CS9999", "BAD"}, resp.FailedAdds)
	assert.Equal(t, models.PlacementPlaced, f.student(t, wb, "CS", "24CS1001").PlacementStatus)
	assert.Equal(t, models.PlacementPlaced, f.student(t, wb, "CS", "24CS1003").PlacementStatus)

	results, err := f.publisher.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, results.Count)

	_, entry, err := f.cal.Find(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "2", entry.ActualHires)
}

func TestPublicationRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)

	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id}, spocClaims)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: " , ,"}, spocClaims)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: "missing", Results: "24CS1001"}, spocClaims)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1001"}, otherSPOC)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	results, err := f.publisher.Results(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, results.Count)
	assert.Equal(t, []string{}, results.RollNumbers)
}

func TestPublicationAdminMayPublishAnyDrive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.enroll(t, "CS", csStudents()...)
	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)

	resp, err := f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1002"}, adminClaims)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Added)
}

func TestDifference(t *testing.T) {
	assert.Equal(t, []string{"R3"}, difference([]string{"R2", "R3"}, []string{"R1", "R2"}))
	assert.Equal(t, []string{"R1"}, difference([]string{"R1", "R2"}, []string{"R2", "R3"}))
	assert.Equal(t, []string{}, difference(nil, []string{"R1"}))
	assert.Equal(t, []string{"R1"}, difference([]string{"R1"}, nil))
}

func TestOfferTypeOf(t *testing.T) {
	assert.Equal(t, "FTE", offerTypeOf(""))
	assert.Equal(t, "Internship", offerTypeOf(" Internship "))
}
