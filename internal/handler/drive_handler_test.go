package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

var spoc = &models.JWTClaims{Email: "spoc@college.edu", Role: models.RoleSPOC}

type fakeDriveSrv struct {
	submitted  dto.DriveRequestPayload
	submitter  *models.JWTClaims
	approved   dto.ApproveSlotRequest
	status     dto.SetDriveStatusRequest
	views      []dto.DriveView
	err        error
	listCaller *models.JWTClaims
}

func (f *fakeDriveSrv) Submit(_ context.Context, p dto.DriveRequestPayload, claims *models.JWTClaims) (string, error) {
	f.submitted, f.submitter = p, claims
	if f.err != nil {
		return "", f.err
	}
	return "req-1", nil
}

func (f *fakeDriveSrv) ListPending(context.Context) ([]dto.DriveView, error) { return f.views, f.err }

func (f *fakeDriveSrv) Approve(_ context.Context, req dto.ApproveSlotRequest) error {
	f.approved = req
	return f.err
}

func (f *fakeDriveSrv) ListAll(_ context.Context, claims *models.JWTClaims) ([]dto.DriveView, error) {
	f.listCaller = claims
	return f.views, f.err
}

func (f *fakeDriveSrv) ListCompleted(context.Context) ([]dto.DriveView, error) { return f.views, f.err }

func (f *fakeDriveSrv) SetStatus(_ context.Context, req dto.SetDriveStatusRequest, _ *models.JWTClaims) error {
	f.status = req
	return f.err
}

type fakePublisher struct {
	req     dto.PublishResultsRequest
	resp    *dto.PublishResultsResponse
	results *dto.PlacementResultsResponse
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, req dto.PublishResultsRequest, _ *models.JWTClaims) (*dto.PublishResultsResponse, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakePublisher) Results(context.Context, string) (*dto.PlacementResultsResponse, error) {
	return f.results, f.err
}

type fakeExporter struct {
	format string
	err    error
}

func (f *fakeExporter) ExportResults(_ context.Context, id, format string) (*service.ExportFile, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{FileName: "results-" + id + ".csv", ContentType: "text/csv", Data: []byte("#,Roll No\n")}, nil
}

func TestDriveHandlerSubmit(t *testing.T) {
	srv := &fakeDriveSrv{}
	h := NewDriveHandler(srv, &fakePublisher{}, nil)

	c, rec := newContext(http.MethodPost, "/drives/request", dto.DriveRequestPayload{Company: "Acme", PPTDatetime: "2025-10-01T10:00"}, spoc)
	h.Submit(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", decode(t, rec).Data["request_id"])
	assert.Equal(t, "Acme", srv.submitted.Company)
	assert.Equal(t, spoc, srv.submitter)
}

func TestDriveHandlerSubmitBadJSON(t *testing.T) {
	h := NewDriveHandler(&fakeDriveSrv{}, &fakePublisher{}, nil)
	c, rec := newContext(http.MethodPost, "/drives/request", "{", spoc)
	h.Submit(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriveHandlerApproveMapsErrors(t *testing.T) {
	srv := &fakeDriveSrv{err: appErrors.Clone(appErrors.ErrNotFound, "drive request not found")}
	h := NewDriveHandler(srv, &fakePublisher{}, nil)

	c, rec := newContext(http.MethodPost, "/drives/approve", dto.ApproveSlotRequest{RequestID: "x", Slot: "PPT", Action: "APPROVE"}, nil)
	h.Approve(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "PPT", srv.approved.Slot)
}

func TestDriveHandlerListings(t *testing.T) {
	srv := &fakeDriveSrv{views: []dto.DriveView{{RequestID: "req-1", Company: "Acme"}}}
	h := NewDriveHandler(srv, &fakePublisher{}, nil)

	cases := []struct {
		call func(*gin.Context)
		key  string
	}{
		{h.Pending, "pending"},
		{h.My, "drives"},
		{h.Completed, "completed"},
	}
	for _, tc := range cases {
		c, rec := newContext(http.MethodGet, "/drives", nil, spoc)
		tc.call(c)
		assert.Equal(t, http.StatusOK, rec.Code)
		list, ok := decode(t, rec).Data[tc.key].([]interface{})
		require.True(t, ok, tc.key)
		assert.Len(t, list, 1)
	}
	assert.Equal(t, spoc, srv.listCaller)
}

func TestDriveHandlerSetStatus(t *testing.T) {
	srv := &fakeDriveSrv{}
	h := NewDriveHandler(srv, &fakePublisher{}, nil)
	c, rec := newContext(http.MethodPost, "/drives/status", dto.SetDriveStatusRequest{RequestID: "req-1", Status: "Postponed"}, spoc)
	h.SetStatus(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec).Data["success"])
	assert.Equal(t, "Postponed", srv.status.Status)
}

func TestDriveHandlerPublishResults(t *testing.T) {
	pub := &fakePublisher{resp: &dto.PublishResultsResponse{
		Success: true, Selected: 2, Added: 1, AddedRolls: []string{"24CS1001"}, FailedAdds: []string{"BAD"},
	}}
	h := NewDriveHandler(&fakeDriveSrv{}, pub, nil)

	c, rec := newContext(http.MethodPost, "/drives/results", dto.PublishResultsRequest{RequestID: "req-1", Results: "24CS1001, BAD"}, spoc)
	h.PublishResults(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, float64(2), env.Data["selected"])
	assert.Equal(t, float64(1), env.Data["added"])
	assert.Equal(t, float64(0), env.Data["removed"])
	assert.Equal(t, []interface{}{"24CS1001"}, env.Data["addedRolls"])
	assert.Equal(t, []interface{}{"BAD"}, env.Data["failedAdds"])
	assert.Equal(t, "24CS1001, BAD", pub.req.Results)

	pub.err = appErrors.Clone(appErrors.ErrValidation, "results is required")
	c, rec = newContext(http.MethodPost, "/drives/results", dto.PublishResultsRequest{RequestID: "req-1"}, spoc)
	h.PublishResults(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriveHandlerResults(t *testing.T) {
	pub := &fakePublisher{results: &dto.PlacementResultsResponse{Results: "24CS1001", RollNumbers: []string{"24CS1001"}, Count: 1}}
	h := NewDriveHandler(&fakeDriveSrv{}, pub, nil)

	c, rec := newContext(http.MethodGet, "/drives/results/req-1", nil, spoc)
	c.Params = gin.Params{{Key: "request_id", Value: "req-1"}}
	h.Results(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec).Data["count"])
}

func TestDriveHandlerExportResults(t *testing.T) {
	exp := &fakeExporter{}
	h := NewDriveHandler(&fakeDriveSrv{}, &fakePublisher{}, exp)

	c, rec := newContext(http.MethodGet, "/drives/results/req-1/export", nil, spoc)
	c.Params = gin.Params{{Key: "request_id", Value: "req-1"}}
	h.ExportResults(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exp.format)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="results-req-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "#,Roll No\n", rec.Body.String())

	c, rec = newContext(http.MethodGet, "/drives/results/req-1/export", nil, spoc)
	NewDriveHandler(&fakeDriveSrv{}, &fakePublisher{}, nil).ExportResults(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
