package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type driveService interface {
	Submit(ctx context.Context, payload dto.DriveRequestPayload, claims *models.JWTClaims) (string, error)
	ListPending(ctx context.Context) ([]dto.DriveView, error)
	Approve(ctx context.Context, req dto.ApproveSlotRequest) error
	ListAll(ctx context.Context, claims *models.JWTClaims) ([]dto.DriveView, error)
	ListCompleted(ctx context.Context) ([]dto.DriveView, error)
	SetStatus(ctx context.Context, req dto.SetDriveStatusRequest, claims *models.JWTClaims) error
}

type resultPublisher interface {
	Publish(ctx context.Context, req dto.PublishResultsRequest, claims *models.JWTClaims) (*dto.PublishResultsResponse, error)
	Results(ctx context.Context, requestID string) (*dto.PlacementResultsResponse, error)
}

type resultExporter interface {
	ExportResults(ctx context.Context, requestID, format string) (*service.ExportFile, error)
}

// DriveHandler exposes the drive request workflow and result publication.
type DriveHandler struct {
	drives    driveService
	publisher resultPublisher
	exporter  resultExporter
}

// NewDriveHandler constructs a DriveHandler. exporter may be nil.
func NewDriveHandler(drives driveService, publisher resultPublisher, exporter resultExporter) *DriveHandler {
	return &DriveHandler{drives: drives, publisher: publisher, exporter: exporter}
}

// Submit godoc
// @Summary Create or update a drive request
// @Description Without request_id a new request is created; with it the existing one is updated.
// @Tags Drives
// @Accept json
// @Produce json
// @Param payload body dto.DriveRequestPayload true "Drive request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /drives/request [post]
func (h *DriveHandler) Submit(c *gin.Context) {
	var payload dto.DriveRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid drive payload"))
		return
	}
	id, err := h.drives.Submit(c.Request.Context(), payload, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DriveRequestResponse{RequestID: id})
}

// Pending godoc
// @Summary List slots awaiting a calendar decision
// @Tags Drives
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drives/pending [get]
func (h *DriveHandler) Pending(c *gin.Context) {
	views, err := h.drives.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.PendingDrivesResponse{Pending: views})
}

// Approve godoc
// @Summary Approve, reject or suggest a new time for one slot
// @Tags Drives
// @Accept json
// @Produce json
// @Param payload body dto.ApproveSlotRequest true "Slot decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drives/approve [post]
func (h *DriveHandler) Approve(c *gin.Context) {
	var req dto.ApproveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}
	if err := h.drives.Approve(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SuccessResponse{Success: true})
}

// My godoc
// @Summary List drives visible to the caller
// @Description SPOCs see their own requests; other roles see all of them.
// @Tags Drives
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drives/my [get]
func (h *DriveHandler) My(c *gin.Context) {
	views, err := h.drives.ListAll(c.Request.Context(), middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DrivesResponse{Drives: views})
}

// Completed godoc
// @Summary List drives whose scheduled slots are all approved
// @Tags Drives
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /drives/completed [get]
func (h *DriveHandler) Completed(c *gin.Context) {
	views, err := h.drives.ListCompleted(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CompletedDrivesResponse{Completed: views})
}

// SetStatus godoc
// @Summary Overwrite the drive status
// @Tags Drives
// @Accept json
// @Produce json
// @Param payload body dto.SetDriveStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /drives/status [post]
func (h *DriveHandler) SetStatus(c *gin.Context) {
	var req dto.SetDriveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	if err := h.drives.SetStatus(c.Request.Context(), req, middleware.CurrentClaims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SuccessResponse{Success: true})
}

// PublishResults godoc
// @Summary Publish the selected roll numbers of a drive
// @Description Diffs against the previous selection; individual roll failures are reported, not fatal.
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.PublishResultsRequest true "Selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drives/results [post]
func (h *DriveHandler) PublishResults(c *gin.Context) {
	var req dto.PublishResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid results payload"))
		return
	}
	res, err := h.publisher.Publish(c.Request.Context(), req, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Results godoc
// @Summary Current selection of a drive
// @Tags Results
// @Produce json
// @Param request_id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /drives/results/{request_id} [get]
func (h *DriveHandler) Results(c *gin.Context) {
	res, err := h.publisher.Results(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ExportResults godoc
// @Summary Download the current selection of a drive
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param request_id path string true "Request ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /drives/results/{request_id}/export [get]
func (h *DriveHandler) ExportResults(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export not configured"))
		return
	}
	file, err := h.exporter.ExportResults(c.Request.Context(), c.Param("request_id"), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.FileName, file.ContentType, file.Data)
}
