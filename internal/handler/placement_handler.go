package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type calendarLister interface {
	List(ctx context.Context) ([]models.CompanyDrive, error)
}

type academicYearService interface {
	Get() dto.AcademicYearResponse
	Set(req dto.SetAcademicYearRequest) (dto.AcademicYearResponse, error)
}

// PlacementHandler serves the placement calendar and the academic year setting.
type PlacementHandler struct {
	calendar calendarLister
	years    academicYearService
}

// NewPlacementHandler constructs a PlacementHandler.
func NewPlacementHandler(calendar calendarLister, years academicYearService) *PlacementHandler {
	return &PlacementHandler{calendar: calendar, years: years}
}

// Calendar godoc
// @Summary Approved drives as projected into the calendar
// @Tags Placements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /placements/calendar [get]
func (h *PlacementHandler) Calendar(c *gin.Context) {
	drives, err := h.calendar.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if drives == nil {
		drives = []models.CompanyDrive{}
	}
	response.OK(c, gin.H{"drives": drives})
}

// AcademicYear godoc
// @Summary Active academic year
// @Tags Placements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-year [get]
func (h *PlacementHandler) AcademicYear(c *gin.Context) {
	response.OK(c, h.years.Get())
}

// SetAcademicYear godoc
// @Summary Change the academic year
// @Description Ignored when the year is pinned through ACADEMIC_YEAR.
// @Tags Placements
// @Accept json
// @Produce json
// @Param payload body dto.SetAcademicYearRequest true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /academic-year [post]
func (h *PlacementHandler) SetAcademicYear(c *gin.Context) {
	var req dto.SetAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid academic year payload"))
		return
	}
	res, err := h.years.Set(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
