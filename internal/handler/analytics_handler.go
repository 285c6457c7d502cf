package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type statsService interface {
	Branch(ctx context.Context, degree models.DegreeType, branch string) (*models.BranchStats, error)
	Branchwise(ctx context.Context, degree models.DegreeType) ([]models.BranchStats, error)
	Overview(ctx context.Context) (*dto.OverviewResponse, error)
	Recalculate(ctx context.Context, req dto.RecalculateStatsRequest) (*models.BranchStats, error)
}

// AnalyticsHandler exposes placement statistics.
type AnalyticsHandler struct {
	stats statsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(stats statsService) *AnalyticsHandler {
	return &AnalyticsHandler{stats: stats}
}

// Branch godoc
// @Summary Statistics of one branch
// @Tags Analytics
// @Produce json
// @Param degree path string true "UG or PG"
// @Param branch path string true "Branch code"
// @Success 200 {object} response.Envelope
// @Router /analytics/branch/{degree}/{branch} [get]
func (h *AnalyticsHandler) Branch(c *gin.Context) {
	degree, ok := models.ParseDegreeType(c.Param("degree"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "degree must be UG or PG"))
		return
	}
	start := time.Now()
	st, err := h.stats.Branch(c.Request.Context(), degree, c.Param("branch"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, st, start)
}

// Branchwise godoc
// @Summary Statistics of every branch of a degree
// @Tags Analytics
// @Produce json
// @Param degree path string true "UG or PG"
// @Success 200 {object} response.Envelope
// @Router /analytics/branchwise/{degree} [get]
func (h *AnalyticsHandler) Branchwise(c *gin.Context) {
	degree, ok := models.ParseDegreeType(c.Param("degree"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "degree must be UG or PG"))
		return
	}
	start := time.Now()
	branches, err := h.stats.Branchwise(c.Request.Context(), degree)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, gin.H{"degreeType": degree, "branches": branches}, start)
}

// Overall godoc
// @Summary Placement overview across degrees
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/overall [get]
func (h *AnalyticsHandler) Overall(c *gin.Context) {
	start := time.Now()
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, overview, start)
}

// Recalculate godoc
// @Summary Rewrite the stats sheets of a branch
// @Tags Analytics
// @Accept json
// @Produce json
// @Param payload body dto.RecalculateStatsRequest true "Branch"
// @Success 200 {object} response.Envelope
// @Router /analytics/recalculate [post]
func (h *AnalyticsHandler) Recalculate(c *gin.Context) {
	var req dto.RecalculateStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recalculate payload"))
		return
	}
	start := time.Now()
	st, err := h.stats.Recalculate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, st, start)
}

func (h *AnalyticsHandler) respond(c *gin.Context, data interface{}, start time.Time) {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.OK(c, data, meta)
}
