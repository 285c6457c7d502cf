package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/middleware"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type companyService interface {
	Companies(ctx context.Context, claims *models.JWTClaims) (*dto.CompaniesResponse, error)
	Assign(ctx context.Context, req dto.AssignCompanyRequest, claims *models.JWTClaims) error
	SearchSPOCs(ctx context.Context, q string) ([]dto.SPOCSearchResult, error)
}

// CompanyHandler serves the company to SPOC map and the SPOC directory.
type CompanyHandler struct {
	service companyService
}

// NewCompanyHandler constructs a CompanyHandler.
func NewCompanyHandler(svc companyService) *CompanyHandler {
	return &CompanyHandler{service: svc}
}

// Mine godoc
// @Summary Companies assigned to the caller
// @Tags Companies
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /companies/my [get]
func (h *CompanyHandler) Mine(c *gin.Context) {
	res, err := h.service.Companies(c.Request.Context(), middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Assign godoc
// @Summary Assign a company to a SPOC
// @Tags Companies
// @Accept json
// @Produce json
// @Param payload body dto.AssignCompanyRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /companies/assign [post]
func (h *CompanyHandler) Assign(c *gin.Context) {
	var req dto.AssignCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := h.service.Assign(c.Request.Context(), req, middleware.CurrentClaims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.SuccessResponse{Success: true})
}

// SearchSPOCs godoc
// @Summary Search associates who can act as SPOC
// @Tags Companies
// @Produce json
// @Param q query string false "Name or email fragment"
// @Success 200 {object} response.Envelope
// @Router /users/spocs [get]
func (h *CompanyHandler) SearchSPOCs(c *gin.Context) {
	res, err := h.service.SearchSPOCs(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"spocs": res})
}
