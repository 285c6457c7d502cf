package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/placement-api/internal/dto"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, degreeType, branch string, upload io.Reader) (*dto.EnrollmentResult, error)
}

// EnrollmentHandler accepts student list uploads.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(svc enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Upload godoc
// @Summary Enroll students from an xlsx sheet
// @Tags Enrollment
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Student list (.xlsx)"
// @Param degreeType formData string true "UG or PG"
// @Param branch formData string true "Branch code"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enroll/students [post]
func (h *EnrollmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	res, err := h.service.Enroll(c.Request.Context(), c.PostForm("degreeType"), c.PostForm("branch"), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
