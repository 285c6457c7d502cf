package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/service"
)

type fakeCalendar struct {
	drives []models.CompanyDrive
}

func (f fakeCalendar) List(context.Context) ([]models.CompanyDrive, error) { return f.drives, nil }

func TestPlacementHandlerCalendar(t *testing.T) {
	h := NewPlacementHandler(fakeCalendar{}, service.NewAcademicYearService("", "2025-26", nil))
	c, rec := newContext(http.MethodGet, "/placements/calendar", nil, spoc)
	h.Calendar(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, decode(t, rec).Data["drives"])

	h = NewPlacementHandler(fakeCalendar{drives: []models.CompanyDrive{{Company: "Acme", RequestID: "req-1"}}}, nil)
	c, rec = newContext(http.MethodGet, "/placements/calendar", nil, spoc)
	h.Calendar(c)
	drives := decode(t, rec).Data["drives"].([]interface{})
	assert.Equal(t, "Acme", drives[0].(map[string]interface{})["company"])
}

func TestPlacementHandlerAcademicYear(t *testing.T) {
	h := NewPlacementHandler(fakeCalendar{}, service.NewAcademicYearService("", "2025-26", nil))

	c, rec := newContext(http.MethodPost, "/academic-year", dto.SetAcademicYearRequest{AcademicYear: "2026-27"}, nil)
	h.SetAcademicYear(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodGet, "/academic-year", nil, nil)
	h.AcademicYear(c)
	env := decode(t, rec)
	assert.Equal(t, "2026-27", env.Data["academicYear"])
	assert.Equal(t, false, env.Data["fromEnv"])

	c, rec = newContext(http.MethodPost, "/academic-year", dto.SetAcademicYearRequest{}, nil)
	h.SetAcademicYear(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
