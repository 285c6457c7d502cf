package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type fakeCompanySrv struct {
	assigned dto.AssignCompanyRequest
	query    string
	err      error
}

func (f *fakeCompanySrv) Companies(_ context.Context, claims *models.JWTClaims) (*dto.CompaniesResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return &dto.CompaniesResponse{Companies: []string{"Acme"}}, nil
}

func (f *fakeCompanySrv) Assign(_ context.Context, req dto.AssignCompanyRequest, _ *models.JWTClaims) error {
	f.assigned = req
	return f.err
}

func (f *fakeCompanySrv) SearchSPOCs(_ context.Context, q string) ([]dto.SPOCSearchResult, error) {
	f.query = q
	return []dto.SPOCSearchResult{{Name: "Priya", Email: "priya@college.edu", Role: "SPOC"}}, nil
}

func TestCompanyHandlerMine(t *testing.T) {
	h := NewCompanyHandler(&fakeCompanySrv{})

	c, rec := newContext(http.MethodGet, "/companies/my", nil, spoc)
	h.Mine(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Acme"}, decode(t, rec).Data["companies"])

	c, rec = newContext(http.MethodGet, "/companies/my", nil, nil)
	h.Mine(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompanyHandlerAssign(t *testing.T) {
	srv := &fakeCompanySrv{}
	h := NewCompanyHandler(srv)

	c, rec := newContext(http.MethodPost, "/companies/assign", dto.AssignCompanyRequest{Company: "Acme", SPOCEmail: "spoc@college.edu"}, nil)
	h.Assign(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Acme", srv.assigned.Company)

	srv.err = appErrors.Clone(appErrors.ErrConflict, "company already assigned to this SPOC")
	c, rec = newContext(http.MethodPost, "/companies/assign", dto.AssignCompanyRequest{Company: "Acme", SPOCEmail: "spoc@college.edu"}, nil)
	h.Assign(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompanyHandlerSearchSPOCs(t *testing.T) {
	srv := &fakeCompanySrv{}
	h := NewCompanyHandler(srv)

	c, rec := newContext(http.MethodGet, "/users/spocs?q=pri", nil, nil)
	h.SearchSPOCs(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pri", srv.query)
	spocs, _ := decode(t, rec).Data["spocs"].([]interface{})
	assert.Len(t, spocs, 1)
}
