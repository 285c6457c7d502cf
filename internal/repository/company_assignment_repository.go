package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// CompanySPOCMapSheet maps companies to their SPOCs.
const CompanySPOCMapSheet = "Company_SPOC_Map"

// Company map columns.
const (
	ColSPOCEmail  = "SPOC Email"
	ColAssignedBy = "Assigned By"
	ColAssignedAt = "Assigned At"
)

// CompanyAssignmentHeaders is the Company_SPOC_Map header row.
var CompanyAssignmentHeaders = []string{ColCompany, ColSPOCEmail, ColAssignedBy, ColAssignedAt}

// CompanyAssignmentRepository persists company to SPOC assignments.
type CompanyAssignmentRepository struct {
	table *sheetTable
}

// NewCompanyAssignmentRepository constructs the repository.
func NewCompanyAssignmentRepository(store TableStore, workbookID string) *CompanyAssignmentRepository {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: CompanySPOCMapSheet}
	return &CompanyAssignmentRepository{table: newSheetTable(store, ref, CompanyAssignmentHeaders)}
}

// EnsureSchema creates the sheet or appends missing columns.
func (r *CompanyAssignmentRepository) EnsureSchema(ctx context.Context) error {
	return r.table.ensure(ctx)
}

// List returns every assignment.
func (r *CompanyAssignmentRepository) List(ctx context.Context) ([]models.CompanyAssignment, error) {
	snap, err := r.table.read(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.CompanyAssignment, 0, len(snap.rows))
	for i := 1; i < len(snap.rows); i++ {
		row := snap.rows[i]
		if snap.value(row, ColCompany) == "" {
			continue
		}
		out = append(out, models.CompanyAssignment{
			Company:    snap.value(row, ColCompany),
			SPOCEmail:  snap.value(row, ColSPOCEmail),
			AssignedBy: snap.value(row, ColAssignedBy),
			AssignedAt: snap.value(row, ColAssignedAt),
		})
	}
	return out, nil
}

// Exists reports whether company is already mapped to spocEmail.
func (r *CompanyAssignmentRepository) Exists(ctx context.Context, company, spocEmail string) (bool, error) {
	assignments, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if strings.EqualFold(a.Company, strings.TrimSpace(company)) && strings.EqualFold(a.SPOCEmail, strings.TrimSpace(spocEmail)) {
			return true, nil
		}
	}
	return false, nil
}

// Create appends an assignment and drops the cached map.
func (r *CompanyAssignmentRepository) Create(ctx context.Context, a models.CompanyAssignment) error {
	if err := r.table.append(ctx, []Change{
		{Column: ColCompany, Value: a.Company},
		{Column: ColSPOCEmail, Value: a.SPOCEmail},
		{Column: ColAssignedBy, Value: a.AssignedBy},
		{Column: ColAssignedAt, Value: a.AssignedAt},
	}); err != nil {
		return err
	}
	r.table.invalidate(ctx)
	return nil
}
