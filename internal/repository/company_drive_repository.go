package repository

import (
	"context"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// CompanyDrivesSheet is the calendar projection sheet.
const CompanyDrivesSheet = "Company_Drives"

// Projection-only columns.
const (
	ColActualHires        = "Actual Hires"
	ColResultsPublished   = "Results Published"
	ColResultsPublishedAt = "Results Published At"
)

// CompanyDriveRequiredHeaders must all be present before the projection is written.
var CompanyDriveRequiredHeaders = []string{
	ColCompany, ColSPOC, ColRequestID, ColType, ColEligiblePool, ColCGPACutoff,
	models.SlotPPT.DatetimeHeader(), models.SlotOT.DatetimeHeader(), models.SlotInterview.DatetimeHeader(),
	models.SlotPPT.StatusHeader(), models.SlotOT.StatusHeader(), models.SlotInterview.StatusHeader(),
	ColInternshipStipend, ColFTECTC, ColFTEBase, ColExpectedHires, ColDriveStatus, ColLastUpdated,
}

// CompanyDriveHeaders is the header written when the sheet is bootstrapped.
var CompanyDriveHeaders = append(append([]string(nil), CompanyDriveRequiredHeaders...),
	ColActualHires, ColResultsPublished, ColResultsPublishedAt)

// CompanyDriveRepository maintains the one-row-per-request calendar projection.
type CompanyDriveRepository struct {
	table *sheetTable
}

// NewCompanyDriveRepository constructs the repository for the calendar workbook.
func NewCompanyDriveRepository(store TableStore, workbookID string) *CompanyDriveRepository {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: CompanyDrivesSheet}
	return &CompanyDriveRepository{table: newSheetTable(store, ref, CompanyDriveHeaders)}
}

// EnsureSchema creates the sheet or appends missing columns.
func (r *CompanyDriveRepository) EnsureSchema(ctx context.Context) error {
	return r.table.ensure(ctx)
}

// Find validates the header and returns the projection row of requestID.
// The returned row index is -1 when no projection exists yet.
func (r *CompanyDriveRepository) Find(ctx context.Context, requestID string) (int, *models.CompanyDrive, error) {
	snap, err := r.table.read(ctx, false)
	if err != nil {
		return -1, nil, err
	}
	if missing := tabular.Missing(snap.header, CompanyDriveRequiredHeaders); len(missing) > 0 {
		return -1, nil, &SchemaError{Table: CompanyDrivesSheet, Missing: missing}
	}
	row := snap.find(ColRequestID, requestID)
	if row < 0 {
		return -1, nil, nil
	}
	drive := decodeCompanyDrive(snap, snap.rows[row])
	return row, &drive, nil
}

// List returns every projected drive, served from the cache when fresh.
func (r *CompanyDriveRepository) List(ctx context.Context) ([]models.CompanyDrive, error) {
	snap, err := r.table.read(ctx, true)
	if err != nil {
		return nil, err
	}
	drives := make([]models.CompanyDrive, 0, len(snap.rows))
	for i := 1; i < len(snap.rows); i++ {
		if snap.value(snap.rows[i], ColRequestID) == "" && snap.value(snap.rows[i], ColCompany) == "" {
			continue
		}
		drives = append(drives, decodeCompanyDrive(snap, snap.rows[i]))
	}
	return drives, nil
}

// Append adds a projection row.
func (r *CompanyDriveRepository) Append(ctx context.Context, values []Change) error {
	return r.table.append(ctx, values)
}

// Update writes changes to one projection row in a single batch.
func (r *CompanyDriveRepository) Update(ctx context.Context, row int, changes []Change) error {
	return r.table.update(ctx, row, changes)
}

// Invalidate drops cached Company_Drives rows.
func (r *CompanyDriveRepository) Invalidate(ctx context.Context) {
	r.table.invalidate(ctx)
}

func decodeCompanyDrive(snap snapshot, row []string) models.CompanyDrive {
	return models.CompanyDrive{
		Company:            snap.value(row, ColCompany),
		SPOC:               snap.value(row, ColSPOC),
		RequestID:          snap.value(row, ColRequestID),
		Type:               snap.value(row, ColType),
		EligiblePool:       snap.value(row, ColEligiblePool),
		CGPACutoff:         snap.value(row, ColCGPACutoff),
		PPTDatetime:        snap.value(row, models.SlotPPT.DatetimeHeader()),
		OTDatetime:         snap.value(row, models.SlotOT.DatetimeHeader()),
		InterviewDatetime:  snap.value(row, models.SlotInterview.DatetimeHeader()),
		PPTStatus:          snap.value(row, models.SlotPPT.StatusHeader()),
		OTStatus:           snap.value(row, models.SlotOT.StatusHeader()),
		InterviewStatus:    snap.value(row, models.SlotInterview.StatusHeader()),
		InternshipStipend:  snap.value(row, ColInternshipStipend),
		FTECTC:             snap.value(row, ColFTECTC),
		FTEBase:            snap.value(row, ColFTEBase),
		ExpectedHires:      snap.value(row, ColExpectedHires),
		ActualHires:        snap.value(row, ColActualHires),
		DriveStatus:        snap.value(row, ColDriveStatus),
		ResultsPublished:   snap.value(row, ColResultsPublished),
		ResultsPublishedAt: snap.value(row, ColResultsPublishedAt),
		LastUpdated:        snap.value(row, ColLastUpdated),
	}
}
