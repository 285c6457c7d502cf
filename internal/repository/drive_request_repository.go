package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// DriveRequestsSheet is the registry sheet in the calendar workbook.
const DriveRequestsSheet = "Drive_Requests"

// Drive request columns.
const (
	ColRequestID         = "Request ID"
	ColCompany           = "Company"
	ColSPOC              = "SPOC"
	ColType              = "Type"
	ColEligiblePool      = "Eligible Pool"
	ColCGPACutoff        = "CGPA Cutoff"
	ColInternshipStipend = "Internship Stipend"
	ColFTECTC            = "FTE CTC"
	ColFTEBase           = "FTE Base"
	ColExpectedHires     = "Expected Hires"
	ColDriveStatus       = "Drive Status"
	ColLastUpdated       = "Last Updated"
)

// DriveRequestHeaders is the canonical Drive_Requests header row.
var DriveRequestHeaders = []string{
	ColRequestID, ColCompany, ColSPOC, ColType, ColEligiblePool, ColCGPACutoff,
	models.SlotPPT.DatetimeHeader(), models.SlotOT.DatetimeHeader(), models.SlotInterview.DatetimeHeader(),
	models.SlotPPT.StatusHeader(), models.SlotOT.StatusHeader(), models.SlotInterview.StatusHeader(),
	models.SlotPPT.SuggestedHeader(), models.SlotOT.SuggestedHeader(), models.SlotInterview.SuggestedHeader(),
	ColInternshipStipend, ColFTECTC, ColFTEBase, ColExpectedHires, ColDriveStatus,
}

// DriveRequestRepository reads and writes the Drive_Requests registry.
type DriveRequestRepository struct {
	table *sheetTable
}

// NewDriveRequestRepository constructs the repository for the calendar workbook.
func NewDriveRequestRepository(store TableStore, workbookID string) *DriveRequestRepository {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: DriveRequestsSheet}
	return &DriveRequestRepository{table: newSheetTable(store, ref, DriveRequestHeaders)}
}

// EnsureSchema creates the sheet or appends missing columns.
func (r *DriveRequestRepository) EnsureSchema(ctx context.Context) error {
	return r.table.ensure(ctx)
}

// List returns every request from a fresh read.
func (r *DriveRequestRepository) List(ctx context.Context) ([]models.DriveRequest, error) {
	snap, err := r.table.read(ctx, false)
	if err != nil {
		return nil, err
	}
	return decodeDrives(snap), nil
}

// ListCached returns every request, served from the table cache when fresh.
func (r *DriveRequestRepository) ListCached(ctx context.Context) ([]models.DriveRequest, error) {
	snap, err := r.table.read(ctx, true)
	if err != nil {
		return nil, err
	}
	return decodeDrives(snap), nil
}

// FindByID returns the request with id, or nil when it does not exist.
func (r *DriveRequestRepository) FindByID(ctx context.Context, id string) (*models.DriveRequest, error) {
	snap, err := r.table.read(ctx, false)
	if err != nil {
		return nil, err
	}
	row := snap.find(ColRequestID, id)
	if row < 0 {
		return nil, nil
	}
	drive := decodeDrive(snap, row)
	return &drive, nil
}

// Create appends a new request row.
func (r *DriveRequestRepository) Create(ctx context.Context, d models.DriveRequest) error {
	values := []Change{
		{Column: ColRequestID, Value: d.RequestID},
		{Column: ColCompany, Value: d.Company},
		{Column: ColSPOC, Value: d.SPOC},
		{Column: ColType, Value: d.Type},
		{Column: ColEligiblePool, Value: d.EligiblePool},
		{Column: ColCGPACutoff, Value: d.CGPACutoff},
		{Column: ColInternshipStipend, Value: d.InternshipStipend},
		{Column: ColFTECTC, Value: d.FTECTC},
		{Column: ColFTEBase, Value: d.FTEBase},
		{Column: ColExpectedHires, Value: d.ExpectedHires},
		{Column: ColDriveStatus, Value: d.DriveStatus},
	}
	for _, k := range models.SlotKinds {
		slot := d.Slot(k)
		values = append(values,
			Change{Column: k.DatetimeHeader(), Value: slot.Datetime},
			Change{Column: k.StatusHeader(), Value: string(slot.Status)},
			Change{Column: k.SuggestedHeader(), Value: slot.SuggestedDatetime},
		)
	}
	return r.table.append(ctx, values)
}

// Update writes changes to one request row in a single batch.
func (r *DriveRequestRepository) Update(ctx context.Context, row int, changes []Change) error {
	return r.table.update(ctx, row, changes)
}

// Invalidate drops cached Drive_Requests rows.
func (r *DriveRequestRepository) Invalidate(ctx context.Context) {
	r.table.invalidate(ctx)
}

func decodeDrives(snap snapshot) []models.DriveRequest {
	if len(snap.rows) < 2 {
		return []models.DriveRequest{}
	}
	drives := make([]models.DriveRequest, 0, len(snap.rows)-1)
	for i := 1; i < len(snap.rows); i++ {
		if snap.value(snap.rows[i], ColRequestID) == "" {
			continue
		}
		drives = append(drives, decodeDrive(snap, i))
	}
	return drives
}

func decodeDrive(snap snapshot, i int) models.DriveRequest {
	row := snap.rows[i]
	d := models.DriveRequest{
		Row:               i,
		RequestID:         snap.value(row, ColRequestID),
		Company:           snap.value(row, ColCompany),
		SPOC:              snap.value(row, ColSPOC),
		Type:              snap.value(row, ColType),
		EligiblePool:      snap.value(row, ColEligiblePool),
		CGPACutoff:        snap.value(row, ColCGPACutoff),
		InternshipStipend: snap.value(row, ColInternshipStipend),
		FTECTC:            snap.value(row, ColFTECTC),
		FTEBase:           snap.value(row, ColFTEBase),
		ExpectedHires:     snap.value(row, ColExpectedHires),
		DriveStatus:       snap.value(row, ColDriveStatus),
		Slots:             make(map[models.SlotKind]models.Slot, len(models.SlotKinds)),
	}
	for _, k := range models.SlotKinds {
		d.Slots[k] = models.Slot{
			Datetime:          snap.value(row, k.DatetimeHeader()),
			Status:            models.SlotStatus(strings.ToUpper(snap.value(row, k.StatusHeader()))),
			SuggestedDatetime: snap.value(row, k.SuggestedHeader()),
		}
	}
	return d
}
