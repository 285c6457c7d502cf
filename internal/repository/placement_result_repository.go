package repository

import (
	"context"
	"strings"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// PlacementResultsSheet is the ledger of published selections.
const PlacementResultsSheet = "Placement_Results"

// ColRollNumbers holds the comma-joined selection.
const ColRollNumbers = "Roll Numbers"

// PlacementResultHeaders is the ledger header row.
var PlacementResultHeaders = []string{ColCompany, ColRequestID, ColRollNumbers, ColLastUpdated}

// PlacementResultRepository stores the current selection per drive request.
type PlacementResultRepository struct {
	table *sheetTable
}

// NewPlacementResultRepository constructs the ledger repository.
func NewPlacementResultRepository(store TableStore, workbookID string) *PlacementResultRepository {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: PlacementResultsSheet}
	return &PlacementResultRepository{table: newSheetTable(store, ref, PlacementResultHeaders)}
}

// EnsureSchema creates the sheet or appends missing columns.
func (r *PlacementResultRepository) EnsureSchema(ctx context.Context) error {
	return r.table.ensure(ctx)
}

// FindByRequestID returns the ledger entry of requestID, or nil.
func (r *PlacementResultRepository) FindByRequestID(ctx context.Context, requestID string) (*models.PlacementResult, error) {
	snap, err := r.table.read(ctx, false)
	if err != nil {
		return nil, err
	}
	row := snap.find(ColRequestID, requestID)
	if row < 0 {
		return nil, nil
	}
	values := snap.rows[row]
	return &models.PlacementResult{
		Row:         row,
		Company:     snap.value(values, ColCompany),
		RequestID:   snap.value(values, ColRequestID),
		RollNumbers: SplitRolls(snap.value(values, ColRollNumbers)),
		LastUpdated: snap.value(values, ColLastUpdated),
	}, nil
}

// Save overwrites the ledger row of result.RequestID, appending when absent.
func (r *PlacementResultRepository) Save(ctx context.Context, result models.PlacementResult) error {
	existing, err := r.FindByRequestID(ctx, result.RequestID)
	if err != nil {
		return err
	}
	values := []Change{
		{Column: ColCompany, Value: result.Company},
		{Column: ColRequestID, Value: result.RequestID},
		{Column: ColRollNumbers, Value: strings.Join(result.RollNumbers, ", ")},
		{Column: ColLastUpdated, Value: result.LastUpdated},
	}
	if existing == nil {
		return r.table.append(ctx, values)
	}
	return r.table.update(ctx, existing.Row, values)
}

// SplitRolls parses a comma separated roll list, trimming and dropping blanks.
func SplitRolls(raw string) []string {
	parts := strings.Split(raw, ",")
	rolls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			rolls = append(rolls, p)
		}
	}
	return rolls
}
