// Package tabular defines the spreadsheet-style storage contract used by the
// placement workflow: workbooks that contain named sheets of string cells,
// where the first row of every sheet is its header.
package tabular

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned when a referenced sheet does not exist.
var ErrSheetNotFound = errors.New("tabular: sheet not found")

// ErrWorkbookNotFound is returned when a referenced workbook does not exist.
var ErrWorkbookNotFound = errors.New("tabular: workbook not found")

// TableRef addresses one sheet inside one workbook.
type TableRef struct {
	Workbook string
	Sheet    string
}

// Key returns a stable identifier usable as a cache key fragment.
func (r TableRef) Key() string {
	return r.Workbook + ":" + r.Sheet
}

// CellUpdate is a single cell write. Row and Col are zero-based and Row 0 is
// the header row, so the first data row is Row 1.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// Store is the contract every backend implements. Rows returned by ReadAll
// include the header row at index 0 and may be ragged.
type Store interface {
	ReadAll(ctx context.Context, ref TableRef) ([][]string, error)
	AppendRow(ctx context.Context, ref TableRef, row []string) error
	UpdateCell(ctx context.Context, ref TableRef, row, col int, value string) error
	BatchUpdate(ctx context.Context, ref TableRef, updates []CellUpdate) error
	GetOrCreateWorkbook(ctx context.Context, name string) (string, error)
	ListSheets(ctx context.Context, workbookID string) ([]string, error)
	CreateSheet(ctx context.Context, ref TableRef, headers []string) error
}
