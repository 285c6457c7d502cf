package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

// TableStore is the store contract repositories rely on: the raw backend plus
// the read cache and its invalidation hooks.
type TableStore interface {
	tabular.Store
	ReadAllCached(ctx context.Context, ref tabular.TableRef) ([][]string, error)
	Invalidate(ctx context.Context, refs ...tabular.TableRef)
}

// Change assigns a value to the column named Column. Optional changes are
// dropped silently when the column does not exist.
type Change struct {
	Column   string
	Value    string
	Optional bool
}

// SchemaError reports a table missing required header columns.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s is missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
}

// snapshot is one read of a sheet: its header and all rows (header at index 0).
type snapshot struct {
	header []string
	rows   [][]string
}

func (s snapshot) col(name string) int {
	return tabular.IndexOf(s.header, name)
}

func (s snapshot) value(row []string, name string) string {
	return strings.TrimSpace(tabular.Cell(row, s.col(name)))
}

// find returns the absolute index of the first data row whose column equals value.
func (s snapshot) find(column, value string) int {
	idx := s.col(column)
	if idx < 0 {
		return -1
	}
	want := strings.TrimSpace(value)
	for i := 1; i < len(s.rows); i++ {
		if strings.TrimSpace(tabular.Cell(s.rows[i], idx)) == want {
			return i
		}
	}
	return -1
}

// sheetTable binds a sheet reference to its canonical header.
type sheetTable struct {
	store  TableStore
	ref    tabular.TableRef
	header []string

	mu     sync.RWMutex
	layout []string
}

func newSheetTable(store TableStore, ref tabular.TableRef, header []string) *sheetTable {
	return &sheetTable{store: store, ref: ref, header: header}
}

// ensure creates the sheet or extends its header.
func (t *sheetTable) ensure(ctx context.Context) error {
	layout, err := tabular.EnsureHeaders(ctx, t.store, t.ref, t.header)
	if err != nil {
		return err
	}
	t.remember(layout)
	return nil
}

func (t *sheetTable) remember(layout []string) {
	t.mu.Lock()
	t.layout = append([]string(nil), layout...)
	t.mu.Unlock()
}

// read loads the sheet; a missing sheet reads as empty.
func (t *sheetTable) read(ctx context.Context, cached bool) (snapshot, error) {
	var (
		rows [][]string
		err  error
	)
	if cached {
		rows, err = t.store.ReadAllCached(ctx, t.ref)
	} else {
		rows, err = t.store.ReadAll(ctx, t.ref)
	}
	if err != nil {
		if errors.Is(err, tabular.ErrSheetNotFound) {
			return snapshot{}, nil
		}
		return snapshot{}, fmt.Errorf("read %s: %w", t.ref.Sheet, err)
	}
	snap := snapshot{header: tabular.Header(rows), rows: rows}
	if len(snap.header) > 0 {
		t.remember(snap.header)
	}
	return snap, nil
}

func (t *sheetTable) columns(ctx context.Context) ([]string, error) {
	t.mu.RLock()
	layout := t.layout
	t.mu.RUnlock()
	if len(layout) > 0 {
		return layout, nil
	}
	snap, err := t.read(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(snap.header) == 0 {
		return t.header, nil
	}
	return snap.header, nil
}

// buildRow lays values out in header order.
func buildRow(header []string, values []Change) []string {
	row := make([]string, len(header))
	for _, v := range values {
		if idx := tabular.IndexOf(header, v.Column); idx >= 0 {
			row[idx] = v.Value
		}
	}
	return row
}

func (t *sheetTable) append(ctx context.Context, values []Change) error {
	header, err := t.columns(ctx)
	if err != nil {
		return err
	}
	if err := t.store.AppendRow(ctx, t.ref, buildRow(header, values)); err != nil {
		return fmt.Errorf("append to %s: %w", t.ref.Sheet, err)
	}
	return nil
}

// cellUpdates resolves changes against header.
func cellUpdates(table string, header []string, row int, changes []Change) ([]tabular.CellUpdate, error) {
	updates := make([]tabular.CellUpdate, 0, len(changes))
	var missing []string
	for _, c := range changes {
		idx := tabular.IndexOf(header, c.Column)
		if idx < 0 {
			if !c.Optional {
				missing = append(missing, c.Column)
			}
			continue
		}
		updates = append(updates, tabular.CellUpdate{Row: row, Col: idx, Value: c.Value})
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: table, Missing: missing}
	}
	return updates, nil
}

// update writes all changes of one row with a single batch call.
func (t *sheetTable) update(ctx context.Context, row int, changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	header, err := t.columns(ctx)
	if err != nil {
		return err
	}
	updates, err := cellUpdates(t.ref.Sheet, header, row, changes)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}
	if err := t.store.BatchUpdate(ctx, t.ref, updates); err != nil {
		return fmt.Errorf("update %s row %d: %w", t.ref.Sheet, row, err)
	}
	return nil
}

func (t *sheetTable) invalidate(ctx context.Context) {
	t.store.Invalidate(ctx, t.ref)
}
