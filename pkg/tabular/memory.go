package tabular

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type memoryWorkbook struct {
	name   string
	order  []string
	sheets map[string][][]string
}

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	workbooks map[string]*memoryWorkbook
	byName    map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workbooks: make(map[string]*memoryWorkbook),
		byName:    make(map[string]string),
	}
}

// AddWorkbook registers a workbook under a fixed id.
func (m *MemoryStore) AddWorkbook(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workbooks[id]; ok {
		return
	}
	m.workbooks[id] = &memoryWorkbook{name: name, sheets: make(map[string][][]string)}
	m.byName[name] = id
}

func (m *MemoryStore) sheet(ref TableRef) ([][]string, error) {
	wb, ok := m.workbooks[ref.Workbook]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, ref.Workbook)
	}
	rows, ok := wb.sheets[ref.Sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, ref.Sheet)
	}
	return rows, nil
}

// ReadAll returns a copy of every row of the sheet.
func (m *MemoryStore) ReadAll(_ context.Context, ref TableRef) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, err := m.sheet(ref)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// AppendRow appends row after the last row of the sheet.
func (m *MemoryStore) AppendRow(_ context.Context, ref TableRef, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.sheet(ref)
	if err != nil {
		return err
	}
	m.workbooks[ref.Workbook].sheets[ref.Sheet] = append(rows, append([]string(nil), row...))
	return nil
}

// UpdateCell writes one cell.
func (m *MemoryStore) UpdateCell(ctx context.Context, ref TableRef, row, col int, value string) error {
	return m.BatchUpdate(ctx, ref, []CellUpdate{{Row: row, Col: col, Value: value}})
}

// BatchUpdate applies all updates atomically, growing the sheet when needed.
func (m *MemoryStore) BatchUpdate(_ context.Context, ref TableRef, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, err := m.sheet(ref)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if u.Row < 0 || u.Col < 0 {
			return fmt.Errorf("tabular: invalid cell %d,%d", u.Row, u.Col)
		}
	}
	for _, u := range updates {
		for len(rows) <= u.Row {
			rows = append(rows, nil)
		}
		row := rows[u.Row]
		for len(row) <= u.Col {
			row = append(row, "")
		}
		row[u.Col] = u.Value
		rows[u.Row] = row
	}
	m.workbooks[ref.Workbook].sheets[ref.Sheet] = rows
	return nil
}

// GetOrCreateWorkbook resolves a workbook by name, creating it when absent.
func (m *MemoryStore) GetOrCreateWorkbook(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[name]; ok {
		return id, nil
	}
	id := uuid.NewString()
	m.workbooks[id] = &memoryWorkbook{name: name, sheets: make(map[string][][]string)}
	m.byName[name] = id
	return id, nil
}

// ListSheets returns sheet titles in creation order.
func (m *MemoryStore) ListSheets(_ context.Context, workbookID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wb, ok := m.workbooks[workbookID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, workbookID)
	}
	return append([]string(nil), wb.order...), nil
}

// CreateSheet adds a sheet, writing headers as its first row when given.
func (m *MemoryStore) CreateSheet(_ context.Context, ref TableRef, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	wb, ok := m.workbooks[ref.Workbook]
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkbookNotFound, ref.Workbook)
	}
	if _, exists := wb.sheets[ref.Sheet]; exists {
		return nil
	}
	var rows [][]string
	if len(headers) > 0 {
		rows = append(rows, append([]string(nil), headers...))
	}
	wb.sheets[ref.Sheet] = rows
	wb.order = append(wb.order, ref.Sheet)
	return nil
}
