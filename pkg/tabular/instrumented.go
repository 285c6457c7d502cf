package tabular

import (
	"context"
	"time"
)

// Observer receives the duration and outcome of each store call.
type Observer interface {
	ObserveStoreOp(op string, duration time.Duration, err error)
}

// InstrumentedStore reports every call of the wrapped Store to an Observer.
type InstrumentedStore struct {
	next     Store
	observer Observer
}

// NewInstrumentedStore wraps next. A nil observer returns next unchanged.
func NewInstrumentedStore(next Store, observer Observer) Store {
	if observer == nil {
		return next
	}
	return &InstrumentedStore{next: next, observer: observer}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	s.observer.ObserveStoreOp(op, time.Since(start), err)
}

func (s *InstrumentedStore) ReadAll(ctx context.Context, ref TableRef) (rows [][]string, err error) {
	defer func(start time.Time) { s.observe("read_all", start, err) }(time.Now())
	return s.next.ReadAll(ctx, ref)
}

func (s *InstrumentedStore) AppendRow(ctx context.Context, ref TableRef, row []string) (err error) {
	defer func(start time.Time) { s.observe("append_row", start, err) }(time.Now())
	return s.next.AppendRow(ctx, ref, row)
}

func (s *InstrumentedStore) UpdateCell(ctx context.Context, ref TableRef, row, col int, value string) (err error) {
	defer func(start time.Time) { s.observe("update_cell", start, err) }(time.Now())
	return s.next.UpdateCell(ctx, ref, row, col, value)
}

func (s *InstrumentedStore) BatchUpdate(ctx context.Context, ref TableRef, updates []CellUpdate) (err error) {
	defer func(start time.Time) { s.observe("batch_update", start, err) }(time.Now())
	return s.next.BatchUpdate(ctx, ref, updates)
}

func (s *InstrumentedStore) GetOrCreateWorkbook(ctx context.Context, name string) (id string, err error) {
	defer func(start time.Time) { s.observe("get_or_create_workbook", start, err) }(time.Now())
	return s.next.GetOrCreateWorkbook(ctx, name)
}

func (s *InstrumentedStore) ListSheets(ctx context.Context, workbookID string) (sheets []string, err error) {
	defer func(start time.Time) { s.observe("list_sheets", start, err) }(time.Now())
	return s.next.ListSheets(ctx, workbookID)
}

func (s *InstrumentedStore) CreateSheet(ctx context.Context, ref TableRef, headers []string) (err error) {
	defer func(start time.Time) { s.observe("create_sheet", start, err) }(time.Now())
	return s.next.CreateSheet(ctx, ref, headers)
}
