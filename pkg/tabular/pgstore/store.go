// Package pgstore implements tabular.Store on PostgreSQL. Each sheet row is a
// JSONB array of cell strings keyed by (workbook, sheet, row index).
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

// Store persists workbooks in PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// New constructs a Store.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type rowRecord struct {
	RowIndex int    `db:"row_index"`
	Cells    []byte `db:"cells"`
}

func (s *Store) sheetExists(ctx context.Context, q sqlx.QueryerContext, ref tabular.TableRef) error {
	var count int
	if err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(1) FROM sheets WHERE workbook_id = $1 AND title = $2`, ref.Workbook, ref.Sheet); err != nil {
		return fmt.Errorf("check sheet %s: %w", ref.Key(), err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", tabular.ErrSheetNotFound, ref.Sheet)
	}
	return nil
}

// ReadAll loads every row of the sheet; index gaps become empty rows.
func (s *Store) ReadAll(ctx context.Context, ref tabular.TableRef) ([][]string, error) {
	if err := s.sheetExists(ctx, s.db, ref); err != nil {
		return nil, err
	}
	var records []rowRecord
	const query = `SELECT row_index, cells FROM sheet_rows WHERE workbook_id = $1 AND sheet_title = $2 ORDER BY row_index`
	if err := s.db.SelectContext(ctx, &records, query, ref.Workbook, ref.Sheet); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", ref.Key(), err)
	}
	if len(records) == 0 {
		return [][]string{}, nil
	}
	rows := make([][]string, records[len(records)-1].RowIndex+1)
	for _, rec := range records {
		var cells []string
		if err := json.Unmarshal(rec.Cells, &cells); err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", rec.RowIndex, ref.Key(), err)
		}
		rows[rec.RowIndex] = cells
	}
	return rows, nil
}

// AppendRow writes row at the next free index.
func (s *Store) AppendRow(ctx context.Context, ref tabular.TableRef, row []string) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	return s.withSheetLock(ctx, ref, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells)
SELECT $1, $2, COALESCE(MAX(row_index), -1) + 1, $3 FROM sheet_rows WHERE workbook_id = $1 AND sheet_title = $2`
		if _, err := tx.ExecContext(ctx, query, ref.Workbook, ref.Sheet, payload); err != nil {
			return fmt.Errorf("append row to %s: %w", ref.Key(), err)
		}
		return nil
	})
}

// UpdateCell writes one cell.
func (s *Store) UpdateCell(ctx context.Context, ref tabular.TableRef, row, col int, value string) error {
	return s.BatchUpdate(ctx, ref, []tabular.CellUpdate{{Row: row, Col: col, Value: value}})
}

// BatchUpdate applies all updates in one transaction, one upsert per touched row.
func (s *Store) BatchUpdate(ctx context.Context, ref tabular.TableRef, updates []tabular.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	byRow := make(map[int][]tabular.CellUpdate)
	for _, u := range updates {
		if u.Row < 0 || u.Col < 0 {
			return fmt.Errorf("tabular: invalid cell %d,%d", u.Row, u.Col)
		}
		byRow[u.Row] = append(byRow[u.Row], u)
	}
	indexes := make([]int, 0, len(byRow))
	for idx := range byRow {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	return s.withSheetLock(ctx, ref, func(tx *sqlx.Tx) error {
		for _, idx := range indexes {
			var raw []byte
			err := tx.GetContext(ctx, &raw, `SELECT cells FROM sheet_rows WHERE workbook_id = $1 AND sheet_title = $2 AND row_index = $3`, ref.Workbook, ref.Sheet, idx)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("load row %d of %s: %w", idx, ref.Key(), err)
			}
			var cells []string
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &cells); err != nil {
					return fmt.Errorf("decode row %d of %s: %w", idx, ref.Key(), err)
				}
			}
			for _, u := range byRow[idx] {
				for len(cells) <= u.Col {
					cells = append(cells, "")
				}
				cells[u.Col] = u.Value
			}
			payload, err := json.Marshal(cells)
			if err != nil {
				return fmt.Errorf("encode row: %w", err)
			}
			const upsert = `INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells) VALUES ($1, $2, $3, $4)
ON CONFLICT (workbook_id, sheet_title, row_index) DO UPDATE SET cells = EXCLUDED.cells, updated_at = NOW()`
			if _, err := tx.ExecContext(ctx, upsert, ref.Workbook, ref.Sheet, idx, payload); err != nil {
				return fmt.Errorf("write row %d of %s: %w", idx, ref.Key(), err)
			}
		}
		return nil
	})
}

// GetOrCreateWorkbook resolves a workbook by its unique name.
func (s *Store) GetOrCreateWorkbook(ctx context.Context, name string) (string, error) {
	const query = `INSERT INTO workbooks (id, name) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`
	var id string
	if err := s.db.GetContext(ctx, &id, query, uuid.NewString(), name); err != nil {
		return "", fmt.Errorf("get or create workbook %s: %w", name, err)
	}
	return id, nil
}

// ListSheets returns sheet titles in creation order.
func (s *Store) ListSheets(ctx context.Context, workbookID string) ([]string, error) {
	var titles []string
	if err := s.db.SelectContext(ctx, &titles, `SELECT title FROM sheets WHERE workbook_id = $1 ORDER BY position`, workbookID); err != nil {
		return nil, fmt.Errorf("list sheets of %s: %w", workbookID, err)
	}
	return titles, nil
}

// CreateSheet registers the sheet and stores headers as row 0.
func (s *Store) CreateSheet(ctx context.Context, ref tabular.TableRef, headers []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create sheet: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO sheets (workbook_id, title) VALUES ($1, $2) ON CONFLICT DO NOTHING`, ref.Workbook, ref.Sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", ref.Key(), err)
	}
	if len(headers) > 0 {
		payload, err := json.Marshal(headers)
		if err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells) VALUES ($1, $2, 0, $3) ON CONFLICT DO NOTHING`, ref.Workbook, ref.Sheet, payload); err != nil {
			return fmt.Errorf("write header of %s: %w", ref.Key(), err)
		}
	}
	return tx.Commit()
}

// withSheetLock runs fn in a transaction holding an advisory lock for ref.
func (s *Store) withSheetLock(ctx context.Context, ref tabular.TableRef, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.sheetExists(ctx, tx, ref); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, ref.Key()); err != nil {
		return fmt.Errorf("lock sheet %s: %w", ref.Key(), err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
