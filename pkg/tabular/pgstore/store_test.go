package pgstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

func newStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return New(sqlx.NewDb(db, "postgres")), mock, func() { db.Close() }
}

var ref = tabular.TableRef{Workbook: "wb", Sheet: "Placement_Results"}

func TestReadAllFillsGaps(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM sheets WHERE workbook_id = $1 AND title = $2`)).
		WithArgs("wb", "Placement_Results").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	rows := sqlmock.NewRows([]string{"row_index", "cells"}).
		AddRow(0, []byte(`["Company","Request ID"]`)).
		AddRow(2, []byte(`["Acme","r1"]`))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT row_index, cells FROM sheet_rows WHERE workbook_id = $1 AND sheet_title = $2 ORDER BY row_index`)).
		WithArgs("wb", "Placement_Results").
		WillReturnRows(rows)

	got, err := store.ReadAll(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Company", "Request ID"}, got[0])
	assert.Empty(t, got[1])
	assert.Equal(t, []string{"Acme", "r1"}, got[2])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReadAllMissingSheet(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM sheets`)).
		WithArgs("wb", "Placement_Results").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := store.ReadAll(context.Background(), ref)
	assert.True(t, errors.Is(err, tabular.ErrSheetNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendRowLocksSheet(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM sheets`)).
		WithArgs("wb", "Placement_Results").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("wb:Placement_Results").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells)`)).
		WithArgs("wb", "Placement_Results", []byte(`["Acme","r1"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.AppendRow(context.Background(), ref, []string{"Acme", "r1"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpdateMergesCellsPerRow(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM sheets`)).
		WithArgs("wb", "Placement_Results").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WithArgs("wb:Placement_Results").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cells FROM sheet_rows WHERE workbook_id = $1 AND sheet_title = $2 AND row_index = $3`)).
		WithArgs("wb", "Placement_Results", 1).
		WillReturnRows(sqlmock.NewRows([]string{"cells"}).AddRow([]byte(`["Acme","r1"]`)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells) VALUES ($1, $2, $3, $4)`)).
		WithArgs("wb", "Placement_Results", 1, []byte(`["Acme","r1","A, B"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.BatchUpdate(context.Background(), ref, []tabular.CellUpdate{{Row: 1, Col: 2, Value: "A, B"}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchUpdateRollsBackOnWriteFailure(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM sheets`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cells FROM sheet_rows`)).
		WillReturnRows(sqlmock.NewRows([]string{"cells"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sheet_rows`)).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := store.BatchUpdate(context.Background(), ref, []tabular.CellUpdate{{Row: 3, Col: 0, Value: "x"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateWorkbook(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO workbooks (id, name) VALUES ($1, $2)`)).
		WithArgs(sqlmock.AnyArg(), "Placement_Data_2025-26_UG").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("wb-1"))

	id, err := store.GetOrCreateWorkbook(context.Background(), "Placement_Data_2025-26_UG")
	require.NoError(t, err)
	assert.Equal(t, "wb-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSheetWritesHeader(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sheets (workbook_id, title) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs("wb", "Offers_CS").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sheet_rows (workbook_id, sheet_title, row_index, cells) VALUES ($1, $2, 0, $3)`)).
		WithArgs("wb", "Offers_CS", []byte(`["Roll No","Company"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.CreateSheet(context.Background(), tabular.TableRef{Workbook: "wb", Sheet: "Offers_CS"}, []string{"Roll No", "Company"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
