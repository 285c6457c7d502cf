// Package gsheets implements tabular.Store on top of the Google Sheets and
// Google Drive APIs. Workbooks map to spreadsheets living in one Drive folder.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/noah-isme/placement-api/pkg/tabular"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	// Values are stored verbatim; Sheets must not turn datetimes, CTCs or
	// roll numbers into dates and numbers that read back formatted.
	valueInputOption = "RAW"
)

// Store talks to Google Sheets for cell data and Google Drive for workbook lookup.
type Store struct {
	sheets   *sheets.Service
	drive    *drive.Service
	folderID string
	logger   *zap.Logger

	mu        sync.Mutex
	workbooks map[string]string
}

// New builds a Store authenticated with a service-account credentials file.
func New(ctx context.Context, credentialsFile, folderID string, logger *zap.Logger, opts ...option.ClientOption) (*Store, error) {
	base := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope, drive.DriveScope)}
	if credentialsFile != "" {
		base = append(base, option.WithCredentialsFile(credentialsFile))
	}
	base = append(base, opts...)

	sheetsSvc, err := sheets.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, base...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return NewWithServices(sheetsSvc, driveSvc, folderID, logger), nil
}

// NewWithServices builds a Store from pre-configured API clients.
func NewWithServices(sheetsSvc *sheets.Service, driveSvc *drive.Service, folderID string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sheets:    sheetsSvc,
		drive:     driveSvc,
		folderID:  folderID,
		logger:    logger,
		workbooks: make(map[string]string),
	}
}

// ReadAll fetches the used range of the sheet.
func (s *Store) ReadAll(ctx context.Context, ref tabular.TableRef) ([][]string, error) {
	resp, err := s.sheets.Spreadsheets.Values.Get(ref.Workbook, quoteSheet(ref.Sheet)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, ref)
	}
	return toStrings(resp.Values), nil
}

// AppendRow appends row below the last populated row.
func (s *Store) AppendRow(ctx context.Context, ref tabular.TableRef, row []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}
	_, err := s.sheets.Spreadsheets.Values.Append(ref.Workbook, quoteSheet(ref.Sheet)+"!A1", vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return mapError(err, ref)
	}
	return nil
}

// UpdateCell writes one cell.
func (s *Store) UpdateCell(ctx context.Context, ref tabular.TableRef, row, col int, value string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.sheets.Spreadsheets.Values.Update(ref.Workbook, A1(ref.Sheet, row, col), vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return mapError(err, ref)
	}
	return nil
}

// BatchUpdate sends every update in a single values:batchUpdate call.
func (s *Store) BatchUpdate(ctx context.Context, ref tabular.TableRef, updates []tabular.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  A1(ref.Sheet, u.Row, u.Col),
			Values: [][]interface{}{{u.Value}},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputOption, Data: data}
	if _, err := s.sheets.Spreadsheets.Values.BatchUpdate(ref.Workbook, req).Context(ctx).Do(); err != nil {
		return mapError(err, ref)
	}
	return nil
}

// GetOrCreateWorkbook finds a spreadsheet by name in the configured folder or creates it.
func (s *Store) GetOrCreateWorkbook(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.workbooks[name]; ok {
		return id, nil
	}

	query := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	if s.folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", escapeQuery(s.folderID))
	}
	list, err := s.drive.Files.List().
		Q(query).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search workbook %s: %w", name, err)
	}
	if len(list.Files) > 0 {
		s.workbooks[name] = list.Files[0].Id
		return list.Files[0].Id, nil
	}

	file := &drive.File{Name: name, MimeType: spreadsheetMimeType}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}
	created, err := s.drive.Files.Create(file).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create workbook %s: %w", name, err)
	}
	s.logger.Info("workbook created", zap.String("workbook", name), zap.String("id", created.Id))
	s.workbooks[name] = created.Id
	return created.Id, nil
}

// ListSheets returns the titles of every tab in the workbook.
func (s *Store) ListSheets(ctx context.Context, workbookID string) ([]string, error) {
	resp, err := s.sheets.Spreadsheets.Get(workbookID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, tabular.TableRef{Workbook: workbookID})
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

// CreateSheet adds a tab and writes headers into its first row.
func (s *Store) CreateSheet(ctx context.Context, ref tabular.TableRef, headers []string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: ref.Sheet}},
		}},
	}
	if _, err := s.sheets.Spreadsheets.BatchUpdate(ref.Workbook, req).Context(ctx).Do(); err != nil {
		return mapError(err, ref)
	}
	if len(headers) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(headers)}}
	_, err := s.sheets.Spreadsheets.Values.Update(ref.Workbook, quoteSheet(ref.Sheet)+"!A1", vr).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return mapError(err, ref)
	}
	return nil
}

// A1 renders a zero-based cell coordinate as a sheet-qualified A1 reference.
func A1(sheet string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheet(sheet), tabular.ColumnLetter(col), row+1)
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), "'", `\'`)
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}

func mapError(err error, ref tabular.TableRef) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusNotFound:
			return fmt.Errorf("%w: %s: %v", tabular.ErrWorkbookNotFound, ref.Workbook, err)
		case apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range"):
			return fmt.Errorf("%w: %s: %v", tabular.ErrSheetNotFound, ref.Sheet, err)
		}
	}
	return fmt.Errorf("sheets %s: %w", ref.Key(), err)
}
