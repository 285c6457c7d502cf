package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type datasetRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

type studentLookup interface {
	Locate(ctx context.Context, roll string) (*StudentLocation, error)
	FindStudent(ctx context.Context, workbookID, branch, roll string) (*models.Student, error)
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders the published selection of a drive.
type ExportService struct {
	ledger    resultLedger
	drives    publicationDriveStore
	students  studentLookup
	renderers map[string]datasetRenderer
	logger    *zap.Logger
}

// NewExportService constructs the exporter with CSV and PDF renderers.
func NewExportService(ledger resultLedger, drives publicationDriveStore, students studentLookup, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		ledger:   ledger,
		drives:   drives,
		students: students,
		renderers: map[string]datasetRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
	}
}

// ExportResults renders the current selection of requestID in format.
// Student details are looked up best effort; unknown rolls keep blank cells.
func (s *ExportService) ExportResults(ctx context.Context, requestID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request_id is required")
	}

	result, err := s.ledger.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read results")
	}
	if result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results published for this drive")
	}
	company := result.Company
	if drive, err := s.drives.FindByID(ctx, requestID); err == nil && drive != nil && drive.Company != "" {
		company = drive.Company
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("%s selections", company),
		Notes:   []string{"Request: " + requestID, "Last updated: " + result.LastUpdated},
		Headers: []string{"#", "Roll No", "Name", "Degree", "Branch"},
		Rows:    make([][]string, 0, len(result.RollNumbers)),
	}
	for i, roll := range result.RollNumbers {
		data.Rows = append(data.Rows, s.row(ctx, i+1, roll))
	}

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		FileName:    fmt.Sprintf("results-%s.%s", requestID, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        body,
	}, nil
}

func (s *ExportService) row(ctx context.Context, n int, roll string) []string {
	row := []string{strconv.Itoa(n), roll, "", "", ""}
	loc, err := s.students.Locate(ctx, roll)
	if err != nil {
		return row
	}
	row[3], row[4] = string(loc.Roll.Degree), loc.Branch
	student, err := s.students.FindStudent(ctx, loc.WorkbookID, loc.Branch, roll)
	if err != nil {
		s.logger.Debug("export student lookup failed", zap.String("roll", roll), zap.Error(err))
		return row
	}
	row[2] = student.Name
	return row
}
