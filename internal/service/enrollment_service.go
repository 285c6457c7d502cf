package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

type enrollmentStore interface {
	ListStudents(ctx context.Context, workbookID, branch string) ([]models.Student, error)
	AppendStudent(ctx context.Context, workbookID, branch string, s models.Student) error
}

type workbookEnsurer interface {
	EnsureWorkbook(ctx context.Context, degree models.DegreeType, branch string) (string, error)
}

// EnrollmentService imports student lists from xlsx uploads into the
// Students sheet of a branch.
type EnrollmentService struct {
	repo        enrollmentStore
	workbooks   workbookEnsurer
	eligibility float64
	logger      *zap.Logger
}

// NewEnrollmentService constructs the importer. Students with a CGPA at or
// above eligibility are marked eligible.
func NewEnrollmentService(repo enrollmentStore, workbooks workbookEnsurer, eligibility float64, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, workbooks: workbooks, eligibility: eligibility, logger: logger}
}

// Enroll appends the students of the uploaded workbook. Roll numbers already
// enrolled, or repeated in the upload, are skipped.
func (s *EnrollmentService) Enroll(ctx context.Context, degreeType, branch string, upload io.Reader) (*dto.EnrollmentResult, error) {
	degree, ok := models.ParseDegreeType(degreeType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "degreeType must be UG or PG")
	}
	branch = models.NormalizeBranch(branch)
	if len(branch) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "branch is required")
	}

	rows, err := ParseStudentSheet(upload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	workbookID, err := s.workbooks.EnsureWorkbook(ctx, degree, branch)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListStudents(ctx, workbookID, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read enrolled students")
	}
	seen := make(map[string]struct{}, len(existing)+len(rows))
	for _, st := range existing {
		seen[strings.ToUpper(st.RollNo)] = struct{}{}
	}

	result := &dto.EnrollmentResult{DegreeType: string(degree), Branch: branch, Workbook: workbookID, Skipped: []string{}}
	for _, row := range rows {
		key := strings.ToUpper(row.RollNo)
		if _, dup := seen[key]; dup {
			result.Skipped = append(result.Skipped, row.RollNo)
			continue
		}
		seen[key] = struct{}{}

		student := models.Student{
			RollNo:       row.RollNo,
			Name:         row.Name,
			Gender:       row.Gender,
			Branch:       branch,
			CGPA:         row.CGPA,
			Eligible:     s.eligibleLabel(row.CGPA),
			OfferRevoked: "No",
		}
		if err := s.repo.AppendStudent(ctx, workbookID, branch, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to enroll %s after %d students", row.RollNo, result.Added))
		}
		result.Added++
	}

	s.logger.Info("students enrolled",
		zap.String("workbook", workbookID),
		zap.String("branch", branch),
		zap.Int("added", result.Added),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *EnrollmentService) eligibleLabel(cgpa string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(cgpa), 64)
	if err == nil && v >= s.eligibility {
		return "Yes"
	}
	return "No"
}

// ParseStudentSheet reads the first worksheet of an xlsx upload. Columns are
// found by header: roll and name are required, gender and cgpa optional.
func ParseStudentSheet(r io.Reader) ([]dto.EnrollmentRow, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unreadable workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %s: %w", sheetName, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	header := rows[0]
	contains := func(word string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, word) }
	}
	roll := tabular.IndexMatching(header, contains("roll"))
	name := tabular.IndexMatching(header, contains("name"))
	gender := tabular.IndexMatching(header, contains("gender"))
	cgpa := tabular.IndexMatching(header, contains("cgpa"))
	if roll < 0 || name < 0 {
		return nil, fmt.Errorf("worksheet must have roll number and name columns")
	}

	out := make([]dto.EnrollmentRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rollNo := strings.TrimSpace(tabular.Cell(row, roll))
		if rollNo == "" {
			continue
		}
		out = append(out, dto.EnrollmentRow{
			RollNo: rollNo,
			Name:   strings.TrimSpace(tabular.Cell(row, name)),
			Gender: strings.TrimSpace(tabular.Cell(row, gender)),
			CGPA:   strings.TrimSpace(tabular.Cell(row, cgpa)),
		})
	}
	return out, nil
}
