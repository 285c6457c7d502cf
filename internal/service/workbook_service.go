package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// ErrStudentNotFound is returned when a roll number is not enrolled in its
// branch sheet.
var ErrStudentNotFound = errors.New("student not found")

type placementWorkbookStore interface {
	ResolveWorkbook(ctx context.Context, academicYear string, degree models.DegreeType) (string, error)
	EnsureBranch(ctx context.Context, workbookID, branch string) error
	ListStudents(ctx context.Context, workbookID, branch string) ([]models.Student, error)
	FindStudent(ctx context.Context, workbookID, branch, roll string) (*models.Student, error)
	AppendStudent(ctx context.Context, workbookID, branch string, s models.Student) error
	UpdatePlacement(ctx context.Context, workbookID, branch string, row int, f repository.PlacementFields) error
	ListOffers(ctx context.Context, workbookID, branch string) ([]models.Offer, error)
	HasActiveOffer(ctx context.Context, workbookID, branch, roll, company, offerType string) (bool, error)
	AppendOffer(ctx context.Context, workbookID, branch string, o models.Offer) error
	FindBranchDrive(ctx context.Context, workbookID, branch, requestID string) (int, int, error)
	AppendBranchDrive(ctx context.Context, workbookID, branch string, values []repository.Change) error
	UpdateBranchDrive(ctx context.Context, workbookID, branch string, row int, changes []repository.Change) error
	WriteStats(ctx context.Context, workbookID, branch string, stats, distribution [][]string) error
}

type academicYearSource interface {
	Current() string
}

// StudentLocation addresses a student's branch sheets.
type StudentLocation struct {
	Roll       models.RollInfo
	WorkbookID string
	Branch     string
}

// OfferOutcome reports each step of ApplyOffer. Steps are independent:
// a failed step is recorded in Errors and does not undo earlier ones.
type OfferOutcome struct {
	WorkbookID     string
	OfferRecorded  bool
	OfferSkipped   bool
	StudentUpdated bool
	DriveRecorded  bool
	Errors         []string
}

// Partial reports whether any step failed.
func (o *OfferOutcome) Partial() bool {
	return o != nil && len(o.Errors) > 0
}

// WorkbookService writes offers, placement status and drive rows into the
// per-branch sheets of the placement workbooks.
type WorkbookService struct {
	repo   placementWorkbookStore
	years  academicYearSource
	logger *zap.Logger
	now    func() time.Time
	locks  *keyedMutex
}

// NewWorkbookService constructs the writer.
func NewWorkbookService(repo placementWorkbookStore, years academicYearSource, logger *zap.Logger) *WorkbookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkbookService{repo: repo, years: years, logger: logger, now: time.Now, locks: newKeyedMutex()}
}

// EnsureWorkbook resolves the placement workbook of the active academic year
// and makes sure the branch sheets exist. It returns the workbook id.
func (s *WorkbookService) EnsureWorkbook(ctx context.Context, degree models.DegreeType, branch string) (string, error) {
	branch = models.NormalizeBranch(branch)
	if branch == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "branch is required")
	}
	workbookID, err := s.repo.ResolveWorkbook(ctx, s.years.Current(), degree)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve placement workbook")
	}
	if err := s.repo.EnsureBranch(ctx, workbookID, branch); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare branch sheets")
	}
	return workbookID, nil
}

// Locate decodes roll and resolves the workbook holding it.
func (s *WorkbookService) Locate(ctx context.Context, roll string) (*StudentLocation, error) {
	info, ok := models.ParseRoll(roll)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid roll number "+roll)
	}
	workbookID, err := s.EnsureWorkbook(ctx, info.Degree, info.Branch)
	if err != nil {
		return nil, err
	}
	return &StudentLocation{Roll: info, WorkbookID: workbookID, Branch: models.NormalizeBranch(info.Branch)}, nil
}

// FindStudent returns the enrolled student, or ErrStudentNotFound.
func (s *WorkbookService) FindStudent(ctx context.Context, workbookID, branch, roll string) (*models.Student, error) {
	student, err := s.repo.FindStudent(ctx, workbookID, models.NormalizeBranch(branch), roll)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// ApplyOffer records an offer: the offer row, the student's placement columns
// and the branch drive row. Only a failure to prepare the workbook is
// returned as an error; later steps report through the outcome.
func (s *WorkbookService) ApplyOffer(ctx context.Context, in dto.OfferInput) (*OfferOutcome, error) {
	branch := models.NormalizeBranch(in.Branch)
	workbookID, err := s.EnsureWorkbook(ctx, in.DegreeType, branch)
	if err != nil {
		return nil, err
	}
	offerType := strings.TrimSpace(in.OfferType)
	if offerType == "" {
		offerType = models.OfferTypeFTE
	}

	release := s.locks.Lock(workbookID + "/" + branch)
	defer release()

	out := &OfferOutcome{WorkbookID: workbookID}
	log := s.logger.With(zap.String("roll", in.RollNo), zap.String("branch", branch), zap.String("workbook", workbookID))
	fail := func(step string, err error) {
		log.Warn("offer step failed", zap.String("step", step), zap.Error(err))
		out.Errors = append(out.Errors, step+": "+err.Error())
	}

	exists, err := s.repo.HasActiveOffer(ctx, workbookID, branch, in.RollNo, in.Company, offerType)
	switch {
	case err != nil:
		fail("offer", err)
	case exists:
		out.OfferSkipped = true
	default:
		offer := models.Offer{RollNo: in.RollNo, Company: in.Company, OfferType: offerType, CTC: in.CTC, Status: models.OfferActive}
		if err := s.repo.AppendOffer(ctx, workbookID, branch, offer); err != nil {
			fail("offer", err)
		} else {
			out.OfferRecorded = true
		}
	}

	if err := s.updateStudent(ctx, workbookID, branch, in, offerType); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			log.Info("student not enrolled, placement columns untouched")
		} else {
			fail("student", err)
		}
	} else {
		out.StudentUpdated = true
	}

	if in.Drive != nil && in.Drive.RequestID != "" {
		if err := s.recordDrive(ctx, workbookID, branch, *in.Drive); err != nil {
			fail("drive", err)
		} else {
			out.DriveRecorded = true
		}
	}
	return out, nil
}

func (s *WorkbookService) updateStudent(ctx context.Context, workbookID, branch string, in dto.OfferInput, offerType string) error {
	student, err := s.repo.FindStudent(ctx, workbookID, branch, in.RollNo)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	highest := student.HighestCTC
	if in.CTC > highest {
		highest = in.CTC
	}
	return s.repo.UpdatePlacement(ctx, workbookID, branch, student.Row, repository.PlacementFields{
		Status:     models.PlacementPlaced,
		Type:       offerType,
		Company:    in.Company,
		HighestCTC: models.FormatCTC(highest),
		Revoked:    "No",
	})
}

func (s *WorkbookService) recordDrive(ctx context.Context, workbookID, branch string, info models.DriveInfo) error {
	now := s.now().UTC().Format(TimestampLayout)
	status := strings.TrimSpace(info.DriveStatus)
	if status == "" {
		status = models.DriveStatusInProgress
	}
	published, publishedAt := "No", ""
	if info.ResultsPublished {
		published, publishedAt = "Yes", now
	}

	row, hires, err := s.repo.FindBranchDrive(ctx, workbookID, branch, info.RequestID)
	if err != nil {
		return err
	}
	if row >= 0 {
		return s.repo.UpdateBranchDrive(ctx, workbookID, branch, row, []repository.Change{
			{Column: repository.ColActualHires, Value: strconv.Itoa(hires + 1)},
			{Column: repository.ColDriveStatus, Value: status},
			{Column: repository.ColResultsPublished, Value: published},
			{Column: repository.ColResultsPublishedAt, Value: publishedAt},
			{Column: repository.ColLastUpdated, Value: now},
		})
	}
	return s.repo.AppendBranchDrive(ctx, workbookID, branch, []repository.Change{
		{Column: repository.ColCompany, Value: info.Company},
		{Column: repository.ColSPOC, Value: info.SPOC},
		{Column: repository.ColRequestID, Value: info.RequestID},
		{Column: repository.ColDriveType, Value: info.DriveType},
		{Column: repository.ColEligiblePool, Value: info.EligiblePool},
		{Column: models.SlotPPT.DatetimeHeader(), Value: info.PPTDatetime},
		{Column: models.SlotOT.DatetimeHeader(), Value: info.OTDatetime},
		{Column: models.SlotInterview.DatetimeHeader(), Value: info.InterviewDatetime},
		{Column: models.SlotPPT.StatusHeader(), Value: info.PPTStatus},
		{Column: models.SlotOT.StatusHeader(), Value: info.OTStatus},
		{Column: models.SlotInterview.StatusHeader(), Value: info.InterviewStatus},
		{Column: repository.ColInternshipStipend, Value: info.InternshipStipend},
		{Column: repository.ColFTECTC, Value: info.FTECTC},
		{Column: repository.ColFTEBase, Value: info.FTEBase},
		{Column: repository.ColExpectedHires, Value: info.ExpectedHires},
		{Column: repository.ColActualHires, Value: "1"},
		{Column: repository.ColDriveStatus, Value: status},
		{Column: repository.ColResultsPublished, Value: published},
		{Column: repository.ColResultsPublishedAt, Value: publishedAt},
		{Column: repository.ColLastUpdated, Value: now},
	})
}

// RevokeOffer blanks the placement columns of roll. A student that is not
// enrolled is logged and ignored.
func (s *WorkbookService) RevokeOffer(ctx context.Context, workbookID, branch, roll string) error {
	branch = models.NormalizeBranch(branch)
	release := s.locks.Lock(workbookID + "/" + branch)
	defer release()

	student, err := s.repo.FindStudent(ctx, workbookID, branch, roll)
	if err != nil {
		return err
	}
	if student == nil {
		s.logger.Info("revoke skipped, student not enrolled", zap.String("roll", roll), zap.String("branch", branch))
		return nil
	}
	return s.repo.UpdatePlacement(ctx, workbookID, branch, student.Row, repository.PlacementFields{})
}

// RevokeRoll locates roll and revokes its placement.
func (s *WorkbookService) RevokeRoll(ctx context.Context, roll string) error {
	loc, err := s.Locate(ctx, roll)
	if err != nil {
		return err
	}
	return s.RevokeOffer(ctx, loc.WorkbookID, loc.Branch, roll)
}
