package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

// TimestampLayout formats the Last Updated and Published At cells.
const TimestampLayout = time.RFC3339

type companyDriveStore interface {
	Find(ctx context.Context, requestID string) (int, *models.CompanyDrive, error)
	List(ctx context.Context) ([]models.CompanyDrive, error)
	Append(ctx context.Context, values []repository.Change) error
	Update(ctx context.Context, row int, changes []repository.Change) error
	Invalidate(ctx context.Context)
}

// ProjectionService maintains the Company_Drives calendar view, one row per
// drive request, derived from Drive_Requests.
type ProjectionService struct {
	repo   companyDriveStore
	logger *zap.Logger
	now    func() time.Time
	locks  *keyedMutex
}

// NewProjectionService constructs the projection maintainer.
func NewProjectionService(repo companyDriveStore, logger *zap.Logger) *ProjectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectionService{repo: repo, logger: logger, now: time.Now, locks: newKeyedMutex()}
}

func (s *ProjectionService) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// Upsert creates or refreshes the projection row of drive. When slot is set,
// that slot's datetime is written as APPROVED.
func (s *ProjectionService) Upsert(ctx context.Context, drive models.DriveRequest, slot *models.SlotKind) error {
	release := s.locks.Lock(drive.RequestID)
	defer release()

	row, _, err := s.find(ctx, drive.RequestID)
	if err != nil {
		return err
	}
	if err := s.write(ctx, row, drive, slot, nil); err != nil {
		return err
	}
	s.repo.Invalidate(ctx)
	return nil
}

// RecordPublication marks the projection of drive as published with hires
// confirmed offers, creating the row when needed.
func (s *ProjectionService) RecordPublication(ctx context.Context, drive models.DriveRequest, hires int) error {
	release := s.locks.Lock(drive.RequestID)
	defer release()

	row, _, err := s.find(ctx, drive.RequestID)
	if err != nil {
		return err
	}
	extra := []repository.Change{
		{Column: repository.ColActualHires, Value: strconv.Itoa(hires), Optional: true},
		{Column: repository.ColResultsPublished, Value: "Yes", Optional: true},
		{Column: repository.ColResultsPublishedAt, Value: s.timestamp(), Optional: true},
	}
	if err := s.write(ctx, row, drive, nil, extra); err != nil {
		return err
	}
	s.repo.Invalidate(ctx)
	return nil
}

// List returns the calendar view.
func (s *ProjectionService) List(ctx context.Context) ([]models.CompanyDrive, error) {
	drives, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar")
	}
	return drives, nil
}

func (s *ProjectionService) find(ctx context.Context, requestID string) (int, *models.CompanyDrive, error) {
	row, existing, err := s.repo.Find(ctx, requestID)
	if err != nil {
		var schemaErr *repository.SchemaError
		if errors.As(err, &schemaErr) {
			s.logger.Error("calendar projection schema invalid", zap.Strings("missing", schemaErr.Missing))
			return -1, nil, appErrors.Wrap(err, appErrors.ErrSchema.Code, appErrors.ErrSchema.Status, schemaErr.Error())
		}
		return -1, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read calendar projection")
	}
	return row, existing, nil
}

func (s *ProjectionService) write(ctx context.Context, row int, drive models.DriveRequest, slot *models.SlotKind, extra []repository.Change) error {
	now := s.timestamp()
	var changes []repository.Change
	if row < 0 {
		changes = []repository.Change{
			{Column: repository.ColCompany, Value: drive.Company},
			{Column: repository.ColSPOC, Value: drive.SPOC},
			{Column: repository.ColRequestID, Value: drive.RequestID},
			{Column: repository.ColType, Value: drive.Type},
			{Column: repository.ColEligiblePool, Value: drive.EligiblePool},
			{Column: repository.ColCGPACutoff, Value: drive.CGPACutoff},
			{Column: repository.ColInternshipStipend, Value: drive.InternshipStipend},
			{Column: repository.ColFTECTC, Value: drive.FTECTC},
			{Column: repository.ColFTEBase, Value: drive.FTEBase},
			{Column: repository.ColExpectedHires, Value: drive.ExpectedHires},
		}
	}
	if slot != nil {
		changes = append(changes,
			repository.Change{Column: slot.DatetimeHeader(), Value: drive.Slot(*slot).Datetime},
			repository.Change{Column: slot.StatusHeader(), Value: string(models.SlotApproved)},
		)
	}
	changes = append(changes,
		repository.Change{Column: repository.ColDriveStatus, Value: drive.EffectiveDriveStatus()},
		repository.Change{Column: repository.ColLastUpdated, Value: now},
	)
	changes = append(changes, extra...)

	if row < 0 {
		if err := s.repo.Append(ctx, changes); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar entry")
		}
		s.logger.Info("calendar entry created", zap.String("request_id", drive.RequestID))
		return nil
	}
	if err := s.repo.Update(ctx, row, changes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update calendar entry")
	}
	return nil
}
