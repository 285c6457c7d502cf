package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type driveRequestStore interface {
	ListCached(ctx context.Context) ([]models.DriveRequest, error)
	FindByID(ctx context.Context, id string) (*models.DriveRequest, error)
	Create(ctx context.Context, d models.DriveRequest) error
	Update(ctx context.Context, row int, changes []repository.Change) error
	Invalidate(ctx context.Context)
}

type driveProjector interface {
	Upsert(ctx context.Context, drive models.DriveRequest, slot *models.SlotKind) error
}

// DriveService implements the drive request lifecycle: submission,
// per-slot approval, status changes and the listing views.
type DriveService struct {
	repo       driveRequestStore
	projection driveProjector
	validator  *validator.Validate
	logger     *zap.Logger
	newID      func() string
}

// NewDriveService wires the drive request workflow.
func NewDriveService(repo driveRequestStore, projection driveProjector, validate *validator.Validate, logger *zap.Logger) *DriveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriveService{
		repo:       repo,
		projection: projection,
		validator:  validate,
		logger:     logger,
		newID:      uuid.NewString,
	}
}

// Submit creates a drive request, or updates the request named by
// payload.RequestID when it exists. It returns the request id.
func (s *DriveService) Submit(ctx context.Context, payload dto.DriveRequestPayload, claims *models.JWTClaims) (string, error) {
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}

	id := strings.TrimSpace(payload.RequestID)
	if id != "" {
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive request")
		}
		if existing != nil {
			return id, s.update(ctx, *existing, payload, claims)
		}
	}

	if strings.TrimSpace(payload.Company) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "company is required")
	}

	drive := models.DriveRequest{
		RequestID:         s.newID(),
		Company:           strings.TrimSpace(payload.Company),
		SPOC:              claims.Email,
		Type:              payload.Type,
		EligiblePool:      payload.EligiblePool,
		CGPACutoff:        payload.CGPACutoff,
		InternshipStipend: payload.InternshipStipend,
		FTECTC:            payload.FTECTC,
		FTEBase:           payload.FTEBase,
		ExpectedHires:     payload.ExpectedHires,
		DriveStatus:       models.DriveStatusScheduled,
		Slots:             make(map[models.SlotKind]models.Slot, len(models.SlotKinds)),
	}
	for kind, datetime := range payloadSlots(payload) {
		if strings.TrimSpace(datetime) == "" {
			continue
		}
		drive.Slots[kind] = models.Slot{Datetime: datetime, Status: models.SlotPending}
	}

	if err := s.repo.Create(ctx, drive); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create drive request")
	}
	s.repo.Invalidate(ctx)
	s.logger.Info("drive request created", zap.String("request_id", drive.RequestID), zap.String("company", drive.Company))
	return drive.RequestID, nil
}

func (s *DriveService) update(ctx context.Context, existing models.DriveRequest, payload dto.DriveRequestPayload, claims *models.JWTClaims) error {
	if claims.Role == models.RoleSPOC && existing.SPOC != "" && !strings.EqualFold(existing.SPOC, claims.Email) {
		return appErrors.Clone(appErrors.ErrForbidden, "drive request belongs to another SPOC")
	}

	var changes []repository.Change
	field := func(column, stored, incoming string) {
		if strings.TrimSpace(incoming) == "" || incoming == stored {
			return
		}
		changes = append(changes, repository.Change{Column: column, Value: incoming})
	}
	field(repository.ColType, existing.Type, payload.Type)
	field(repository.ColEligiblePool, existing.EligiblePool, payload.EligiblePool)
	field(repository.ColCGPACutoff, existing.CGPACutoff, payload.CGPACutoff)
	field(repository.ColInternshipStipend, existing.InternshipStipend, payload.InternshipStipend)
	field(repository.ColFTECTC, existing.FTECTC, payload.FTECTC)
	field(repository.ColFTEBase, existing.FTEBase, payload.FTEBase)
	field(repository.ColExpectedHires, existing.ExpectedHires, payload.ExpectedHires)

	incoming := payloadSlots(payload)
	for _, kind := range models.SlotKinds {
		datetime := incoming[kind]
		if strings.TrimSpace(datetime) == "" {
			continue
		}
		stored := existing.Slot(kind)
		if datetime == stored.Datetime {
			continue
		}
		changes = append(changes, repository.Change{Column: kind.DatetimeHeader(), Value: datetime})
		// An approved slot keeps its approval when only the time moves.
		if stored.Status != models.SlotApproved {
			changes = append(changes, repository.Change{Column: kind.StatusHeader(), Value: string(models.SlotPending)})
		}
	}

	if len(changes) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, existing.Row, changes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update drive request")
	}
	s.repo.Invalidate(ctx)
	s.logger.Info("drive request updated", zap.String("request_id", existing.RequestID), zap.Int("cells", len(changes)))
	return nil
}

func payloadSlots(p dto.DriveRequestPayload) map[models.SlotKind]string {
	return map[models.SlotKind]string{
		models.SlotPPT:       p.PPTDatetime,
		models.SlotOT:        p.OTDatetime,
		models.SlotInterview: p.InterviewDatetime,
	}
}

// ListPending returns requests with at least one scheduled slot awaiting a decision.
func (s *DriveService) ListPending(ctx context.Context) ([]dto.DriveView, error) {
	drives, err := s.repo.ListCached(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drive requests")
	}
	pending := make([]dto.DriveView, 0)
	for _, d := range drives {
		for _, kind := range models.SlotKinds {
			if d.Slot(kind).AwaitingDecision() {
				pending = append(pending, toDriveView(d, true))
				break
			}
		}
	}
	return pending, nil
}

// Approve records a calendar-team decision on one slot of a request.
func (s *DriveService) Approve(ctx context.Context, req dto.ApproveSlotRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid approval payload")
	}
	kind, _ := models.ParseSlotKind(req.Slot)
	action := models.SlotAction(strings.ToUpper(req.Action))
	if action == models.ActionSuggest && strings.TrimSpace(req.SuggestedDatetime) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "suggested_datetime is required for SUGGEST")
	}

	drive, err := s.repo.FindByID(ctx, req.RequestID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive request")
	}
	if drive == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "drive request not found")
	}

	var changes []repository.Change
	switch action {
	case models.ActionApprove:
		if drive.Slot(kind).Scheduled() {
			if err := s.projection.Upsert(ctx, *drive, &kind); err != nil {
				return err
			}
		}
		changes = append(changes, repository.Change{Column: kind.StatusHeader(), Value: string(models.SlotApproved)})
	case models.ActionReject:
		changes = append(changes, repository.Change{Column: kind.StatusHeader(), Value: string(models.SlotRejected)})
	case models.ActionSuggest:
		changes = append(changes,
			repository.Change{Column: kind.StatusHeader(), Value: string(models.SlotSuggested)},
			repository.Change{Column: kind.SuggestedHeader(), Value: req.SuggestedDatetime},
		)
	}

	if err := s.repo.Update(ctx, drive.Row, changes); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record slot decision")
	}
	s.repo.Invalidate(ctx)
	s.logger.Info("slot decision recorded",
		zap.String("request_id", drive.RequestID),
		zap.String("slot", string(kind)),
		zap.String("action", string(action)),
	)
	return nil
}

// SetStatus overwrites the free-text drive status, blank included, and
// refreshes the calendar projection on a best-effort basis.
func (s *DriveService) SetStatus(ctx context.Context, req dto.SetDriveStatusRequest, claims *models.JWTClaims) error {
	if strings.TrimSpace(req.RequestID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "request_id is required")
	}

	drive, err := s.repo.FindByID(ctx, req.RequestID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive request")
	}
	if drive == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "drive request not found")
	}
	if claims != nil && claims.Role == models.RoleSPOC && drive.SPOC != "" && !strings.EqualFold(drive.SPOC, claims.Email) {
		return appErrors.Clone(appErrors.ErrForbidden, "drive request belongs to another SPOC")
	}

	if err := s.repo.Update(ctx, drive.Row, []repository.Change{{Column: repository.ColDriveStatus, Value: req.Status}}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update drive status")
	}
	s.repo.Invalidate(ctx)

	drive.DriveStatus = req.Status
	if err := s.projection.Upsert(ctx, *drive, nil); err != nil {
		s.logger.Warn("calendar projection sync failed", zap.String("request_id", drive.RequestID), zap.Error(err))
	}
	return nil
}

// ListCompleted returns requests whose three slots are all approved.
func (s *DriveService) ListCompleted(ctx context.Context) ([]dto.DriveView, error) {
	drives, err := s.repo.ListCached(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drive requests")
	}
	completed := make([]dto.DriveView, 0)
	for _, d := range drives {
		if d.FullyApproved() {
			completed = append(completed, toDriveView(d, false))
		}
	}
	return completed, nil
}

// ListAll returns every request visible to the caller. SPOCs only see their own.
func (s *DriveService) ListAll(ctx context.Context, claims *models.JWTClaims) ([]dto.DriveView, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	drives, err := s.repo.ListCached(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drive requests")
	}
	views := make([]dto.DriveView, 0, len(drives))
	for _, d := range drives {
		if claims.Role == models.RoleSPOC && !strings.EqualFold(d.SPOC, claims.Email) {
			continue
		}
		views = append(views, toDriveView(d, false))
	}
	return views, nil
}

func toDriveView(d models.DriveRequest, pendingDefault bool) dto.DriveView {
	view := dto.DriveView{
		RequestID:         d.RequestID,
		Company:           d.Company,
		SPOC:              d.SPOC,
		Type:              d.Type,
		EligiblePool:      d.EligiblePool,
		CGPACutoff:        d.CGPACutoff,
		InternshipStipend: d.InternshipStipend,
		FTECTC:            d.FTECTC,
		FTEBase:           d.FTEBase,
		ExpectedHires:     d.ExpectedHires,
		DriveStatus:       d.EffectiveDriveStatus(),
		Slots:             make(map[string]dto.SlotView, len(models.SlotKinds)),
	}
	for _, kind := range models.SlotKinds {
		slot := d.Slot(kind)
		status := string(slot.Status)
		if status == "" && pendingDefault {
			status = string(models.SlotPending)
		}
		view.Slots[string(kind)] = dto.SlotView{
			Datetime:          slot.Datetime,
			Status:            status,
			SuggestedDatetime: slot.SuggestedDatetime,
		}
	}
	return view
}
