package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
	"github.com/noah-isme/placement-api/pkg/events"
)

const defaultPublishBatchSize = 5

type resultLedger interface {
	FindByRequestID(ctx context.Context, requestID string) (*models.PlacementResult, error)
	Save(ctx context.Context, result models.PlacementResult) error
}

type publicationDriveStore interface {
	FindByID(ctx context.Context, id string) (*models.DriveRequest, error)
	Update(ctx context.Context, row int, changes []repository.Change) error
	Invalidate(ctx context.Context)
}

type offerWriter interface {
	Locate(ctx context.Context, roll string) (*StudentLocation, error)
	FindStudent(ctx context.Context, workbookID, branch, roll string) (*models.Student, error)
	ApplyOffer(ctx context.Context, in dto.OfferInput) (*OfferOutcome, error)
	RevokeRoll(ctx context.Context, roll string) error
}

type publicationRecorder interface {
	RecordPublication(ctx context.Context, drive models.DriveRequest, hires int) error
}

type resultsNotifier interface {
	ResultsPublished(evt events.ResultsPublished)
}

type publicationMetrics interface {
	RecordPublication(added, removed, failedAdds, failedRemoves int)
}

// PublicationService publishes drive results: it diffs the new selection
// against the ledger, applies offers for added rolls, revokes removed rolls,
// then overwrites the ledger and completes the drive.
type PublicationService struct {
	ledger     resultLedger
	drives     publicationDriveStore
	writer     offerWriter
	projection publicationRecorder
	notifier   resultsNotifier
	metrics    publicationMetrics
	batchSize  int
	logger     *zap.Logger
	now        func() time.Time
	locks      *keyedMutex
}

// NewPublicationService wires the publication engine. notifier and metrics may be nil.
func NewPublicationService(
	ledger resultLedger,
	drives publicationDriveStore,
	writer offerWriter,
	projection publicationRecorder,
	notifier resultsNotifier,
	metrics publicationMetrics,
	batchSize int,
	logger *zap.Logger,
) *PublicationService {
	if batchSize <= 0 {
		batchSize = defaultPublishBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicationService{
		ledger:     ledger,
		drives:     drives,
		writer:     writer,
		projection: projection,
		notifier:   notifier,
		metrics:    metrics,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
		locks:      newKeyedMutex(),
	}
}

type rollResult struct {
	roll    string
	failed  bool
	partial bool
}

// Publish records results (comma separated roll numbers) as the selection of
// the drive. Failures of individual rolls are reported, not returned. Once the
// first write starts the publication runs to completion even if ctx is
// cancelled, so a dropped client never leaves offers applied without a ledger.
func (s *PublicationService) Publish(ctx context.Context, req dto.PublishResultsRequest, claims *models.JWTClaims) (*dto.PublishResultsResponse, error) {
	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" || strings.TrimSpace(req.Results) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request_id and results are required")
	}
	selected := repository.SplitRolls(req.Results)
	if len(selected) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "results must contain at least one roll number")
	}
	selected = dedupe(selected)

	release := s.locks.Lock(requestID)
	defer release()

	previous, err := s.ledger.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read previous results")
	}
	var prevRolls []string
	if previous != nil {
		prevRolls = previous.RollNumbers
	}
	added := difference(selected, prevRolls)
	removed := difference(prevRolls, selected)

	drive, err := s.drives.FindByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive request")
	}
	if drive == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "drive request not found")
	}
	if claims != nil && claims.Role == models.RoleSPOC && drive.SPOC != "" && !strings.EqualFold(drive.SPOC, claims.Email) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "drive request belongs to another SPOC")
	}

	log := s.logger.With(zap.String("request_id", requestID), zap.String("company", drive.Company))
	log.Info("publishing results", zap.Int("selected", len(selected)), zap.Int("added", len(added)), zap.Int("removed", len(removed)))

	ctx = context.WithoutCancel(ctx)
	addResults := s.applyAdditions(ctx, *drive, added, log)
	removeResults := s.applyRemovals(ctx, removed, log)

	resp := &dto.PublishResultsResponse{
		Success:       true,
		Company:       drive.Company,
		Selected:      len(selected),
		AddedRolls:    []string{},
		RemovedRolls:  []string{},
		FailedAdds:    []string{},
		FailedRemoves: []string{},
		PartialAdds:   []string{},
	}
	for _, r := range addResults {
		if r.failed {
			resp.FailedAdds = append(resp.FailedAdds, r.roll)
			continue
		}
		resp.AddedRolls = append(resp.AddedRolls, r.roll)
		if r.partial {
			resp.PartialAdds = append(resp.PartialAdds, r.roll)
		}
	}
	for _, r := range removeResults {
		if r.failed {
			resp.FailedRemoves = append(resp.FailedRemoves, r.roll)
			continue
		}
		resp.RemovedRolls = append(resp.RemovedRolls, r.roll)
	}
	resp.Added = len(resp.AddedRolls)
	resp.Removed = len(resp.RemovedRolls)

	now := s.now().UTC()
	if err := s.ledger.Save(ctx, models.PlacementResult{
		Company:     drive.Company,
		RequestID:   requestID,
		RollNumbers: selected,
		LastUpdated: now.Format(TimestampLayout),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save placement results")
	}

	if err := s.drives.Update(ctx, drive.Row, []repository.Change{{Column: repository.ColDriveStatus, Value: models.DriveStatusCompleted}}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete drive")
	}
	s.drives.Invalidate(ctx)

	drive.DriveStatus = models.DriveStatusCompleted
	if s.projection != nil {
		if err := s.projection.RecordPublication(ctx, *drive, len(selected)-len(resp.FailedAdds)); err != nil {
			log.Warn("calendar projection not updated after publish", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.RecordPublication(len(added), len(removed), len(resp.FailedAdds), len(resp.FailedRemoves))
	}
	if s.notifier != nil {
		publishedBy := ""
		if claims != nil {
			publishedBy = claims.Email
		}
		s.notifier.ResultsPublished(events.ResultsPublished{
			RequestID:     requestID,
			Company:       drive.Company,
			Selected:      selected,
			Added:         resp.AddedRolls,
			Removed:       resp.RemovedRolls,
			FailedAdds:    resp.FailedAdds,
			FailedRemoves: resp.FailedRemoves,
			PublishedBy:   publishedBy,
			PublishedAt:   now,
		})
	}

	log.Info("results published",
		zap.Int("failed_adds", len(resp.FailedAdds)),
		zap.Int("failed_removes", len(resp.FailedRemoves)),
		zap.Int("partial_adds", len(resp.PartialAdds)),
	)
	return resp, nil
}

// applyAdditions processes rolls in chunks of batchSize; each chunk settles
// before the next starts. Results keep the order of rolls.
func (s *PublicationService) applyAdditions(ctx context.Context, drive models.DriveRequest, rolls []string, log *zap.Logger) []rollResult {
	results := make([]rollResult, len(rolls))
	info := models.NewDriveInfo(drive)
	info.ResultsPublished = true
	ctc := models.ParseCTC(drive.FTECTC)

	for start := 0; start < len(rolls); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rolls) {
			end = len(rolls)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.addRoll(ctx, drive, info, ctc, rolls[i], log)
			}(i)
		}
		wg.Wait()
	}
	return results
}

func (s *PublicationService) addRoll(ctx context.Context, drive models.DriveRequest, info models.DriveInfo, ctc float64, roll string, log *zap.Logger) rollResult {
	result := rollResult{roll: roll}
	log = log.With(zap.String("roll", roll))

	loc, err := s.writer.Locate(ctx, roll)
	if err != nil {
		log.Warn("cannot resolve roll number", zap.Error(err))
		result.failed = true
		return result
	}
	if _, err := s.writer.FindStudent(ctx, loc.WorkbookID, loc.Branch, roll); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			log.Warn("student not found in branch sheet", zap.String("branch", loc.Branch))
		} else {
			log.Warn("student lookup failed", zap.Error(err))
		}
		result.failed = true
		return result
	}

	driveInfo := info
	outcome, err := s.writer.ApplyOffer(ctx, dto.OfferInput{
		DegreeType: loc.Roll.Degree,
		Branch:     loc.Branch,
		RollNo:     roll,
		Company:    drive.Company,
		OfferType:  offerTypeOf(drive.Type),
		CTC:        ctc,
		Drive:      &driveInfo,
	})
	if err != nil {
		log.Warn("offer not applied", zap.Error(err))
		result.failed = true
		return result
	}
	result.partial = outcome.Partial()
	return result
}

// applyRemovals revokes every roll concurrently.
func (s *PublicationService) applyRemovals(ctx context.Context, rolls []string, log *zap.Logger) []rollResult {
	results := make([]rollResult, len(rolls))
	var wg sync.WaitGroup
	for i, roll := range rolls {
		wg.Add(1)
		go func(i int, roll string) {
			defer wg.Done()
			results[i] = rollResult{roll: roll}
			if err := s.writer.RevokeRoll(ctx, roll); err != nil {
				log.Warn("offer not revoked", zap.String("roll", roll), zap.Error(err))
				results[i].failed = true
			}
		}(i, roll)
	}
	wg.Wait()
	return results
}

// Results returns the current selection of a drive.
func (s *PublicationService) Results(ctx context.Context, requestID string) (*dto.PlacementResultsResponse, error) {
	if strings.TrimSpace(requestID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request_id is required")
	}
	result, err := s.ledger.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read placement results")
	}
	rolls := []string{}
	if result != nil {
		rolls = nonNil(result.RollNumbers)
	}
	return &dto.PlacementResultsResponse{
		Results:     strings.Join(rolls, ", "),
		RollNumbers: rolls,
		Count:       len(rolls),
	}, nil
}

// offerTypeOf records the drive type as the offer type, FTE when blank.
func offerTypeOf(driveType string) string {
	if t := strings.TrimSpace(driveType); t != "" {
		return t
	}
	return models.OfferTypeFTE
}

// difference returns the elements of a not in b, in the order of a.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, v := range b {
		exclude[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := exclude[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
