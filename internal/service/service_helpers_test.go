package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/internal/repository"
	"github.com/noah-isme/placement-api/pkg/events"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

const (
	testCalendar     = "calendar"
	testAcademicYear = "2025-26"
)

var (
	spocClaims     = &models.JWTClaims{Email: "spoc@college.edu", Role: models.RoleSPOC}
	otherSPOC      = &models.JWTClaims{Email: "other@college.edu", Role: models.RoleSPOC}
	calendarClaims = &models.JWTClaims{Email: "cal@college.edu", Role: models.RoleCalendarTeam}
	adminClaims    = &models.JWTClaims{Email: "admin@college.edu", Role: models.RoleAdmin}
)

// writeCounter counts mutating store calls.
type writeCounter struct {
	mu     sync.Mutex
	writes int
}

func (w *writeCounter) ObserveStoreOp(op string, _ time.Duration, _ error) {
	switch op {
	case "append_row", "update_cell", "batch_update", "create_sheet":
		w.mu.Lock()
		w.writes++
		w.mu.Unlock()
	}
}

func (w *writeCounter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []events.ResultsPublished
}

func (n *recordingNotifier) ResultsPublished(evt events.ResultsPublished) {
	n.mu.Lock()
	n.events = append(n.events, evt)
	n.mu.Unlock()
}

type fixture struct {
	mem     *tabular.MemoryStore
	writes  *writeCounter
	store   *tabular.CachedStore
	drives  *repository.DriveRequestRepository
	cal     *repository.CompanyDriveRepository
	ledger  *repository.PlacementResultRepository
	books   *repository.PlacementWorkbookRepository
	years   *AcademicYearService
	notify  *recordingNotifier
	metrics *MetricsService

	driveSvc   *DriveService
	projection *ProjectionService
	workbooks  *WorkbookService
	publisher  *PublicationService
	stats      *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{mem: tabular.NewMemoryStore(), writes: &writeCounter{}, notify: &recordingNotifier{}, metrics: NewMetricsService()}
	f.mem.AddWorkbook(testCalendar, "Placement Calendar")
	f.store = tabular.NewCachedStore(tabular.NewInstrumentedStore(f.mem, f.writes), nil, 0, nil)

	f.drives = repository.NewDriveRequestRepository(f.store, testCalendar)
	f.cal = repository.NewCompanyDriveRepository(f.store, testCalendar)
	f.ledger = repository.NewPlacementResultRepository(f.store, testCalendar)
	f.books = repository.NewPlacementWorkbookRepository(f.store)
	require.NoError(t, f.drives.EnsureSchema(ctx))
	require.NoError(t, f.cal.EnsureSchema(ctx))
	require.NoError(t, f.ledger.EnsureSchema(ctx))

	f.years = NewAcademicYearService("", testAcademicYear, nil)
	f.projection = NewProjectionService(f.cal, nil)
	f.driveSvc = NewDriveService(f.drives, f.projection, nil, nil)
	f.workbooks = NewWorkbookService(f.books, f.years, nil)
	f.publisher = NewPublicationService(f.ledger, f.drives, f.workbooks, f.projection, f.notify, f.metrics, 2, nil)
	f.stats = NewStatsService(f.books, f.years, 6.5, nil, nil)
	return f
}

// enroll adds students to the branch sheet of the current UG workbook.
func (f *fixture) enroll(t *testing.T, branch string, students ...models.Student) string {
	t.Helper()
	ctx := context.Background()
	wb, err := f.workbooks.EnsureWorkbook(ctx, models.DegreeUG, branch)
	require.NoError(t, err)
	for _, s := range students {
		s.Branch = branch
		require.NoError(t, f.books.AppendStudent(ctx, wb, branch, s))
	}
	return wb
}

func (f *fixture) sheet(t *testing.T, workbookID, sheet string) [][]string {
	t.Helper()
	rows, err := f.mem.ReadAll(context.Background(), tabular.TableRef{Workbook: workbookID, Sheet: sheet})
	require.NoError(t, err)
	return rows
}

func (f *fixture) student(t *testing.T, workbookID, branch, roll string) *models.Student {
	t.Helper()
	st, err := f.books.FindStudent(context.Background(), workbookID, branch, roll)
	require.NoError(t, err)
	require.NotNil(t, st, roll)
	return st
}
