package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/noah-isme/placement-api/internal/models"
	"github.com/noah-isme/placement-api/pkg/tabular"
)

// Student sheet columns.
const (
	ColRollNo          = "Roll No"
	ColName            = "Name"
	ColGender          = "Gender"
	ColBranch          = "Branch"
	ColCGPA            = "CGPA"
	ColEligible        = "Eligible"
	ColPlacementStatus = "Placement Status"
	ColPlacementType   = "Placement Type"
	ColHighestCTC      = "Highest CTC"
	ColOfferRevoked    = "Offer Revoked"
)

// Offer sheet columns.
const (
	ColOfferType   = "Offer Type"
	ColCTC         = "CTC (LPA)"
	ColOfferStatus = "Offer Status"
)

// Branch drive columns that differ from the calendar projection.
const (
	ColDriveType = "Drive Type"
)

// Stats sheet columns.
const (
	ColMetric   = "Metric"
	ColValue    = "Value"
	ColCTCRange = "CTC Range"
	ColCount    = "Count"
)

// StudentHeaders is the Students_<branch> header.
var StudentHeaders = []string{
	ColRollNo, ColName, ColGender, ColBranch, ColCGPA, ColEligible,
	ColPlacementStatus, ColPlacementType, ColCompany, ColHighestCTC, ColOfferRevoked,
}

// OfferHeaders is the Offers_<branch> header.
var OfferHeaders = []string{ColRollNo, ColCompany, ColOfferType, ColCTC, ColOfferStatus}

// BranchDriveHeaders is the Company_Drives_<branch> header.
var BranchDriveHeaders = []string{
	ColCompany, ColSPOC, ColRequestID, ColDriveType, ColEligiblePool,
	models.SlotPPT.DatetimeHeader(), models.SlotOT.DatetimeHeader(), models.SlotInterview.DatetimeHeader(),
	models.SlotPPT.StatusHeader(), models.SlotOT.StatusHeader(), models.SlotInterview.StatusHeader(),
	ColInternshipStipend, ColFTECTC, ColFTEBase, ColExpectedHires, ColActualHires,
	ColDriveStatus, ColResultsPublished, ColResultsPublishedAt, ColLastUpdated,
}

// StatsHeaders and DistributionHeaders head the analytics sheets.
var (
	StatsHeaders        = []string{ColMetric, ColValue}
	DistributionHeaders = []string{ColCTCRange, ColCount}
)

// StudentsSheet names the enrolled-students sheet of a branch.
func StudentsSheet(branch string) string { return "Students_" + branch }

// OffersSheet names the offers sheet of a branch.
func OffersSheet(branch string) string { return "Offers_" + branch }

// BranchDrivesSheet names the per-branch drive sheet.
func BranchDrivesSheet(branch string) string { return "Company_Drives_" + branch }

// StatsSheet names the placement statistics sheet of a branch.
func StatsSheet(branch string) string { return "Placement_Stats_" + branch }

// DistributionSheet names the CTC distribution sheet of a branch.
func DistributionSheet(branch string) string { return "CTC_Distribution_" + branch }

// WorkbookName returns the placement workbook name for a year and degree.
func WorkbookName(academicYear string, degree models.DegreeType) string {
	return fmt.Sprintf("Placement_Data_%s_%s", academicYear, degree)
}

// PlacementFields are the student placement columns.
type PlacementFields struct {
	Status     string
	Type       string
	Company    string
	HighestCTC string
	Revoked    string
}

// PlacementWorkbookRepository reads and writes the per-branch sheets of the
// placement workbooks.
type PlacementWorkbookRepository struct {
	store TableStore

	mu      sync.Mutex
	tables  map[tabular.TableRef]*sheetTable
	ensured map[string]bool
}

// NewPlacementWorkbookRepository constructs the repository.
func NewPlacementWorkbookRepository(store TableStore) *PlacementWorkbookRepository {
	return &PlacementWorkbookRepository{
		store:   store,
		tables:  make(map[tabular.TableRef]*sheetTable),
		ensured: make(map[string]bool),
	}
}

func (r *PlacementWorkbookRepository) table(workbookID, sheet string, header []string) *sheetTable {
	ref := tabular.TableRef{Workbook: workbookID, Sheet: sheet}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[ref]
	if !ok {
		t = newSheetTable(r.store, ref, header)
		r.tables[ref] = t
	}
	return t
}

func (r *PlacementWorkbookRepository) students(wb, branch string) *sheetTable {
	return r.table(wb, StudentsSheet(branch), StudentHeaders)
}

func (r *PlacementWorkbookRepository) offers(wb, branch string) *sheetTable {
	return r.table(wb, OffersSheet(branch), OfferHeaders)
}

func (r *PlacementWorkbookRepository) drives(wb, branch string) *sheetTable {
	return r.table(wb, BranchDrivesSheet(branch), BranchDriveHeaders)
}

// ResolveWorkbook returns the id of the placement workbook, creating it when absent.
func (r *PlacementWorkbookRepository) ResolveWorkbook(ctx context.Context, academicYear string, degree models.DegreeType) (string, error) {
	name := WorkbookName(academicYear, degree)
	id, err := r.store.GetOrCreateWorkbook(ctx, name)
	if err != nil {
		return "", fmt.Errorf("resolve workbook %s: %w", name, err)
	}
	return id, nil
}

// EnsureBranch makes sure the five per-branch sheets exist with their headers.
// Successful checks are remembered for the lifetime of the repository.
func (r *PlacementWorkbookRepository) EnsureBranch(ctx context.Context, workbookID, branch string) error {
	key := workbookID + "/" + branch
	r.mu.Lock()
	done := r.ensured[key]
	r.mu.Unlock()
	if done {
		return nil
	}

	tables := []*sheetTable{
		r.students(workbookID, branch),
		r.offers(workbookID, branch),
		r.drives(workbookID, branch),
		r.table(workbookID, StatsSheet(branch), StatsHeaders),
		r.table(workbookID, DistributionSheet(branch), DistributionHeaders),
	}
	for _, t := range tables {
		if err := t.ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s: %w", t.ref.Sheet, err)
		}
	}

	r.mu.Lock()
	r.ensured[key] = true
	r.mu.Unlock()
	return nil
}

// ListBranches returns the branch codes that have a Students sheet in the workbook.
func (r *PlacementWorkbookRepository) ListBranches(ctx context.Context, workbookID string) ([]string, error) {
	sheets, err := r.store.ListSheets(ctx, workbookID)
	if err != nil {
		return nil, fmt.Errorf("list sheets of %s: %w", workbookID, err)
	}
	prefix := StudentsSheet("")
	branches := make([]string, 0, len(sheets))
	for _, title := range sheets {
		if branch := strings.TrimPrefix(title, prefix); branch != title && branch != "" {
			branches = append(branches, branch)
		}
	}
	sort.Strings(branches)
	return branches, nil
}

type studentColumns struct {
	roll, name, gender, branch, cgpa int
}

func detectStudentColumns(header []string) studentColumns {
	contains := func(word string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, word) }
	}
	return studentColumns{
		roll:   tabular.IndexMatching(header, contains("roll")),
		name:   tabular.IndexMatching(header, contains("name")),
		gender: tabular.IndexOf(header, ColGender),
		branch: tabular.IndexMatching(header, contains("branch")),
		cgpa:   tabular.IndexMatching(header, contains("cgpa")),
	}
}

func decodeStudent(snap snapshot, cols studentColumns, i int) models.Student {
	row := snap.rows[i]
	cell := func(idx int) string { return strings.TrimSpace(tabular.Cell(row, idx)) }
	return models.Student{
		Row:             i,
		RollNo:          cell(cols.roll),
		Name:            cell(cols.name),
		Gender:          cell(cols.gender),
		Branch:          cell(cols.branch),
		CGPA:            cell(cols.cgpa),
		Eligible:        snap.value(row, ColEligible),
		PlacementStatus: snap.value(row, ColPlacementStatus),
		PlacementType:   snap.value(row, ColPlacementType),
		Company:         snap.value(row, ColCompany),
		HighestCTC:      models.ParseCTC(snap.value(row, ColHighestCTC)),
		OfferRevoked:    snap.value(row, ColOfferRevoked),
	}
}

// ListStudents returns every student row of the branch.
func (r *PlacementWorkbookRepository) ListStudents(ctx context.Context, workbookID, branch string) ([]models.Student, error) {
	snap, err := r.students(workbookID, branch).read(ctx, false)
	if err != nil {
		return nil, err
	}
	cols := detectStudentColumns(snap.header)
	students := make([]models.Student, 0, len(snap.rows))
	for i := 1; i < len(snap.rows); i++ {
		if strings.TrimSpace(tabular.Cell(snap.rows[i], cols.roll)) == "" {
			continue
		}
		students = append(students, decodeStudent(snap, cols, i))
	}
	return students, nil
}

// FindStudent returns the student with roll, or nil when not enrolled.
func (r *PlacementWorkbookRepository) FindStudent(ctx context.Context, workbookID, branch, roll string) (*models.Student, error) {
	snap, err := r.students(workbookID, branch).read(ctx, false)
	if err != nil {
		return nil, err
	}
	cols := detectStudentColumns(snap.header)
	if cols.roll < 0 {
		return nil, &SchemaError{Table: StudentsSheet(branch), Missing: []string{ColRollNo}}
	}
	want := strings.TrimSpace(roll)
	for i := 1; i < len(snap.rows); i++ {
		if strings.EqualFold(strings.TrimSpace(tabular.Cell(snap.rows[i], cols.roll)), want) {
			student := decodeStudent(snap, cols, i)
			return &student, nil
		}
	}
	return nil, nil
}

// AppendStudent adds an enrolled student.
func (r *PlacementWorkbookRepository) AppendStudent(ctx context.Context, workbookID, branch string, s models.Student) error {
	return r.students(workbookID, branch).append(ctx, []Change{
		{Column: ColRollNo, Value: s.RollNo},
		{Column: ColName, Value: s.Name},
		{Column: ColGender, Value: s.Gender},
		{Column: ColBranch, Value: s.Branch},
		{Column: ColCGPA, Value: s.CGPA},
		{Column: ColEligible, Value: s.Eligible},
		{Column: ColOfferRevoked, Value: s.OfferRevoked},
	})
}

// UpdatePlacement overwrites the five placement columns of a student row.
func (r *PlacementWorkbookRepository) UpdatePlacement(ctx context.Context, workbookID, branch string, row int, f PlacementFields) error {
	return r.students(workbookID, branch).update(ctx, row, []Change{
		{Column: ColPlacementStatus, Value: f.Status},
		{Column: ColPlacementType, Value: f.Type},
		{Column: ColCompany, Value: f.Company},
		{Column: ColHighestCTC, Value: f.HighestCTC},
		{Column: ColOfferRevoked, Value: f.Revoked},
	})
}

// ListOffers returns every offer row of the branch.
func (r *PlacementWorkbookRepository) ListOffers(ctx context.Context, workbookID, branch string) ([]models.Offer, error) {
	snap, err := r.offers(workbookID, branch).read(ctx, false)
	if err != nil {
		return nil, err
	}
	offers := make([]models.Offer, 0, len(snap.rows))
	for i := 1; i < len(snap.rows); i++ {
		row := snap.rows[i]
		if snap.value(row, ColRollNo) == "" {
			continue
		}
		offers = append(offers, models.Offer{
			RollNo:    snap.value(row, ColRollNo),
			Company:   snap.value(row, ColCompany),
			OfferType: snap.value(row, ColOfferType),
			CTC:       models.ParseCTC(snap.value(row, ColCTC)),
			Status:    snap.value(row, ColOfferStatus),
		})
	}
	return offers, nil
}

// HasActiveOffer reports whether an Active offer already exists for the tuple.
func (r *PlacementWorkbookRepository) HasActiveOffer(ctx context.Context, workbookID, branch, roll, company, offerType string) (bool, error) {
	offers, err := r.ListOffers(ctx, workbookID, branch)
	if err != nil {
		return false, err
	}
	for _, o := range offers {
		if o.RollNo == roll && o.Company == company && o.OfferType == offerType && o.Status == models.OfferActive {
			return true, nil
		}
	}
	return false, nil
}

// AppendOffer adds an offer row.
func (r *PlacementWorkbookRepository) AppendOffer(ctx context.Context, workbookID, branch string, o models.Offer) error {
	return r.offers(workbookID, branch).append(ctx, []Change{
		{Column: ColRollNo, Value: o.RollNo},
		{Column: ColCompany, Value: o.Company},
		{Column: ColOfferType, Value: o.OfferType},
		{Column: ColCTC, Value: models.FormatCTC(o.CTC)},
		{Column: ColOfferStatus, Value: o.Status},
	})
}

// FindBranchDrive returns the row and Actual Hires of requestID in
// Company_Drives_<branch>; row is -1 when absent.
func (r *PlacementWorkbookRepository) FindBranchDrive(ctx context.Context, workbookID, branch, requestID string) (int, int, error) {
	snap, err := r.drives(workbookID, branch).read(ctx, false)
	if err != nil {
		return -1, 0, err
	}
	row := snap.find(ColRequestID, requestID)
	if row < 0 {
		return -1, 0, nil
	}
	return row, parseCount(snap.value(snap.rows[row], ColActualHires)), nil
}

// AppendBranchDrive adds a per-branch drive row.
func (r *PlacementWorkbookRepository) AppendBranchDrive(ctx context.Context, workbookID, branch string, values []Change) error {
	return r.drives(workbookID, branch).append(ctx, values)
}

// UpdateBranchDrive writes changes to a per-branch drive row.
func (r *PlacementWorkbookRepository) UpdateBranchDrive(ctx context.Context, workbookID, branch string, row int, changes []Change) error {
	return r.drives(workbookID, branch).update(ctx, row, changes)
}

// WriteStats replaces the contents of the stats and distribution sheets.
func (r *PlacementWorkbookRepository) WriteStats(ctx context.Context, workbookID, branch string, stats, distribution [][]string) error {
	if err := r.overwrite(ctx, r.table(workbookID, StatsSheet(branch), StatsHeaders), stats); err != nil {
		return err
	}
	return r.overwrite(ctx, r.table(workbookID, DistributionSheet(branch), DistributionHeaders), distribution)
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (r *PlacementWorkbookRepository) overwrite(ctx context.Context, t *sheetTable, rows [][]string) error {
	snap, err := t.read(ctx, false)
	if err != nil {
		return err
	}
	width := len(t.header)
	var updates []tabular.CellUpdate
	for i, values := range rows {
		for col := 0; col < width; col++ {
			updates = append(updates, tabular.CellUpdate{Row: i + 1, Col: col, Value: tabular.Cell(values, col)})
		}
	}
	for i := len(rows) + 1; i < len(snap.rows); i++ {
		for col := 0; col < width; col++ {
			updates = append(updates, tabular.CellUpdate{Row: i, Col: col})
		}
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.store.BatchUpdate(ctx, t.ref, updates); err != nil {
		return fmt.Errorf("write %s: %w", t.ref.Sheet, err)
	}
	return nil
}
