package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-api/internal/dto"
	"github.com/noah-isme/placement-api/internal/models"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

type statsStore interface {
	ResolveWorkbook(ctx context.Context, academicYear string, degree models.DegreeType) (string, error)
	EnsureBranch(ctx context.Context, workbookID, branch string) error
	ListBranches(ctx context.Context, workbookID string) ([]string, error)
	ListStudents(ctx context.Context, workbookID, branch string) ([]models.Student, error)
	ListOffers(ctx context.Context, workbookID, branch string) ([]models.Offer, error)
	WriteStats(ctx context.Context, workbookID, branch string, stats, distribution [][]string) error
}

var ctcRanges = []struct {
	label    string
	min, max float64
}{
	{"0-5 LPA", 0, 5},
	{"5-10 LPA", 5, 10},
	{"10-15 LPA", 10, 15},
	{"15-20 LPA", 15, 20},
	{"20-30 LPA", 20, 30},
	{"30+ LPA", 30, math.Inf(1)},
}

var unplacedCGPABands = []float64{8, 7.5, 7, 6.5}

// StatsService computes placement analytics from the branch sheets and
// writes the computed values into the stats sheets.
type StatsService struct {
	repo        statsStore
	years       academicYearSource
	eligibility float64
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewStatsService constructs the analytics service. eligibility is the CGPA
// threshold applied to students without an explicit Eligible value.
func NewStatsService(repo statsStore, years academicYearSource, eligibility float64, validate *validator.Validate, logger *zap.Logger) *StatsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, years: years, eligibility: eligibility, validator: validate, logger: logger, now: time.Now}
}

type branchSample struct {
	stats models.BranchStats
	ctcs  []float64
}

// Branch computes the statistics of one branch.
func (s *StatsService) Branch(ctx context.Context, degree models.DegreeType, branch string) (*models.BranchStats, error) {
	workbookID, err := s.repo.ResolveWorkbook(ctx, s.years.Current(), degree)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve placement workbook")
	}
	sample, err := s.compute(ctx, workbookID, degree, models.NormalizeBranch(branch))
	if err != nil {
		return nil, err
	}
	return &sample.stats, nil
}

// Branchwise computes the statistics of every enrolled branch of a degree.
func (s *StatsService) Branchwise(ctx context.Context, degree models.DegreeType) ([]models.BranchStats, error) {
	samples, err := s.branchSamples(ctx, degree)
	if err != nil {
		return nil, err
	}
	out := make([]models.BranchStats, 0, len(samples))
	for _, sample := range samples {
		out = append(out, sample.stats)
	}
	return out, nil
}

// Overview aggregates both degrees.
func (s *StatsService) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	resp := &dto.OverviewResponse{AcademicYear: s.years.Current(), Branches: []models.BranchStats{}}
	var ctcs []float64
	for _, degree := range []models.DegreeType{models.DegreeUG, models.DegreePG} {
		samples, err := s.branchSamples(ctx, degree)
		if err != nil {
			return nil, err
		}
		for _, sample := range samples {
			resp.TotalStudents += sample.stats.TotalStudents
			resp.PlacedStudents += sample.stats.PlacedStudents
			resp.Branches = append(resp.Branches, sample.stats)
			ctcs = append(ctcs, sample.ctcs...)
		}
	}
	resp.PlacementPercentage = percent(resp.PlacedStudents, resp.TotalStudents)
	resp.HighestCTC, resp.AverageCTC, _, resp.MedianCTC = summarize(ctcs)
	return resp, nil
}

// Recalculate rewrites the stats and distribution sheets of a branch.
func (s *StatsService) Recalculate(ctx context.Context, req dto.RecalculateStatsRequest) (*models.BranchStats, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recalculation payload")
	}
	degree, _ := models.ParseDegreeType(req.DegreeType)
	branch := models.NormalizeBranch(req.Branch)

	workbookID, err := s.repo.ResolveWorkbook(ctx, s.years.Current(), degree)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve placement workbook")
	}
	if err := s.repo.EnsureBranch(ctx, workbookID, branch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare branch sheets")
	}
	sample, err := s.compute(ctx, workbookID, degree, branch)
	if err != nil {
		return nil, err
	}
	if err := s.repo.WriteStats(ctx, workbookID, branch, StatsRows(sample.stats), DistributionRows(sample.stats)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write stats sheets")
	}
	s.logger.Info("branch stats recalculated", zap.String("workbook", workbookID), zap.String("branch", branch))
	return &sample.stats, nil
}

func (s *StatsService) branchSamples(ctx context.Context, degree models.DegreeType) ([]branchSample, error) {
	workbookID, err := s.repo.ResolveWorkbook(ctx, s.years.Current(), degree)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve placement workbook")
	}
	branches, err := s.repo.ListBranches(ctx, workbookID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list branches")
	}
	samples := make([]branchSample, 0, len(branches))
	for _, branch := range branches {
		sample, err := s.compute(ctx, workbookID, degree, branch)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *sample)
	}
	return samples, nil
}

func (s *StatsService) compute(ctx context.Context, workbookID string, degree models.DegreeType, branch string) (*branchSample, error) {
	students, err := s.repo.ListStudents(ctx, workbookID, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read students")
	}
	offers, err := s.repo.ListOffers(ctx, workbookID, branch)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read offers")
	}

	type offerKinds struct{ internship, fte bool }
	kinds := make(map[string]*offerKinds)
	for _, o := range offers {
		if !strings.EqualFold(o.Status, models.OfferActive) {
			continue
		}
		k := kinds[o.RollNo]
		if k == nil {
			k = &offerKinds{}
			kinds[o.RollNo] = k
		}
		t := strings.ToLower(o.OfferType)
		if strings.Contains(t, "intern") || t == "both" {
			k.internship = true
		}
		if strings.Contains(t, "fte") || t == "both" {
			k.fte = true
		}
	}

	st := models.BranchStats{
		DegreeType:     degree,
		Branch:         branch,
		UnplacedByCGPA: make(map[string]int, len(unplacedCGPABands)),
		GeneratedAt:    s.now().UTC(),
	}
	for _, band := range unplacedCGPABands {
		st.UnplacedByCGPA[bandLabel(band)] = 0
	}

	var ctcs []float64
	for _, student := range students {
		male, female := genderOf(student.Gender)
		eligible := s.isEligible(student)
		placed := strings.EqualFold(student.PlacementStatus, models.PlacementPlaced)

		st.TotalStudents++
		countGender(&st.Students, male, female)
		if eligible {
			st.EligibleStudents++
			countGender(&st.Eligible, male, female)
		}
		if placed {
			st.PlacedStudents++
			countGender(&st.Placed, male, female)
			if student.HighestCTC > 0 {
				ctcs = append(ctcs, student.HighestCTC)
			}
			if k := kinds[student.RollNo]; k != nil {
				switch {
				case k.internship && k.fte:
					st.BothOffers++
				case k.internship:
					st.OnlyInternshipOffers++
				case k.fte:
					st.OnlyFTEOffers++
				}
			}
			continue
		}
		cgpa, err := strconv.ParseFloat(strings.TrimSpace(student.CGPA), 64)
		if err != nil {
			continue
		}
		for _, band := range unplacedCGPABands {
			if cgpa >= band {
				st.UnplacedByCGPA[bandLabel(band)]++
			}
		}
	}

	st.PlacementRateOfTotal = percent(st.PlacedStudents, st.TotalStudents)
	st.PlacementRate = percent(st.PlacedStudents, st.EligibleStudents)
	st.HighestCTC, st.AverageCTC, st.LowestCTC, st.MedianCTC = summarize(ctcs)
	st.Distribution = distribution(ctcs)
	return &branchSample{stats: st, ctcs: ctcs}, nil
}

func (s *StatsService) isEligible(student models.Student) bool {
	switch strings.ToLower(strings.TrimSpace(student.Eligible)) {
	case "yes", "y", "true":
		return true
	case "no", "n", "false":
		return false
	}
	cgpa, err := strconv.ParseFloat(strings.TrimSpace(student.CGPA), 64)
	return err == nil && cgpa >= s.eligibility
}

func genderOf(raw string) (male, female bool) {
	g := strings.ToUpper(strings.TrimSpace(raw))
	return strings.HasPrefix(g, "M"), strings.HasPrefix(g, "F")
}

func countGender(split *models.GenderSplit, male, female bool) {
	if male {
		split.Male++
	}
	if female {
		split.Female++
	}
}

func bandLabel(band float64) string {
	return ">=" + strconv.FormatFloat(band, 'f', -1, 64)
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// summarize returns highest, average, lowest and median of values.
func summarize(values []float64) (highest, average, lowest, median float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}
	return sorted[len(sorted)-1], round2(sum / float64(len(sorted))), sorted[0], round2(median)
}

func distribution(ctcs []float64) []models.CTCBucket {
	buckets := make([]models.CTCBucket, len(ctcRanges))
	for i, r := range ctcRanges {
		buckets[i].Range = r.label
	}
	for _, v := range ctcs {
		for i, r := range ctcRanges {
			if v >= r.min && v < r.max {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

// StatsRows renders the Metric/Value rows of the stats sheet.
func StatsRows(st models.BranchStats) [][]string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	count := strconv.Itoa
	rows := [][]string{
		{"Total Students", count(st.TotalStudents)},
		{"Total M Students", count(st.Students.Male)},
		{"Total F Students", count(st.Students.Female)},
		{"Total Eligible", count(st.EligibleStudents)},
		{"Total M Eligible", count(st.Eligible.Male)},
		{"Total F Eligible", count(st.Eligible.Female)},
		{"Total Placed", count(st.PlacedStudents)},
		{"No of M Placed", count(st.Placed.Male)},
		{"No of F Placed", count(st.Placed.Female)},
		{"% Students Placed (of Total)", num(st.PlacementRateOfTotal)},
		{"% Students Placed (of Eligible)", num(st.PlacementRate)},
		{"% M Placed (of Total)", num(percent(st.Placed.Male, st.Students.Male))},
		{"% M Placed (of Eligible)", num(percent(st.Placed.Male, st.Eligible.Male))},
		{"% F Placed (of Total)", num(percent(st.Placed.Female, st.Students.Female))},
		{"% F Placed (of Eligible)", num(percent(st.Placed.Female, st.Eligible.Female))},
		{"Highest CTC (LPA)", num(st.HighestCTC)},
		{"Average CTC (LPA)", num(st.AverageCTC)},
		{"Lowest CTC (LPA)", num(st.LowestCTC)},
		{"Median CTC (LPA)", num(st.MedianCTC)},
		{"Only Internship Offers", count(st.OnlyInternshipOffers)},
		{"Only FTE Offers", count(st.OnlyFTEOffers)},
		{"Both Offers", count(st.BothOffers)},
	}
	for _, band := range unplacedCGPABands {
		label := "Unplaced (CGPA >= " + strconv.FormatFloat(band, 'f', -1, 64) + ")"
		rows = append(rows, []string{label, count(st.UnplacedByCGPA[bandLabel(band)])})
	}
	return rows
}

// DistributionRows renders the CTC Range/Count rows of the distribution sheet.
func DistributionRows(st models.BranchStats) [][]string {
	rows := make([][]string, 0, len(st.Distribution))
	for _, b := range st.Distribution {
		rows = append(rows, []string{b.Range, strconv.Itoa(b.Count)})
	}
	return rows
}
