package dto

import "github.com/noah-isme/placement-api/internal/models"

// EnrollmentResult reports an uploaded student list.
type EnrollmentResult struct {
	DegreeType string   `json:"degreeType"`
	Branch     string   `json:"branch"`
	Workbook   string   `json:"workbook"`
	Added      int      `json:"added"`
	Skipped    []string `json:"skipped"`
}

// EnrollmentRow is one student parsed from an upload.
type EnrollmentRow struct {
	RollNo string
	Name   string
	Gender string
	CGPA   string
}

// RecalculateStatsRequest asks for the stats sheets of a branch to be rewritten.
type RecalculateStatsRequest struct {
	DegreeType string `json:"degreeType" validate:"required,oneof=UG PG ug pg"`
	Branch     string `json:"branch" validate:"required,min=2"`
}

// AcademicYearResponse reports the active academic year.
type AcademicYearResponse struct {
	AcademicYear string `json:"academicYear"`
	FromEnv      bool   `json:"fromEnv"`
}

// SetAcademicYearRequest changes the in-process academic year.
type SetAcademicYearRequest struct {
	AcademicYear string `json:"academicYear" validate:"required"`
}

// OfferInput applies one offer to a student's placement workbook.
type OfferInput struct {
	DegreeType models.DegreeType
	Branch     string
	RollNo     string
	Company    string
	OfferType  string
	CTC        float64
	Drive      *models.DriveInfo
}

// OverviewResponse aggregates the branch statistics of one or both degrees.
type OverviewResponse struct {
	AcademicYear        string               `json:"academicYear"`
	TotalStudents       int                  `json:"totalStudents"`
	PlacedStudents      int                  `json:"placedStudents"`
	PlacementPercentage float64              `json:"placementPercentage"`
	AverageCTC          float64              `json:"averageCtc"`
	MedianCTC           float64              `json:"medianCtc"`
	HighestCTC          float64              `json:"highestCtc"`
	Branches            []models.BranchStats `json:"branches"`
}
