package models

import (
	"strconv"
	"strings"
)

// DegreeType distinguishes undergraduate and postgraduate workbooks.
type DegreeType string

const (
	DegreeUG DegreeType = "UG"
	DegreePG DegreeType = "PG"
)

// ParseDegreeType accepts UG/PG case-insensitively.
func ParseDegreeType(raw string) (DegreeType, bool) {
	switch DegreeType(strings.ToUpper(strings.TrimSpace(raw))) {
	case DegreeUG:
		return DegreeUG, true
	case DegreePG:
		return DegreePG, true
	}
	return "", false
}

// Offer status values.
const (
	OfferActive = "Active"
)

// Placement status values written to student rows.
const (
	PlacementPlaced = "Placed"
	OfferTypeFTE    = "FTE"
)

// RollInfo is the information encoded in a roll number.
type RollInfo struct {
	Roll   string
	Year   int
	Branch string
	Degree DegreeType
}

// ParseRoll decodes a roll number such as 22CS10001 or 23EE10M12:
// two digit year, two letter branch, and a degree marker at position 7
// (falling back to position 5) where M means postgraduate.
func ParseRoll(roll string) (RollInfo, bool) {
	roll = strings.TrimSpace(roll)
	if len(roll) < 5 {
		return RollInfo{}, false
	}
	yy, err := strconv.Atoi(roll[0:2])
	if err != nil {
		return RollInfo{}, false
	}
	info := RollInfo{
		Roll:   roll,
		Year:   2000 + yy,
		Branch: strings.ToUpper(roll[2:4]),
		Degree: DegreeUG,
	}
	marker := ""
	if len(roll) >= 7 {
		marker = roll[6:7]
	}
	if marker == "" {
		marker = roll[4:5]
	}
	if strings.EqualFold(marker, "M") {
		info.Degree = DegreePG
	}
	return info, true
}

// NormalizeBranch reduces a branch label to its two letter code.
func NormalizeBranch(branch string) string {
	b := strings.ToUpper(strings.TrimSpace(branch))
	if len(b) > 2 {
		b = b[:2]
	}
	return b
}

// Student is one row of Students_<branch>.
type Student struct {
	Row             int     `json:"-"`
	RollNo          string  `json:"rollNo"`
	Name            string  `json:"name"`
	Gender          string  `json:"gender,omitempty"`
	Branch          string  `json:"branch"`
	CGPA            string  `json:"cgpa"`
	Eligible        string  `json:"eligible"`
	PlacementStatus string  `json:"placementStatus,omitempty"`
	PlacementType   string  `json:"placementType,omitempty"`
	Company         string  `json:"company,omitempty"`
	HighestCTC      float64 `json:"highestCtc,omitempty"`
	OfferRevoked    string  `json:"offerRevoked,omitempty"`
}

// Offer is one row of Offers_<branch>.
type Offer struct {
	RollNo    string  `json:"rollNo"`
	Company   string  `json:"company"`
	OfferType string  `json:"offerType"`
	CTC       float64 `json:"ctc"`
	Status    string  `json:"status"`
}

// PlacementResult is one row of Placement_Results.
type PlacementResult struct {
	Row         int      `json:"-"`
	Company     string   `json:"company"`
	RequestID   string   `json:"requestId"`
	RollNumbers []string `json:"rollNumbers"`
	LastUpdated string   `json:"lastUpdated"`
}

// DriveInfo is the drive context carried into per-branch workbook writes.
type DriveInfo struct {
	RequestID         string
	Company           string
	SPOC              string
	DriveType         string
	EligiblePool      string
	PPTDatetime       string
	OTDatetime        string
	InterviewDatetime string
	PPTStatus         string
	OTStatus          string
	InterviewStatus   string
	InternshipStipend string
	FTECTC            string
	FTEBase           string
	ExpectedHires     string
	DriveStatus       string
	ResultsPublished  bool
}

// NewDriveInfo copies the drive context out of a request.
func NewDriveInfo(d DriveRequest) DriveInfo {
	return DriveInfo{
		RequestID:         d.RequestID,
		Company:           d.Company,
		SPOC:              d.SPOC,
		DriveType:         d.Type,
		EligiblePool:      d.EligiblePool,
		PPTDatetime:       d.Slot(SlotPPT).Datetime,
		OTDatetime:        d.Slot(SlotOT).Datetime,
		InterviewDatetime: d.Slot(SlotInterview).Datetime,
		PPTStatus:         string(d.Slot(SlotPPT).Status),
		OTStatus:          string(d.Slot(SlotOT).Status),
		InterviewStatus:   string(d.Slot(SlotInterview).Status),
		InternshipStipend: d.InternshipStipend,
		FTECTC:            d.FTECTC,
		FTEBase:           d.FTEBase,
		ExpectedHires:     d.ExpectedHires,
		DriveStatus:       d.DriveStatus,
	}
}

// ParseCTC reads a CTC cell leniently, returning 0 for anything unparsable.
func ParseCTC(raw string) float64 {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && raw[end] == '-' {
		end++
	}
	dot := false
	for end < len(raw) {
		ch := raw[end]
		if ch == '.' && !dot {
			dot = true
		} else if ch < '0' || ch > '9' {
			break
		}
		end++
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(raw[:end], "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatCTC renders a CTC value without trailing zeros.
func FormatCTC(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
