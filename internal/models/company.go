package models

// CompanyAssignment maps a company to its SPOC in Company_SPOC_Map.
type CompanyAssignment struct {
	Company    string `json:"company"`
	SPOCEmail  string `json:"spocEmail"`
	AssignedBy string `json:"assignedBy,omitempty"`
	AssignedAt string `json:"assignedAt,omitempty"`
}

// CompanyDrive is one row of the Company_Drives calendar projection.
type CompanyDrive struct {
	Company            string `json:"company"`
	SPOC               string `json:"spoc"`
	RequestID          string `json:"requestId"`
	Type               string `json:"type"`
	EligiblePool       string `json:"eligiblePool"`
	CGPACutoff         string `json:"cgpaCutoff"`
	PPTDatetime        string `json:"pptDatetime,omitempty"`
	OTDatetime         string `json:"otDatetime,omitempty"`
	InterviewDatetime  string `json:"interviewDatetime,omitempty"`
	PPTStatus          string `json:"pptStatus,omitempty"`
	OTStatus           string `json:"otStatus,omitempty"`
	InterviewStatus    string `json:"interviewStatus,omitempty"`
	InternshipStipend  string `json:"internshipStipend,omitempty"`
	FTECTC             string `json:"fteCtc,omitempty"`
	FTEBase            string `json:"fteBase,omitempty"`
	ExpectedHires      string `json:"expectedHires,omitempty"`
	ActualHires        string `json:"actualHires,omitempty"`
	DriveStatus        string `json:"driveStatus"`
	ResultsPublished   string `json:"resultsPublished,omitempty"`
	ResultsPublishedAt string `json:"resultsPublishedAt,omitempty"`
	LastUpdated        string `json:"lastUpdated,omitempty"`
}
