package dto

// DriveRequestPayload creates or updates a drive request.
type DriveRequestPayload struct {
	RequestID         string `json:"request_id"`
	Company           string `json:"company"`
	Type              string `json:"type"`
	EligiblePool      string `json:"eligible_pool"`
	CGPACutoff        string `json:"cgpa_cutoff"`
	PPTDatetime       string `json:"ppt_datetime"`
	OTDatetime        string `json:"ot_datetime"`
	InterviewDatetime string `json:"interview_datetime"`
	InternshipStipend string `json:"internship_stipend"`
	FTECTC            string `json:"fte_ctc"`
	FTEBase           string `json:"fte_base"`
	ExpectedHires     string `json:"expected_hires"`
}

// DriveRequestResponse returns the id of the created or updated request.
type DriveRequestResponse struct {
	RequestID string `json:"request_id"`
}

// ApproveSlotRequest records a calendar-team decision on one slot.
type ApproveSlotRequest struct {
	RequestID         string `json:"request_id" validate:"required"`
	Slot              string `json:"slot" validate:"required,oneof=PPT OT INTERVIEW ppt ot interview"`
	Action            string `json:"action" validate:"required,oneof=APPROVE REJECT SUGGEST approve reject suggest"`
	SuggestedDatetime string `json:"suggested_datetime"`
}

// SetDriveStatusRequest overwrites the free-text drive status.
type SetDriveStatusRequest struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// SuccessResponse is the minimal acknowledgement body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// SlotView is one slot as shown in listings.
type SlotView struct {
	Datetime          string `json:"datetime"`
	Status            string `json:"status"`
	SuggestedDatetime string `json:"suggested_datetime,omitempty"`
}

// DriveView is a drive request as returned by listing endpoints.
type DriveView struct {
	RequestID         string              `json:"request_id"`
	Company           string              `json:"company"`
	SPOC              string              `json:"spoc"`
	Type              string              `json:"type"`
	EligiblePool      string              `json:"eligible_pool"`
	CGPACutoff        string              `json:"cgpa_cutoff"`
	InternshipStipend string              `json:"internship_stipend"`
	FTECTC            string              `json:"fte_ctc"`
	FTEBase           string              `json:"fte_base"`
	ExpectedHires     string              `json:"expected_hires"`
	DriveStatus       string              `json:"drive_status"`
	Slots             map[string]SlotView `json:"slots"`
}

// PendingDrivesResponse wraps drives awaiting a decision.
type PendingDrivesResponse struct {
	Pending []DriveView `json:"pending"`
}

// DrivesResponse wraps every drive visible to the caller.
type DrivesResponse struct {
	Drives []DriveView `json:"drives"`
}

// CompletedDrivesResponse wraps fully approved drives.
type CompletedDrivesResponse struct {
	Completed []DriveView `json:"completed"`
}

// PublishResultsRequest publishes the selected roll numbers of a drive.
type PublishResultsRequest struct {
	RequestID string `json:"request_id"`
	Results   string `json:"results"`
}

// PublishResultsResponse summarises a publication. Selected counts the
// distinct submitted rolls; Added and Removed count only the rolls whose
// offer was applied or revoked. The roll lists behind the counts are in
// AddedRolls and RemovedRolls.
type PublishResultsResponse struct {
	Success       bool     `json:"success"`
	Company       string   `json:"company"`
	Selected      int      `json:"selected"`
	Added         int      `json:"added"`
	Removed       int      `json:"removed"`
	AddedRolls    []string `json:"addedRolls"`
	RemovedRolls  []string `json:"removedRolls"`
	FailedAdds    []string `json:"failedAdds"`
	FailedRemoves []string `json:"failedRemoves"`
	PartialAdds   []string `json:"partialAdds"`
}

// PlacementResultsResponse returns the current selection of a drive.
type PlacementResultsResponse struct {
	Results     string   `json:"results"`
	RollNumbers []string `json:"rollNumbers"`
	Count       int      `json:"count"`
}
