package models

import "strings"

// SlotKind identifies one of the three schedulable drive stages.
type SlotKind string

const (
	SlotPPT       SlotKind = "PPT"
	SlotOT        SlotKind = "OT"
	SlotInterview SlotKind = "INTERVIEW"
)

// SlotKinds lists the slots in table order.
var SlotKinds = []SlotKind{SlotPPT, SlotOT, SlotInterview}

// ParseSlotKind accepts slot names case-insensitively.
func ParseSlotKind(raw string) (SlotKind, bool) {
	switch SlotKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case SlotPPT:
		return SlotPPT, true
	case SlotOT:
		return SlotOT, true
	case SlotInterview:
		return SlotInterview, true
	}
	return "", false
}

// DatetimeHeader is the column holding the slot's scheduled time.
func (k SlotKind) DatetimeHeader() string {
	if k == SlotInterview {
		return "Interview Datetime"
	}
	return string(k) + " Datetime"
}

// StatusHeader is the column holding the slot's approval status.
func (k SlotKind) StatusHeader() string {
	return string(k) + " Status"
}

// SuggestedHeader is the column holding a calendar-team counter proposal.
func (k SlotKind) SuggestedHeader() string {
	return string(k) + " Suggested Datetime"
}

// SlotStatus is the approval state of a slot.
type SlotStatus string

const (
	SlotPending   SlotStatus = "PENDING"
	SlotApproved  SlotStatus = "APPROVED"
	SlotRejected  SlotStatus = "REJECTED"
	SlotSuggested SlotStatus = "SUGGESTED"
)

// SlotAction is a calendar-team decision on a slot.
type SlotAction string

const (
	ActionApprove SlotAction = "APPROVE"
	ActionReject  SlotAction = "REJECT"
	ActionSuggest SlotAction = "SUGGEST"
)

// Drive status values written by the workflow. Other values are free text.
const (
	DriveStatusScheduled  = "Scheduled"
	DriveStatusInProgress = "In Progress"
	DriveStatusCompleted  = "Completed"
)

// Slot holds one stage of a drive.
type Slot struct {
	Datetime          string     `json:"datetime,omitempty"`
	Status            SlotStatus `json:"status,omitempty"`
	SuggestedDatetime string     `json:"suggestedDatetime,omitempty"`
}

// Scheduled reports whether the slot has a datetime.
func (s Slot) Scheduled() bool {
	return strings.TrimSpace(s.Datetime) != ""
}

// AwaitingDecision reports a scheduled slot with no decision yet.
func (s Slot) AwaitingDecision() bool {
	return s.Scheduled() && (s.Status == "" || s.Status == SlotPending)
}

// DriveRequest is one row of Drive_Requests.
type DriveRequest struct {
	Row               int               `json:"-"`
	RequestID         string            `json:"requestId"`
	Company           string            `json:"company"`
	SPOC              string            `json:"spoc"`
	Type              string            `json:"type"`
	EligiblePool      string            `json:"eligiblePool"`
	CGPACutoff        string            `json:"cgpaCutoff"`
	InternshipStipend string            `json:"internshipStipend"`
	FTECTC            string            `json:"fteCtc"`
	FTEBase           string            `json:"fteBase"`
	ExpectedHires     string            `json:"expectedHires"`
	DriveStatus       string            `json:"driveStatus"`
	Slots             map[SlotKind]Slot `json:"slots"`
}

// Slot returns the slot of kind k, or the zero slot.
func (d DriveRequest) Slot(k SlotKind) Slot {
	if d.Slots == nil {
		return Slot{}
	}
	return d.Slots[k]
}

// FullyApproved reports whether every slot is APPROVED.
func (d DriveRequest) FullyApproved() bool {
	for _, k := range SlotKinds {
		if d.Slot(k).Status != SlotApproved {
			return false
		}
	}
	return true
}

// EffectiveDriveStatus defaults a blank status to Scheduled.
func (d DriveRequest) EffectiveDriveStatus() string {
	if strings.TrimSpace(d.DriveStatus) == "" {
		return DriveStatusScheduled
	}
	return d.DriveStatus
}
