package domain

import "strings"

// Stage is a fine-grained pipeline stage stored on each application.
type Stage string

const (
	StageApplied            Stage = "applied"
	StageScreening          Stage = "screening"
	StageInterviewScheduled Stage = "interview_scheduled"
	StageFinalReview        Stage = "final_review"
	StageHired              Stage = "hired"
	StageRejected           Stage = "rejected"
)

// Stages lists every pipeline stage in display order. Rejected is a side branch
// reachable from any non-terminal stage and is listed last.
var Stages = []Stage{
	StageApplied,
	StageScreening,
	StageInterviewScheduled,
	StageFinalReview,
	StageHired,
	StageRejected,
}

// IsValid reports whether s is one of the known pipeline stages.
func (s Stage) IsValid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s ends the pipeline.
func (s Stage) IsTerminal() bool {
	return s == StageHired || s == StageRejected
}

// Position returns the index of s in Stages, or -1 when unknown.
func (s Stage) Position() int {
	for i, st := range Stages {
		if s == st {
			return i
		}
	}
	return -1
}

// ParseStage normalizes user input ("Interview Scheduled", "final-review") into a Stage.
// Returns:
//   - Stage: normalized stage.
//   - bool: false if the input does not name a known stage.
func ParseStage(raw string) (Stage, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	st := Stage(normalized)
	return st, st.IsValid()
}

// DisplayStatus is the coarse candidate status derived from application stages.
type DisplayStatus string

const (
	DisplayNew         DisplayStatus = "new"
	DisplayInterviewed DisplayStatus = "interviewed"
	DisplayHired       DisplayStatus = "hired"
	DisplayRejected    DisplayStatus = "rejected"
)

// DisplayStatuses lists every display status.
var DisplayStatuses = []DisplayStatus{DisplayNew, DisplayInterviewed, DisplayHired, DisplayRejected}

// ParseDisplayStatus returns the display status named by raw.
func ParseDisplayStatus(raw string) (DisplayStatus, bool) {
	ds := DisplayStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range DisplayStatuses {
		if ds == known {
			return ds, true
		}
	}
	return "", false
}
