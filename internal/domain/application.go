package domain

import "time"

// InterviewType enumerates the supported interview formats.
type InterviewType string

const (
	InterviewPhone    InterviewType = "Phone"
	InterviewVideo    InterviewType = "Video"
	InterviewInPerson InterviewType = "In-person"
)

// InterviewTypes lists every accepted interview type.
var InterviewTypes = []InterviewType{InterviewPhone, InterviewVideo, InterviewInPerson}

// IsValid reports whether t is an accepted interview type.
func (t InterviewType) IsValid() bool {
	for _, it := range InterviewTypes {
		if t == it {
			return true
		}
	}
	return false
}

// Interview layouts: dates come from a date input, times from a time input.
const (
	InterviewDateLayout = "2006-01-02"
	InterviewTimeLayout = "15:04"
)

// Interview is the scheduled interview attached to an application.
type Interview struct {
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Interviewer string        `json:"interviewer"`
	Type        InterviewType `json:"type"`
	Notes       string        `json:"notes,omitempty"`
}

// StartsAt parses Date and Time as one local timestamp.
// Seconds are accepted on the time part ("14:30:00").
func (i *Interview) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	stamp := i.Date + "T" + i.Time
	t, err := time.ParseInLocation(InterviewDateLayout+"T"+InterviewTimeLayout, stamp, loc)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(InterviewDateLayout+"T"+InterviewTimeLayout+":05", stamp, loc)
}

// Application is the join record for one candidate's candidacy for one job.
// (JobID, CandidateID) is unique.
type Application struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       uint       `gorm:"not null;uniqueIndex:idx_applications_job_candidate" json:"job_id"`
	CandidateID uint       `gorm:"not null;uniqueIndex:idx_applications_job_candidate;index:idx_applications_candidate" json:"candidate_id"`
	Status      Stage      `gorm:"type:text;not null;index:idx_applications_status" json:"status"`
	AppliedAt   time.Time  `gorm:"not null" json:"applied_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	Interview   *Interview `gorm:"type:text;serializer:json" json:"interview,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string {
	return "applications"
}

// ApplicationFilter narrows a store listing. Zero values match everything.
type ApplicationFilter struct {
	JobID       uint
	CandidateID uint
	Statuses    []Stage
}

// Matches reports whether app satisfies the filter.
func (f *ApplicationFilter) Matches(app *Application) bool {
	if f == nil {
		return true
	}
	if f.JobID != 0 && app.JobID != f.JobID {
		return false
	}
	if f.CandidateID != 0 && app.CandidateID != f.CandidateID {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if app.Status == st {
			return true
		}
	}
	return false
}
