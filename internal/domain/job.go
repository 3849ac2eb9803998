package domain

import "time"

// JobStatus represents the lifecycle of a job opening.
// Values include JobStatusActive, JobStatusDraft, and JobStatusClosed.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusDraft  JobStatus = "draft"
	JobStatusClosed JobStatus = "closed"
)

// IsValid reports whether s is a known job status.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusActive, JobStatusDraft, JobStatusClosed:
		return true
	default:
		return false
	}
}

// Job is an opening posted for a client. Applications reference jobs but are
// not owned by them.
type Job struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientID        *uint       `gorm:"index:idx_jobs_client" json:"client_id,omitempty"`
	Title           string      `gorm:"type:text;not null" json:"title"`
	Company         string      `gorm:"type:text" json:"company"`
	Location        string      `gorm:"type:text" json:"location"`
	JobType         string      `gorm:"type:text" json:"job_type"`
	SalaryMin       int         `json:"salary_min"`
	SalaryMax       int         `json:"salary_max"`
	RequiredSkills  StringArray `gorm:"type:text" json:"required_skills"`
	ExperienceLevel string      `gorm:"type:text" json:"experience_level"`
	Description     string      `gorm:"type:text" json:"description"`
	Status          JobStatus   `gorm:"type:text;index:idx_jobs_status;default:draft" json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// JobSummary is a job together with its applicant aggregates.
type JobSummary struct {
	Job
	Applicants  int           `json:"applicants"`
	StageCounts map[Stage]int `json:"stage_counts"`
}
