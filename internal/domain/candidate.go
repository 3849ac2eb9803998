package domain

import "time"

// Candidate is a person tracked through the hiring pipeline. Its status is
// never stored; see service.ComputeCandidateStatus.
type Candidate struct {
	ID              uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string      `gorm:"type:text;not null" json:"name"`
	Email           string      `gorm:"type:text;index:idx_candidates_email" json:"email"`
	Phone           string      `gorm:"type:text" json:"phone"`
	Location        string      `gorm:"type:text" json:"location"`
	CurrentJobTitle string      `gorm:"type:text" json:"current_job_title"`
	Position        string      `gorm:"type:text" json:"position"`
	ExperienceLevel string      `gorm:"type:text" json:"experience_level"`
	Skills          StringArray `gorm:"type:text" json:"skills"`
	ResumeSummary   string      `gorm:"type:text" json:"resume_summary"`
	ResumeKey       string      `gorm:"type:text" json:"resume_key,omitempty"`
	Availability    string      `gorm:"type:text" json:"availability"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string {
	return "candidates"
}

// CandidateView pairs a candidate with its derived display status.
type CandidateView struct {
	Candidate
	Status DisplayStatus `json:"status"`
}
