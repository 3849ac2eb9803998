package recordapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/timmy/hirelane/internal/domain"
)

// Column names of the application table. The un-suffixed names belong to the
// older schema and are only read as a fallback.
const (
	applicationTable = "application_c"

	colName        = "Name"
	colAppliedAt   = "appliedAt_c"
	colStatus      = "status_c"
	colNotes       = "notes_c"
	colInterview   = "interview_c"
	colJobID       = "jobId_c"
	colCandidateID = "candidateId_c"
)

var applicationFields = []Field{
	{Field: FieldName{Name: colName}},
	{Field: FieldName{Name: colAppliedAt}},
	{Field: FieldName{Name: colStatus}},
	{Field: FieldName{Name: colNotes}},
	{Field: FieldName{Name: colInterview}},
	{Field: FieldName{Name: colJobID}, ReferenceField: &FieldSpec{Field: FieldName{Name: colName}}},
	{Field: FieldName{Name: colCandidateID}, ReferenceField: &FieldSpec{Field: FieldName{Name: colName}}},
}

// reference is a lookup column. The API returns either the bare id or an
// expanded {"Id": n, "Name": "..."} object.
type reference struct {
	ID int
}

func (r *reference) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	r.ID = 0
	switch {
	case len(b) == 0 || string(b) == "null":
		return nil
	case b[0] == '{':
		var obj struct {
			ID int `json:"Id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		r.ID = obj.ID
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		r.ID = id
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		r.ID = int(n)
	}
	return nil
}

type applicationRecord struct {
	ID           int             `json:"Id"`
	Name         string          `json:"Name"`
	AppliedAtC   string          `json:"appliedAt_c"`
	AppliedAt    string          `json:"appliedAt"`
	StatusC      string          `json:"status_c"`
	Status       string          `json:"status"`
	NotesC       *string         `json:"notes_c"`
	Notes        string          `json:"notes"`
	InterviewC   json.RawMessage `json:"interview_c"`
	Interview    json.RawMessage `json:"interview"`
	JobIDC       reference       `json:"jobId_c"`
	JobID        reference       `json:"jobId"`
	CandidateIDC reference       `json:"candidateId_c"`
	CandidateID  reference       `json:"candidateId"`
	ModifiedOn   string          `json:"ModifiedOn"`
}

func decodeApplication(raw json.RawMessage) (*domain.Application, error) {
	var rec applicationRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

func (r *applicationRecord) toDomain() *domain.Application {
	app := &domain.Application{
		ID:          uint(max(r.ID, 0)),
		JobID:       uint(max(firstID(r.JobIDC, r.JobID), 0)),
		CandidateID: uint(max(firstID(r.CandidateIDC, r.CandidateID), 0)),
		Status:      decodeStage(firstNonEmpty(r.StatusC, r.Status)),
		AppliedAt:   parseTimestamp(firstNonEmpty(r.AppliedAtC, r.AppliedAt)),
		Interview:   decodeInterview(r.InterviewC),
	}
	if r.NotesC != nil {
		app.Notes = *r.NotesC
	} else {
		app.Notes = r.Notes
	}
	if app.Interview == nil {
		app.Interview = decodeInterview(r.Interview)
	}
	app.UpdatedAt = parseTimestamp(r.ModifiedOn)
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = app.AppliedAt
	}
	return app
}

func firstID(refs ...reference) int {
	for _, r := range refs {
		if r.ID != 0 {
			return r.ID
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// decodeStage maps a stored status onto a pipeline stage. Unknown values are
// kept verbatim so callers can still see them.
func decodeStage(raw string) domain.Stage {
	if st, ok := domain.ParseStage(raw); ok {
		return st
	}
	return domain.Stage(strings.TrimSpace(raw))
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeInterview accepts the interview as a JSON-encoded string (how it is
// written) or as an embedded object. Anything unreadable yields nil.
func decodeInterview(raw json.RawMessage) *domain.Interview {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		raw = json.RawMessage(strings.TrimSpace(s))
		if len(raw) == 0 {
			return nil
		}
	}
	var iv domain.Interview
	if err := json.Unmarshal(raw, &iv); err != nil {
		return nil
	}
	return &iv
}

// encodeInterview produces the string column value, or nil to clear it.
func encodeInterview(iv *domain.Interview) (interface{}, error) {
	if iv == nil {
		return nil, nil
	}
	b, err := json.Marshal(iv)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
