package recordapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/timmy/hirelane/internal/domain"
)

const defaultPageSize = 100

// ApplicationStore keeps applications in the hosted record API.
type ApplicationStore struct {
	client   *Client
	pageSize int
	now      func() time.Time
}

// NewApplicationStore creates a store over client. pageSize bounds each fetch.
func NewApplicationStore(client *Client, pageSize int) *ApplicationStore {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &ApplicationStore{client: client, pageSize: pageSize, now: time.Now}
}

// List returns every application matching filter, newest first. Job and
// candidate constraints are evaluated by the API; stages are filtered locally.
func (s *ApplicationStore) List(ctx context.Context, filter *domain.ApplicationFilter) ([]domain.Application, error) {
	const op = "recordapi.ApplicationStore.List"

	var where []Condition
	if filter != nil {
		if filter.JobID != 0 {
			where = append(where, EqualTo(colJobID, filter.JobID))
		}
		if filter.CandidateID != 0 {
			where = append(where, EqualTo(colCandidateID, filter.CandidateID))
		}
	}

	var out []domain.Application
	for offset := 0; ; offset += s.pageSize {
		page, err := s.fetchPage(ctx, where, offset)
		if err != nil {
			return nil, domain.Internal(op, "failed to list applications", err)
		}
		for i := range page {
			if filter.Matches(&page[i]) {
				out = append(out, page[i])
			}
		}
		if len(page) < s.pageSize {
			break
		}
	}
	return out, nil
}

// Get returns one application.
func (s *ApplicationStore) Get(ctx context.Context, id uint) (*domain.Application, error) {
	const op = "recordapi.ApplicationStore.Get"

	raw, err := s.client.Get(ctx, applicationTable, int(id))
	if errors.Is(err, ErrRecordNotFound) {
		return nil, domain.NotFound(op, "application", id)
	}
	if err != nil {
		return nil, domain.Internal(op, "failed to load application", err)
	}
	app, err := decodeApplication(raw)
	if err != nil {
		return nil, domain.Internal(op, "failed to decode application", err)
	}
	if app.ID == 0 {
		app.ID = id
	}
	return app, nil
}

// Create checks for an existing (job, candidate) pair before inserting. The
// API has no unique constraint, so two concurrent creates can both succeed.
func (s *ApplicationStore) Create(ctx context.Context, jobID, candidateID uint, notes string) (*domain.Application, error) {
	const op = "recordapi.ApplicationStore.Create"

	existing, _, err := s.client.Fetch(ctx, applicationTable, &Query{
		Fields:     []Field{{Field: FieldName{Name: colName}}},
		Where:      []Condition{EqualTo(colJobID, jobID), EqualTo(colCandidateID, candidateID)},
		PagingInfo: &PagingInfo{Limit: 1},
	})
	if err != nil {
		return nil, domain.Internal(op, "failed to check existing application", err)
	}
	if len(existing) > 0 {
		return nil, domain.Duplicate(op, jobID, candidateID)
	}

	now := s.now().UTC()
	data, err := s.client.Create(ctx, applicationTable, map[string]interface{}{
		colName:        fmt.Sprintf("Application for Job %d - Candidate %d", jobID, candidateID),
		colAppliedAt:   now.Format(time.RFC3339Nano),
		colStatus:      string(domain.StageApplied),
		colNotes:       notes,
		colJobID:       jobID,
		colCandidateID: candidateID,
	})
	if err != nil {
		return nil, domain.Internal(op, "failed to create application", err)
	}

	app := &domain.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      domain.StageApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
		Notes:       notes,
	}
	if len(data) > 0 {
		if stored, err := decodeApplication(data[0]); err == nil {
			app.ID = stored.ID
		}
	}
	if app.ID == 0 {
		return nil, domain.Internal(op, "record API returned no id for the new application", nil)
	}
	return app, nil
}

// Save writes status, notes and interview. AppliedAt is never sent.
func (s *ApplicationStore) Save(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	const op = "recordapi.ApplicationStore.Save"

	current, err := s.Get(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	interview, err := encodeInterview(app.Interview)
	if err != nil {
		return nil, domain.Internal(op, "failed to encode interview", err)
	}
	_, err = s.client.Update(ctx, applicationTable, map[string]interface{}{
		"Id":         int(app.ID),
		colStatus:    string(app.Status),
		colNotes:     app.Notes,
		colInterview: interview,
	})
	if err != nil {
		return nil, domain.Internal(op, "failed to save application", err)
	}

	saved := *current
	saved.Status = app.Status
	saved.Notes = app.Notes
	saved.Interview = app.Interview
	saved.UpdatedAt = app.UpdatedAt
	return &saved, nil
}

// SourceID identifies this store in sync runs.
func (s *ApplicationStore) SourceID() string {
	return "record_api"
}

// FetchBatch returns up to limit applications starting at the offset encoded
// in cursor, oldest first, and the cursor of the next batch ("" when done).
func (s *ApplicationStore) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.Application, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
		offset = n
	}
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}

	raws, _, err := s.client.Fetch(ctx, applicationTable, &Query{
		Fields:     applicationFields,
		OrderBy:    []OrderBy{{FieldName: colAppliedAt, SortType: "ASC"}},
		PagingInfo: &PagingInfo{Limit: limit, Offset: offset},
	})
	if err != nil {
		return nil, "", err
	}
	apps, err := decodeAll(raws)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(raws) == limit {
		next = strconv.Itoa(offset + len(raws))
	}
	return apps, next, nil
}

func (s *ApplicationStore) fetchPage(ctx context.Context, where []Condition, offset int) ([]domain.Application, error) {
	raws, _, err := s.client.Fetch(ctx, applicationTable, &Query{
		Fields:     applicationFields,
		Where:      where,
		OrderBy:    []OrderBy{{FieldName: colAppliedAt, SortType: "DESC"}},
		PagingInfo: &PagingInfo{Limit: s.pageSize, Offset: offset},
	})
	if err != nil {
		return nil, err
	}
	return decodeAll(raws)
}

func decodeAll(raws []json.RawMessage) ([]domain.Application, error) {
	apps := make([]domain.Application, 0, len(raws))
	for _, raw := range raws {
		app, err := decodeApplication(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, nil
}
