package recordapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/timmy/hirelane/internal/config"
	"github.com/timmy/hirelane/internal/domain"
)

// fakeAPI is an in-memory stand-in for the hosted record API.
type fakeAPI struct {
	mu      sync.Mutex
	records []map[string]interface{}
	nextID  int
	fail    bool
	// untyped leaves the Content-Type header off every response
	untyped bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !f.untyped {
		w.Header().Set("Content-Type", "application/json")
	}
	if r.Header.Get("X-Project-ID") != "proj" || r.Header.Get("Authorization") != "Bearer key" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "unauthorized"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "quota exceeded"})
		return
	}

	const prefix = "/tables/application_c/records"
	path := strings.TrimPrefix(r.URL.Path, prefix)
	switch {
	case r.Method == http.MethodPost && path == "/fetch":
		var q Query
		json.NewDecoder(r.Body).Decode(&q)
		var matched []map[string]interface{}
		for _, rec := range f.records {
			if matchesAll(rec, q.Where) {
				matched = append(matched, rec)
			}
		}
		if q.PagingInfo != nil {
			start := min(q.PagingInfo.Offset, len(matched))
			end := len(matched)
			if q.PagingInfo.Limit > 0 {
				end = min(start+q.PagingInfo.Limit, len(matched))
			}
			matched = matched[start:end]
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": matched})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/"):
		id, _ := strconv.Atoi(strings.TrimPrefix(path, "/"))
		for _, rec := range f.records {
			if rec["Id"] == float64(id) {
				json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": rec})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "not found"})
	case r.Method == http.MethodPost && path == "":
		var body struct {
			Records []map[string]interface{} `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		var results []Result
		for _, rec := range body.Records {
			f.nextID++
			rec["Id"] = float64(f.nextID)
			f.records = append(f.records, rec)
			data, _ := json.Marshal(rec)
			results = append(results, Result{Success: true, Data: data})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "results": results})
	case r.Method == http.MethodPut && path == "":
		var body struct {
			Records []map[string]interface{} `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		var results []Result
		for _, upd := range body.Records {
			found := false
			for _, rec := range f.records {
				if rec["Id"] == upd["Id"] {
					for k, v := range upd {
						rec[k] = v
					}
					found = true
				}
			}
			if !found {
				results = append(results, Result{Success: false, Errors: []FieldError{{FieldLabel: "Id", Message: "no such record"}}})
				continue
			}
			results = append(results, Result{Success: true})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "results": results})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func matchesAll(rec map[string]interface{}, where []Condition) bool {
	for _, c := range where {
		if len(c.Values) == 0 || fmt.Sprint(rec[c.FieldName]) != fmt.Sprint(c.Values[0]) {
			return false
		}
	}
	return true
}

func newTestStore(t *testing.T, api *fakeAPI) *ApplicationStore {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.RecordAPIConfig{
		BaseURL:   srv.URL + "/",
		ProjectID: "proj",
		PublicKey: "key",
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewApplicationStore(client, 2)
}

func TestNewClientRequiresSettings(t *testing.T) {
	if _, err := NewClient(&config.RecordAPIConfig{ProjectID: "p"}); err == nil {
		t.Error("expected error without base url")
	}
	if _, err := NewClient(&config.RecordAPIConfig{BaseURL: "http://x"}); err == nil {
		t.Error("expected error without project id")
	}
}

func TestApplicationStoreCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeAPI{})

	app, err := store.Create(ctx, 5, 9, "via referral")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if app.ID == 0 || app.Status != domain.StageApplied || app.Notes != "via referral" {
		t.Errorf("Create() = %+v", app)
	}

	if _, err := store.Create(ctx, 5, 9, ""); !domain.IsCode(err, domain.CodeDuplicate) {
		t.Fatalf("second Create() error = %v, want DUPLICATE", err)
	}
}

func TestApplicationStoreSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeAPI{})

	app, err := store.Create(ctx, 1, 2, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	app.Status = domain.StageInterviewScheduled
	app.UpdatedAt = app.AppliedAt.Add(time.Hour)
	app.Interview = &domain.Interview{Date: "2030-01-02", Time: "10:00", Interviewer: "Kim", Type: domain.InterviewPhone}
	saved, err := store.Save(ctx, app)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !saved.UpdatedAt.Equal(app.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", saved.UpdatedAt, app.UpdatedAt)
	}

	got, err := store.Get(ctx, app.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != domain.StageInterviewScheduled {
		t.Errorf("Status = %q", got.Status)
	}
	if got.Interview == nil || got.Interview.Interviewer != "Kim" {
		t.Errorf("Interview = %+v", got.Interview)
	}
	if !got.AppliedAt.Equal(app.AppliedAt) {
		t.Errorf("AppliedAt = %v, want %v", got.AppliedAt, app.AppliedAt)
	}
}

func TestApplicationStoreNotFound(t *testing.T) {
	store := newTestStore(t, &fakeAPI{})
	if _, err := store.Get(context.Background(), 404); !domain.IsCode(err, domain.CodeNotFound) {
		t.Errorf("Get() error = %v, want NOT_FOUND", err)
	}
}

func TestApplicationStoreListPagesAndFilters(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeAPI{})

	for _, pair := range [][2]uint{{1, 1}, {1, 2}, {1, 3}, {2, 1}} {
		if _, err := store.Create(ctx, pair[0], pair[1], ""); err != nil {
			t.Fatalf("Create(%v) error = %v", pair, err)
		}
	}

	all, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("List() returned %d, want 4 across pages", len(all))
	}

	job1, err := store.List(ctx, &domain.ApplicationFilter{JobID: 1})
	if err != nil {
		t.Fatalf("List(job=1) error = %v", err)
	}
	if len(job1) != 3 {
		t.Errorf("List(job=1) returned %d, want 3", len(job1))
	}

	hired, err := store.List(ctx, &domain.ApplicationFilter{Statuses: []domain.Stage{domain.StageHired}})
	if err != nil {
		t.Fatalf("List(hired) error = %v", err)
	}
	if len(hired) != 0 {
		t.Errorf("List(hired) returned %d, want 0", len(hired))
	}
}

func TestApplicationStoreAPIFailure(t *testing.T) {
	store := newTestStore(t, &fakeAPI{fail: true})
	_, err := store.List(context.Background(), nil)
	if !domain.IsCode(err, domain.CodeInternal) {
		t.Fatalf("List() error = %v, want INTERNAL", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error %q does not carry the API message", err)
	}
}

func TestResponsesDecodeWithoutContentType(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeAPI{untyped: true})

	created, err := store.Create(ctx, 2, 8, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.JobID != 2 || got.CandidateID != 8 || got.Status != domain.StageApplied {
		t.Errorf("Get() = %+v, want job 2 candidate 8 applied", got)
	}

	apps, err := store.List(ctx, nil)
	if err != nil || len(apps) != 1 {
		t.Errorf("List() = %d apps, err %v, want 1", len(apps), err)
	}
}

func TestFetchBatchCursor(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, &fakeAPI{})
	for i := uint(1); i <= 3; i++ {
		if _, err := store.Create(ctx, 1, i, ""); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	first, next, err := store.FetchBatch(ctx, "", 2)
	if err != nil || len(first) != 2 || next != "2" {
		t.Fatalf("FetchBatch(first) = %d items, next %q, err %v", len(first), next, err)
	}
	second, next, err := store.FetchBatch(ctx, next, 2)
	if err != nil || len(second) != 1 || next != "" {
		t.Fatalf("FetchBatch(second) = %d items, next %q, err %v", len(second), next, err)
	}
	if _, _, err := store.FetchBatch(ctx, "abc", 2); err == nil {
		t.Error("expected error for malformed cursor")
	}
}

func TestDecodeApplicationSchemas(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Application
	}{
		{
			name: "current schema with expanded references",
			raw: `{"Id": 3, "status_c": "final_review", "notes_c": "strong",
				"appliedAt_c": "2024-05-01T10:00:00Z",
				"jobId_c": {"Id": 7, "Name": "Backend Engineer"},
				"candidateId_c": {"Id": 11, "Name": "Ada"},
				"interview_c": "{\"date\":\"2024-05-10\",\"time\":\"09:30\",\"interviewer\":\"Lee\",\"type\":\"Video\"}"}`,
			want: domain.Application{
				ID: 3, JobID: 7, CandidateID: 11, Status: domain.StageFinalReview, Notes: "strong",
				AppliedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
				Interview: &domain.Interview{Date: "2024-05-10", Time: "09:30", Interviewer: "Lee", Type: domain.InterviewVideo},
			},
		},
		{
			name: "legacy schema",
			raw:  `{"Id": 4, "status": "Hired", "notes": "old", "appliedAt": "2023-01-02", "jobId": "8", "candidateId": 12}`,
			want: domain.Application{
				ID: 4, JobID: 8, CandidateID: 12, Status: domain.StageHired, Notes: "old",
				AppliedAt: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "suffixed fields win over legacy ones",
			raw:  `{"Id": 5, "status_c": "screening", "status": "hired", "jobId_c": 1, "jobId": 2, "candidateId_c": 3, "interview_c": "not json"}`,
			want: domain.Application{ID: 5, JobID: 1, CandidateID: 3, Status: domain.StageScreening},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeApplication(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("decodeApplication() error = %v", err)
			}
			if got.ID != tt.want.ID || got.JobID != tt.want.JobID || got.CandidateID != tt.want.CandidateID {
				t.Errorf("ids = %d/%d/%d, want %d/%d/%d", got.ID, got.JobID, got.CandidateID, tt.want.ID, tt.want.JobID, tt.want.CandidateID)
			}
			if got.Status != tt.want.Status || got.Notes != tt.want.Notes {
				t.Errorf("status/notes = %q/%q, want %q/%q", got.Status, got.Notes, tt.want.Status, tt.want.Notes)
			}
			if !got.AppliedAt.Equal(tt.want.AppliedAt) {
				t.Errorf("AppliedAt = %v, want %v", got.AppliedAt, tt.want.AppliedAt)
			}
			if (got.Interview == nil) != (tt.want.Interview == nil) {
				t.Fatalf("Interview = %+v, want %+v", got.Interview, tt.want.Interview)
			}
			if got.Interview != nil && *got.Interview != *tt.want.Interview {
				t.Errorf("Interview = %+v, want %+v", *got.Interview, *tt.want.Interview)
			}
		})
	}
}
