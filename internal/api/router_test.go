package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/api/handler"
	"github.com/timmy/hirelane/internal/config"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/repository"
	"github.com/timmy/hirelane/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:api_" + name + "?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard})
	apps := repository.NewApplicationRepository(db)
	jobRepo := repository.NewJobRepository(db)
	candRepo := repository.NewCandidateRepository(db)
	clientRepo := repository.NewClientRepository(db)

	pipeline := service.NewPipelineService(apps, log, service.WithReferenceLookups(jobRepo, candRepo))
	svc := &Services{
		Pipeline:   pipeline,
		Candidates: service.NewCandidateService(candRepo, apps, nil, nil, log),
		Jobs:       service.NewJobService(jobRepo, apps, clientRepo, log),
		Clients:    service.NewClientService(clientRepo, log),
		Notes:      service.NewNoteService(repository.NewNoteRepository(db), 0, log),
		Tasks:      service.NewTaskService(repository.NewTaskRepository(db), log),
		Dashboard:  service.NewDashboardService(pipeline, jobRepo, candRepo),
		Sync:       service.NewSyncService(apps, nil, log, &service.SyncConfig{Workers: 1}),
		HealthChecks: map[string]handler.Pinger{
			"database": handler.PingFunc(func(ctx context.Context) error { return nil }),
		},
	}
	return SetupRouter(svc, &config.ServerConfig{
		Mode: "test",
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}, log)
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// seed creates one job and one candidate and returns their IDs.
func seed(t *testing.T, r http.Handler) (jobID, candidateID uint) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/jobs", map[string]any{"title": "Backend Engineer", "status": "active"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create job = %d %s", w.Code, w.Body.String())
	}
	jobID = decode[domain.Job](t, w).ID

	w = do(t, r, http.MethodPost, "/api/v1/candidates", map[string]any{"name": "Ada Lovelace", "email": "ada@example.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create candidate = %d %s", w.Code, w.Body.String())
	}
	candidateID = decode[domain.CandidateView](t, w).ID
	return jobID, candidateID
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestApplicationLifecycle(t *testing.T) {
	r := newTestRouter(t)
	jobID, candidateID := seed(t, r)

	w := do(t, r, http.MethodPost, "/api/v1/applications", map[string]any{"job_id": jobID, "candidate_id": candidateID})
	if w.Code != http.StatusCreated {
		t.Fatalf("apply = %d %s", w.Code, w.Body.String())
	}
	app := decode[domain.Application](t, w)
	if app.Status != domain.StageApplied {
		t.Errorf("status = %q, want applied", app.Status)
	}

	w = do(t, r, http.MethodPost, "/api/v1/applications", map[string]any{"job_id": jobID, "candidate_id": candidateID})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate apply = %d, want 409", w.Code)
	}

	path := "/api/v1/applications/" + itoa(app.ID)
	w = do(t, r, http.MethodPut, path+"/status", map[string]any{"status": "Final Review"})
	if w.Code != http.StatusOK || decode[domain.Application](t, w).Status != domain.StageFinalReview {
		t.Errorf("transition = %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, path+"/status", map[string]any{"status": "offer"})
	if w.Code != http.StatusBadRequest || decode[handler.ErrorResponse](t, w).Code != domain.CodeInvalidStatus {
		t.Errorf("invalid transition = %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPut, path+"/status", map[string]any{"status": "Final Reviw"})
	if resp := decode[handler.ErrorResponse](t, w); !strings.Contains(resp.Error, `"Final Reviw"`) {
		t.Errorf("misspelled stage error = %q, want the submitted value quoted", resp.Error)
	}

	w = do(t, r, http.MethodGet, "/api/v1/candidates/"+itoa(candidateID), nil)
	if got := decode[domain.CandidateView](t, w).Status; got != domain.DisplayInterviewed {
		t.Errorf("candidate status = %q, want interviewed", got)
	}
}

func TestScheduleInterviewEndpoint(t *testing.T) {
	r := newTestRouter(t)
	jobID, candidateID := seed(t, r)
	app := decode[domain.Application](t, do(t, r, http.MethodPost, "/api/v1/applications",
		map[string]any{"job_id": jobID, "candidate_id": candidateID}))
	path := "/api/v1/applications/" + itoa(app.ID) + "/interview"

	past := time.Now().AddDate(0, 0, -2).Format(domain.InterviewDateLayout)
	w := do(t, r, http.MethodPost, path, domain.Interview{Date: past, Time: "10:00", Interviewer: "Kim", Type: domain.InterviewPhone})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("past interview = %d, want 400", w.Code)
	}
	resp := decode[handler.ErrorResponse](t, w)
	if len(resp.Fields) == 0 || resp.Fields[0].Field != "date" {
		t.Errorf("fields = %+v, want date", resp.Fields)
	}

	future := time.Now().AddDate(0, 0, 3).Format(domain.InterviewDateLayout)
	w = do(t, r, http.MethodPost, path, domain.Interview{Date: future, Time: "10:00", Interviewer: "Kim", Type: domain.InterviewVideo})
	if w.Code != http.StatusOK {
		t.Fatalf("schedule = %d %s", w.Code, w.Body.String())
	}
	if got := decode[domain.Application](t, w).Status; got != domain.StageInterviewScheduled {
		t.Errorf("status = %q, want interview_scheduled", got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/applications/upcoming?limit=5", nil)
	upcoming := decode[struct {
		Total int `json:"total"`
	}](t, w)
	if upcoming.Total != 1 {
		t.Errorf("upcoming total = %d, want 1", upcoming.Total)
	}
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown application", http.MethodGet, "/api/v1/applications/99", nil, http.StatusNotFound},
		{"non numeric id", http.MethodGet, "/api/v1/jobs/abc", nil, http.StatusBadRequest},
		{"apply to missing job", http.MethodPost, "/api/v1/applications", map[string]any{"job_id": 5, "candidate_id": 9}, http.StatusNotFound},
		{"apply without ids", http.MethodPost, "/api/v1/applications", map[string]any{}, http.StatusBadRequest},
		{"candidate without name", http.MethodPost, "/api/v1/candidates", map[string]any{"email": "x@example.com"}, http.StatusBadRequest},
		{"note on unknown entity type", http.MethodGet, "/api/v1/notes?entity_type=invoice&entity_id=1", nil, http.StatusBadRequest},
		{"resume without storage", http.MethodGet, "/api/v1/candidates/1/resume", nil, http.StatusServiceUnavailable},
		{"bad display status", http.MethodGet, "/api/v1/candidates?status=maybe", nil, http.StatusBadRequest},
		{"sync without record api", http.MethodPost, "/api/v1/admin/sync", map[string]any{"limit": 1}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestTaskEndpoints(t *testing.T) {
	r := newTestRouter(t)
	for _, task := range []map[string]any{
		{"title": "Call references", "category": "Follow-up", "priority": "low"},
		{"title": "Send offer", "category": "Offers", "priority": "high"},
		{"title": "Book room", "category": "Follow-up"},
	} {
		if w := do(t, r, http.MethodPost, "/api/v1/tasks", task); w.Code != http.StatusCreated {
			t.Fatalf("create task = %d %s", w.Code, w.Body.String())
		}
	}

	list := decode[struct {
		Tasks []domain.Task `json:"tasks"`
	}](t, do(t, r, http.MethodGet, "/api/v1/tasks", nil))
	if len(list.Tasks) != 3 || list.Tasks[0].Title != "Send offer" {
		t.Fatalf("tasks = %+v", list.Tasks)
	}

	w := do(t, r, http.MethodPut, "/api/v1/tasks/"+itoa(list.Tasks[0].ID)+"/complete", map[string]any{"completed": true})
	if got := decode[domain.Task](t, w); !got.Completed || got.CompletedAt == nil {
		t.Errorf("complete = %+v", got)
	}

	cats := decode[struct {
		Categories []domain.Category `json:"categories"`
	}](t, do(t, r, http.MethodGet, "/api/v1/tasks/categories", nil))
	if len(cats.Categories) != 2 {
		t.Errorf("categories = %+v", cats.Categories)
	}

	w = do(t, r, http.MethodPost, "/api/v1/tasks/bulk-delete", map[string]any{"ids": []uint{list.Tasks[1].ID, list.Tasks[2].ID, 999}})
	deleted := decode[struct {
		Deleted int `json:"deleted"`
	}](t, w)
	if deleted.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted.Deleted)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for unknown origin = %q, want empty", got)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
