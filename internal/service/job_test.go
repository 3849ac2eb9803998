package service

import (
	"context"
	"errors"
	"testing"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/repository"
)

func TestJobServiceSummary(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	apps := repository.NewApplicationRepository(db)
	clients := NewClientService(repository.NewClientRepository(db), testLogger())
	jobs := NewJobService(repository.NewJobRepository(db), apps, repository.NewClientRepository(db), testLogger())
	pipeline := NewPipelineService(apps, testLogger())

	client, err := clients.Create(ctx, &domain.Client{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("Create client error = %v", err)
	}
	job, err := jobs.Create(ctx, &domain.Job{Title: "Backend Engineer", ClientID: &client.ID})
	if err != nil {
		t.Fatalf("Create job error = %v", err)
	}
	if job.Status != domain.JobStatusDraft {
		t.Errorf("default status = %q, want draft", job.Status)
	}

	for candidate := uint(1); candidate <= 3; candidate++ {
		if _, err := pipeline.Apply(ctx, job.ID, candidate, ""); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}
	list, _ := pipeline.List(ctx, &domain.ApplicationFilter{JobID: job.ID})
	pipeline.Transition(ctx, list[0].ID, domain.StageHired)

	summary, err := jobs.Summary(ctx, job.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Applicants != 3 {
		t.Errorf("Applicants = %d, want 3", summary.Applicants)
	}
	if summary.StageCounts[domain.StageApplied] != 2 || summary.StageCounts[domain.StageHired] != 1 {
		t.Errorf("StageCounts = %v", summary.StageCounts)
	}

	all, err := jobs.List(ctx, "")
	if err != nil || len(all) != 1 || all[0].Applicants != 3 {
		t.Errorf("List() = %+v, %v", all, err)
	}
	if _, err := jobs.List(ctx, domain.JobStatus("paused")); !domain.IsCode(err, domain.CodeValidation) {
		t.Errorf("List(paused) error = %v, want VALIDATION", err)
	}
}

func TestJobServiceValidation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	jobs := NewJobService(repository.NewJobRepository(db), repository.NewApplicationRepository(db), repository.NewClientRepository(db), testLogger())

	_, err := jobs.Create(ctx, &domain.Job{Status: "paused", SalaryMin: 90, SalaryMax: 50})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	for _, f := range []string{"title", "status", "salary"} {
		if !verr.Has(f) {
			t.Errorf("missing %q in %v", f, verr)
		}
	}

	missing := uint(42)
	if _, err := jobs.Create(ctx, &domain.Job{Title: "Role", ClientID: &missing}); !domain.IsCode(err, domain.CodeNotFound) {
		t.Errorf("Create() with unknown client error = %v, want NOT_FOUND", err)
	}

	if _, err := jobs.Update(ctx, 999, &domain.Job{Title: "Role"}); !domain.IsCode(err, domain.CodeNotFound) {
		t.Errorf("Update(unknown) error = %v, want NOT_FOUND", err)
	}
}

func TestClientServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(repository.NewClientRepository(newTestDB(t)), testLogger())

	if _, err := svc.Create(ctx, &domain.Client{CompanyName: ""}); !domain.IsCode(err, domain.CodeValidation) {
		t.Errorf("Create() error = %v, want VALIDATION", err)
	}

	c, err := svc.Create(ctx, &domain.Client{CompanyName: "Initech", RelationshipStatus: "prospect"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	updated, err := svc.Update(ctx, c.ID, &domain.Client{CompanyName: "Initech", RelationshipStatus: "active"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.RelationshipStatus != "active" || updated.ID != c.ID {
		t.Errorf("Update() = %+v", updated)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); !domain.IsCode(err, domain.CodeNotFound) {
		t.Errorf("Get() after delete error = %v, want NOT_FOUND", err)
	}
}
