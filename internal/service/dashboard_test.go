package service

import (
	"context"
	"testing"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/repository"
)

func TestDashboardBuild(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	jobRepo := repository.NewJobRepository(db)
	candRepo := repository.NewCandidateRepository(db)
	pipeline, _ := newTestPipeline(t)
	dash := NewDashboardService(pipeline, jobRepo, candRepo)

	active := &domain.Job{Title: "Platform Engineer", Status: domain.JobStatusActive}
	closed := &domain.Job{Title: "Data Analyst", Status: domain.JobStatusClosed}
	for _, j := range []*domain.Job{active, closed} {
		if err := jobRepo.Create(ctx, j); err != nil {
			t.Fatalf("Create job error = %v", err)
		}
	}
	ada := &domain.Candidate{Name: "Ada", Email: "ada@example.com"}
	bo := &domain.Candidate{Name: "Bo", Email: "bo@example.com"}
	for _, c := range []*domain.Candidate{ada, bo} {
		if err := candRepo.Create(ctx, c); err != nil {
			t.Fatalf("Create candidate error = %v", err)
		}
	}

	first, _ := pipeline.Apply(ctx, active.ID, ada.ID, "")
	second, _ := pipeline.Apply(ctx, closed.ID, bo.ID, "")
	if _, err := pipeline.Transition(ctx, second.ID, domain.StageHired); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	tomorrow := testNow.AddDate(0, 0, 1).Format(domain.InterviewDateLayout)
	if _, err := pipeline.ScheduleInterview(ctx, first.ID, domain.Interview{
		Date: tomorrow, Time: "09:30", Interviewer: "Kim", Type: domain.InterviewVideo,
	}); err != nil {
		t.Fatalf("ScheduleInterview() error = %v", err)
	}

	d, err := dash.Build(ctx)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if d.ActiveJobs != 1 || d.Candidates != 2 || d.Applications != 2 || d.Hired != 1 {
		t.Errorf("Build() counts = %+v", d)
	}
	if d.StageCounts[domain.StageInterviewScheduled] != 1 {
		t.Errorf("StageCounts = %v", d.StageCounts)
	}
	if len(d.UpcomingInterviews) != 1 {
		t.Fatalf("UpcomingInterviews = %d, want 1", len(d.UpcomingInterviews))
	}
	got := d.UpcomingInterviews[0]
	if got.CandidateName != "Ada" || got.JobTitle != "Platform Engineer" {
		t.Errorf("upcoming = %q for %q", got.CandidateName, got.JobTitle)
	}
}
