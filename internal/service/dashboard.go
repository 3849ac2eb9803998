package service

import (
	"context"

	"github.com/timmy/hirelane/internal/domain"
)

const dashboardUpcomingLimit = 5

// UpcomingInterview is a scheduled interview with the names it refers to.
type UpcomingInterview struct {
	domain.Application
	CandidateName string `json:"candidate_name"`
	JobTitle      string `json:"job_title"`
}

// Dashboard is the recruiter overview.
type Dashboard struct {
	ActiveJobs         int64                `json:"active_jobs"`
	Candidates         int                  `json:"candidates"`
	Applications       int                  `json:"applications"`
	Hired              int                  `json:"hired"`
	StageCounts        map[domain.Stage]int `json:"stage_counts"`
	UpcomingInterviews []UpcomingInterview  `json:"upcoming_interviews"`
}

// DashboardService aggregates counts across the pipeline.
type DashboardService struct {
	pipeline   *PipelineService
	jobs       JobStore
	candidates CandidateStore
}

func NewDashboardService(pipeline *PipelineService, jobs JobStore, candidates CandidateStore) *DashboardService {
	return &DashboardService{pipeline: pipeline, jobs: jobs, candidates: candidates}
}

// Build computes the dashboard. Interviews whose candidate or job no longer
// exists are shown without names.
func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	jobCounts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates.List(ctx, "")
	if err != nil {
		return nil, err
	}
	apps, err := s.pipeline.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.pipeline.UpcomingInterviews(ctx, dashboardUpcomingLimit)
	if err != nil {
		return nil, err
	}

	counts := StageCounts(apps)
	d := &Dashboard{
		ActiveJobs:         jobCounts[domain.JobStatusActive],
		Candidates:         len(candidates),
		Applications:       len(apps),
		Hired:              counts[domain.StageHired],
		StageCounts:        counts,
		UpcomingInterviews: make([]UpcomingInterview, 0, len(upcoming)),
	}

	names := make(map[uint]string, len(candidates))
	for _, c := range candidates {
		names[c.ID] = c.Name
	}
	titles := make(map[uint]string)
	for _, app := range upcoming {
		if _, ok := titles[app.JobID]; !ok {
			if job, err := s.jobs.GetByID(ctx, app.JobID); err == nil {
				titles[app.JobID] = job.Title
			} else if !domain.IsCode(err, domain.CodeNotFound) {
				return nil, err
			}
		}
		d.UpcomingInterviews = append(d.UpcomingInterviews, UpcomingInterview{
			Application:   app,
			CandidateName: names[app.CandidateID],
			JobTitle:      titles[app.JobID],
		})
	}
	return d, nil
}
