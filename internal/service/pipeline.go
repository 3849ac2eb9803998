package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
)

// ApplicationStore is the persistence contract the pipeline works against.
// Implementations: repository.ApplicationRepository (gorm),
// repository.MemoryApplicationStore and recordapi.ApplicationStore.
type ApplicationStore interface {
	// List returns applications matching filter; nil matches all.
	List(ctx context.Context, filter *domain.ApplicationFilter) ([]domain.Application, error)

	// Get returns the application or a NOT_FOUND error.
	Get(ctx context.Context, id uint) (*domain.Application, error)

	// Create inserts an application in the applied stage. It must fail with a
	// DUPLICATE error when (jobID, candidateID) already exists.
	Create(ctx context.Context, jobID, candidateID uint, notes string) (*domain.Application, error)

	// Save replaces the mutable fields (status, updated_at, interview, notes)
	// and preserves ID and AppliedAt.
	Save(ctx context.Context, app *domain.Application) (*domain.Application, error)
}

// JobLookup resolves job references.
type JobLookup interface {
	GetByID(ctx context.Context, id uint) (*domain.Job, error)
}

// CandidateLookup resolves candidate references.
type CandidateLookup interface {
	GetByID(ctx context.Context, id uint) (*domain.Candidate, error)
}

// CandidateStatusCache stores derived display statuses per candidate.
type CandidateStatusCache interface {
	Get(ctx context.Context, candidateID uint) (domain.DisplayStatus, bool, error)
	Set(ctx context.Context, candidateID uint, status domain.DisplayStatus) error
	Invalidate(ctx context.Context, candidateID uint) error
}

// InterviewNotifier is told about freshly scheduled interviews.
type InterviewNotifier interface {
	InterviewScheduled(ctx context.Context, app *domain.Application) error
}

// aggregationOrder decides a candidate's display status: the first stage held
// by any of their applications wins.
var aggregationOrder = []domain.Stage{
	domain.StageHired,
	domain.StageRejected,
	domain.StageFinalReview,
	domain.StageInterviewScheduled,
	domain.StageScreening,
	domain.StageApplied,
}

func displayFor(stage domain.Stage) domain.DisplayStatus {
	switch stage {
	case domain.StageHired:
		return domain.DisplayHired
	case domain.StageRejected:
		return domain.DisplayRejected
	case domain.StageFinalReview, domain.StageInterviewScheduled, domain.StageScreening:
		return domain.DisplayInterviewed
	default:
		return domain.DisplayNew
	}
}

// ComputeCandidateStatus derives a candidate's display status from all of
// their applications. Hired and rejected outrank every mid-pipeline stage.
func ComputeCandidateStatus(apps []domain.Application) domain.DisplayStatus {
	if len(apps) == 0 {
		return domain.DisplayNew
	}
	held := make(map[domain.Stage]bool, len(apps))
	for i := range apps {
		held[apps[i].Status] = true
	}
	for _, stage := range aggregationOrder {
		if held[stage] {
			return displayFor(stage)
		}
	}
	return domain.DisplayNew
}

// StageCounts tallies applications per stage. Every known stage is present.
func StageCounts(apps []domain.Application) map[domain.Stage]int {
	counts := make(map[domain.Stage]int, len(domain.Stages))
	for _, st := range domain.Stages {
		counts[st] = 0
	}
	for i := range apps {
		if apps[i].Status.IsValid() {
			counts[apps[i].Status]++
		}
	}
	return counts
}

// ValidateInterview checks every interview field against now and reports all
// failures at once. The date check ignores time of day.
func ValidateInterview(iv domain.Interview, now time.Time) error {
	verr := &domain.ValidationError{}

	if strings.TrimSpace(iv.Date) == "" {
		verr.Add("date", "interview date is required")
	} else if day, err := time.ParseInLocation(domain.InterviewDateLayout, strings.TrimSpace(iv.Date), now.Location()); err != nil {
		verr.Add("date", "interview date must be formatted as YYYY-MM-DD")
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if day.Before(today) {
			verr.Add("date", "interview date cannot be in the past")
		}
	}

	if strings.TrimSpace(iv.Time) == "" {
		verr.Add("time", "interview time is required")
	} else if !validClock(strings.TrimSpace(iv.Time)) {
		verr.Add("time", "interview time must be formatted as HH:MM")
	}

	if strings.TrimSpace(iv.Interviewer) == "" {
		verr.Add("interviewer", "interviewer name is required")
	}

	if strings.TrimSpace(string(iv.Type)) == "" {
		verr.Add("type", "interview type is required")
	} else if !iv.Type.IsValid() {
		verr.Add("type", "interview type must be one of Phone, Video, In-person")
	}

	return verr.OrNil()
}

func validClock(s string) bool {
	if _, err := time.Parse(domain.InterviewTimeLayout, s); err == nil {
		return true
	}
	_, err := time.Parse(domain.InterviewTimeLayout+":05", s)
	return err == nil
}

// UpcomingInterviews keeps applications in interview_scheduled whose interview
// starts at or after now, ordered by start time. Applications whose interview
// cannot be parsed are dropped.
func UpcomingInterviews(apps []domain.Application, now time.Time) []domain.Application {
	type scheduled struct {
		app   domain.Application
		start time.Time
	}
	var upcoming []scheduled
	for _, app := range apps {
		if app.Status != domain.StageInterviewScheduled || app.Interview == nil {
			continue
		}
		start, err := app.Interview.StartsAt(now.Location())
		if err != nil {
			continue
		}
		if start.Before(now) {
			continue
		}
		upcoming = append(upcoming, scheduled{app: app, start: start})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].start.Before(upcoming[j].start)
	})
	out := make([]domain.Application, len(upcoming))
	for i := range upcoming {
		out[i] = upcoming[i].app
	}
	return out
}

// PipelineService applies stage changes and interview scheduling to stored
// applications.
type PipelineService struct {
	store      ApplicationStore
	jobs       JobLookup
	candidates CandidateLookup
	cache      CandidateStatusCache
	notifier   InterviewNotifier
	logger     *logger.Logger
	now        func() time.Time
}

// PipelineOption configures optional collaborators of PipelineService.
type PipelineOption func(*PipelineService)

// WithReferenceLookups makes Apply verify that the job and candidate exist.
func WithReferenceLookups(jobs JobLookup, candidates CandidateLookup) PipelineOption {
	return func(s *PipelineService) {
		s.jobs = jobs
		s.candidates = candidates
	}
}

// WithStatusCache invalidates cached candidate statuses after every write.
func WithStatusCache(c CandidateStatusCache) PipelineOption {
	return func(s *PipelineService) { s.cache = c }
}

// WithInterviewNotifier sends notifications after interviews are scheduled.
func WithInterviewNotifier(n InterviewNotifier) PipelineOption {
	return func(s *PipelineService) { s.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) PipelineOption {
	return func(s *PipelineService) { s.now = now }
}

// NewPipelineService creates a pipeline service over store.
// Parameters:
//   - store: application persistence.
//   - log: logger used when the context carries none.
//   - opts: optional collaborators.
//
// Returns:
//   - *PipelineService: initialized service.
func NewPipelineService(store ApplicationStore, log *logger.Logger, opts ...PipelineOption) *PipelineService {
	s := &PipelineService{
		store:  store,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PipelineService) log(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// Apply creates the application of a candidate to a job.
func (s *PipelineService) Apply(ctx context.Context, jobID, candidateID uint, notes string) (*domain.Application, error) {
	if s.jobs != nil {
		if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
			return nil, err
		}
	}
	if s.candidates != nil {
		if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
			return nil, err
		}
	}

	app, err := s.store.Create(ctx, jobID, candidateID, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, candidateID)

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldApplicationID: app.ID,
		logger.FieldJobID:         jobID,
		logger.FieldCandidateID:   candidateID,
	}).Info("Application created")
	return app, nil
}

// Get returns one application.
func (s *PipelineService) Get(ctx context.Context, id uint) (*domain.Application, error) {
	return s.store.Get(ctx, id)
}

// List returns applications matching filter.
func (s *PipelineService) List(ctx context.Context, filter *domain.ApplicationFilter) ([]domain.Application, error) {
	return s.store.List(ctx, filter)
}

// Transition moves an application to newStatus. Any stage may follow any other;
// moving to the current stage only refreshes UpdatedAt.
func (s *PipelineService) Transition(ctx context.Context, id uint, newStatus domain.Stage) (*domain.Application, error) {
	const op = "PipelineService.Transition"
	if !newStatus.IsValid() {
		return nil, domain.InvalidStatus(op, string(newStatus))
	}

	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := app.Status
	app.Status = newStatus
	app.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, app)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, saved.CandidateID)

	logger.With(logger.Fields{
		logger.FieldApplicationID: saved.ID,
		"from":                    previous,
	}).WithStage(string(newStatus)).Info(ctx, "Application stage changed")
	return saved, nil
}

// ScheduleInterview validates iv and attaches it to the application, forcing
// the stage to interview_scheduled whatever it was before.
func (s *PipelineService) ScheduleInterview(ctx context.Context, id uint, iv domain.Interview) (*domain.Application, error) {
	iv = trimInterview(iv)
	if err := ValidateInterview(iv, s.now()); err != nil {
		return nil, err
	}

	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Interview = &iv
	app.Status = domain.StageInterviewScheduled
	app.UpdatedAt = s.now()

	saved, err := s.store.Save(ctx, app)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, saved.CandidateID)

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldApplicationID: saved.ID,
		"interview_date":          iv.Date,
		"interview_type":          iv.Type,
	}).Info("Interview scheduled")

	if s.notifier != nil {
		if err := s.notifier.InterviewScheduled(ctx, saved); err != nil {
			s.log(ctx).WithError(err).WithField(logger.FieldApplicationID, saved.ID).
				Warn("Failed to send interview notification")
		}
	}
	return saved, nil
}

// UpdateInterview replaces the interview details without touching the stage.
func (s *PipelineService) UpdateInterview(ctx context.Context, id uint, iv domain.Interview) (*domain.Application, error) {
	iv = trimInterview(iv)
	if err := ValidateInterview(iv, s.now()); err != nil {
		return nil, err
	}

	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Interview = &iv
	app.UpdatedAt = s.now()
	return s.store.Save(ctx, app)
}

// UpdateNotes replaces the free-text notes of an application.
func (s *PipelineService) UpdateNotes(ctx context.Context, id uint, notes string) (*domain.Application, error) {
	app, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	app.Notes = strings.TrimSpace(notes)
	app.UpdatedAt = s.now()
	return s.store.Save(ctx, app)
}

// UpcomingInterviews returns the next scheduled interviews, soonest first.
// limit <= 0 returns all of them.
func (s *PipelineService) UpcomingInterviews(ctx context.Context, limit int) ([]domain.Application, error) {
	apps, err := s.store.List(ctx, &domain.ApplicationFilter{
		Statuses: []domain.Stage{domain.StageInterviewScheduled},
	})
	if err != nil {
		return nil, err
	}
	upcoming := UpcomingInterviews(apps, s.now())
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (s *PipelineService) invalidate(ctx context.Context, candidateID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, candidateID); err != nil {
		s.log(ctx).WithError(err).WithField(logger.FieldCandidateID, candidateID).
			Warn("Failed to invalidate candidate status cache")
	}
}

func trimInterview(iv domain.Interview) domain.Interview {
	iv.Date = strings.TrimSpace(iv.Date)
	iv.Time = strings.TrimSpace(iv.Time)
	iv.Interviewer = strings.TrimSpace(iv.Interviewer)
	iv.Type = domain.InterviewType(strings.TrimSpace(string(iv.Type)))
	iv.Notes = strings.TrimSpace(iv.Notes)
	return iv
}
