package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/service"
)

var interviewTemplate = template.Must(template.New("interview").Parse(`<p>Hello {{.Candidate}},</p>
<p>Your interview for <strong>{{.Job}}</strong>{{if .Company}} at {{.Company}}{{end}} has been scheduled.</p>
<ul>
  <li>Date: {{.Date}}</li>
  <li>Time: {{.Time}}</li>
  <li>Format: {{.Type}}</li>
  <li>Interviewer: {{.Interviewer}}</li>
</ul>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
<p>Please reply to this message if you need to reschedule.</p>
`))

type interviewData struct {
	Candidate   string
	Job         string
	Company     string
	Date        string
	Time        string
	Type        domain.InterviewType
	Interviewer string
	Notes       string
}

// InterviewMailer emails candidates when an interview is scheduled.
type InterviewMailer struct {
	mailer     *Mailer
	candidates service.CandidateLookup
	jobs       service.JobLookup
}

func NewInterviewMailer(mailer *Mailer, candidates service.CandidateLookup, jobs service.JobLookup) *InterviewMailer {
	return &InterviewMailer{mailer: mailer, candidates: candidates, jobs: jobs}
}

// InterviewScheduled sends the invitation. Candidates without an email
// address are skipped silently.
func (n *InterviewMailer) InterviewScheduled(ctx context.Context, app *domain.Application) error {
	if app.Interview == nil {
		return nil
	}
	candidate, err := n.candidates.GetByID(ctx, app.CandidateID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(candidate.Email) == "" {
		return nil
	}
	job, err := n.jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return err
	}

	body, err := renderInvitation(candidate, job, app.Interview)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Interview scheduled: %s", job.Title)
	return n.mailer.Send([]string{candidate.Email}, subject, body)
}

func renderInvitation(candidate *domain.Candidate, job *domain.Job, iv *domain.Interview) (string, error) {
	var body bytes.Buffer
	err := interviewTemplate.Execute(&body, interviewData{
		Candidate:   candidate.Name,
		Job:         job.Title,
		Company:     job.Company,
		Date:        iv.Date,
		Time:        iv.Time,
		Type:        iv.Type,
		Interviewer: iv.Interviewer,
		Notes:       iv.Notes,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render interview email: %w", err)
	}
	return body.String(), nil
}
