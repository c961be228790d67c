// Package jobs runs the demo server's background work: delivering scheduled
// reports by email.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"hrmportal/internal/domain/reports"
	"hrmportal/internal/platform/demostore"
	"hrmportal/internal/platform/email"
)

const JobScheduledReport = "scheduled_report"

// ReportSource is the slice of the demo store the scheduler needs.
type ReportSource interface {
	ClaimDueSchedules(now time.Time) []reports.Schedule
	GenerateReport(in reports.GenerateInput) (reports.Report, error)
	ReportFile(id string) (demostore.File, error)
}

// RunRecorder keeps a history of job runs. The Postgres implementation lives
// in platform/db; without one, runs are only logged.
type RunRecorder interface {
	StartRun(ctx context.Context, jobType string) (string, error)
	FinishRun(ctx context.Context, id, status string, details []byte) error
}

type Service struct {
	Reports  ReportSource
	Mailer   email.Mailer
	From     string
	Interval time.Duration
	Runs     RunRecorder
	Logger   *slog.Logger
	Now      func() time.Time

	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(source ReportSource, mailer email.Mailer, from string, interval time.Duration) *Service {
	return &Service{
		Reports:  source,
		Mailer:   mailer,
		From:     from,
		Interval: interval,
		Logger:   slog.Default(),
		Now:      time.Now,
		queue:    make(chan job, 128),
	}
}

// Start runs the worker and, when Interval is positive, the schedule ticker.
// Both stop with ctx.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.scheduleReports(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.Logger.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// DispatchDue enqueues one delivery per schedule due now and returns how
// many were queued.
func (s *Service) DispatchDue() int {
	due := s.Reports.ClaimDueSchedules(s.Now())
	for _, sched := range due {
		sched := sched
		s.Enqueue(JobScheduledReport, func(ctx context.Context) (any, error) {
			return s.Deliver(ctx, sched)
		})
	}
	return len(due)
}

type Delivery struct {
	ScheduleID string   `json:"scheduleId"`
	ReportID   string   `json:"reportId"`
	Recipients []string `json:"recipients"`
	Failed     []string `json:"failed,omitempty"`
}

// Deliver renders the schedule's report for the current month and mails it
// to every recipient. A failed recipient does not stop the others.
func (s *Service) Deliver(ctx context.Context, sched reports.Schedule) (Delivery, error) {
	now := s.Now()
	rep, err := s.Reports.GenerateReport(reports.GenerateInput{
		ReportType: sched.ReportType,
		Month:      fmt.Sprint(int(now.Month())),
		Year:       fmt.Sprint(now.Year()),
		Format:     reports.FormatPDF,
	})
	if err != nil {
		return Delivery{ScheduleID: sched.ID}, fmt.Errorf("generate %s report: %w", sched.ReportType, err)
	}
	file, err := s.Reports.ReportFile(rep.ID)
	if err != nil {
		return Delivery{ScheduleID: sched.ID, ReportID: rep.ID}, fmt.Errorf("load report file: %w", err)
	}

	out := Delivery{ScheduleID: sched.ID, ReportID: rep.ID}
	for _, to := range reports.Recipients(sched.Recipients) {
		err := s.Mailer.Send(ctx, email.Message{
			From:    s.From,
			To:      to,
			Subject: fmt.Sprintf("Scheduled %s report", sched.ReportType),
			Body:    fmt.Sprintf("Your %s %s report is attached.\n", sched.Frequency, sched.ReportType),
			Attachments: []email.Attachment{
				{Filename: file.Name, ContentType: file.ContentType, Data: file.Data},
			},
		})
		if err != nil {
			s.Logger.Warn("scheduled report email failed", "scheduleId", sched.ID, "to", to, "err", err)
			out.Failed = append(out.Failed, to)
			continue
		}
		out.Recipients = append(out.Recipients, to)
	}
	if len(out.Recipients) == 0 && len(out.Failed) > 0 {
		return out, fmt.Errorf("schedule %s: no recipient reached", sched.ID)
	}
	return out, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Logger.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if s.Runs != nil {
		id, err := s.Runs.StartRun(ctx, j.Type)
		if err != nil {
			s.Logger.Warn("job run insert failed", "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	if runID != "" {
		detailsJSON, marshalErr := json.Marshal(details)
		if marshalErr != nil {
			s.Logger.Warn("job details marshal failed", "err", marshalErr)
			detailsJSON = []byte("{}")
		}
		if updErr := s.Runs.FinishRun(ctx, runID, status, detailsJSON); updErr != nil {
			s.Logger.Warn("job run update failed", "err", updErr)
		}
	}
	s.Logger.Info("job run", "jobType", j.Type, "status", status)
	return details, err
}

func (s *Service) scheduleReports(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.DispatchDue(); n > 0 {
				s.Logger.Debug("scheduled reports queued", "count", n)
			}
		}
	}
}
