package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/hackathon-registration-backend/internal/config"
	"github.com/kyvra-tech/hackathon-registration-backend/internal/services"
	"github.com/kyvra-tech/hackathon-registration-backend/pkg/metrics"
)

// Job names, as reported in metrics and status
const (
	JobDigest      = "Registration Digest"
	JobHeaderCheck = "Sheet Header Check"
)

// DigestSource summarises registrations since a point in time
type DigestSource interface {
	Digest(ctx context.Context, since time.Time) (*services.Digest, error)
}

// HeaderEnsurer writes the sheet header row when it is missing
type HeaderEnsurer interface {
	EnsureHeaders(ctx context.Context) (bool, error)
}

type CronScheduler struct {
	cron           *cron.Cron
	digest         DigestSource
	notifier       services.Notifier
	headers        HeaderEnsurer
	cfg            config.SchedulerConfig
	eventName      string
	metrics        *metrics.Metrics
	logger         *logrus.Logger
	jobTimeout     time.Duration
	activeJobs     sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	mu         sync.Mutex
	stopped    bool
	lastDigest time.Time
	jobIDs     map[string]cron.EntryID
	now        func() time.Time
}

func NewCronScheduler(
	digest DigestSource,
	notifier services.Notifier,
	headers HeaderEnsurer,
	cfg config.SchedulerConfig,
	eventName string,
	metrics *metrics.Metrics,
	logger *logrus.Logger,
) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &CronScheduler{
		cron:           cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		digest:         digest,
		notifier:       notifier,
		headers:        headers,
		cfg:            cfg,
		eventName:      eventName,
		metrics:        metrics,
		logger:         logger,
		jobTimeout:     timeout,
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
		jobIDs:         map[string]cron.EntryID{},
		now:            time.Now,
	}
}

// Start registers the jobs whose schedule is set and starts the cron loop.
// An invalid schedule is returned as an error and nothing is started.
func (s *CronScheduler) Start() error {
	jobs := []struct {
		name     string
		schedule string
		run      func(context.Context) error
	}{
		{JobDigest, s.cfg.DigestSchedule, s.SendDigest},
		{JobHeaderCheck, s.cfg.HeaderCheckSchedule, s.CheckHeaders},
	}

	for _, job := range jobs {
		if job.schedule == "" {
			s.logger.WithField("job", job.name).Info("Job disabled, no schedule configured")
			continue
		}
		id, err := s.cron.AddFunc(job.schedule, s.createJobWrapper(job.name, job.run))
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.schedule, err)
		}
		s.jobIDs[job.name] = id
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Cron scheduler started successfully")
	return nil
}

// SendDigest posts the registration summary since the previous digest
// (or the last 24 hours on the first run) to the organisers.
func (s *CronScheduler) SendDigest(ctx context.Context) error {
	now := s.now()
	s.mu.Lock()
	since := s.lastDigest
	s.mu.Unlock()
	if since.IsZero() {
		since = now.Add(-24 * time.Hour)
	}

	d, err := s.digest.Digest(ctx, since)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	if err := s.notifier.Notify(ctx, services.FormatDigest(d, s.eventName)); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}

	s.mu.Lock()
	s.lastDigest = now
	s.mu.Unlock()
	return nil
}

// CheckHeaders restores the header row if someone cleared it
func (s *CronScheduler) CheckHeaders(ctx context.Context) error {
	written, err := s.headers.EnsureHeaders(ctx)
	if err != nil {
		return err
	}
	if written {
		s.logger.Warn("Sheet header row was missing and has been rewritten")
	}
	return nil
}

// createJobWrapper wraps a job with context, timeout, logging, and panic recovery
func (s *CronScheduler) createJobWrapper(jobName string, jobFunc func(context.Context) error) func() {
	return func() {
		if !s.beginJob() {
			s.logger.WithField("job", jobName).Debug("Scheduler stopped, skipping job")
			return
		}
		defer s.activeJobs.Done()

		ctx, cancel := context.WithTimeout(s.shutdownCtx, s.jobTimeout)
		defer cancel()

		startTime := time.Now()

		s.logger.WithFields(logrus.Fields{
			"job":       jobName,
			"timestamp": startTime.UTC(),
		}).Info("Starting scheduled job")

		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
				s.logger.WithFields(logrus.Fields{
					"job":   jobName,
					"panic": r,
				}).Error("Job panicked")
			}
			s.metrics.RecordSchedulerJob(jobName, err == nil, time.Since(startTime))
		}()

		err = jobFunc(ctx)

		duration := time.Since(startTime)

		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"job":      jobName,
				"duration": duration.String(),
				"error":    err.Error(),
			}).Error("Job failed")
		} else {
			s.logger.WithFields(logrus.Fields{
				"job":      jobName,
				"duration": duration.String(),
			}).Info("Job completed successfully")
		}

		if ctx.Err() == context.DeadlineExceeded {
			s.logger.WithFields(logrus.Fields{
				"job":     jobName,
				"timeout": s.jobTimeout.String(),
			}).Warn("Job timed out")
		}
	}
}

// beginJob registers a run with activeJobs unless Stop has been called. Add
// and the stopped flag share s.mu so no Add can follow Stop's Wait.
func (s *CronScheduler) beginJob() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.activeJobs.Add(1)
	return true
}

// Stop cancels running jobs and waits up to a minute for them to return
func (s *CronScheduler) Stop() {
	s.logger.Info("Stopping cron scheduler...")

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	// Stop accepting new jobs
	s.cron.Stop()

	// Cancel all running jobs
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.activeJobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All jobs completed, cron scheduler stopped")
	case <-time.After(1 * time.Minute):
		s.logger.Warn("Timeout waiting for jobs to complete, forcing shutdown")
	}
}

// GetSchedulerStatus returns the current status of the scheduler
func (s *CronScheduler) GetSchedulerStatus() map[string]interface{} {
	entries := s.cron.Entries()

	names := make(map[cron.EntryID]string, len(s.jobIDs))
	for name, id := range s.jobIDs {
		names[id] = name
	}

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"name":     names[entry.ID],
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	s.mu.Lock()
	lastDigest := s.lastDigest
	s.mu.Unlock()

	return map[string]interface{}{
		"running":     len(entries) > 0,
		"job_count":   len(entries),
		"jobs":        jobs,
		"last_digest": lastDigest,
	}
}
