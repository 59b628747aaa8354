// Package background runs the periodic maintenance jobs of the service on a cron schedule.
// Jobs never overlap with themselves, panics are recovered, and Stop waits for running jobs.
package background

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/user/cookbook-go/fridge"
	"github.com/user/cookbook-go/logging"
)

const (
	// SessionRetention is how long expired or revoked sessions are kept before deletion.
	SessionRetention = 7 * 24 * time.Hour
	// ExpiringWithinDays is the look-ahead of the daily fridge report.
	ExpiringWithinDays = fridge.DefaultExpiringDays
	// LimiterMaxIdle is how long an idle client keeps its rate limiter.
	LimiterMaxIdle = 10 * time.Minute

	jobTimeout = 5 * time.Minute
)

// Default schedules, in the standard five-field cron format.
const (
	PurgeSessionsSpec  = "0 * * * *"
	ExpiringReportSpec = "0 6 * * *"
	LimiterCleanupSpec = "*/5 * * * *"
)

// SessionPurger deletes sessions that ended more than retention ago.
type SessionPurger interface {
	PurgeSessions(ctx context.Context, retention time.Duration) (int64, error)
}

// ExpiringCounter counts fridge items expiring within the given number of days, per user.
type ExpiringCounter func(ctx context.Context, within int) ([]fridge.UserExpiring, error)

// LimiterCleaner forgets idle rate limiters.
type LimiterCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

// Jobs are the dependencies of the scheduled jobs. A nil field disables its job.
type Jobs struct {
	Sessions SessionPurger
	Expiring ExpiringCounter
	Limiter  LimiterCleaner
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	logger *logging.Logger
	runs   *prometheus.CounterVec

	ctx    context.Context
	cancel context.CancelFunc
}

// cronLogger adapts the logger to cron.Logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewScheduler registers the jobs whose dependencies are set. Times are evaluated in UTC.
func NewScheduler(logger *logging.Logger, jobs Jobs) (*Scheduler, error) {
	logger = logger.Named("background")
	cl := cronLogger{sugar: logger.Zap().Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:   jobs,
		logger: logger,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cookbook", Subsystem: "background", Name: "job_runs_total",
			Help: "Background job runs by job and outcome.",
		}, []string{"job", "status"}),
		ctx:    ctx,
		cancel: cancel,
	}

	specs := []struct {
		enabled bool
		spec    string
		name    string
		run     func(context.Context) error
	}{
		{jobs.Sessions != nil, PurgeSessionsSpec, "purge_sessions", s.PurgeSessions},
		{jobs.Expiring != nil, ExpiringReportSpec, "expiring_report", s.ReportExpiring},
		{jobs.Limiter != nil, LimiterCleanupSpec, "limiter_cleanup", s.CleanupLimiters},
	}
	for _, j := range specs {
		if !j.enabled {
			continue
		}
		name, run := j.name, j.run
		if _, err := s.cron.AddFunc(j.spec, func() { s.runJob(name, run) }); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule %s: %w", name, err)
		}
	}
	return s, nil
}

// Collectors returns the job counters for registration.
func (s *Scheduler) Collectors() []prometheus.Collector {
	return []prometheus.Collector{s.runs}
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info(s.ctx, "background scheduler started", zap.Int("jobs", s.Entries()))
}

// Stop cancels running jobs and waits for them, or for ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.logger.Info(ctx, "background scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()
	start := time.Now()
	if err := run(ctx); err != nil {
		s.runs.WithLabelValues(name, "error").Inc()
		s.logger.Error(ctx, "background job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.runs.WithLabelValues(name, "ok").Inc()
	s.logger.Debug(ctx, "background job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))
}

// PurgeSessions deletes sessions that expired or were revoked more than SessionRetention ago.
func (s *Scheduler) PurgeSessions(ctx context.Context) error {
	n, err := s.jobs.Sessions.PurgeSessions(ctx, SessionRetention)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info(ctx, "purged old sessions", zap.Int64("count", n))
	}
	return nil
}

// ReportExpiring logs, per user, how many fridge items expire within ExpiringWithinDays.
func (s *Scheduler) ReportExpiring(ctx context.Context) error {
	counts, err := s.jobs.Expiring(ctx, ExpiringWithinDays)
	if err != nil {
		return err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
		s.logger.Info(ctx, "fridge items expiring soon",
			zap.String("user_id", c.UserID),
			zap.Int("count", c.Count),
			zap.Int("within_days", ExpiringWithinDays))
	}
	s.logger.Info(ctx, "fridge expiry sweep finished", zap.Int("users", len(counts)), zap.Int("items", total))
	return nil
}

// CleanupLimiters drops rate limiters of clients idle for LimiterMaxIdle.
func (s *Scheduler) CleanupLimiters(context.Context) error {
	s.jobs.Limiter.Cleanup(LimiterMaxIdle)
	return nil
}
