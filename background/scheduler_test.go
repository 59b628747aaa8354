package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/user/cookbook-go/fridge"
	"github.com/user/cookbook-go/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubPurger struct {
	retention time.Duration
	n         int64
	err       error
}

func (p *stubPurger) PurgeSessions(_ context.Context, retention time.Duration) (int64, error) {
	p.retention = retention
	return p.n, p.err
}

type stubLimiter struct{ maxIdle time.Duration }

func (l *stubLimiter) Cleanup(maxIdle time.Duration) int {
	l.maxIdle = maxIdle
	return 0
}

func newObserved(t *testing.T, jobs Jobs) (*Scheduler, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	s, err := NewScheduler(logging.FromZap(zap.New(core)), jobs)
	require.NoError(t, err)
	return s, logs
}

func TestNewSchedulerRegistersEnabledJobs(t *testing.T) {
	s, _ := newObserved(t, Jobs{})
	assert.Equal(t, 0, s.Entries())

	s, _ = newObserved(t, Jobs{Sessions: &stubPurger{}, Limiter: &stubLimiter{}})
	assert.Equal(t, 2, s.Entries())
}

func TestPurgeSessions(t *testing.T) {
	p := &stubPurger{n: 3}
	s, logs := newObserved(t, Jobs{Sessions: p})

	require.NoError(t, s.PurgeSessions(context.Background()))
	assert.Equal(t, 7*24*time.Hour, p.retention)
	entries := logs.FilterMessage("purged old sessions").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["count"])
}

func TestReportExpiring(t *testing.T) {
	var within int
	counter := func(_ context.Context, w int) ([]fridge.UserExpiring, error) {
		within = w
		return []fridge.UserExpiring{{UserID: "u1", Count: 2}, {UserID: "u2", Count: 1}}, nil
	}
	s, logs := newObserved(t, Jobs{Expiring: counter})

	require.NoError(t, s.ReportExpiring(context.Background()))
	assert.Equal(t, 3, within)
	assert.Equal(t, 2, logs.FilterMessage("fridge items expiring soon").Len())
	summary := logs.FilterMessage("fridge expiry sweep finished").All()
	require.Len(t, summary, 1)
	assert.Equal(t, int64(3), summary[0].ContextMap()["items"])
}

func TestRunJobCountsOutcomes(t *testing.T) {
	p := &stubPurger{err: errors.New("db down")}
	s, logs := newObserved(t, Jobs{Sessions: p, Limiter: &stubLimiter{}})

	s.runJob("purge_sessions", s.PurgeSessions)
	s.runJob("limiter_cleanup", s.CleanupLimiters)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("purge_sessions", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.runs.WithLabelValues("limiter_cleanup", "ok")))
	assert.Equal(t, 1, logs.FilterMessage("background job failed").Len())
}

func TestStartStop(t *testing.T) {
	s, _ := newObserved(t, Jobs{Limiter: &stubLimiter{}})
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
