package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/activity"
)

// Actor is the actor recorded for scheduled snapshots.
const Actor = "cron"

// Snapshotter stores the day's dashboard summary.
type Snapshotter interface {
	Snapshot(ctx context.Context, actor string) (activity.Snapshot, error)
}

type Scheduler struct {
	cron    *cron.Cron
	spec    string
	snap    Snapshotter
	timeout time.Duration
	log     *zap.Logger
}

func NewScheduler(spec string, loc *time.Location, snap Snapshotter, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{log: log.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:    spec,
		snap:    snap,
		timeout: 2 * time.Minute,
		log:     log,
	}
}

// Start registers the snapshot job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runSnapshot); err != nil {
		return fmt.Errorf("schedule snapshot %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("cron scheduler started", zap.String("snapshot_spec", s.spec))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("cron scheduler stop timed out")
	}
}

func (s *Scheduler) runSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap, err := s.snap.Snapshot(ctx, Actor)
	if err != nil {
		s.log.Error("nightly snapshot failed", zap.Error(err))
		return
	}
	s.log.Info("nightly snapshot stored",
		zap.Time("day", snap.Day),
		zap.Int("active_pickups", snap.ActivePickups),
		zap.Int("pending_returns", snap.PendingReturns),
	)
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
