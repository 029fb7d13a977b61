package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionCleaner deletes expired admin sessions.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionSweeper removes expired admin sessions on a cron schedule.
type SessionSweeper struct {
	cleaner SessionCleaner
	log     *zap.Logger
	cron    *cron.Cron
	timeout time.Duration
}

func NewSessionSweeper(cleaner SessionCleaner, schedule string, log *zap.Logger) (*SessionSweeper, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	s := &SessionSweeper{
		cleaner: cleaner,
		log:     log,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLog)), cron.WithLogger(cronLog)),
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce performs a single sweep.
func (s *SessionSweeper) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.log.Error("session sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}

func (s *SessionSweeper) Start() { s.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish or ctx to end.
func (s *SessionSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
