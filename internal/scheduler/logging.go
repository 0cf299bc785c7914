package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type jobRun struct {
	job            string
	runID          string
	startedAt      time.Time
	processedCount int
	errorCount     int
}

func (r *jobRun) AddProcessed(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.processedCount += count
}

func (r *jobRun) IncError() {
	if r == nil {
		return
	}
	r.errorCount++
}

type jobRunKey struct{}

func withJobRun(ctx context.Context, run *jobRun) context.Context {
	return context.WithValue(ctx, jobRunKey{}, run)
}

func jobRunFromContext(ctx context.Context) *jobRun {
	if ctx == nil {
		return nil
	}
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return run
	}
	return nil
}

func (s *Scheduler) logJobFinish(run *jobRun, err error) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.runID),
		zap.Int("processed", run.processedCount),
		zap.Int("errors", run.errorCount),
		zap.Duration("duration", s.clock.Now().Sub(run.startedAt)),
	}
	if err != nil {
		s.log.Warn("scheduler job finished with errors", append(fields, zap.Error(err))...)
		return
	}
	s.log.Info("scheduler job finished", fields...)
}
