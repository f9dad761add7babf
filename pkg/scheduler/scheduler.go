// Package scheduler drives the recurring background scans. It is a plain
// ticker-per-job runner; the jobs themselves are closures over the domain
// services.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kedar94c/whatsapp-crm-backend/metrics"
)

type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(log *zap.Logger) *Scheduler {
	return &Scheduler{log: log}
}

func (s *Scheduler) Add(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start runs every job once immediately, then on its own ticker. Call Stop
// to shut the tickers down and wait for in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	s.tick(ctx, job)

	ticker := time.NewTicker(job.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, job)
		}
	}
}

// tick runs one job iteration. A panic is contained here so a broken scan
// cannot take the whole process down.
func (s *Scheduler) tick(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ScanRunsTotal.WithLabelValues(job.Name, "panic").Inc()
			s.log.Error("job panicked", zap.String("job", job.Name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	err := job.Run(ctx)
	metrics.ScanDuration.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ScanRunsTotal.WithLabelValues(job.Name, "error").Inc()
		s.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	metrics.ScanRunsTotal.WithLabelValues(job.Name, "ok").Inc()
}
