// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"cobramax-service/internal/config"
	"cobramax-service/internal/service/billing"
	"cobramax-service/internal/service/notification"

	"go.uber.org/zap"
)

// Scheduler runs the recurring jobs: the daily account cycle, the pending
// notification flush and the weekly purge. Each job runs on its own ticker
// goroutine; Stop cancels them and waits for in-flight runs.
type Scheduler struct {
	billing *billing.BillingService
	notify  *notification.NotificationService
	cfg     config.SchedulerConfig
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	billingSvc *billing.BillingService,
	notifySvc *notification.NotificationService,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		billing: billingSvc,
		notify:  notifySvc,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start launches the job loops. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.run(ctx, "account-cycle", s.cfg.CycleInterval, s.runCycle)
	s.run(ctx, "notification-flush", s.cfg.FlushInterval, s.runFlush)
	s.run(ctx, "notification-purge", s.cfg.PurgeInterval, s.runPurge)

	s.logger.Info("scheduler started",
		zap.Duration("cycle_interval", s.cfg.CycleInterval),
		zap.Duration("flush_interval", s.cfg.FlushInterval),
		zap.Duration("purge_interval", s.cfg.PurgeInterval),
	)
}

// Stop cancels every loop and blocks until running jobs finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	if interval <= 0 {
		s.logger.Warn("job disabled, non-positive interval", zap.String("job", name))
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				job(ctx)
				s.logger.Debug("job finished",
					zap.String("job", name),
					zap.Duration("took", time.Since(start)),
				)
			}
		}
	}()
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if _, err := s.billing.RunCycle(ctx); err != nil {
		s.logger.Error("account cycle failed", zap.Error(err))
	}
	if _, err := s.notify.SendPaymentReminders(ctx); err != nil {
		s.logger.Error("payment reminders failed", zap.Error(err))
	}
}

func (s *Scheduler) runFlush(ctx context.Context) {
	if _, err := s.notify.Flush(ctx); err != nil {
		s.logger.Error("notification flush failed", zap.Error(err))
	}
}

func (s *Scheduler) runPurge(ctx context.Context) {
	if _, err := s.notify.Purge(ctx, s.cfg.PurgeAge); err != nil {
		s.logger.Error("notification purge failed", zap.Error(err))
	}
}
