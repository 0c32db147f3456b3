package scheduler

import (
	"context"
	"fmt"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/service"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the background jobs: payment reconciliation and the
// catalog warm-up. A job still running when its next tick fires is skipped.
type Scheduler struct {
	cron            *cron.Cron
	checkoutService service.CheckoutService
	catalogService  service.CatalogService
	reconcileAfter  time.Duration
	log             logger.Logger
}

// cronLogger adapts our logger to cron's key/value logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorf("cron: %s %v: %v", msg, keysAndValues, err)
}

func New(cfg config.Checkout, checkoutService service.CheckoutService, catalogService service.CatalogService, log logger.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		checkoutService: checkoutService,
		catalogService:  catalogService,
		reconcileAfter:  cfg.ReconcileAfter,
		log:             log,
	}

	if _, err := s.cron.AddFunc(cfg.ReconcileSpec, s.reconcile); err != nil {
		return nil, fmt.Errorf("schedule reconcile %q: %w", cfg.ReconcileSpec, err)
	}
	if _, err := s.cron.AddFunc(cfg.WarmupSpec, s.warmup); err != nil {
		return nil, fmt.Errorf("schedule warm-up %q: %w", cfg.WarmupSpec, err)
	}

	log.Infof("scheduler initialized: reconcile %q (after %v), warm-up %q", cfg.ReconcileSpec, cfg.ReconcileAfter, cfg.WarmupSpec)
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warnf("scheduler stop: %v", ctx.Err())
	}
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.checkoutService.Reconcile(ctx, s.reconcileAfter)
	if err != nil {
		s.log.Errorf("reconcile open checkouts: %v", err)
	}
	if n > 0 {
		s.log.Infof("reconciled %d checkouts", n)
	}
}

func (s *Scheduler) warmup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.catalogService.Warmup(ctx); err != nil {
		s.log.Errorf("catalog warm-up: %v", err)
	}
}
