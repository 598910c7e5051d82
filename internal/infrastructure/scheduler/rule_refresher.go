package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReloadFunc rebuilds the rule snapshot from storage
type ReloadFunc func(ctx context.Context) error

// RuleRefresherConfig holds configuration for the rule refresher
type RuleRefresherConfig struct {
	// Spec is a robfig/cron schedule, e.g. "@every 5m" or "0 */10 * * * *"
	Spec string
	// Timeout bounds a single reload
	Timeout time.Duration
}

// DefaultRuleRefresherConfig returns default refresher configuration
func DefaultRuleRefresherConfig() RuleRefresherConfig {
	return RuleRefresherConfig{
		Spec:    "@every 5m",
		Timeout: 30 * time.Second,
	}
}

// RuleRefresher periodically reloads compliance rules so instances that
// missed a change notification converge.
type RuleRefresher struct {
	config RuleRefresherConfig
	reload ReloadFunc
	logger *zap.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	baseCtx   context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	isRunning bool
	runs      int
	failures  int
}

// NewRuleRefresher creates a refresher; the schedule is parsed on Start
func NewRuleRefresher(config RuleRefresherConfig, reload ReloadFunc, logger *zap.Logger) *RuleRefresher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRuleRefresherConfig().Timeout
	}
	if config.Spec == "" {
		config.Spec = DefaultRuleRefresherConfig().Spec
	}
	return &RuleRefresher{
		config: config,
		reload: reload,
		logger: logger,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
	}
}

// Start schedules the refresh job
func (r *RuleRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return nil
	}
	if r.reload == nil {
		return errors.New("rule refresher needs a reload function")
	}

	r.baseCtx, r.cancel = context.WithCancel(ctx)
	id, err := r.cron.AddFunc(r.config.Spec, r.RunOnce)
	if err != nil {
		r.cancel()
		return fmt.Errorf("invalid rule refresh schedule %q: %w", r.config.Spec, err)
	}
	r.entryID = id
	r.cron.Start()
	r.isRunning = true

	r.logger.Info("Rule refresher started", zap.String("spec", r.config.Spec))
	return nil
}

// Stop stops scheduling and waits for a running reload, bounded by ctx
func (r *RuleRefresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	r.cron.Remove(r.entryID)
	cancel := r.cancel
	r.mu.Unlock()

	stopped := r.cron.Stop()
	cancel()

	select {
	case <-stopped.Done():
		r.logger.Info("Rule refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one reload. Failures are logged, never fatal; the next
// tick retries.
func (r *RuleRefresher) RunOnce() {
	r.mu.Lock()
	base := r.baseCtx
	r.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, r.config.Timeout)
	defer cancel()

	start := time.Now()
	err := r.reload(ctx)

	r.mu.Lock()
	r.runs++
	if err != nil {
		r.failures++
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("Scheduled rule reload failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	r.logger.Debug("Scheduled rule reload completed", zap.Duration("duration", time.Since(start)))
}

// Stats returns the number of runs and failed runs so far
func (r *RuleRefresher) Stats() (runs, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs, r.failures
}
