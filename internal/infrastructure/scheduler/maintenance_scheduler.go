package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when a manual trigger hits a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// jobTimeout is the maximum time a single maintenance job can run
const jobTimeout = 10 * time.Minute

// ActivityPurger removes audit entries past the retention horizon
type ActivityPurger interface {
	CleanupOldActivities(ctx context.Context) (int64, error)
}

// CartSweeper evicts expired carts from an in-memory store
type CartSweeper interface {
	Sweep() int
}

// Config holds configuration for the maintenance scheduler
type Config struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// ActivityCronSchedule is the cron expression for the nightly activity purge
	ActivityCronSchedule string
	// CartSweepInterval is how often expired carts are evicted
	CartSweepInterval time.Duration
}

// DefaultConfig returns default scheduler configuration
// Defaults to purging at 3:00 AM daily and sweeping carts hourly
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		ActivityCronSchedule: "0 3 * * *",
		CartSweepInterval:    time.Hour,
	}
}

// MaintenanceScheduler runs the recurring background jobs: the activity
// retention purge and, when carts live in memory, the expired-cart sweep.
type MaintenanceScheduler struct {
	config  Config
	purger  ActivityPurger
	sweeper CartSweeper
	logger  *zap.Logger
	cron    *cron.Cron

	mu        sync.Mutex
	isRunning bool
	lastRunAt *time.Time
}

// NewMaintenanceScheduler creates a new maintenance scheduler.
// sweeper may be nil when carts are stored in Redis and expire on their own.
func NewMaintenanceScheduler(config Config, purger ActivityPurger, sweeper CartSweeper, logger *zap.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		config:  config,
		purger:  purger,
		sweeper: sweeper,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start registers the jobs and starts the cron loop
func (s *MaintenanceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("Maintenance scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.config.ActivityCronSchedule, s.runActivityPurge); err != nil {
		return err
	}

	if s.sweeper != nil && s.config.CartSweepInterval > 0 {
		if _, err := s.cron.AddFunc("@every "+s.config.CartSweepInterval.String(), s.runCartSweep); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("Maintenance scheduler started",
		zap.String("activity_schedule", s.config.ActivityCronSchedule),
		zap.Duration("cart_sweep_interval", s.config.CartSweepInterval),
		zap.Bool("cart_sweep_enabled", s.sweeper != nil),
	)
	return nil
}

// Stop stops the cron loop and waits for in-flight jobs to finish
func (s *MaintenanceScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("Maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerActivityPurge triggers a manual run of the activity purge.
// Uses a background context so the job outlives the HTTP request that asked for it.
func (s *MaintenanceScheduler) TriggerActivityPurge() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runActivityPurge()
	return nil
}

// LastRunAt returns when the last activity purge ran
func (s *MaintenanceScheduler) LastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}

func (s *MaintenanceScheduler) runActivityPurge() {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.purger.CleanupOldActivities(ctx)
	if err != nil {
		s.logger.Error("Activity purge failed", zap.Error(err))
		return
	}
	s.logger.Info("Activity purge completed", zap.Int64("removed", removed))
}

func (s *MaintenanceScheduler) runCartSweep() {
	evicted := s.sweeper.Sweep()
	if evicted > 0 {
		s.logger.Debug("Cart sweep evicted expired carts", zap.Int("evicted", evicted))
	}
}
