package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prcontacts-backend/dal"
	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/robfig/cron"
)

// TokenCleaner drops revoked tokens whose expiry has passed
type TokenCleaner interface {
	CleanupExpiredTokens() int
}

// Status is a snapshot of the background worker, reported by /health
type Status struct {
	Running        bool       `json:"running"`
	Schedule       string     `json:"schedule"`
	TablesCreated  []string   `json:"tablesCreated,omitempty"`
	LastCleanup    *time.Time `json:"lastCleanup,omitempty"` // nil until the first cleanup run
	TokensCleaned  int        `json:"tokensCleaned"`
	LastSetupError string     `json:"lastSetupError,omitempty"`
}

// Worker runs the periodic maintenance jobs of the API process
type Worker struct {
	config *models.Config
	logger logger.Logger
	cron   *cron.Cron
	tokens TokenCleaner
	setup  *InfrastructureSetup
	mu     sync.Mutex
	status Status
}

// NewWorker creates the worker. db may be nil when the store does not need table bootstrap.
func NewWorker(cfg *models.Config, log logger.Logger, tokens TokenCleaner, db dal.DatabaseClientInterface) (*Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if cfg.TokenCleanupSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
		if _, err := parser.Parse(cfg.TokenCleanupSchedule); err != nil {
			return nil, fmt.Errorf("invalid cron schedule '%s': %w", cfg.TokenCleanupSchedule, err)
		}
	}

	w := &Worker{
		config: cfg,
		logger: log,
		cron:   cron.New(),
		tokens: tokens,
		status: Status{Schedule: cfg.TokenCleanupSchedule},
	}
	if db != nil && cfg.AutoCreateTables {
		w.setup = NewInfrastructureSetup(db, cfg, log)
	}
	return w, nil
}

// Bootstrap creates missing tables. It is a no-op without a DynamoDB client.
func (w *Worker) Bootstrap(ctx context.Context) error {
	if w.setup == nil {
		return nil
	}

	created, err := w.setup.Execute(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.TablesCreated = append(w.status.TablesCreated, created...)
	if err != nil {
		w.status.LastSetupError = err.Error()
		return fmt.Errorf("infrastructure setup failed: %w", err)
	}
	w.status.LastSetupError = ""
	return nil
}

// Start schedules the token cleanup job
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.status.Running {
		return fmt.Errorf("worker is already running")
	}

	if w.tokens != nil && w.config.TokenCleanupSchedule != "" {
		if err := w.cron.AddFunc(w.config.TokenCleanupSchedule, w.RunCleanup); err != nil {
			return fmt.Errorf("failed to add cron job: %w", err)
		}
	}

	w.cron.Start()
	w.status.Running = true
	w.logger.Infof("Worker started with cleanup schedule: %s", w.config.TokenCleanupSchedule)
	return nil
}

// RunCleanup drops expired entries from the token blacklist
func (w *Worker) RunCleanup() {
	if w.tokens == nil {
		return
	}
	removed := w.tokens.CleanupExpiredTokens()
	now := time.Now().UTC()

	w.mu.Lock()
	w.status.LastCleanup = &now
	w.status.TokensCleaned += removed
	w.mu.Unlock()

	if removed > 0 {
		w.logger.Infof("Removed %d expired revoked tokens", removed)
	}
}

// Stop stops the scheduler
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.status.Running {
		return
	}
	w.cron.Stop()
	w.status.Running = false
	w.logger.Info("Worker stopped")
}

// Status returns a copy of the current worker state
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.status
	s.TablesCreated = append([]string(nil), w.status.TablesCreated...)
	return s
}
