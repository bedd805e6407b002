package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"labelspool/internal/agent"
	"labelspool/internal/config"
	"labelspool/internal/logging"
	"labelspool/internal/store"
)

// Daemon coordinates the polling agent and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	agent  *agent.Agent

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Agent        agent.Status
	DatabasePath string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, ag *agent.Agent, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || ag == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, agent, and logger")
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		agent:    ag,
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and launches the agent and the status API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another labelspool daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.agent.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return fmt.Errorf("start agent: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.agent.Stop()
		_ = d.lock.Unlock()
		cancel()
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.agent.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Agent:        d.agent.Status(),
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
	}
}

// History returns the most recent processed-order records.
func (d *Daemon) History(ctx context.Context, limit int) ([]store.ProcessedRecord, error) {
	return d.agent.HistorySnapshot(ctx, limit)
}

// Queue returns the labels currently deferred by quiet hours.
func (d *Daemon) Queue(ctx context.Context) ([]store.DeferredLabel, error) {
	return d.agent.QueueSnapshot(ctx)
}

// TestNotification re-sends the notification for the last observed order.
// The error is agent.ErrNoOrderObserved when no order has been seen yet.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.agent.TriggerTestNotify(ctx)
}

// DatabaseHealth returns detailed state database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (store.DatabaseHealth, error) {
	if d.store == nil {
		return store.DatabaseHealth{}, errors.New("state store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// APIAddr reports the bound status API address, empty when disabled.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}
