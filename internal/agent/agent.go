// Package agent runs the polling loop that turns pending orders into
// printed labels and operator notifications.
//
// Each tick prunes expired dedup records, drains the deferral queue when the
// quiet-hours gate is open, then fetches and classifies new work. A tick that
// has started always runs to completion; shutdown takes effect between ticks.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"labelspool/internal/config"
	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/notify"
	"labelspool/internal/orders"
	"labelspool/internal/quiet"
	"labelspool/internal/store"
)

// Printer submits a resolved label payload to the physical print queue.
type Printer interface {
	Print(payload []byte, ext string) error
}

// ErrNoOrderObserved is returned by TriggerTestNotify before the agent has
// seen any order.
var ErrNoOrderObserved = errors.New("no order observed yet")

// Agent owns the periodic scheduling loop and the shared snapshot read by
// the status surfaces.
type Agent struct {
	cfg      *config.Config
	store    *store.Store
	source   orders.Source
	printer  Printer
	notifier notify.Service
	logger   *slog.Logger
	window   quiet.Window

	// now is injectable so tests can steer the quiet-hours gate.
	now func() time.Time

	snapMu    sync.RWMutex
	lastOrder *label.Order

	stateMu  sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastTick time.Time
	lastErr  error
	ticks    uint64
}

// Status reports agent runtime information for the status surfaces.
type Status struct {
	Running       bool
	Blocked       bool
	LastTickAt    time.Time
	TicksComplete uint64
	LastError     string
}

// New constructs an agent with initialized dependencies.
func New(cfg *config.Config, st *store.Store, source orders.Source, printer Printer, notifier notify.Service, logger *slog.Logger) *Agent {
	return &Agent{
		cfg:      cfg,
		store:    st,
		source:   source,
		printer:  printer,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "agent"),
		window: quiet.Window{
			Start: cfg.Agent.QuietHoursStart,
			End:   cfg.Agent.QuietHoursEnd,
		},
		now: time.Now,
	}
}

// Start launches the polling loop.
func (a *Agent) Start(ctx context.Context) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	if a.running {
		return errors.New("agent already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running = true
	a.wg.Add(1)
	go a.run(runCtx)

	a.logger.Info("agent started",
		logging.Duration("poll_interval", a.cfg.PollInterval()),
		logging.Int("quiet_hours_start", a.window.Start),
		logging.Int("quiet_hours_end", a.window.End),
	)
	return nil
}

// Stop halts the polling loop, letting any in-flight tick finish first.
func (a *Agent) Stop() {
	a.stateMu.Lock()
	if !a.running {
		a.stateMu.Unlock()
		return
	}
	cancel := a.cancel
	a.running = false
	a.cancel = nil
	a.stateMu.Unlock()

	cancel()
	a.wg.Wait()
	a.logger.Info("agent stopped")
}

func (a *Agent) run(ctx context.Context) {
	defer a.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// Ticks never observe cancellation; a started tick completes.
		err := a.Tick(context.WithoutCancel(ctx))

		a.stateMu.Lock()
		a.lastTick = a.now()
		a.lastErr = err
		a.ticks++
		a.stateMu.Unlock()

		timer.Reset(a.cfg.PollInterval())
	}
}

// Status returns the current agent status.
func (a *Agent) Status() Status {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()

	status := Status{
		Running:       a.running,
		Blocked:       a.window.Blocked(a.now().Hour()),
		LastTickAt:    a.lastTick,
		TicksComplete: a.ticks,
	}
	if a.lastErr != nil {
		status.LastError = a.lastErr.Error()
	}
	return status
}
