package daemon

import (
	"context"
	"testing"
	"time"

	"labelspool/internal/agent"
	"labelspool/internal/config"
	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/store"
	"labelspool/internal/testsupport"
)

type stubSource struct {
	orders []label.Order
}

func (s *stubSource) ListPendingOrders(context.Context, int) ([]label.Order, error) {
	return s.orders, nil
}

func (s *stubSource) ListPackages(_ context.Context, orderID string) ([]label.Package, error) {
	for _, order := range s.orders {
		if order.ID == orderID {
			return order.Packages, nil
		}
	}
	return nil, nil
}

func (s *stubSource) FetchLabel(context.Context, string, string) ([]byte, string, error) {
	return []byte("label"), "pdf", nil
}

type stubPrinter struct{}

func (stubPrinter) Print([]byte, string) error { return nil }

type stubNotifier struct {
	sent int
}

func (s *stubNotifier) OrderReceived(context.Context, label.Order) error {
	s.sent++
	return nil
}

func newTestDaemon(t *testing.T, source *stubSource) (*Daemon, *config.Config, *store.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ag := agent.New(cfg, st, source, stubPrinter{}, &stubNotifier{}, logging.NewNop())

	d, err := New(cfg, st, ag, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	return d, cfg, st
}

func TestDaemonStartStop(t *testing.T) {
	d, _, _ := newTestDaemon(t, &stubSource{})

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(d.Stop)

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second start must fail while running")
	}
	if addr := d.APIAddr(); addr == "" {
		t.Fatal("api server not bound")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("status reports not running")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("status reports running after stop")
	}
}

func TestDaemonSingleInstanceLock(t *testing.T) {
	source := &stubSource{}
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ag := agent.New(cfg, st, source, stubPrinter{}, &stubNotifier{}, logging.NewNop())

	first, err := New(cfg, st, ag, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(first.Stop)

	secondAgent := agent.New(cfg, st, source, stubPrinter{}, &stubNotifier{}, logging.NewNop())
	second, err := New(cfg, st, secondAgent, logging.NewNop())
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second daemon must fail to acquire the lock")
	}
}

func TestDaemonHistoryAndQueue(t *testing.T) {
	d, _, st := newTestDaemon(t, &stubSource{})

	ctx := context.Background()
	if err := st.MarkProcessed(ctx, "1001", time.Now().UTC()); err != nil {
		t.Fatalf("mark processed: %v", err)
	}
	if _, err := st.Enqueue(ctx, store.DeferredLabel{
		OrderID: "1002",
		Payload: []byte("label"),
		Ext:     "pdf",
		Context: label.Order{ID: "1002", CustomerName: "Anna Nowak"},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	history, err := d.History(ctx, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].OrderID != "1001" {
		t.Fatalf("history = %+v, want order 1001", history)
	}

	queued, err := d.Queue(ctx)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if len(queued) != 1 || queued[0].OrderID != "1002" {
		t.Fatalf("queue = %+v, want order 1002", queued)
	}
}
