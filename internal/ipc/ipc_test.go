package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"labelspool/internal/agent"
	"labelspool/internal/daemon"
	"labelspool/internal/ipc"
	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/store"
	"labelspool/internal/testsupport"
)

type stubSource struct{}

func (stubSource) ListPendingOrders(context.Context, int) ([]label.Order, error) {
	return nil, nil
}

func (stubSource) ListPackages(context.Context, string) ([]label.Package, error) {
	return nil, nil
}

func (stubSource) FetchLabel(context.Context, string, string) ([]byte, string, error) {
	return nil, "", nil
}

type stubPrinter struct{}

func (stubPrinter) Print([]byte, string) error { return nil }

type stubNotifier struct{}

func (stubNotifier) OrderReceived(context.Context, label.Order) error { return nil }

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	ag := agent.New(cfg, st, stubSource{}, stubPrinter{}, stubNotifier{}, logger)
	d, err := daemon.New(cfg, st, ag, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(t.TempDir(), "labelspool.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.Running {
		t.Fatal("daemon not started, expected Running=false")
	}
	if status.DatabasePath == "" || status.LockPath == "" {
		t.Fatalf("status missing paths: %+v", status)
	}

	seed := store.DeferredLabel{
		OrderID:   "1002",
		PackageID: "P1",
		Courier:   "dpd",
		Payload:   []byte("label"),
		Ext:       "pdf",
		Context:   label.Order{ID: "1002", CustomerName: "Anna Nowak", Platform: "allegro"},
	}
	if _, err := st.Enqueue(ctx, seed); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := st.MarkProcessed(ctx, "1001", time.Now().UTC()); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	history, err := client.History(10)
	if err != nil {
		t.Fatalf("History RPC failed: %v", err)
	}
	if len(history.Orders) != 1 || history.Orders[0].OrderID != "1001" {
		t.Fatalf("history = %+v, want order 1001", history.Orders)
	}

	queued, err := client.Queue()
	if err != nil {
		t.Fatalf("Queue RPC failed: %v", err)
	}
	if len(queued.Labels) != 1 || queued.Labels[0].OrderID != "1002" {
		t.Fatalf("queue = %+v, want order 1002", queued.Labels)
	}
	if queued.Labels[0].Customer != "Anna Nowak" {
		t.Fatalf("queue customer = %q", queued.Labels[0].Customer)
	}
	if queued.Labels[0].Courier != "dpd" {
		t.Fatalf("queue courier = %q", queued.Labels[0].Courier)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification RPC failed: %v", err)
	}
	if notifyResp.Sent {
		t.Fatal("no order observed, expected Sent=false")
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth RPC failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable {
		t.Fatalf("health = %+v, want existing readable database", health)
	}
	if health.ProcessedRecords != 1 || health.DeferredLabels != 1 {
		t.Fatalf("health counts = %d/%d, want 1/1", health.ProcessedRecords, health.DeferredLabels)
	}
}
