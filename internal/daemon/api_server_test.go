package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"labelspool/internal/label"
	"labelspool/internal/logging"
	"labelspool/internal/store"
)

func TestAPIServerHandleQueue(t *testing.T) {
	d, _, st := newTestDaemon(t, &stubSource{})
	srv := &apiServer{daemon: d, logger: logging.NewNop()}

	if _, err := st.Enqueue(context.Background(), store.DeferredLabel{
		OrderID: "1001",
		Payload: []byte("label"),
		Ext:     "pdf",
		Context: label.Order{ID: "1001", CustomerName: "Jan Kowalski"},
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/queue", nil)
	w := httptest.NewRecorder()
	srv.handleQueue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp struct {
		Labels []queueEntry `json:"labels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(resp.Labels))
	}
	if resp.Labels[0].OrderID != "1001" || resp.Labels[0].Customer != "Jan Kowalski" {
		t.Fatalf("unexpected entry: %+v", resp.Labels[0])
	}
}

func TestAPIServerHandleTestWithoutOrder(t *testing.T) {
	d, _, _ := newTestDaemon(t, &stubSource{})
	srv := &apiServer{daemon: d, logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	srv.handleTest(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any order is observed, got %d", w.Code)
	}
}

func TestAPIServerHandleStatus(t *testing.T) {
	d, _, _ := newTestDaemon(t, &stubSource{})
	srv := &apiServer{daemon: d, logger: logging.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	var resp statusPayload
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Running {
		t.Fatal("daemon not started, status must report not running")
	}
	if resp.DatabasePath == "" || resp.LockFilePath == "" {
		t.Fatalf("missing paths in payload: %+v", resp)
	}
}

func TestRequireToken(t *testing.T) {
	srv := &apiServer{token: "secret", logger: logging.NewNop()}
	handler := srv.requireToken(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}

	open := (&apiServer{logger: logging.NewNop()}).requireToken(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w = httptest.NewRecorder()
	open(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", w.Code)
	}
}
