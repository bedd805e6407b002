package orders_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"labelspool/internal/config"
	"labelspool/internal/orders"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *orders.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Source.Token = "bl-token"
	cfg.Source.BaseURL = server.URL
	return orders.NewClient(&cfg)
}

func TestListPendingOrdersDecodesWireFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-BLToken") != "bl-token" {
			t.Errorf("missing token header")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostFormValue("method"); got != "getOrders" {
			t.Errorf("method = %q", got)
		}
		var params map[string]any
		if err := json.Unmarshal([]byte(r.PostFormValue("parameters")), &params); err != nil {
			t.Fatalf("parameters not json: %v", err)
		}
		if params["status_id"] != float64(91618) {
			t.Errorf("status_id = %v", params["status_id"])
		}
		fmt.Fprint(w, `{
			"status": "SUCCESS",
			"orders": [
				{
					"order_id": 1001,
					"delivery_fullname": "Jan Kowalski",
					"order_source": "allegro",
					"delivery_method": "DPD courier",
					"products": [{"name": "Handmade Ceramic Coffee Mug", "quantity": 2}]
				},
				{
					"order_id": "1002",
					"delivery_fullname": "Anna Nowak",
					"order_source": "shop",
					"delivery_method": "pickup point",
					"products": []
				}
			]
		}`)
	})

	result, err := client.ListPendingOrders(context.Background(), 91618)
	if err != nil {
		t.Fatalf("ListPendingOrders failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected two orders, got %d", len(result))
	}
	if result[0].ID != "1001" || result[1].ID != "1002" {
		t.Fatalf("order ids = %q, %q", result[0].ID, result[1].ID)
	}
	if result[0].CustomerName != "Jan Kowalski" || result[0].Platform != "allegro" {
		t.Fatalf("unexpected first order: %#v", result[0])
	}
	if len(result[0].Products) != 1 || result[0].Products[0].Quantity != 2 {
		t.Fatalf("unexpected products: %#v", result[0].Products)
	}
}

func TestListPackagesAcceptsNumericIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "SUCCESS", "packages": [
			{"package_id": 555001, "courier_code": "dpd"},
			{"package_id": "P1", "courier_code": "inpost"}
		]}`)
	})

	result, err := client.ListPackages(context.Background(), "1001")
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected two packages, got %d", len(result))
	}
	if result[0].PackageID != "555001" || result[1].PackageID != "P1" {
		t.Fatalf("package ids = %q, %q", result[0].PackageID, result[1].PackageID)
	}
}

func TestFetchLabelDecodesPayload(t *testing.T) {
	payload := []byte("%PDF-1.4 fake label")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status": "SUCCESS", "label": %q, "extension": "pdf"}`,
			base64.StdEncoding.EncodeToString(payload))
	})

	got, ext, err := client.FetchLabel(context.Background(), "DPD", "P1")
	if err != nil {
		t.Fatalf("FetchLabel failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload = %q", got)
	}
	if ext != "pdf" {
		t.Fatalf("extension = %q", ext)
	}
}

func TestFetchLabelNotReadyIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "SUCCESS", "label": null}`)
	})

	got, ext, err := client.FetchLabel(context.Background(), "DPD", "P1")
	if err != nil {
		t.Fatalf("FetchLabel failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil payload, got %q", got)
	}
	if ext != "pdf" {
		t.Fatalf("expected default extension, got %q", ext)
	}
}

func TestAPIErrorsSurface(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "ERROR", "error_code": "ERROR_AUTH_TOKEN", "error_message": "Invalid token"}`)
	})

	_, err := client.ListPendingOrders(context.Background(), 91618)
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "Invalid token") || !strings.Contains(err.Error(), "ERROR_AUTH_TOKEN") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPErrorsSurface(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	})

	_, _, err := client.FetchLabel(context.Background(), "DPD", "P1")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}
