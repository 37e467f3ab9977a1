package chatpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestResolveIntent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/intent" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["message"] != "pay 5 to bob" || body["user_id"] != "u1" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = w.Write([]byte(`{"ok":true,"intent":{"action":"send_payment","amount":5,"to":"bob"}}`))
	})

	got, err := client.ResolveIntent(context.Background(), "pay 5 to bob", "u1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Action != "send_payment" || *got.Amount != 5 || *got.To != "bob" {
		t.Fatalf("unexpected intent: %+v", got)
	}
}

func TestSubmitSignedTxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"MISSING_SIGNATURE","detail":"signed_tx required"}`))
	})

	_, err := client.SubmitSignedTx(context.Background(), TransactionRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "MISSING_SIGNATURE" || apiErr.Detail != "signed_tx required" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestPlainTextErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.AddressUTXOs(context.Background(), "addr1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Detail != "bad gateway" || apiErr.Code != "" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAddressInfoChoosesQueryOrBatch(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := client.AddressInfo(context.Background(), "addr 1"); err != nil {
		t.Fatalf("single: %v", err)
	}
	if _, err := client.AddressInfo(context.Background(), "a", "b"); err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(seen) != 2 || seen[0] != "GET /koios/address_info?address=addr+1" || seen[1] != "POST /koios/address_info?" {
		t.Fatalf("unexpected requests: %v", seen)
	}
}

func TestVerifyTxAndHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/verify-tx":
			_, _ = w.Write([]byte(`{"ok":true,"tx":{"hash":"abc"}}`))
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok","time":"2024-05-01T11:00:00Z"}`))
		default:
			http.NotFound(w, r)
		}
	})

	tx, err := client.VerifyTx(context.Background(), "abc")
	if err != nil || string(tx) != `{"hash":"abc"}` {
		t.Fatalf("unexpected verify result %s, %v", tx, err)
	}
	health, err := client.Health(context.Background())
	if err != nil || health.Status != "ok" || health.Time.Year() != 2024 {
		t.Fatalf("unexpected health %+v, %v", health, err)
	}
}
