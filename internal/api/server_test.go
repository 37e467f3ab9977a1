package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ChatPay-Relay/internal/history"
	"ChatPay-Relay/internal/intent"
	"ChatPay-Relay/internal/ledger"
	"ChatPay-Relay/internal/payment"
	"ChatPay-Relay/internal/web3/koios"
	"ChatPay-Relay/internal/web3/mesh"
)

// fail 写出不带换行的错误响应体。
func fail(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// newUpstreams 启动模拟的交易微服务与 Koios 服务。
func newUpstreams(t *testing.T) (meshURL, koiosURL string) {
	t.Helper()
	meshSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/build-unsigned-tx":
			body, _ := io.ReadAll(r.Body)
			if bytes.Contains(body, []byte(`"to_address":"bad"`)) {
				fail(w, http.StatusBadRequest, "insufficient funds")
				return
			}
			_, _ = w.Write([]byte(`{"unsigned_tx":"84a4"}`))
		case r.URL.Path == "/submit-tx":
			_, _ = w.Write([]byte(`{"txHash":"abc123"}`))
		case r.URL.Path == "/tx/abc123":
			_, _ = w.Write([]byte(`{"hash":"abc123","block":1}`))
		case strings.HasPrefix(r.URL.Path, "/tx/"):
			fail(w, http.StatusNotFound, "not found")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(meshSrv.Close)

	koiosSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/address_info":
			body, _ := io.ReadAll(r.Body)
			if bytes.Contains(body, []byte("broken")) {
				fail(w, http.StatusServiceUnavailable, "koios down")
				return
			}
			_, _ = w.Write([]byte(`[{"address":"addr1","balance":"5"}]`))
		case "/address_utxos":
			fail(w, http.StatusNotFound, "primary gone")
		case "/address_utxo_history":
			_, _ = w.Write([]byte(`[{"tx_hash":"h1"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(koiosSrv.Close)
	return meshSrv.URL, koiosSrv.URL
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	meshURL, koiosURL := newUpstreams(t)

	meshClient, err := mesh.NewClient(mesh.Config{BaseURL: meshURL})
	if err != nil {
		t.Fatalf("mesh client: %v", err)
	}
	koiosClient, err := koios.NewClient(koios.Config{BaseURL: koiosURL})
	if err != nil {
		t.Fatalf("koios client: %v", err)
	}

	historyFile := filepath.Join(t.TempDir(), "history_local.json")
	server := NewServer(":0", Dependencies{
		Intents:        intent.NewResolver(nil),
		Payments:       payment.NewService(payment.NewOrchestrator(meshClient), nil),
		Ledger:         ledger.NewFacade(koiosClient, meshClient, ledger.Config{UTXOFallback: "address_utxo_history"}),
		History:        history.NewService(nil, history.NewFileLog(historyFile)),
		AllowedOrigins: []string{"https://app.example"},
	})
	server.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
	return server, historyFile
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRootAndHealth(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/", "")
	got := decode(t, rec)
	if rec.Code != http.StatusOK || got["ok"] != true || got["service"] != "Chat-to-Pay Relay" {
		t.Fatalf("unexpected root response: %d %v", rec.Code, got)
	}

	rec = do(t, server, http.MethodGet, "/health", "")
	got = decode(t, rec)
	if got["status"] != "ok" || got["time"] != "2024-05-01T11:00:00Z" {
		t.Fatalf("unexpected health response: %v", got)
	}
}

func TestIntentEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/intent", `{"message":"Send 200 to Nirmala","user_id":"u1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var got struct {
		OK     bool `json:"ok"`
		Intent struct {
			Action string   `json:"action"`
			Amount *float64 `json:"amount"`
			To     *string  `json:"to"`
		} `json:"intent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.OK || got.Intent.Action != "send_payment" || *got.Intent.Amount != 200 || *got.Intent.To != "Nirmala" {
		t.Fatalf("unexpected intent: %s", rec.Body.String())
	}

	rec = do(t, server, http.MethodPost, "/intent", `{"user_id":"u1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing message should be 400, got %d", rec.Code)
	}
}

func TestCreateUnsignedTx(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/create-unsigned-tx", `{"to_address":"addr1","amount_lovelace":1000000}`)
	if rec.Code != http.StatusOK || decode(t, rec)["unsigned_tx"] != "84a4" {
		t.Fatalf("unexpected build response: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, server, http.MethodPost, "/create-unsigned-tx", `{"to_address":"bad","amount_lovelace":1}`)
	got := decode(t, rec)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got["detail"] != "MeshJS build failed: insufficient funds" || got["error"] != string(payment.CodeBuildFailed) {
		t.Fatalf("unexpected error body: %v", got)
	}
}

func TestSubmitSignedTx(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/submit-signed-tx", `{"to_address":"addr1"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["detail"] != "signed_tx required" {
		t.Fatalf("missing signature should be 400: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, server, http.MethodPost, "/submit-signed-tx",
		`{"signed_tx":"84a5","from_wallet":"addr_from","to_address":"addr_to","amount_lovelace":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}
	var got struct {
		OK      bool            `json:"ok"`
		Tx      json.RawMessage `json:"tx"`
		Receipt map[string]any  `json:"receipt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.OK || string(got.Tx) != `{"txHash":"abc123"}` {
		t.Fatalf("unexpected tx: %s", rec.Body.String())
	}
	if got.Receipt["tx_id"] != "abc123" || got.Receipt["from"] != "addr_from" || got.Receipt["receipt_id"] == "" {
		t.Fatalf("unexpected receipt: %v", got.Receipt)
	}
	if _, pinned := got.Receipt["ipfs_cid"]; pinned {
		t.Fatalf("receipt must not carry a cid without pinning: %v", got.Receipt)
	}
}

func TestVerifyTx(t *testing.T) {
	server, _ := newTestServer(t)

	if rec := do(t, server, http.MethodPost, "/verify-tx", `{}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing tx_id should be 400, got %d", rec.Code)
	}

	rec := do(t, server, http.MethodPost, "/verify-tx", `{"tx_id":"abc123"}`)
	got := decode(t, rec)
	tx, _ := got["tx"].(map[string]any)
	if rec.Code != http.StatusOK || got["ok"] != true || tx["hash"] != "abc123" {
		t.Fatalf("unexpected verify response: %d %v", rec.Code, got)
	}

	if rec := do(t, server, http.MethodPost, "/verify-tx", `{"tx_id":"missing"}`); rec.Code != http.StatusInternalServerError {
		t.Fatalf("lookup failure should be 500, got %d", rec.Code)
	}
}

func TestSaveHistoryLocal(t *testing.T) {
	server, historyFile := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/save-history", `{"note":"hello"}`)
	got := decode(t, rec)
	if rec.Code != http.StatusOK || got["ok"] != true || got["saved_to"] != historyFile {
		t.Fatalf("unexpected history response: %d %v", rec.Code, got)
	}

	if rec := do(t, server, http.MethodPost, "/save-history", `[1,2]`); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-object payload should be 400, got %d", rec.Code)
	}
}

func TestKoiosEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodGet, "/koios/address_info?address=addr1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"balance":"5"`) {
		t.Fatalf("unexpected address info: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, server, http.MethodGet, "/koios/address_info", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing address should be 400, got %d", rec.Code)
	}

	rec = do(t, server, http.MethodPost, "/koios/address_info", `{"_addresses":["broken"]}`)
	got := decode(t, rec)
	if rec.Code != http.StatusBadGateway || got["detail"] != "Koios error: koios down" {
		t.Fatalf("indexer error should be 502: %d %v", rec.Code, got)
	}

	rec = do(t, server, http.MethodPost, "/koios/address_info", `{"addresses":"addr1"}`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["detail"] != "addresses array required" {
		t.Fatalf("non-list addresses should be 400: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, server, http.MethodPost, "/koios/address_utxo", `{"addresses":["addr1"]}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"tx_hash":"h1"`) {
		t.Fatalf("expected fallback utxo result: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDecodeUnsigned(t *testing.T) {
	server, _ := newTestServer(t)

	rec := do(t, server, http.MethodPost, "/debug/decode-unsigned", `{"hex":"7b2261223a317d"}`)
	got := decode(t, rec)
	decoded, _ := got["decoded"].(map[string]any)
	if rec.Code != http.StatusOK || decoded["a"] != float64(1) {
		t.Fatalf("unexpected decode response: %d %v", rec.Code, got)
	}

	if rec := do(t, server, http.MethodPost, "/debug/decode-unsigned", `{}`); rec.Code != http.StatusBadRequest || decode(t, rec)["detail"] != "hex required" {
		t.Fatalf("missing hex should be 400: %s", rec.Body.String())
	}
	if rec := do(t, server, http.MethodPost, "/debug/decode-unsigned", `{"hex":"zz"}`); rec.Code != http.StatusBadRequest || decode(t, rec)["detail"] != "cannot decode hex" {
		t.Fatalf("bad hex should be 400: %s", rec.Body.String())
	}
}

func TestCORSAndMetrics(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Fatalf("expected CORS header, got %v", rec.Header())
	}

	rec = do(t, server, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "chatpay_http_requests_total") {
		t.Fatalf("metrics should expose request counter: %d", rec.Code)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	server := NewServer("127.0.0.1:0", Dependencies{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(6 * time.Second):
		t.Fatalf("server did not stop")
	}
}
