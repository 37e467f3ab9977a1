package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv 屏蔽宿主环境中可能存在的同名变量。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CHATPAY_ADDRESS", "OPENAI_API_KEY", "MESHJS_SERVICE_URL", "WEB3_STORAGE_TOKEN",
		"SUPABASE_URL", "SUPABASE_SERVICE_KEY", "STORE_DRIVER", "STORE_DSN", "KOIOS_BASE",
		"KOIOS_UTXO_ENDPOINT", "KOIOS_UTXO_FALLBACK_ENDPOINT", "NOTIFY_DRIVER", "REDIS_ADDR",
		"RABBITMQ_URL", "HISTORY_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address != ":8000" {
		t.Fatalf("unexpected address: %s", cfg.Server.Address)
	}
	if cfg.LLM.Enabled() {
		t.Fatalf("llm should be disabled without api key")
	}
	if cfg.LLM.Timeout() != 10*time.Second {
		t.Fatalf("unexpected llm timeout: %s", cfg.LLM.Timeout())
	}
	if cfg.TxService.BaseURL != "http://localhost:3001" {
		t.Fatalf("unexpected tx service url: %s", cfg.TxService.BaseURL)
	}
	if cfg.Indexer.BaseURL != "https://api.koios.rest/api/v0" {
		t.Fatalf("unexpected koios base: %s", cfg.Indexer.BaseURL)
	}
	if cfg.Indexer.UTXOEndpoint != "address_utxos" || cfg.Indexer.UTXOFallback != "address_utxo_history" {
		t.Fatalf("unexpected utxo endpoints: %+v", cfg.Indexer)
	}
	if cfg.Store.Driver != StoreDriverSupabase || cfg.Store.Enabled() {
		t.Fatalf("store should default to unconfigured supabase: %+v", cfg.Store)
	}
	if cfg.Pinning.Enabled() {
		t.Fatalf("pinning should be disabled without token")
	}
	if cfg.History.File != "history_local.json" {
		t.Fatalf("unexpected history file: %s", cfg.History.File)
	}
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "chatpay.yaml")
	content := []byte(`
server:
  address: ":9000"
llm:
  api_key: file-key
  timeout_seconds: 3
store:
  driver: mysql
  dsn: "user:pass@tcp(localhost:3306)/chatpay"
indexer:
  utxo_endpoint: address_utxo
history:
  file: history.jsonl
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("PORT", "7000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("env should override file api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Server.Address != ":7000" {
		t.Fatalf("PORT should override file address, got %q", cfg.Server.Address)
	}
	if cfg.LLM.Timeout() != 3*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.LLM.Timeout())
	}
	if !cfg.Store.Enabled() || cfg.Store.Driver != StoreDriverMySQL {
		t.Fatalf("mysql store should be enabled: %+v", cfg.Store)
	}
	if cfg.Indexer.UTXOEndpoint != "address_utxo" {
		t.Fatalf("unexpected utxo endpoint: %s", cfg.Indexer.UTXOEndpoint)
	}
	if cfg.History.File != filepath.Join(dir, "history.jsonl") {
		t.Fatalf("history file should resolve relative to config dir: %s", cfg.History.File)
	}
}

func TestSupabaseRequiresURLAndKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Store.Enabled() {
		t.Fatalf("store must stay disabled without service key")
	}

	t.Setenv("SUPABASE_SERVICE_KEY", "service")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cfg.Store.Enabled() {
		t.Fatalf("store should be enabled with url and key")
	}
}

func TestLoadRejectsUnknownDrivers(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown store driver to fail")
	}

	clearEnv(t)
	t.Setenv("NOTIFY_DRIVER", "redis")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected redis driver without address to fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
