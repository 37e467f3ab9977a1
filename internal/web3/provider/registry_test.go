package provider

import (
	"testing"

	"ChatPay-Relay/internal/config"
)

func TestNewRegistry(t *testing.T) {
	cfg := &config.Config{
		TxService: config.TxServiceConfig{BaseURL: "http://localhost:3001"},
		Indexer:   config.IndexerConfig{BaseURL: "https://api.koios.rest/api/v0"},
	}
	reg, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if reg.TxService() == nil || reg.Indexer() == nil {
		t.Fatalf("expected both clients to be initialised")
	}
}

func TestNewRegistryRequiresURLs(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewRegistry(&config.Config{Indexer: config.IndexerConfig{BaseURL: "x"}}); err == nil {
		t.Fatalf("expected error without tx service url")
	}
	if _, err := NewRegistry(&config.Config{TxService: config.TxServiceConfig{BaseURL: "x"}}); err == nil {
		t.Fatalf("expected error without indexer url")
	}
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	if reg.TxService() != nil || reg.Indexer() != nil {
		t.Fatalf("nil registry should return nil clients")
	}
}
