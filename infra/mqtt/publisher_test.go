package mqtt

import (
	"strings"
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.Topic != "evsim/snapshot" {
		t.Fatalf("expected default topic, got %q", cfg.Topic)
	}
	if !strings.HasPrefix(cfg.ClientID, "evsim-") {
		t.Fatalf("expected generated client id, got %q", cfg.ClientID)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled config must validate: %v", err)
	}
	cfg.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled config without broker")
	}
	cfg.Broker = "tcp://localhost:1883"
	cfg.QoS = 3
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for qos out of range")
	}
	cfg.QoS = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
