package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"invsync/internal/platform/config"
)

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "api_url: https://inventory.example.com/\nuser_id: 12\nreconnect:\n  initial: 1s\n  max: 4s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INVSYNC_DATA_DIR", dir)
	t.Setenv("INVSYNC_LOG_LEVEL", "debug")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UserID != 12 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HubURL != "https://inventory.example.com/appHub" {
		t.Fatalf("expected hub url derived from api url, got %s", cfg.HubURL)
	}
	if cfg.Reconnect.Initial != time.Second || cfg.Reconnect.Max != 4*time.Second {
		t.Fatalf("unexpected backoff: %+v", cfg.Reconnect)
	}
	if cfg.DBPath() != filepath.Join(dir, "invsync.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath())
	}
}

func TestValidateRejectsUnknownTransportAndBadBackoff(t *testing.T) {
	t.Parallel()
	base := config.Config{
		APIURL:    "http://localhost:5000/",
		HubURL:    "http://localhost:5000/appHub",
		Transport: config.TransportWebSocket,
		DataDir:   t.TempDir(),
		Reconnect: config.BackoffConfig{Initial: time.Second, Max: time.Second},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}
	unknown := base
	unknown.Transport = "carrier-pigeon"
	if err := unknown.Validate(); err == nil {
		t.Fatalf("expected unknown transport to fail")
	}
	backoff := base
	backoff.Reconnect.Max = 0
	if err := backoff.Validate(); err == nil {
		t.Fatalf("expected inverted backoff to fail")
	}
	amqp := base
	amqp.Transport = config.TransportAMQP
	if err := amqp.Validate(); err == nil {
		t.Fatalf("expected amqp transport without url to fail")
	}
}
