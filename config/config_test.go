package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
app_name: todox
run_mode: debug
server:
  host: 127.0.0.1
  port: 8080
logger:
  level: 5
  format: json
  output: stdout
data:
  database:
    master:
      driver: sqlite
      source: "file:todox.db?cache=shared"
      max_open_conn: 1
  redis:
    addr: localhost:6379
auth:
  jwt:
    secret: test-secret
  whitelist:
    - /health
email:
  provider: log
reminder:
  enabled: true
  interval: 1m
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.AppName != "todox" {
		t.Errorf("AppName = %q, want todox", cfg.AppName)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}

	if cfg.Logger.Level != 5 {
		t.Errorf("Logger.Level = %d, want 5", cfg.Logger.Level)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Logger.Format = %q, want json", cfg.Logger.Format)
	}

	if cfg.Data.Database.Master.Driver != "sqlite" {
		t.Errorf("Master.Driver = %q, want sqlite", cfg.Data.Database.Master.Driver)
	}
	if cfg.Data.Database.Master.MaxOpenConn != 1 {
		t.Errorf("Master.MaxOpenConn = %d, want 1", cfg.Data.Database.Master.MaxOpenConn)
	}
	if cfg.Data.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want localhost:6379", cfg.Data.Redis.Addr)
	}

	if cfg.Auth.JWT.Secret != "test-secret" {
		t.Errorf("JWT.Secret = %q, want test-secret", cfg.Auth.JWT.Secret)
	}
	if len(cfg.Auth.Whitelist) != 1 || cfg.Auth.Whitelist[0] != "/health" {
		t.Errorf("Whitelist = %v, want [/health]", cfg.Auth.Whitelist)
	}

	if cfg.Email.Provider != "log" {
		t.Errorf("Email.Provider = %q, want log", cfg.Email.Provider)
	}

	if !cfg.Reminder.Enabled {
		t.Error("Reminder.Enabled = false, want true")
	}
	if cfg.Reminder.Interval != time.Minute {
		t.Errorf("Reminder.Interval = %v, want 1m", cfg.Reminder.Interval)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Auth.JWT.Expire != 24 {
		t.Errorf("JWT.Expire = %d, want default 24", cfg.Auth.JWT.Expire)
	}
	if cfg.Reminder.Window != 24*time.Hour {
		t.Errorf("Reminder.Window = %v, want default 24h", cfg.Reminder.Window)
	}
	if cfg.Observes.Tracer.SamplingRate != 1.0 {
		t.Errorf("Tracer.SamplingRate = %v, want default 1.0", cfg.Observes.Tracer.SamplingRate)
	}
}

func TestGetConfig(t *testing.T) {
	if _, err := LoadConfig(writeTestConfig(t)); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	cfg, err := GetConfig()
	if err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	if cfg.AppName != "todox" {
		t.Errorf("AppName = %q, want todox", cfg.AppName)
	}
}
