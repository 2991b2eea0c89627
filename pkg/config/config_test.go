package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Scanner.Interval != 60*time.Second {
		t.Fatalf("interval = %v", c.Scanner.Interval)
	}
	if c.Scanner.ZThreshold != 2.0 || c.Scanner.Cooldown != time.Hour {
		t.Fatalf("unexpected alert defaults: %v %v", c.Scanner.ZThreshold, c.Scanner.Cooldown)
	}
	if c.Fetcher.BatchSize != 50 || c.Fetcher.MaxAttempts != 3 {
		t.Fatalf("unexpected fetcher defaults: %+v", c.Fetcher)
	}
	if c.WindowBars() != 20*78 {
		t.Fatalf("window = %d", c.WindowBars())
	}
	if !c.Universe.RemoteEnabled || !c.Universe.StaticEnabled {
		t.Fatalf("universe sources should default on")
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
environment: test
scanner:
  interval: 30s
  z_threshold: 2.5
universe:
  remote_enabled: false
fetcher:
  batch_size: 10
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" || c.Scanner.Interval != 30*time.Second {
		t.Fatalf("unexpected: %s %v", c.Environment, c.Scanner.Interval)
	}
	if c.Scanner.ZThreshold != 2.5 || c.Fetcher.BatchSize != 10 {
		t.Fatalf("unexpected: %v %d", c.Scanner.ZThreshold, c.Fetcher.BatchSize)
	}
	if c.Universe.RemoteEnabled {
		t.Fatalf("remote_enabled should be false")
	}
	if c.Scanner.MinBars != 100 {
		t.Fatalf("untouched default lost: %d", c.Scanner.MinBars)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SCAN_INTERVAL", "120")
	t.Setenv("ALERT_COOLDOWN_HOURS", "0.5")
	t.Setenv("Z_SCORE_THRESHOLD", "3")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Scanner.Interval != 2*time.Minute {
		t.Fatalf("interval = %v", c.Scanner.Interval)
	}
	if c.Scanner.Cooldown != 30*time.Minute {
		t.Fatalf("cooldown = %v", c.Scanner.Cooldown)
	}
	if c.Scanner.ZThreshold != 3 || c.Fetcher.BatchSize != 25 {
		t.Fatalf("unexpected: %v %d", c.Scanner.ZThreshold, c.Fetcher.BatchSize)
	}
	if !c.TelegramConfigured() {
		t.Fatalf("telegram should be configured")
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka = %+v", c.Kafka.Brokers)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return c
	}

	cases := map[string]func(c *Config){
		"small window":   func(c *Config) { c.Scanner.WindowDays = 1; c.Scanner.BarsPerDay = 10 },
		"zero batch":     func(c *Config) { c.Fetcher.BatchSize = 0 },
		"zero threshold": func(c *Config) { c.Scanner.ZThreshold = 0 },
		"zero attempts":  func(c *Config) { c.Fetcher.MaxAttempts = 0 },
		"kafka brokers":  func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil },
		"no universe": func(c *Config) {
			c.Universe.StaticEnabled = false
			c.Universe.RemoteEnabled = false
			c.Universe.File = ""
		},
	}
	for name, mutate := range cases {
		c := base()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
