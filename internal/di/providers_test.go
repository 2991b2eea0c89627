package di

import (
	"path/filepath"
	"testing"

	"VolScan/internal/usecase"
	"VolScan/pkg/config"
)

func TestWindowFloorMatchesEngine(t *testing.T) {
	if config.MinWindowBars != usecase.MinSampleSize {
		t.Fatalf("config window floor %d != engine sample floor %d", config.MinWindowBars, usecase.MinSampleSize)
	}
}

func TestProvideScorerScoresOneDayWindow(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.Scanner.WindowDays = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("one-day window should validate: %v", err)
	}

	e, ok := ProvideScorer(cfg).(*usecase.VolatilityEngine)
	if !ok {
		t.Fatalf("scorer type %T", ProvideScorer(cfg))
	}
	if e.Window() != cfg.Scanner.BarsPerDay {
		t.Fatalf("window = %d", e.Window())
	}
}
