package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.ReportsDir = filepath.Join(dir, "reports")
	cfg.ArchiveDir = filepath.Join(dir, "archive")
	cfg.DataCacheDir = filepath.Join(dir, "cache")
	cfg.DefaultLookbackDays = 60

	data, _ := json.Marshal(cfg)
	if err := mgr.UpdateFromJSON(string(data)); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}

	updated := mgr.Get()
	if updated.ReportsDir != cfg.ReportsDir {
		t.Fatalf("expected reports dir %s, got %s", cfg.ReportsDir, updated.ReportsDir)
	}
	if updated.DefaultLookbackDays != 60 {
		t.Fatalf("expected lookback 60, got %d", updated.DefaultLookbackDays)
	}
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.EvalThreshold = 1.5
	if err := mgr.Update(cfg); err == nil {
		t.Fatalf("expected validation error for eval_threshold > 1")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- struct{}{}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.ReportsDir = filepath.Join(dir, "changed")
	cfg.ArchiveDir = filepath.Join(dir, "archive")

	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}
