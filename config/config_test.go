package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Energy.Max != 150 {
		t.Errorf("energy.max = %v, want 150", cfg.Energy.Max)
	}
	if cfg.Schedule.DayMinutes != 1440 {
		t.Errorf("schedule.day_minutes = %v, want 1440", cfg.Schedule.DayMinutes)
	}
	if len(cfg.Efficiency.Tiers) != 4 {
		t.Fatalf("expected 4 efficiency tiers, got %d", len(cfg.Efficiency.Tiers))
	}
	if cfg.Derived.MaxTier != 2.222 {
		t.Errorf("derived max tier = %v, want 2.222", cfg.Derived.MaxTier)
	}
	if !cfg.Derived.MultiTrigger["skills"] || cfg.Derived.MultiTrigger["berries"] {
		t.Errorf("unexpected multi-trigger specialties: %v", cfg.Derived.MultiTrigger)
	}
	if _, ok := cfg.Area("greengrass"); !ok {
		t.Error("expected greengrass area preset")
	}
	if _, ok := cfg.Derived.EventWindows["holiday-dishes"]; !ok {
		t.Error("expected dated event window for holiday-dishes")
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	overlay := []byte("energy:\n  wake_cap: 90\nwhistle:\n  hours: 4\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Energy.WakeCap != 90 {
		t.Errorf("wake_cap = %v, want 90", cfg.Energy.WakeCap)
	}
	if cfg.Whistle.Hours != 4 {
		t.Errorf("whistle.hours = %v, want 4", cfg.Whistle.Hours)
	}
	// Untouched keys keep their defaults
	if cfg.Energy.FullSleepMinutes != 510 {
		t.Errorf("full_sleep_minutes = %v, want 510", cfg.Energy.FullSleepMinutes)
	}
}

func TestLoadRejectsUnorderedTiers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	overlay := []byte("efficiency:\n  tiers:\n    - { above: 40, value: 1.7 }\n    - { above: 80, value: 2.2 }\n")
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config failed: %v", err)
	}
	if reloaded.Energy.RecoveryBonusRate != cfg.Energy.RecoveryBonusRate {
		t.Errorf("recovery_bonus_rate = %v, want %v", reloaded.Energy.RecoveryBonusRate, cfg.Energy.RecoveryBonusRate)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Whistle.Hours != 3 {
		t.Errorf("whistle.hours = %v, want 3", Cfg().Whistle.Hours)
	}
}
