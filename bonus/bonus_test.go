package bonus

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/sleepstrength/config"
)

func init() {
	config.MustInit("")
}

func TestNeutral(t *testing.T) {
	b := Neutral()
	if b.SkillTrigger != 1 || b.DreamShard != 1 || b.IngredientMagnet != 1 || b.DishStrength != 1 {
		t.Errorf("multipliers should be 1: %+v", b)
	}
	if b.SkillLevel != 0 || b.IngredientQty != 0 || b.DishEnergy != 0 {
		t.Errorf("additive fields should be 0: %+v", b)
	}

	// Callers get a copy; mutating it must not leak.
	b.SkillTrigger = 9
	if Neutral().SkillTrigger != 1 {
		t.Error("Neutral() returned shared mutable state")
	}
}

func TestResolveNamedEvent(t *testing.T) {
	b, err := Resolve(config.Cfg(), "good-sleep-day", nil)
	if err != nil {
		t.Fatal(err)
	}
	if b.SkillTrigger != 1.5 {
		t.Errorf("skill trigger = %v, want 1.5", b.SkillTrigger)
	}
	if b.DishStrength != 1 {
		t.Errorf("unset fields should stay neutral, dish strength = %v", b.DishStrength)
	}
}

func TestResolveCustomOverride(t *testing.T) {
	level := 2
	strength := 2.0
	b, err := Resolve(config.Cfg(), "good-sleep-day", &Override{SkillLevel: &level, DishStrength: &strength})
	if err != nil {
		t.Fatal(err)
	}
	if b.SkillTrigger != 1.5 || b.SkillLevel != 2 || b.DishStrength != 2 {
		t.Errorf("override not layered over event: %+v", b)
	}
}

func TestResolveUnknownEvent(t *testing.T) {
	b, err := Resolve(config.Cfg(), "no-such-event", nil)
	if err == nil {
		t.Fatal("expected error for unknown event")
	}
	if b != Neutral() {
		t.Errorf("unknown event should fall back to neutral, got %+v", b)
	}
}

func TestResolveAt(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"before window", time.Date(2026, 12, 19, 23, 0, 0, 0, time.UTC), ""},
		{"first day", time.Date(2026, 12, 20, 8, 0, 0, 0, time.UTC), "holiday-dishes"},
		{"last day", time.Date(2026, 12, 27, 23, 59, 0, 0, time.UTC), "holiday-dishes"},
		{"after window", time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, name := ResolveAt(config.Cfg(), tt.date)
			if name != tt.want {
				t.Errorf("event = %q, want %q", name, tt.want)
			}
			if name == "" && b != Neutral() {
				t.Errorf("expected neutral bonus outside events, got %+v", b)
			}
			if name != "" && b.DishEnergy != 5 {
				t.Errorf("dish energy = %v, want 5", b.DishEnergy)
			}
		})
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bonus.yaml")
	if err := os.WriteFile(path, []byte("skill_trigger: 2\ndish_energy: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	o, err := LoadOverride(path)
	if err != nil {
		t.Fatalf("LoadOverride failed: %v", err)
	}
	if o.SkillLevel != nil || o.DreamShard != nil {
		t.Errorf("unset fields should stay nil: %+v", o)
	}
	b := o.Apply(Neutral())
	if b.SkillTrigger != 2 || b.DishEnergy != 3 || b.DishStrength != 1 {
		t.Errorf("applied override = %+v", b)
	}

	if _, err := LoadOverride(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
