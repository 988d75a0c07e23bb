// Package bonus resolves event bonus bundles.
package bonus

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/sleepstrength/config"
)

// Bonus is the set of multipliers an event applies. The zero value is not
// neutral; start from Neutral().
type Bonus struct {
	SkillTrigger     float64 // Multiplies the per-help skill chance
	SkillLevel       int     // Added to the skill level
	IngredientQty    int     // Added to every ingredient drop
	DreamShard       float64 // Multiplies dream shard skills
	IngredientMagnet float64 // Multiplies ingredient skills
	DishEnergy       float64 // Flat energy added at every meal
	DishStrength     float64 // Multiplies ingredient strength
}

// Neutral returns the bonus of a day without any event.
func Neutral() Bonus {
	return Bonus{
		SkillTrigger:     1,
		DreamShard:       1,
		IngredientMagnet: 1,
		DishStrength:     1,
	}
}

// Override layers event fields over a bonus. Nil fields are left alone.
type Override struct {
	SkillTrigger     *float64 `yaml:"skill_trigger,omitempty"`
	SkillLevel       *int     `yaml:"skill_level,omitempty"`
	IngredientQty    *int     `yaml:"ingredient_qty,omitempty"`
	DreamShard       *float64 `yaml:"dream_shard,omitempty"`
	IngredientMagnet *float64 `yaml:"ingredient_magnet,omitempty"`
	DishEnergy       *float64 `yaml:"dish_energy,omitempty"`
	DishStrength     *float64 `yaml:"dish_strength,omitempty"`
}

// Apply returns b with every set field of o replaced.
func (o Override) Apply(b Bonus) Bonus {
	if o.SkillTrigger != nil {
		b.SkillTrigger = *o.SkillTrigger
	}
	if o.SkillLevel != nil {
		b.SkillLevel = *o.SkillLevel
	}
	if o.IngredientQty != nil {
		b.IngredientQty = *o.IngredientQty
	}
	if o.DreamShard != nil {
		b.DreamShard = *o.DreamShard
	}
	if o.IngredientMagnet != nil {
		b.IngredientMagnet = *o.IngredientMagnet
	}
	if o.DishEnergy != nil {
		b.DishEnergy = *o.DishEnergy
	}
	if o.DishStrength != nil {
		b.DishStrength = *o.DishStrength
	}
	return b
}

// LoadOverride reads a custom override from a YAML file.
func LoadOverride(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bonus file: %w", err)
	}
	var o Override
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing bonus file: %w", err)
	}
	return &o, nil
}

func fromEvent(e config.EventConfig) Override {
	return Override{
		SkillTrigger:     e.SkillTrigger,
		SkillLevel:       e.SkillLevel,
		IngredientQty:    e.IngredientQty,
		DreamShard:       e.DreamShard,
		IngredientMagnet: e.IngredientMagnet,
		DishEnergy:       e.DishEnergy,
		DishStrength:     e.DishStrength,
	}
}

// Resolve returns the bonus of the named event with custom layered on top.
// An empty name resolves to Neutral().
func Resolve(cfg *config.Config, name string, custom *Override) (Bonus, error) {
	b := Neutral()
	if name != "" {
		i, ok := cfg.Derived.EventIndex[name]
		if !ok {
			return Neutral(), fmt.Errorf("unknown event %q", name)
		}
		b = fromEvent(cfg.Events[i]).Apply(b)
	}
	if custom != nil {
		b = custom.Apply(b)
	}
	return b, nil
}

// ResolveAt returns the bonus of the first dated event running at t, and its
// name. Outside every event window it returns Neutral() and "".
func ResolveAt(cfg *config.Config, t time.Time) (Bonus, string) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for _, e := range cfg.Events {
		w, ok := cfg.Derived.EventWindows[e.Name]
		if !ok {
			continue
		}
		if !day.Before(w[0]) && day.Before(w[1]) {
			return fromEvent(e).Apply(Neutral()), e.Name
		}
	}
	return Neutral(), ""
}
