// Package gamedata holds the read-only creature, ingredient, berry and skill
// tables the simulator consumes.
package gamedata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Specialty classifies what a creature mostly gathers.
type Specialty string

const (
	SpecialtyBerries     Specialty = "berries"
	SpecialtyIngredients Specialty = "ingredients"
	SpecialtySkills      Specialty = "skills"
	SpecialtyAll         Specialty = "all"
)

// NeverActs is the frequency sentinel of a creature that never helps.
const NeverActs = 0

// Creature holds the static stats of one helper creature.
type Creature struct {
	Name            string    `csv:"name"`
	Type            string    `csv:"type"`
	Specialty       Specialty `csv:"specialty"`
	Frequency       float64   `csv:"frequency"` // Seconds between helps at level 1
	CarryLimit      int       `csv:"carry_limit"`
	IngredientRatio float64   `csv:"ingredient_ratio"` // Chance a help yields ingredients
	SkillRatio      float64   `csv:"skill_ratio"`      // Chance a help triggers the main skill
	Berry           string    `csv:"berry"`
	Skill           string    `csv:"skill"`

	Ingredient1 string `csv:"ingredient1"`
	Qty1        int    `csv:"qty1"`
	Ingredient2 string `csv:"ingredient2"`
	Qty2        int    `csv:"qty2"`
	Ingredient3 string `csv:"ingredient3"`
	Qty3        int    `csv:"qty3"`
}

// IngredientSlot is one unlocked ingredient drop.
type IngredientSlot struct {
	Name     string
	Quantity int
}

// Ingredients returns the non-empty ingredient slots in slot order.
func (c Creature) Ingredients() []IngredientSlot {
	slots := make([]IngredientSlot, 0, 3)
	for _, s := range []IngredientSlot{
		{c.Ingredient1, c.Qty1},
		{c.Ingredient2, c.Qty2},
		{c.Ingredient3, c.Qty3},
	} {
		if s.Name == "" || s.Quantity <= 0 {
			continue
		}
		slots = append(slots, s)
	}
	return slots
}

// BerriesPerHelp returns the berries a non-ingredient help carries back.
func (c Creature) BerriesPerHelp() float64 {
	if c.Specialty == SpecialtyBerries {
		return 2
	}
	return 1
}

// ItemsPerHelp returns the expected inventory units one help consumes.
func (c Creature) ItemsPerHelp() float64 {
	slots := c.Ingredients()
	var meanQty float64
	if len(slots) > 0 {
		for _, s := range slots {
			meanQty += float64(s.Quantity)
		}
		meanQty /= float64(len(slots))
	}
	return c.IngredientRatio*meanQty + (1-c.IngredientRatio)*c.BerriesPerHelp()
}

// Acts reports whether the creature helps at all.
func (c Creature) Acts() bool {
	return c.Frequency > NeverActs
}

// Ingredient is a cooking ingredient and its strength per unit.
type Ingredient struct {
	Name     string  `csv:"name"`
	Strength float64 `csv:"strength"`
}

// Berry is a berry and its base strength per unit at level 1.
type Berry struct {
	Name     string `csv:"name"`
	Type     string `csv:"type"`
	Strength int    `csv:"strength"`
}

// StrengthAt returns the strength of one berry carried by a creature of the given level.
func (b Berry) StrengthAt(level int) float64 {
	if level < 1 {
		level = 1
	}
	linear := float64(b.Strength + level - 1)
	growth := math.Round(float64(b.Strength) * math.Pow(1.025, float64(level-1)))
	return math.Max(linear, growth)
}

// SkillKind classifies how a skill's value turns into yield.
type SkillKind string

const (
	SkillRecovery    SkillKind = "recovery"    // Restores energy, reported raw
	SkillStrength    SkillKind = "strength"    // Grants strength directly
	SkillShards      SkillKind = "shards"      // Grants dream shards
	SkillIngredients SkillKind = "ingredients" // Grants extra ingredients
	SkillCopy        SkillKind = "copy"        // Copies another skill, counted only
)

// Levels is a per-level value list stored as "v1|v2|..." in CSV.
type Levels []float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (l *Levels) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(s, "|")
	out := make(Levels, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("level %d: %w", i+1, err)
		}
		out[i] = v
	}
	*l = out
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (l Levels) MarshalCSV() (string, error) {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, "|"), nil
}

// Skill is a main skill and its value per skill level.
type Skill struct {
	Name   string    `csv:"name"`
	Kind   SkillKind `csv:"kind"`
	Values Levels    `csv:"values"`
}

// MaxLevel returns the highest skill level in the table.
func (s Skill) MaxLevel() int {
	return len(s.Values)
}

// ValueAt returns the skill value at the given level, clamped to the table.
func (s Skill) ValueAt(level int) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	if level < 1 {
		level = 1
	}
	if level > len(s.Values) {
		level = len(s.Values)
	}
	return s.Values[level-1]
}
