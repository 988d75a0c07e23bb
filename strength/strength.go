// Package strength converts simulated help counts into expected yields.
package strength

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/sleepstrength/bonus"
	"github.com/pthm-cable/sleepstrength/energy"
	"github.com/pthm-cable/sleepstrength/gamedata"
)

// ErrInvalidParams is returned for aggregation parameters outside their range.
var ErrInvalidParams = errors.New("invalid strength parameters")

// Catalog is the read-only lookup the calculator needs.
type Catalog interface {
	Ingredient(name string) (gamedata.Ingredient, bool)
	Berry(name string) (gamedata.Berry, bool)
	Skill(name string) (gamedata.Skill, bool)
}

// Params holds the modifiers applied on top of a simulation result.
type Params struct {
	Level      int // creature level, drives berry strength
	SkillLevel int
	Field      energy.Field

	Recipe           bool    // a concrete recipe is targeted
	RecipeBonus      float64 // recipe mix bonus in percent
	RecipeLevelBonus float64 // average recipe level bonus in percent

	Bonus *bonus.Bonus // nil means no event
}

// IngredientYield is the expected haul of one ingredient slot.
type IngredientYield struct {
	Name     string
	Count    float64
	Strength float64
}

// Totals are the expected yields over the simulated window.
type Totals struct {
	Creature string `csv:"creature"`

	Ingredients        []IngredientYield `csv:"-"`
	IngredientCount    float64           `csv:"ingredient_count"`
	IngredientStrength float64           `csv:"ingredient_strength"`

	BerryCount    float64 `csv:"berry_count"`
	BerryStrength float64 `csv:"berry_strength"`

	SkillKind     gamedata.SkillKind `csv:"skill_kind"`
	SkillCount    float64            `csv:"skill_count"`
	SkillValue    float64            `csv:"skill_value"`
	SkillStrength float64            `csv:"skill_strength"`

	Total float64 `csv:"total_strength"`
}

// LogValue implements slog.LogValuer for structured logging.
func (t Totals) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("creature", t.Creature),
		slog.Float64("ingredient_count", t.IngredientCount),
		slog.Float64("ingredient_strength", t.IngredientStrength),
		slog.Float64("berry_count", t.BerryCount),
		slog.Float64("berry_strength", t.BerryStrength),
		slog.String("skill_kind", string(t.SkillKind)),
		slog.Float64("skill_count", t.SkillCount),
		slog.Float64("skill_value", t.SkillValue),
		slog.Float64("skill_strength", t.SkillStrength),
		slog.Float64("total_strength", t.Total),
	)
}

// Calculator aggregates simulation results against a catalog.
type Calculator struct {
	catalog Catalog
}

// New returns a calculator reading rates from catalog.
func New(catalog Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// RecipeMultiplier returns the ingredient multiplier of a targeted recipe,
// or 1 when no recipe is targeted.
func RecipeMultiplier(p Params) float64 {
	if !p.Recipe {
		return 1
	}
	return (1+p.RecipeBonus/100)*(1+p.RecipeLevelBonus/100)*0.8 + 0.2
}

// Aggregate computes the yields of creature c from a simulation result.
// A result with zero helps is a legitimate zero total.
func (calc *Calculator) Aggregate(c gamedata.Creature, res energy.Result, p Params) (Totals, error) {
	if err := validate(p); err != nil {
		return Totals{}, err
	}
	ev := bonus.Neutral()
	if p.Bonus != nil {
		ev = *p.Bonus
	}
	area := 1 + p.Field.Bonus/100

	// Once saturated, a help only brings back berries.
	ingredientHelps := res.Helps.Awake + res.Helps.AsleepNormal
	if res.AlwaysSaturated {
		ingredientHelps = 0
	}
	snackHelps := math.Max(0, res.Helps.Total-ingredientHelps)

	t := Totals{Creature: c.Name}

	if slots := c.Ingredients(); len(slots) > 0 {
		perSlot := ingredientHelps * c.IngredientRatio / float64(len(slots))
		mul := RecipeMultiplier(p) * area * ev.DishStrength
		strengths := make([]float64, len(slots))
		for i, slot := range slots {
			y := IngredientYield{
				Name:  slot.Name,
				Count: nonNegative(perSlot * float64(slot.Quantity+ev.IngredientQty)),
			}
			if in, ok := calc.catalog.Ingredient(slot.Name); ok {
				y.Strength = nonNegative(y.Count * in.Strength * mul)
			}
			strengths[i] = y.Strength
			t.Ingredients = append(t.Ingredients, y)
			t.IngredientCount += y.Count
		}
		t.IngredientStrength = floats.Sum(strengths)
	}

	t.BerryCount = nonNegative((ingredientHelps*(1-c.IngredientRatio) + snackHelps) * c.BerriesPerHelp())
	if b, ok := calc.catalog.Berry(c.Berry); ok {
		favorite := 1.0
		if p.Field.IsFavorite(c.Type) {
			favorite = 2
		}
		t.BerryStrength = nonNegative(t.BerryCount * b.StrengthAt(p.Level) * area * favorite)
	}

	t.SkillCount = nonNegative(res.Helps.Awake*res.SkillChance + res.SleepTriggers())
	if sk, ok := calc.catalog.Skill(c.Skill); ok {
		t.SkillKind = sk.Kind
		value := sk.ValueAt(p.SkillLevel + ev.SkillLevel)
		switch sk.Kind {
		case gamedata.SkillRecovery:
			t.SkillValue = t.SkillCount * value
		case gamedata.SkillStrength:
			t.SkillValue = t.SkillCount * value * area
			t.SkillStrength = t.SkillValue
		case gamedata.SkillShards:
			t.SkillValue = t.SkillCount * value * ev.DreamShard
		case gamedata.SkillIngredients:
			t.SkillValue = t.SkillCount * value * ev.IngredientMagnet
		case gamedata.SkillCopy:
			// Depends on the copied skill; counted only.
		}
		t.SkillValue = nonNegative(t.SkillValue)
		t.SkillStrength = nonNegative(t.SkillStrength)
	}

	t.Total = t.IngredientStrength + t.BerryStrength + t.SkillStrength
	return t, nil
}

func validate(p Params) error {
	switch {
	case p.Level < 0 || p.SkillLevel < 0:
		return fmt.Errorf("%w: negative level", ErrInvalidParams)
	case p.Field.Bonus < -100 || p.RecipeBonus < -100 || p.RecipeLevelBonus < -100:
		return fmt.Errorf("%w: bonus percentage below -100", ErrInvalidParams)
	}
	return nil
}

// nonNegative collapses NaN, infinities and negatives to zero.
func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
