package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sleepstrength/energy"
)

// TimelineStats summarises the in-window part of a simulated day.
type TimelineStats struct {
	WindowMinutes   float64 `csv:"window_minutes"`
	AwakeMinutes    float64 `csv:"awake_minutes"`
	AsleepMinutes   float64 `csv:"asleep_minutes"`
	SnackingMinutes float64 `csv:"snacking_minutes"`
	FloorMinutes    float64 `csv:"floor_minutes"` // minutes spent at the lowest tier

	// Time-weighted efficiency
	MeanEfficiency float64 `csv:"mean_efficiency"`

	// Energy range over in-window events
	MinEnergy float64 `csv:"min_energy"`
	MaxEnergy float64 `csv:"max_energy"`
}

// Summarize computes timeline statistics. floorTier is the efficiency of an
// empty energy bar.
func Summarize(res energy.Result, floorTier float64) TimelineStats {
	var s TimelineStats

	tiers := make([]float64, 0, len(res.Intervals))
	weights := make([]float64, 0, len(res.Intervals))
	for _, iv := range res.Intervals {
		if !iv.InWindow {
			continue
		}
		d := iv.Duration()
		s.WindowMinutes += d
		if iv.Awake {
			s.AwakeMinutes += d
		} else {
			s.AsleepMinutes += d
		}
		if iv.Saturated && !iv.Awake {
			s.SnackingMinutes += d
		}
		if iv.Tier <= floorTier {
			s.FloorMinutes += d
		}
		tiers = append(tiers, iv.Tier)
		weights = append(weights, d)
	}
	if s.WindowMinutes > 0 {
		s.MeanEfficiency = stat.Mean(tiers, weights)
	}

	s.MinEnergy = math.Inf(1)
	s.MaxEnergy = math.Inf(-1)
	for _, ev := range res.Events {
		if !ev.InWindow {
			continue
		}
		s.MinEnergy = math.Min(s.MinEnergy, math.Min(ev.Before, ev.After))
		s.MaxEnergy = math.Max(s.MaxEnergy, math.Max(ev.Before, ev.After))
	}
	if math.IsInf(s.MinEnergy, 0) {
		s.MinEnergy, s.MaxEnergy = 0, 0
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s TimelineStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_minutes", s.WindowMinutes),
		slog.Float64("awake_minutes", s.AwakeMinutes),
		slog.Float64("asleep_minutes", s.AsleepMinutes),
		slog.Float64("snacking_minutes", s.SnackingMinutes),
		slog.Float64("floor_minutes", s.FloorMinutes),
		slog.Float64("mean_efficiency", s.MeanEfficiency),
		slog.Float64("min_energy", s.MinEnergy),
		slog.Float64("max_energy", s.MaxEnergy),
	)
}

// LogStats logs the timeline stats using slog.
func (s TimelineStats) LogStats(creature string) {
	slog.Info("timeline",
		"creature", creature,
		"window_minutes", s.WindowMinutes,
		"awake_minutes", s.AwakeMinutes,
		"asleep_minutes", s.AsleepMinutes,
		"snacking_minutes", s.SnackingMinutes,
		"floor_minutes", s.FloorMinutes,
		"mean_efficiency", s.MeanEfficiency,
		"min_energy", s.MinEnergy,
		"max_energy", s.MaxEnergy,
	)
}
