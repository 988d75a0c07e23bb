package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/sleepstrength/config"
	"github.com/pthm-cable/sleepstrength/energy"
	"github.com/pthm-cable/sleepstrength/strength"
)

// EventRow is one events.csv record.
type EventRow struct {
	Creature string `csv:"creature"`
	energy.Event
}

// IntervalRow is one intervals.csv record.
type IntervalRow struct {
	Creature string `csv:"creature"`
	energy.Interval
}

// SummaryRow is one summary.csv record.
type SummaryRow struct {
	strength.Totals
	energy.HelpCounts
	TimelineStats

	SleepStart       float64 `csv:"sleep_start"`
	SaturatedAt      float64 `csv:"saturated_at"`
	Capacity         int     `csv:"capacity"`
	HelpSeconds      float64 `csv:"help_seconds"`
	SkillProbOne     float64 `csv:"skill_prob_one"`
	SkillProbTwoPlus float64 `csv:"skill_prob_two_plus"`
}

// NewSummaryRow assembles a summary record from one evaluation.
func NewSummaryRow(res energy.Result, totals strength.Totals, stats TimelineStats) SummaryRow {
	return SummaryRow{
		Totals:           totals,
		HelpCounts:       res.Helps,
		TimelineStats:    stats,
		SleepStart:       res.SleepStart,
		SaturatedAt:      res.SaturatedAt,
		Capacity:         res.Capacity,
		HelpSeconds:      res.HelpSeconds,
		SkillProbOne:     res.SkillProbOne,
		SkillProbTwoPlus: res.SkillProbTwoPlus,
	}
}

// csvFile is an output file that writes its header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles report output with CSV logging.
type OutputManager struct {
	dir       string
	names     config.OutputConfig
	events    csvFile
	intervals csvFile
	summary   csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, names config.OutputConfig) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, names: names}

	f, err := os.Create(filepath.Join(dir, names.EventsFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", names.EventsFile, err)
	}
	om.events.f = f

	f, err = os.Create(filepath.Join(dir, names.IntervalsFile))
	if err != nil {
		om.events.f.Close()
		return nil, fmt.Errorf("creating %s: %w", names.IntervalsFile, err)
	}
	om.intervals.f = f

	f, err = os.Create(filepath.Join(dir, names.SummaryFile))
	if err != nil {
		om.events.f.Close()
		om.intervals.f.Close()
		return nil, fmt.Errorf("creating %s: %w", names.SummaryFile, err)
	}
	om.summary.f = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, om.names.ConfigFile))
}

// WriteTimeline writes the events and intervals of one simulation.
func (om *OutputManager) WriteTimeline(creature string, res energy.Result) error {
	if om == nil {
		return nil
	}

	events := make([]EventRow, len(res.Events))
	for i, ev := range res.Events {
		events[i] = EventRow{Creature: creature, Event: ev}
	}
	if len(events) > 0 {
		if err := om.events.write(events); err != nil {
			return fmt.Errorf("writing events: %w", err)
		}
	}

	intervals := make([]IntervalRow, len(res.Intervals))
	for i, iv := range res.Intervals {
		intervals[i] = IntervalRow{Creature: creature, Interval: iv}
	}
	if len(intervals) > 0 {
		if err := om.intervals.write(intervals); err != nil {
			return fmt.Errorf("writing intervals: %w", err)
		}
	}
	return nil
}

// WriteSummary writes one summary record.
func (om *OutputManager) WriteSummary(row SummaryRow) error {
	if om == nil {
		return nil
	}
	if err := om.summary.write([]SummaryRow{row}); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{&om.events, &om.intervals, &om.summary} {
		if c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
