// Package batch evaluates a set of creatures under one scenario and writes
// the reports.
package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/pthm-cable/sleepstrength/config"
	"github.com/pthm-cable/sleepstrength/energy"
	"github.com/pthm-cable/sleepstrength/gamedata"
	"github.com/pthm-cable/sleepstrength/strength"
	"github.com/pthm-cable/sleepstrength/telemetry"
)

// Options configures a batch run.
type Options struct {
	Creatures []string // empty means every creature in the catalog
	Energy    energy.Params
	Strength  strength.Params
	OutputDir string // empty disables CSV output
	LogStats  bool
	Workers   int // 0 means GOMAXPROCS
}

// Evaluation is the outcome for one creature.
type Evaluation struct {
	Creature gamedata.Creature
	Result   energy.Result
	Totals   strength.Totals
	Stats    telemetry.TimelineStats
}

// Runner owns the collaborators of a batch run.
type Runner struct {
	cfg     *config.Config
	catalog *gamedata.Catalog
	sim     *energy.Simulator
	calc    *strength.Calculator
	opts    Options
	output  *telemetry.OutputManager
	timer   *telemetry.RunTimer
}

// NewRunner creates a runner and opens its output files.
func NewRunner(cfg *config.Config, catalog *gamedata.Catalog, opts Options) (*Runner, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir, cfg.Output)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return &Runner{
		cfg:     cfg,
		catalog: catalog,
		sim:     energy.New(cfg),
		calc:    strength.New(catalog),
		opts:    opts,
		output:  output,
		timer:   telemetry.NewRunTimer(),
	}, nil
}

// Run evaluates every selected creature and writes the results in catalog order.
func (r *Runner) Run() ([]Evaluation, error) {
	creatures, err := r.creatures()
	if err != nil {
		return nil, err
	}

	evals, err := r.evaluateAll(creatures)
	if err != nil {
		return nil, err
	}

	for _, ev := range evals {
		name := ev.Creature.Name
		if err := r.output.WriteTimeline(name, ev.Result); err != nil {
			return nil, err
		}
		if err := r.output.WriteSummary(telemetry.NewSummaryRow(ev.Result, ev.Totals, ev.Stats)); err != nil {
			return nil, err
		}
		if r.opts.LogStats {
			slog.Info("evaluation", "creature", name, "result", ev.Result, "totals", ev.Totals)
			ev.Stats.LogStats(name)
		}
	}
	if r.opts.LogStats {
		r.timer.Stats().LogStats()
	}
	return evals, nil
}

// Close flushes the output files.
func (r *Runner) Close() error {
	return r.output.Close()
}

// Timing returns the accumulated evaluation timings.
func (r *Runner) Timing() telemetry.RunStats {
	return r.timer.Stats()
}

func (r *Runner) creatures() ([]gamedata.Creature, error) {
	if len(r.opts.Creatures) == 0 {
		return r.catalog.Creatures(), nil
	}
	out := make([]gamedata.Creature, 0, len(r.opts.Creatures))
	for _, name := range r.opts.Creatures {
		c, err := r.catalog.Creature(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// evaluateAll fans the creatures out to a worker pool. Each worker keeps its
// own timer; results land at their input index.
func (r *Runner) evaluateAll(creatures []gamedata.Creature) ([]Evaluation, error) {
	evals := make([]Evaluation, len(creatures))
	errs := make([]error, len(creatures))

	work := make(chan int, len(creatures))
	for i := range creatures {
		work <- i
	}
	close(work)

	numWorkers := min(r.opts.Workers, len(creatures))
	timers := make([]*telemetry.RunTimer, numWorkers)
	var wg sync.WaitGroup
	for w := range timers {
		timers[w] = telemetry.NewRunTimer()
		wg.Add(1)
		go func(timer *telemetry.RunTimer) {
			defer wg.Done()
			for i := range work {
				evals[i], errs[i] = r.evaluate(creatures[i], timer)
			}
		}(timers[w])
	}
	wg.Wait()

	for _, t := range timers {
		r.timer.Merge(t)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return evals, nil
}

func (r *Runner) evaluate(c gamedata.Creature, timer *telemetry.RunTimer) (Evaluation, error) {
	timer.StartRun()
	defer timer.EndRun()

	timer.StartPhase(telemetry.PhaseSimulate)
	res, err := r.sim.Simulate(c, r.opts.Energy)
	if err != nil {
		return Evaluation{}, fmt.Errorf("simulating %s: %w", c.Name, err)
	}

	timer.StartPhase(telemetry.PhaseAggregate)
	totals, err := r.calc.Aggregate(c, res, r.opts.Strength)
	if err != nil {
		return Evaluation{}, fmt.Errorf("aggregating %s: %w", c.Name, err)
	}

	return Evaluation{
		Creature: c,
		Result:   res,
		Totals:   totals,
		Stats:    telemetry.Summarize(res, r.cfg.Efficiency.Floor),
	}, nil
}
