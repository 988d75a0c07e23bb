package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/sleepstrength/batch"
	"github.com/pthm-cable/sleepstrength/bonus"
	"github.com/pthm-cable/sleepstrength/config"
	"github.com/pthm-cable/sleepstrength/energy"
	"github.com/pthm-cable/sleepstrength/gamedata"
	"github.com/pthm-cable/sleepstrength/strength"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	dataDir := flag.String("data", "", "Directory with creature/ingredient/berry/skill CSV tables (empty = embedded)")
	creatures := flag.String("creature", "all", "Comma-separated creature names, or all")
	outputDir := flag.String("output-dir", "", "Output directory for CSV reports and config snapshot")
	logStats := flag.Bool("log-stats", false, "Log per-creature results via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	workers := flag.Int("workers", 0, "Parallel evaluations (0 = GOMAXPROCS)")

	mode := flag.String("mode", "timeline", "Simulation mode: timeline, full, whistle")
	hours := flag.Float64("hours", energy.FullDay, "Aggregation window in hours from waking")
	helpCount := flag.Float64("help-count", -1, "Aggregate a fixed number of helps instead of a window (>= 0 enables)")
	score := flag.Int("score", 100, "Sleep score 0..100")
	nature := flag.Float64("nature", 1, "Energy recovery multiplier of the nature")
	recoveryBoost := flag.Bool("recovery-boost", false, "Raise the wake energy cap")
	bonusRecoveries := flag.Int("bonus-recoveries", 0, "Team energy skills triggered during the day")
	bonusRecoveryAmount := flag.Float64("bonus-recovery-amount", 18, "Energy restored per team energy skill")
	helperBonus := flag.Int("helper-bonus", 0, "Helping bonuses on the team")
	recoveryBonus := flag.Int("recovery-bonus", 0, "Energy recovery bonuses on the creature")
	campTicket := flag.Bool("camp-ticket", false, "Use a camp ticket")
	inventoryBonus := flag.Int("inventory-bonus", 0, "Extra carry limit")
	tapAwake := flag.String("tap-awake", string(energy.TapAlways), "Inventory taps while awake: always, none")
	tapAsleep := flag.String("tap-asleep", string(energy.TapNone), "Inventory taps while asleep: always, none")

	level := flag.Int("level", 1, "Creature level")
	skillLevel := flag.Int("skill-level", 1, "Main skill level")
	area := flag.String("area", "greengrass", "Research area preset")
	areaBonus := flag.Float64("area-bonus", 0, "Area bonus in percent")
	favorites := flag.String("favorites", "", "Comma-separated favorite types, overriding the area preset")
	recipe := flag.Bool("recipe", false, "Ingredients go into a targeted recipe")
	recipeBonus := flag.Float64("recipe-bonus", 0, "Recipe mix bonus in percent")
	recipeLevelBonus := flag.Float64("recipe-level-bonus", 0, "Average recipe level bonus in percent")

	event := flag.String("event", "", "Named event from the config")
	date := flag.String("date", "", "Resolve the running event for a date (YYYY-MM-DD) when -event is empty")
	bonusFile := flag.String("bonus-file", "", "YAML file with custom event overrides")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*logLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	catalog, err := loadCatalog(*dataDir)
	if err != nil {
		slog.Error("failed to load game data", "error", err)
		os.Exit(1)
	}

	// Event bonus: named event, else the event running on -date, then the custom file
	var custom *bonus.Override
	if *bonusFile != "" {
		if custom, err = bonus.LoadOverride(*bonusFile); err != nil {
			slog.Error("failed to load bonus file", "error", err)
			os.Exit(1)
		}
	}
	eventName := *event
	if eventName == "" && *date != "" {
		day, err := time.Parse(time.DateOnly, *date)
		if err != nil {
			slog.Error("invalid date", "date", *date, "error", err)
			os.Exit(1)
		}
		_, eventName = bonus.ResolveAt(cfg, day)
	}
	ev, err := bonus.Resolve(cfg, eventName, custom)
	if err != nil {
		slog.Error("failed to resolve event", "error", err)
		os.Exit(1)
	}

	areaCfg, ok := cfg.Area(*area)
	if !ok {
		slog.Error("unknown area", "area", *area)
		os.Exit(1)
	}
	field := energy.FieldFromArea(areaCfg, *areaBonus, splitList(*favorites))

	p := energy.DefaultParams()
	p.Hours = *hours
	if *helpCount >= 0 {
		p.Hours = energy.HelpCountHours
		p.HelpCount = *helpCount
	}
	switch *mode {
	case "timeline":
		p.Mode = energy.ModeTimeline
	case "full":
		p.Mode = energy.ModeAlwaysFull
	case "whistle":
		p.Mode = energy.ModeWhistle
	default:
		slog.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
	p.SleepScore = *score
	p.NatureFactor = *nature
	p.RecoveryBoost = *recoveryBoost
	p.BonusRecoveryCount = *bonusRecoveries
	p.BonusRecoveryAmount = *bonusRecoveryAmount
	p.HelperBonus = *helperBonus
	p.RecoveryBonus = *recoveryBonus
	p.CampTicket = *campTicket
	p.InventoryBonus = *inventoryBonus
	p.Level = *level
	p.Taps = energy.TapPolicy{Awake: energy.Tap(*tapAwake), Asleep: energy.Tap(*tapAsleep)}
	p.Bonus = &ev
	p.Field = field

	opts := batch.Options{
		Energy: p,
		Strength: strength.Params{
			Level:            *level,
			SkillLevel:       *skillLevel,
			Field:            field,
			Recipe:           *recipe,
			RecipeBonus:      *recipeBonus,
			RecipeLevelBonus: *recipeLevelBonus,
			Bonus:            &ev,
		},
		OutputDir: *outputDir,
		LogStats:  *logStats,
		Workers:   *workers,
	}
	if *creatures != "all" {
		opts.Creatures = splitList(*creatures)
	}

	runner, err := batch.NewRunner(cfg, catalog, opts)
	if err != nil {
		slog.Error("failed to start run", "error", err)
		os.Exit(1)
	}
	defer runner.Close()

	slog.Info("starting evaluation",
		"creatures", *creatures,
		"mode", *mode,
		"hours", p.Hours,
		"event", eventName,
		"area", *area,
		"output_dir", *outputDir,
	)

	evals, err := runner.Run()
	if err != nil {
		slog.Error("evaluation failed", "error", err)
		runner.Close()
		os.Exit(1)
	}

	for _, e := range evals {
		slog.Info("strength",
			"creature", e.Creature.Name,
			"total", e.Totals.Total,
			"berries", e.Totals.BerryStrength,
			"ingredients", e.Totals.IngredientStrength,
			"skill", e.Totals.SkillStrength,
			"saturated_at", e.Result.SaturatedAt,
		)
	}
}

func loadCatalog(dir string) (*gamedata.Catalog, error) {
	if dir == "" {
		return gamedata.Default()
	}
	return gamedata.LoadDir(dir)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
