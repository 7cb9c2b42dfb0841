package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deephold/server/internal/command"
	"github.com/deephold/server/internal/component"
	"github.com/deephold/server/internal/config"
	"github.com/deephold/server/internal/core/event"
	"github.com/deephold/server/internal/data"
	"github.com/deephold/server/internal/engine"
	"github.com/deephold/server/internal/persist"
	"github.com/deephold/server/internal/rng"
	"github.com/deephold/server/internal/scripting"
	"github.com/deephold/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Deephold  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     deterministic colony simulation       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ──────────────────────────────────────────

func run() error {
	var (
		cfgPath      = flag.String("config", "config/sim.toml", "config file path")
		tilePath     = flag.String("tiles", "", "tile definition yaml (empty = embedded)")
		buildingPath = flag.String("buildings", "", "building definition yaml (empty = embedded)")
		scenarioPath = flag.String("scenario", "", "lua scenario script")
		saveName     = flag.String("save", "autosave", "save slot name")
		loadSave     = flag.Bool("load", false, "restore the save slot instead of generating a world")
		headless     = flag.Uint64("ticks", 0, "run N ticks headless then exit (0 = real-time loop)")
		seed         = flag.Uint64("seed", 1, "world generation seed")
		width        = flag.Int("width", 96, "world width in tiles")
		height       = flag.Int("height", 64, "world height in tiles")
		gnomes       = flag.Int("gnomes", 4, "starting gnome count")
	)
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	// 3. Connect to PostgreSQL and run migrations (skipped without a DSN)
	var repo *persist.SaveRepo
	if cfg.Database.DSN != "" {
		printSection("Database")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		cancel()
		printOK("migrations applied")
		fmt.Println()

		repo = persist.NewSaveRepo(db)
	}

	// 4. Load definition tables
	printSection("Data")

	defs, err := data.Load(*tilePath, *buildingPath)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	printStat("tile types", len(defs.Tiles))
	printStat("building types", len(defs.Buildings))

	// 5. Build or restore the world
	var ws *world.State
	if *loadSave {
		if repo == nil {
			return fmt.Errorf("-load requires database.dsn in config")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		snap, err := repo.Get(ctx, *saveName)
		cancel()
		if err != nil {
			return fmt.Errorf("load save %q: %w", *saveName, err)
		}
		ws = world.Restore(snap, defs)
		printOK(fmt.Sprintf("save %q restored at tick %d", *saveName, ws.Tick))
	} else {
		ws = world.New(defs, generateTerrain(*width, *height, *seed), *seed)
		spawnStartingGnomes(ws, *gnomes)
		printOK(fmt.Sprintf("world generated (%dx%d, seed %d)", *width, *height, *seed))
	}
	printStat("tiles", ws.Tiles.Len())
	printStat("gnomes", ws.Gnomes.Len())

	// 6. Load scenario script
	var scripted []scripting.TimedCommand
	if *scenarioPath != "" {
		sc, err := scripting.NewEngine(*scenarioPath, log)
		if err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
		scripted = sc.Commands()
		sc.Close()
		printStat("scenario commands", len(scripted))
	}
	fmt.Println()

	// 7. Assemble the engine and event subscribers
	loop := engine.New(ws, cfg, log)
	subscribeEvents(loop.Bus(), log)

	var writer *persist.Writer
	if repo != nil {
		writer = persist.NewWriter(repo, *saveName, log)
		defer writer.Close()
		loop.AttachAutosave(writer)
	}

	// 8. Run
	printSection("Simulation ready")
	printReady(fmt.Sprintf("tick rate %s, speed x%.0f", cfg.Sim.TickRate.Std(), ws.Speed))
	if *headless > 0 {
		printReady(fmt.Sprintf("headless run: %d ticks", *headless))
	}
	fmt.Println()

	if *headless > 0 {
		runHeadless(loop, cfg, scripted, *headless)
	} else if err := runRealtime(loop, cfg, scripted, log); err != nil {
		return err
	}

	// Final save on the way out
	if repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.Put(ctx, *saveName, ws.Serialize()); err != nil {
			log.Error("final save failed", zap.Error(err))
		} else {
			log.Info("final save written", zap.Uint64("tick", ws.Tick))
		}
	}
	log.Info("simulation stopped", zap.Uint64("tick", ws.Tick))
	return nil
}

// runHeadless steps the loop tick by tick with no real clock, feeding
// scripted commands as their ticks come due. Identical inputs produce an
// identical final world.
func runHeadless(loop *engine.Loop, cfg *config.Config, scripted []scripting.TimedCommand, ticks uint64) {
	cursor := 0
	for i := uint64(0); i < ticks; i++ {
		cmds := scripting.Due(scripted, &cursor, loop.State().Tick)
		for _, c := range cmds {
			command.Apply(loop.State(), cfg.Sim.SpeedMultipliers, c)
		}
		loop.Step()
	}
}

// runRealtime drives the loop off a wall-clock ticker until SIGINT/SIGTERM.
func runRealtime(loop *engine.Loop, cfg *config.Config, scripted []scripting.TimedCommand, log *zap.Logger) error {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate.Std())
	defer ticker.Stop()

	cursor := 0
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			cmds := scripting.Due(scripted, &cursor, loop.State().Tick)
			loop.Advance(elapsed, cmds)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// ── World generation ───────────────────────────────────────────────

// Demo terrain: air above the horizon, a dirt band beneath it, stone with
// scattered ore and crystal below that, bedrock along the bottom row. Each
// cell rolls its own keyed stream so the layout depends only on the seed.
func generateTerrain(width, height int, seed uint64) world.TileGrid {
	const (
		tileAir     component.TileType = 0
		tileDirt    component.TileType = 1
		tileStone   component.TileType = 2
		tileOre     component.TileType = 3
		tileCrystal component.TileType = 4
		tileBedrock component.TileType = 5
	)
	horizon := height / 4
	types := make([]component.TileType, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			switch {
			case y < horizon:
				types[i] = tileAir
			case y == height-1:
				types[i] = tileBedrock
			case y < horizon+3:
				types[i] = tileDirt
			default:
				roll := rng.New(seed, uint64(i), 0).Intn(100)
				switch {
				case roll < 8:
					types[i] = tileOre
				case roll < 12:
					types[i] = tileCrystal
				case roll < 20:
					types[i] = tileDirt
				default:
					types[i] = tileStone
				}
			}
		}
	}
	return world.TileGrid{Width: width, Height: height, HorizonY: horizon, Types: types}
}

// spawnStartingGnomes places gnomes evenly along the surface row.
func spawnStartingGnomes(ws *world.State, count int) {
	if count <= 0 {
		return
	}
	step := ws.Width / (count + 1)
	if step < 1 {
		step = 1
	}
	for i := 0; i < count; i++ {
		x := (i + 1) * step
		if x >= ws.Width {
			x = ws.Width - 1
		}
		ws.SpawnGnome(float64(x), float64(ws.HorizonY-1))
	}
}

// subscribeEvents wires observability logging onto the simulation bus.
func subscribeEvents(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.TileMined) {
		log.Info("tile mined",
			zap.Int("x", e.X), zap.Int("y", e.Y),
			zap.Uint8("type", uint8(e.Type)),
			zap.Uint64("gnome", uint64(e.By)),
		)
	})
	event.Subscribe(bus, func(e event.ResourceGrounded) {
		log.Debug("resource grounded",
			zap.String("type", string(e.Type)),
			zap.Int("x", e.X), zap.Int("y", e.Y),
		)
	})
	event.Subscribe(bus, func(e event.TaskCompleted) {
		log.Debug("task completed",
			zap.Uint64("task", uint64(e.Task)),
			zap.Uint64("gnome", uint64(e.Gnome)),
			zap.String("kind", e.Kind.String()),
		)
	})
	event.Subscribe(bus, func(e event.Deposited) {
		log.Info("resources deposited",
			zap.Uint64("gnome", uint64(e.Gnome)),
			zap.Uint64("storage", uint64(e.Storage)),
			zap.Int("count", e.Count),
		)
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
