package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration lets TOML carry durations as strings ("50ms", "30m").
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Sim      SimConfig      `toml:"sim"`
	Physics  PhysicsConfig  `toml:"physics"`
	Tasks    TasksConfig    `toml:"tasks"`
	Path     PathConfig     `toml:"path"`
	Idle     IdleConfig     `toml:"idle"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type SimConfig struct {
	TickRate         Duration  `toml:"tick_rate"`          // logical tick length
	SpeedMultipliers []float64 `toml:"speed_multipliers"`  // selectable via SetSpeed
	MaxTicksPerFrame int       `toml:"max_ticks_per_frame"`
	CarryCapacity    int       `toml:"carry_capacity"`
	AutosaveTicks    int       `toml:"autosave_ticks"` // 0 disables autosave
	WorldMargin      int       `toml:"world_margin"`   // tiles below the grid before cleanup
}

type PhysicsConfig struct {
	Gravity          float64 `toml:"gravity"`           // tiles/tick² downward
	TerminalVelocity float64 `toml:"terminal_velocity"` // tiles/tick
	WalkSpeed        float64 `toml:"walk_speed"`        // tiles/tick while on task travel
	StrollFactor     float64 `toml:"stroll_factor"`     // walk speed multiplier while strolling
}

type TasksConfig struct {
	AssignInterval  int `toml:"assign_interval_ticks"` // throttle: run every N ticks
	MaxPathAttempts int `toml:"max_path_attempts"`     // route computations per gnome per cycle
}

type PathConfig struct {
	CacheSize int `toml:"cache_size"`
	CacheTTL  int `toml:"cache_ttl_ticks"`
}

type IdleConfig struct {
	Interval        int     `toml:"interval_ticks"` // same modulo phase as task assignment
	StrollMinRadius float64 `toml:"stroll_min_radius"`
	StrollMaxRadius float64 `toml:"stroll_max_radius"`
	StrollRetries   int     `toml:"stroll_retries"`
	StrollWeight    int     `toml:"stroll_weight"`
	SocializeWeight int     `toml:"socialize_weight"`
	RestWeight      int     `toml:"rest_weight"`
	SocializeRange  float64 `toml:"socialize_range"`
	MinDuration     int     `toml:"min_duration_ticks"` // socialize/rest duration range
	MaxDuration     int     `toml:"max_duration_ticks"`
}

type DatabaseConfig struct {
	DSN             string   `toml:"dsn"` // empty = run without save backend
	MaxOpenConns    int      `toml:"max_open_conns"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML config, layering it over defaults. A missing file is not
// an error: the engine runs on defaults alone.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, cfg.Validate()
			}
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:         Duration(50 * time.Millisecond),
			SpeedMultipliers: []float64{1, 2, 4},
			MaxTicksPerFrame: 10,
			CarryCapacity:    5,
			AutosaveTicks:    6000, // 5 minutes at 50ms ticks
			WorldMargin:      8,
		},
		Physics: PhysicsConfig{
			Gravity:          0.02,
			TerminalVelocity: 0.5,
			WalkSpeed:        0.1,
			StrollFactor:     0.5,
		},
		Tasks: TasksConfig{
			AssignInterval:  10,
			MaxPathAttempts: 8,
		},
		Path: PathConfig{
			CacheSize: 256,
			CacheTTL:  40,
		},
		Idle: IdleConfig{
			Interval:        10,
			StrollMinRadius: 3,
			StrollMaxRadius: 10,
			StrollRetries:   8,
			StrollWeight:    50,
			SocializeWeight: 35,
			RestWeight:      15,
			SocializeRange:  8,
			MinDuration:     40,
			MaxDuration:     160,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: Duration(30 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects configs the simulation cannot run deterministically on.
func (c *Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive")
	}
	if len(c.Sim.SpeedMultipliers) == 0 {
		return fmt.Errorf("sim.speed_multipliers must not be empty")
	}
	for _, m := range c.Sim.SpeedMultipliers {
		if m <= 0 {
			return fmt.Errorf("sim.speed_multipliers entries must be positive, got %v", m)
		}
	}
	if c.Sim.MaxTicksPerFrame <= 0 {
		return fmt.Errorf("sim.max_ticks_per_frame must be positive")
	}
	if c.Sim.CarryCapacity <= 0 {
		return fmt.Errorf("sim.carry_capacity must be positive")
	}
	if c.Tasks.AssignInterval <= 0 {
		return fmt.Errorf("tasks.assign_interval_ticks must be positive")
	}
	if c.Tasks.MaxPathAttempts <= 0 {
		return fmt.Errorf("tasks.max_path_attempts must be positive")
	}
	if c.Path.CacheSize <= 0 || c.Path.CacheTTL <= 0 {
		return fmt.Errorf("path.cache_size and path.cache_ttl_ticks must be positive")
	}
	if c.Idle.Interval <= 0 {
		return fmt.Errorf("idle.interval_ticks must be positive")
	}
	if sum := c.Idle.StrollWeight + c.Idle.SocializeWeight + c.Idle.RestWeight; sum != 100 {
		return fmt.Errorf("idle behavior weights must sum to 100, got %d", sum)
	}
	if c.Idle.StrollMinRadius < 0 || c.Idle.StrollMaxRadius < c.Idle.StrollMinRadius {
		return fmt.Errorf("idle stroll radii invalid: min %v max %v",
			c.Idle.StrollMinRadius, c.Idle.StrollMaxRadius)
	}
	if c.Idle.MinDuration <= 0 || c.Idle.MaxDuration < c.Idle.MinDuration {
		return fmt.Errorf("idle duration range invalid: min %d max %d",
			c.Idle.MinDuration, c.Idle.MaxDuration)
	}
	if c.Physics.Gravity <= 0 || c.Physics.TerminalVelocity <= 0 {
		return fmt.Errorf("physics gravity and terminal_velocity must be positive")
	}
	if c.Physics.WalkSpeed <= 0 || c.Physics.StrollFactor <= 0 {
		return fmt.Errorf("physics walk_speed and stroll_factor must be positive")
	}
	return nil
}

// IdleWeights returns the behavior weights in draw order
// (stroll, socialize, rest).
func (c *Config) IdleWeights() []int {
	return []int{c.Idle.StrollWeight, c.Idle.SocializeWeight, c.Idle.RestWeight}
}
