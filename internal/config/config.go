// Package config loads the simulator's YAML configuration. Values missing from
// the file fall back to the built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/propagation"
	"github.com/talgya/hearsay/internal/world"
)

// Environment variables consulted by Load.
const (
	EnvConfigPath = "HEARSAY_CONFIG"
	EnvLogLevel   = "LOG_LEVEL"
	EnvDBPath     = "HEARSAY_DB"
	EnvAdminKey   = "HEARSAY_ADMIN_KEY"
)

// SimulationConfig sizes and paces the village.
type SimulationConfig struct {
	Seed         int64         `yaml:"seed"`
	Population   int           `yaml:"population"`
	TickInterval time.Duration `yaml:"tick_interval"`
	Speed        float64       `yaml:"speed"`
	EventChance  float64       `yaml:"event_chance"` // per sim-hour
	WalkSpeed    int           `yaml:"walk_speed"`   // hexes per sim-hour
	CueLog       int           `yaml:"cue_log"`
}

// StorageConfig controls checkpointing.
type StorageConfig struct {
	Path      string `yaml:"path"`
	SaveEvery int    `yaml:"save_every_days"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Addr      string `yaml:"addr"`
	RateLimit int    `yaml:"rate_limit"` // ledger reads per client per minute
	AdminKey  string `yaml:"admin_key"`
}

// Config is the complete file layout.
type Config struct {
	Simulation SimulationConfig          `yaml:"simulation"`
	World      world.GenConfig           `yaml:"world"`
	Storage    StorageConfig             `yaml:"storage"`
	API        APIConfig                 `yaml:"api"`
	Gossip     gossip.Tuning             `yaml:"gossip"`
	Circle     propagation.CircleConfig  `yaml:"circle"`
	Whisper    propagation.WhisperConfig `yaml:"whisper"`
	LogLevel   string                    `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := engine.DefaultOptions()
	return Config{
		Simulation: SimulationConfig{
			Seed:         opts.Seed,
			Population:   opts.Population,
			TickInterval: time.Second,
			Speed:        1,
			EventChance:  opts.EventChance,
			WalkSpeed:    opts.WalkSpeed,
			CueLog:       opts.CueLog,
		},
		World: opts.World,
		Storage: StorageConfig{
			Path:      "data/hearsay.db",
			SaveEvery: 1,
		},
		API: APIConfig{
			Addr:      ":8080",
			RateLimit: 60,
		},
		Gossip:   opts.Gossip,
		Circle:   opts.Circle,
		Whisper:  opts.Whisper,
		LogLevel: "info",
	}
}

// Load reads path (or $HEARSAY_CONFIG when path is empty) over the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			slog.Warn("config file not found, using defaults", "path", path)
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvAdminKey); v != "" {
		cfg.API.AdminKey = v
	}
	return cfg, nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SimOptions converts the file layout into simulation options.
func (c Config) SimOptions() engine.Options {
	w := c.World
	w.Seed = c.Simulation.Seed
	return engine.Options{
		Seed:        c.Simulation.Seed,
		Population:  c.Simulation.Population,
		World:       w,
		Gossip:      c.Gossip,
		Circle:      c.Circle,
		Whisper:     c.Whisper,
		EventChance: c.Simulation.EventChance,
		WalkSpeed:   c.Simulation.WalkSpeed,
		CueLog:      c.Simulation.CueLog,
	}
}
