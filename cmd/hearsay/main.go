// Command hearsay runs the village rumor simulation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/hearsay/internal/config"
	"github.com/talgya/hearsay/internal/engine"
	"github.com/talgya/hearsay/internal/persistence"
	"github.com/talgya/hearsay/internal/world"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hearsay",
	Short: "Village rumor simulation",
	Long: "Hearsay simulates a village where people witness events, gossip about them " +
		"in circles and whispers, and slowly forget.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+")")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(topicCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and installs the default logger.
func setup() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)
	return cfg, nil
}

func openDB(cfg config.Config) (*persistence.DB, error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := persistence.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("database opened", "path", cfg.Storage.Path)
	return db, nil
}

// loadSimulation restores the saved village, or generates a fresh one when
// nothing is saved or fresh is set. The map is always regenerated from the seed.
func loadSimulation(ctx context.Context, cfg config.Config, db *persistence.DB, fresh bool) (*engine.Simulation, error) {
	opts := cfg.SimOptions()

	if fresh || !db.HasWorldState() {
		slog.Info("generating new village", "seed", opts.Seed, "population", opts.Population)
		m, ag := engine.Populate(opts)
		logMap(m)
		return engine.NewSimulation(m, ag, opts), nil
	}

	run, err := db.LoadRun(ctx)
	if err != nil {
		return nil, err
	}
	opts.Seed = run.Seed
	ag, dropped, err := db.LoadAgents(ctx, opts.Gossip)
	if err != nil {
		return nil, err
	}
	m := engine.GenerateMap(opts)
	sim := engine.NewSimulation(m, ag, opts)
	sim.Restore(run.RunID, run.Tick)

	slog.Info("village restored",
		"run_id", run.RunID,
		"agents", len(ag),
		"tick", run.Tick,
		"sim_time", engine.SimTime(run.Tick),
		"dropped_entries", dropped,
	)
	return sim, nil
}

func logMap(m *world.Map) {
	for t, c := range world.TerrainCounts(m) {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}
	for _, g := range m.Gatherings {
		slog.Info("gathering place", "name", g.Name, "coord", g.Coord.String())
	}
}

var errNoSave = errors.New("no saved village; run `hearsay run` first")

// loadSaved opens the database and restores the village for read-only commands.
func loadSaved(ctx context.Context) (*engine.Simulation, error) {
	cfg, err := setup()
	if err != nil {
		return nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if !db.HasWorldState() {
		return nil, errNoSave
	}
	return loadSimulation(ctx, cfg, db, false)
}
