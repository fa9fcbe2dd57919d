package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hearsay/internal/api"
	"github.com/talgya/hearsay/internal/engine"
)

var (
	runTicks uint64
	runFresh bool
	runNoAPI bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long: "Run the simulation in real time with the HTTP API, or headless for a fixed " +
		"number of ticks with --ticks. State is saved every sim-day and on exit.",
	Args: cobra.NoArgs,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().Uint64Var(&runTicks, "ticks", 0, "run this many ticks as fast as possible, then save and exit")
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "ignore any saved village and generate a new one")
	runCmd.Flags().BoolVar(&runNoAPI, "no-api", false, "do not start the HTTP API")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	sim, err := loadSimulation(ctx, cfg, db, runFresh)
	if err != nil {
		return err
	}
	st := sim.Status()
	slog.Info("village ready", "run_id", st.RunID, "agents", st.Stats.Population, "hexes", sim.WorldMap.HexCount())

	save := func() {
		// Saving must finish even when ctx is what ended the run.
		if err := db.SaveWorld(context.WithoutCancel(ctx), sim.Checkpoint()); err != nil {
			slog.Error("save failed", "error", err)
		}
	}
	if st.Tick == 0 {
		save()
	}

	eng := engine.NewEngine()
	eng.Tick = st.Tick
	eng.Interval = cfg.Simulation.TickInterval
	eng.SetSpeed(cfg.Simulation.Speed)

	saveEvery := uint64(max(cfg.Storage.SaveEvery, 1))
	eng.OnTick = sim.TickMinute
	eng.OnHour = sim.TickHour
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if (tick/engine.TicksPerSimDay)%saveEvery == 0 {
			save()
		}
	}
	eng.OnWeek = sim.TickWeek

	if runTicks > 0 {
		n := eng.Advance(ctx, runTicks)
		slog.Info("headless run finished", "ticks", n, "sim_time", engine.SimTime(eng.Tick))
		save()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eng.Run(gctx)
		return nil
	})
	if !runNoAPI {
		srv := &api.Server{
			Sim:        sim,
			Eng:        eng,
			DB:         db,
			Addr:       cfg.API.Addr,
			AdminKey:   cfg.API.AdminKey,
			RumorLimit: cfg.API.RateLimit,
		}
		if srv.AdminKey == "" {
			slog.Warn("HEARSAY_ADMIN_KEY not set; admin POST endpoints will be disabled")
		}
		g.Go(func() error { return srv.Run(gctx) })
	}

	err = g.Wait()
	slog.Info("shutting down", "tick", eng.Tick)
	save()
	return err
}
