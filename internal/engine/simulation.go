// Simulation ties together the village, its agents and the gossip routines,
// and runs them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
	"github.com/talgya/hearsay/internal/propagation"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

// Options configures a simulation.
type Options struct {
	Seed        int64
	Population  int
	World       world.GenConfig
	Gossip      gossip.Tuning
	Circle      propagation.CircleConfig
	Whisper     propagation.WhisperConfig
	EventChance float64 // chance of a witnessed event each sim-hour
	WalkSpeed   int     // hexes per sim-hour
	CueLog      int
}

// DefaultOptions returns a small village.
func DefaultOptions() Options {
	return Options{
		Seed:        42,
		Population:  120,
		World:       world.DefaultGenConfig(),
		Gossip:      gossip.DefaultTuning(),
		Circle:      propagation.DefaultCircleConfig(),
		Whisper:     propagation.DefaultWhisperConfig(),
		EventChance: 0.2,
		WalkSpeed:   3,
		CueLog:      narrative.DefaultCueLogSize,
	}
}

// Simulation holds the complete village state and wires systems together.
// Ticks take the write lock; readers use the view methods.
type Simulation struct {
	mu sync.RWMutex

	RunID      string
	Seed       int64
	WorldMap   *world.Map
	Agents     []*agents.Agent // ID order
	AgentIndex map[agents.AgentID]*agents.Agent
	Groups     social.Groups
	Spatial    *world.Index
	Cues       *narrative.Cues
	Events     []Event // Recent events, trimmed weekly
	LastTick   uint64  // Most recent tick processed

	// Statistics: Stats is refreshed daily, Yesterday holds the last full day.
	Stats     SimStats
	Yesterday DayStats

	opts     Options
	circle   *propagation.Circle
	whisper  *propagation.Whisper
	rng      *rand.Rand
	dayStats DayStats
}

// Event is a notable occurrence in the village.
type Event struct {
	Tick        uint64 `json:"tick"`
	Description string `json:"description"`
	Category    string `json:"category"` // "event", "gossip"
}

// SimStats tracks aggregate village statistics.
type SimStats struct {
	Population   int     `json:"population"`
	Rumors       int     `json:"rumors"`
	AvgMood      float32 `json:"avg_mood"`
	AvgKnowledge float32 `json:"avg_knowledge"`
}

// DayStats counts gossip activity over one sim-day.
type DayStats struct {
	Broadcasts    int `json:"broadcasts"`
	Whispers      int `json:"whispers"`
	Adopted       int `json:"adopted"`
	Corroborated  int `json:"corroborated"`
	Duplicates    int `json:"duplicates"`
	AbstractHeard int `json:"abstract_heard"`
	Witnessed     int `json:"witnessed"`
	OptedOut      int `json:"opted_out"`
	Expired       int `json:"expired"`
	Events        int `json:"events"`
}

func (d *DayStats) count(exs ...propagation.Exchange) {
	for _, ex := range exs {
		switch ex.Outcome {
		case propagation.OutcomeAdopted:
			d.Adopted++
		case propagation.OutcomeCorroborated:
			d.Corroborated++
		case propagation.OutcomeDuplicate:
			d.Duplicates++
		case propagation.OutcomeAbstractHeard:
			d.AbstractHeard++
		case propagation.OutcomeWitnessed:
			d.Witnessed++
		case propagation.OutcomeOptedOut:
			d.OptedOut++
		}
	}
}

// Populate generates a fresh village and its people from opts.
func Populate(opts Options) (*world.Map, []*agents.Agent) {
	m := GenerateMap(opts)
	spawner := agents.NewSpawner(opts.Seed, opts.Gossip, social.SeedGroups())
	return m, spawner.SpawnPopulation(opts.Population, m)
}

// GenerateMap rebuilds the village map. The map is never saved; the same seed
// always yields the same map.
func GenerateMap(opts Options) *world.Map {
	cfg := opts.World
	cfg.Seed = opts.Seed
	return world.Generate(cfg)
}

// NewSimulation creates a Simulation from generated or restored components.
func NewSimulation(m *world.Map, ag []*agents.Agent, opts Options) *Simulation {
	sorted := make([]*agents.Agent, len(ag))
	copy(sorted, ag)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	index := make(map[agents.AgentID]*agents.Agent, len(sorted))
	spatial := world.NewIndex()
	for _, a := range sorted {
		index[a.ID] = a
		if a.Ledger == nil {
			a.Ledger = gossip.NewLedger(opts.Gossip)
		}
		if a.Alive {
			spatial.Place(uint64(a.ID), a.Position)
		}
	}

	s := &Simulation{
		RunID:      uuid.NewString(),
		Seed:       opts.Seed,
		WorldMap:   m,
		Agents:     sorted,
		AgentIndex: index,
		Groups:     social.SeedGroups(),
		Spatial:    spatial,
		Cues:       narrative.NewCues(opts.CueLog),
		opts:       opts,
		rng:        rand.New(rand.NewSource(opts.Seed + 500)),
	}

	collab := &propagation.Collaborators{
		Roster:        roster{s},
		Neighbors:     roster{s},
		Emotions:      roster{s},
		Relationships: roster{s},
		Groups:        s.Groups,
		Cues:          s.Cues,
	}
	s.circle = propagation.NewCircle(opts.Circle, collab)
	s.whisper = propagation.NewWhisper(opts.Whisper, collab)
	s.updateStats()
	return s
}

// TickMinute runs every tick: due ledgers decay, then agents gossip.
func (s *Simulation) TickMinute(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	s.dayStats.Expired += s.decayDue(tick)

	// Propagation mutates more than one ledger per call, so it stays on this
	// goroutine.
	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		if exs := s.circle.Run(a.ID, tick); len(exs) > 0 {
			s.dayStats.Broadcasts++
			s.dayStats.count(exs...)
		}
		if ex, ok := s.whisper.Run(a.ID, tick); ok {
			s.dayStats.Whispers++
			s.dayStats.count(ex)
		}
	}
}

// decayDue runs the decay pass on every ledger whose turn has come. Each
// goroutine owns exactly one ledger. Returns the number of records expired.
func (s *Simulation) decayDue(tick uint64) int {
	due := lo.Filter(s.Agents, func(a *agents.Agent, _ int) bool {
		return a.Alive && a.NextDecayTick <= tick
	})
	if len(due) == 0 {
		return 0
	}

	var expired atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, a := range due {
		g.Go(func() error {
			n := a.Ledger.TickDecay(tick)
			a.NextDecayTick = tick + a.Ledger.ScheduleNextDecayDelay()
			expired.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()
	return int(expired.Load())
}

// TickHour runs every sim-hour: routines, movement and witnessed events.
func (s *Simulation) TickHour(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hour := HourOfDay(tick)
	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		a.Emotions.Decay()

		var gathering *world.HexCoord
		if g, ok := s.WorldMap.NearestGathering(a.Home); ok {
			gathering = &g.Coord
		}
		action := agents.Decide(a, hour, gathering)
		pos := agents.ApplyAction(a, action, s.WorldMap, s.opts.WalkSpeed)
		s.Spatial.Place(uint64(a.ID), pos)
	}

	if s.rng.Float64() < s.opts.EventChance {
		kind := s.pickEventKind()
		coord, place := s.eventSite(kind)
		s.trigger(kind, tick, coord, place)
	}
}

// TickDay runs every sim-day: statistics and the daily summary.
func (s *Simulation) TickDay(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateStats()
	d := s.dayStats

	slog.Info("daily report",
		"tick", tick,
		"time", SimTime(tick),
		"population", s.Stats.Population,
		"rumors", s.Stats.Rumors,
		"avg_mood", fmt.Sprintf("%.3f", s.Stats.AvgMood),
		"avg_knowledge", fmt.Sprintf("%.3f", s.Stats.AvgKnowledge),
		"broadcasts", d.Broadcasts,
		"whispers", d.Whispers,
		"adopted", d.Adopted,
		"corroborated", d.Corroborated,
		"duplicates", d.Duplicates,
		"witnessed", d.Witnessed,
		"opted_out", d.OptedOut,
		"expired", d.Expired,
		"events", d.Events,
		"cues_suppressed", s.Cues.Suppressed(),
	)

	// Log a few of the day's cues.
	for _, c := range s.Cues.Recent(3) {
		if c.Tick+TicksPerSimDay > tick {
			slog.Info("overheard", "tick", c.Tick, "line", c.Text)
		}
	}

	s.Yesterday = d
	s.dayStats = DayStats{}
	s.Cues.Prune(tick, TicksPerSimDay)
}

// TickWeek trims old events to prevent unbounded growth.
func (s *Simulation) TickWeek(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Info("weekly summary",
		"tick", tick,
		"time", SimTime(tick),
		"events_this_week", len(s.Events),
	)
	if len(s.Events) > 1000 {
		s.Events = s.Events[len(s.Events)-1000:]
	}
}

// TriggerEvent makes an event happen now at coord and returns it with its
// witness count.
func (s *Simulation) TriggerEvent(kind EventKind, coord world.HexCoord) WorldEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	place := ""
	if hex := s.WorldMap.Get(coord); hex != nil && hex.GatheringID != nil {
		if g, ok := s.WorldMap.Gathering(*hex.GatheringID); ok {
			place = g.Name
		}
	}
	return s.trigger(kind, s.LastTick, coord, place)
}

func (s *Simulation) trigger(kind EventKind, tick uint64, coord world.HexCoord, place string) WorldEvent {
	ev := WorldEvent{Kind: kind, Tick: tick, Coord: coord, Place: place}
	s.witness(&ev)
	s.dayStats.Events++
	s.Events = append(s.Events, Event{
		Tick:        tick,
		Description: fmt.Sprintf("%s (%d witnesses)", ev.Describe(), ev.Witnesses),
		Category:    "event",
	})
	slog.Debug("world event", "kind", kind, "tick", tick, "coord", coord.String(), "witnesses", ev.Witnesses)
	return ev
}

// eventSite picks where an event happens: a gathering place for social kinds,
// anywhere walkable otherwise.
func (s *Simulation) eventSite(kind EventKind) (world.HexCoord, string) {
	gs := s.WorldMap.Gatherings
	switch kind {
	case EventBrawl, EventFeast, EventWedding, EventFuneral:
		if len(gs) > 0 {
			g := gs[s.rng.Intn(len(gs))]
			return g.Coord, g.Name
		}
	}
	coords := lo.Filter(s.WorldMap.Coords(), func(c world.HexCoord, _ int) bool {
		return s.WorldMap.Passable(c)
	})
	if len(coords) == 0 {
		return world.HexCoord{}, ""
	}
	return coords[s.rng.Intn(len(coords))], ""
}

func (s *Simulation) updateStats() {
	alive := lo.Filter(s.Agents, func(a *agents.Agent, _ int) bool { return a.Alive })
	s.Stats.Population = len(alive)
	s.Stats.Rumors = lo.SumBy(alive, func(a *agents.Agent) int { return a.Ledger.Len() })
	if len(alive) == 0 {
		s.Stats.AvgMood, s.Stats.AvgKnowledge = 0, 0
		return
	}
	s.Stats.AvgMood = lo.SumBy(alive, func(a *agents.Agent) float32 { return a.Mood() }) / float32(len(alive))
	s.Stats.AvgKnowledge = lo.SumBy(alive, func(a *agents.Agent) float32 {
		return a.Ledger.KnowledgeScore(s.LastTick)
	}) / float32(len(alive))
}
