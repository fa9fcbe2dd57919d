// Witnessed world events: the things that actually happen and seed new rumors.
package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/world"
)

// EventKind is the closed set of things that can happen in the village.
type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventBrawl
	EventDiscovery
	EventFeast
	EventWedding
	EventBirth
	EventFuneral
	EventStorm
)

type eventSpec struct {
	name       string
	theme      gossip.Theme
	intensity  float32
	confidence float32
	radius     int
	reaction   agents.Emotion
	weight     int // relative frequency for random events
}

var eventSpecs = [...]eventSpec{
	EventUnknown:   {name: "unknown", theme: gossip.ThemeLife, intensity: 0.2, confidence: 0.3, radius: 1, reaction: agents.EmotionCuriosity},
	EventBrawl:     {name: "brawl", theme: gossip.ThemeCombat, intensity: 0.75, confidence: 0.7, radius: 2, reaction: agents.EmotionUnease, weight: 4},
	EventDiscovery: {name: "discovery", theme: gossip.ThemeExploration, intensity: 0.6, confidence: 0.4, radius: 2, reaction: agents.EmotionAwe, weight: 2},
	EventFeast:     {name: "feast", theme: gossip.ThemeSocial, intensity: 0.5, confidence: 0.8, radius: 3, reaction: agents.EmotionDelight, weight: 3},
	EventWedding:   {name: "wedding", theme: gossip.ThemeFamily, intensity: 0.55, confidence: 0.9, radius: 2, reaction: agents.EmotionDelight, weight: 2},
	EventBirth:     {name: "birth", theme: gossip.ThemeFamily, intensity: 0.45, confidence: 0.85, radius: 1, reaction: agents.EmotionDelight, weight: 2},
	EventFuneral:   {name: "funeral", theme: gossip.ThemeLife, intensity: 0.6, confidence: 0.9, radius: 2, reaction: agents.EmotionUnease, weight: 1},
	EventStorm:     {name: "storm", theme: gossip.ThemeLife, intensity: 0.8, confidence: 0.35, radius: 6, reaction: agents.EmotionDread, weight: 1},
}

// ParseEventKind maps a name to its kind. Unrecognized names are EventUnknown.
func ParseEventKind(s string) EventKind {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := EventBrawl; int(k) < len(eventSpecs); k++ {
		if eventSpecs[k].name == s {
			return k
		}
	}
	return EventUnknown
}

func (k EventKind) spec() eventSpec {
	if int(k) < len(eventSpecs) {
		return eventSpecs[k]
	}
	return eventSpecs[EventUnknown]
}

func (k EventKind) String() string {
	return k.spec().name
}

// Theme is the abstract topic the kind feeds.
func (k EventKind) Theme() gossip.Theme {
	return k.spec().theme
}

// WorldEvent is something that happened at a place and time.
type WorldEvent struct {
	Kind      EventKind      `json:"kind"`
	Tick      uint64         `json:"tick"`
	Coord     world.HexCoord `json:"coord"`
	Place     string         `json:"place,omitempty"`
	Topic     gossip.Topic   `json:"topic"`
	Witnesses int            `json:"witnesses"`
}

// EventKey is the concrete topic key for an event.
func EventKey(kind EventKind, tick uint64, at world.HexCoord) string {
	return fmt.Sprintf("event:%s:%d:%s", kind, tick, at)
}

// Describe is the paraphrase witnesses carry.
func (ev WorldEvent) Describe() string {
	where := ev.Place
	if where == "" {
		where = "hex " + ev.Coord.String()
	}
	switch ev.Kind {
	case EventBrawl:
		return "the brawl at " + where
	case EventDiscovery:
		return "what was found near " + where
	case EventFeast:
		return "the feast at " + where
	case EventWedding:
		return "the wedding at " + where
	case EventBirth:
		return "the new baby near " + where
	case EventFuneral:
		return "the funeral at " + where
	case EventStorm:
		return "the storm over " + where
	default:
		return "the strange goings-on at " + where
	}
}

// witness has every agent near the event record it first-hand. Sleeping
// agents miss everything but storms. Caller holds the write lock.
func (s *Simulation) witness(ev *WorldEvent) {
	spec := ev.Kind.spec()
	ev.Topic = gossip.Concrete(EventKey(ev.Kind, ev.Tick, ev.Coord))
	theme := gossip.Abstract(spec.theme)
	paraphrase := ev.Describe()

	s.Spatial.ForEachWithin(ev.Coord, spec.radius, func(id uint64, dist int) bool {
		a := s.AgentIndex[agents.AgentID(id)]
		if a == nil || !a.Alive {
			return true
		}
		if a.Activity == agents.ActivityResting && ev.Kind != EventStorm {
			return true
		}
		// Farther witnesses see less clearly.
		falloff := 1 - 0.15*float32(dist)
		if evicted := a.Ledger.RecordRumor(gossip.Report{
			Topic:      ev.Topic,
			Intensity:  spec.intensity * falloff,
			Confidence: spec.confidence * falloff,
			Tick:       ev.Tick,
			Paraphrase: paraphrase,
		}); evicted != 0 {
			slog.Debug("rumor evicted", "agent", a.ID, "topic", evicted)
		}
		a.Ledger.MarkWitness(ev.Topic, ev.Tick)
		a.Ledger.RegisterAbstractHeard(theme, ev.Tick)
		a.Emotions.Push(spec.reaction, 0.1*falloff)
		ev.Witnesses++
		return true
	})
}

// pickEventKind draws a kind by weight.
func (s *Simulation) pickEventKind() EventKind {
	total := 0
	for _, sp := range eventSpecs {
		total += sp.weight
	}
	roll := s.rng.Intn(total)
	for k, sp := range eventSpecs {
		roll -= sp.weight
		if roll < 0 {
			return EventKind(k)
		}
	}
	return EventBrawl
}
