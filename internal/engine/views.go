package engine

import (
	"sort"

	"github.com/samber/lo"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
	"github.com/talgya/hearsay/internal/social"
)

// Status is a point-in-time summary of the simulation.
type Status struct {
	RunID     string   `json:"run_id"`
	Seed      int64    `json:"seed"`
	Tick      uint64   `json:"tick"`
	SimTime   string   `json:"sim_time"`
	Stats     SimStats `json:"stats"`
	Today     DayStats `json:"today"`
	Yesterday DayStats `json:"yesterday"`
}

// AgentSummary is the list view of one agent.
type AgentSummary struct {
	ID        agents.AgentID `json:"id"`
	Name      string         `json:"name"`
	Position  string         `json:"position"`
	Activity  string         `json:"activity"`
	Mood      float32        `json:"mood"`
	Emotion   string         `json:"emotion"`
	Rumors    int            `json:"rumors"`
	Knowledge float32        `json:"knowledge"`
}

// RumorView is one record of an agent's ledger as a reader would see it.
type RumorView struct {
	Topic       string         `json:"topic"`
	Abstract    bool           `json:"abstract"`
	Intensity   float32        `json:"intensity"`
	Confidence  float32        `json:"confidence"`
	ShareCount  uint8          `json:"share_count"`
	Heard       uint64         `json:"last_heard_tick"`
	HeardFrom   agents.AgentID `json:"heard_from,omitempty"`
	Witnessed   bool           `json:"witnessed"`
	Tone        string         `json:"tone"`
	TemplateKey string         `json:"template_key"`
	Line        string         `json:"line"`
}

// TopicView is how far one topic has spread.
type TopicView struct {
	Topic         string           `json:"topic"`
	Abstract      bool             `json:"abstract"`
	Holders       []agents.AgentID `json:"holders"`
	Witnesses     int              `json:"witnesses"`
	AvgIntensity  float32          `json:"avg_intensity"`
	AvgConfidence float32          `json:"avg_confidence"`
	Tones         map[string]int   `json:"tones"`
}

// Checkpoint is a consistent copy of everything worth saving.
type Checkpoint struct {
	RunID   string                             `json:"run_id"`
	Seed    int64                              `json:"seed"`
	Tick    uint64                             `json:"tick"`
	Agents  []agents.Agent                     `json:"agents"`
	Ledgers map[agents.AgentID]gossip.Snapshot `json:"ledgers"`
	Events  []Event                            `json:"events"`
}

// Status returns the current summary.
func (s *Simulation) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		RunID:     s.RunID,
		Seed:      s.Seed,
		Tick:      s.LastTick,
		SimTime:   SimTime(s.LastTick),
		Stats:     s.Stats,
		Today:     s.dayStats,
		Yesterday: s.Yesterday,
	}
}

// AgentSummaries lists living agents in ID order.
func (s *Simulation) AgentSummaries() []AgentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alive := lo.Filter(s.Agents, func(a *agents.Agent, _ int) bool { return a.Alive })
	return lo.Map(alive, func(a *agents.Agent, _ int) AgentSummary {
		dominant, _ := a.Emotions.Dominant()
		return AgentSummary{
			ID:        a.ID,
			Name:      a.Name,
			Position:  a.Position.String(),
			Activity:  a.Activity.String(),
			Mood:      a.Mood(),
			Emotion:   dominant.String(),
			Rumors:    a.Ledger.Len(),
			Knowledge: a.Ledger.KnowledgeScore(s.LastTick),
		}
	})
}

// AgentRumors renders an agent's ledger, strongest records first.
func (s *Simulation) AgentRumors(id agents.AgentID) ([]RumorView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.AgentIndex[id]
	if a == nil {
		return nil, false
	}
	tick := s.LastTick
	records := a.Ledger.Records()
	sort.SliceStable(records, func(i, j int) bool { return records[i].Score() > records[j].Score() })

	return lo.Map(records, func(r gossip.Rumor, _ int) RumorView {
		tone := gossip.Classify(r, tick)
		key := gossip.TemplateKey(tone, r, tick)
		view := RumorView{
			Topic:       r.Topic.String(),
			Abstract:    gossip.IsAbstract(r.Topic),
			Intensity:   r.Intensity,
			Confidence:  r.Confidence,
			ShareCount:  r.ShareCount,
			Heard:       r.LastHeardTick,
			Witnessed:   r.LastWitnessTick != 0,
			Tone:        tone.String(),
			TemplateKey: key,
			Line:        narrative.Render(key, a.Name, narrative.Label(r)),
		}
		if r.Source != nil {
			view.HeardFrom = agents.AgentID(*r.Source)
		}
		return view
	}), true
}

// TopicSpread reports who currently holds topic.
func (s *Simulation) TopicSpread(topic gossip.Topic) TopicView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := TopicView{
		Topic:    topic.String(),
		Abstract: gossip.IsAbstract(topic),
		Tones:    make(map[string]int),
	}
	var held []gossip.Rumor
	for _, a := range s.Agents {
		if !a.Alive {
			continue
		}
		if view.Abstract {
			// Themes have no records, only heard-history.
			if a.Ledger.KnowsAbstract(topic) {
				view.Holders = append(view.Holders, a.ID)
			}
			continue
		}
		r, ok := a.Ledger.Get(topic)
		if !ok {
			continue
		}
		view.Holders = append(view.Holders, a.ID)
		held = append(held, r)
		if r.LastWitnessTick != 0 {
			view.Witnesses++
		}
		view.Tones[gossip.Classify(r, s.LastTick).String()]++
	}
	if n := float32(len(held)); n > 0 {
		view.AvgIntensity = lo.SumBy(held, func(r gossip.Rumor) float32 { return r.Intensity }) / n
		view.AvgConfidence = lo.SumBy(held, func(r gossip.Rumor) float32 { return r.Confidence }) / n
	}
	return view
}

// RecentEvents returns up to n of the latest events, oldest first.
func (s *Simulation) RecentEvents(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.Events) {
		n = len(s.Events)
	}
	out := make([]Event, n)
	copy(out, s.Events[len(s.Events)-n:])
	return out
}

// RecentCues returns up to n of the latest display lines.
func (s *Simulation) RecentCues(n int) []narrative.Cue {
	return s.Cues.Recent(n)
}

// Checkpoint copies agents and ledger snapshots under the read lock.
func (s *Simulation) Checkpoint() Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := Checkpoint{
		RunID:   s.RunID,
		Seed:    s.Seed,
		Tick:    s.LastTick,
		Agents:  make([]agents.Agent, 0, len(s.Agents)),
		Ledgers: make(map[agents.AgentID]gossip.Snapshot, len(s.Agents)),
		Events:  append([]Event(nil), s.Events...),
	}
	for _, a := range s.Agents {
		c := *a
		c.Ledger = nil
		c.Relationships = make(map[agents.AgentID]social.Relationship, len(a.Relationships))
		for k, v := range a.Relationships {
			c.Relationships[k] = v
		}
		c.Memberships = append([]social.Membership(nil), a.Memberships...)
		cp.Agents = append(cp.Agents, c)
		cp.Ledgers[a.ID] = a.Ledger.Snapshot()
	}
	return cp
}

// Restore carries a saved run's identity and clock into a rebuilt simulation.
func (s *Simulation) Restore(runID string, tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != "" {
		s.RunID = runID
	}
	s.LastTick = tick
	s.updateStats()
}
