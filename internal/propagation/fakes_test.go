package propagation

import (
	"sort"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
	"github.com/talgya/hearsay/internal/social"
)

type pushed struct {
	agent     agents.AgentID
	emotion   agents.Emotion
	magnitude float32
}

// village is an in-memory stand-in for every collaborator. Agents live on a
// line; distance is the gap between positions.
type village struct {
	ledgers map[agents.AgentID]*gossip.Ledger
	pos     map[agents.AgentID]int
	busy    map[agents.AgentID]bool
	mood    map[agents.AgentID]float32
	rels    map[[2]agents.AgentID]social.Relationship
	groups  map[agents.AgentID][]social.Membership

	pushes []pushed
	cues   []narrative.Cue
}

func newVillage() *village {
	return &village{
		ledgers: make(map[agents.AgentID]*gossip.Ledger),
		pos:     make(map[agents.AgentID]int),
		busy:    make(map[agents.AgentID]bool),
		mood:    make(map[agents.AgentID]float32),
		rels:    make(map[[2]agents.AgentID]social.Relationship),
		groups:  make(map[agents.AgentID][]social.Membership),
	}
}

func (v *village) add(id agents.AgentID, at int) *gossip.Ledger {
	l := gossip.NewLedger(gossip.DefaultTuning())
	v.ledgers[id] = l
	v.pos[id] = at
	return l
}

func (v *village) collaborators() *Collaborators {
	return &Collaborators{
		Roster:        v,
		Neighbors:     v,
		Emotions:      v,
		Relationships: v,
		Groups:        social.SeedGroups(),
		Cues:          v,
	}
}

func (v *village) Ledger(id agents.AgentID) *gossip.Ledger { return v.ledgers[id] }
func (v *village) Eligible(id agents.AgentID) bool {
	_, ok := v.ledgers[id]
	return ok && !v.busy[id]
}
func (v *village) Mood(id agents.AgentID) float32 { return v.mood[id] }
func (v *village) Name(id agents.AgentID) string  { return "Villager" }

func (v *village) ForEachNeighbor(agent agents.AgentID, radius int, visit func(agents.AgentID, int) bool) {
	type hit struct {
		id   agents.AgentID
		dist int
	}
	var hits []hit
	for id, p := range v.pos {
		d := p - v.pos[agent]
		if d < 0 {
			d = -d
		}
		if d <= radius {
			hits = append(hits, hit{id, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].id < hits[j].id
	})
	for _, h := range hits {
		if !visit(h.id, h.dist) {
			return
		}
	}
}

func (v *village) PushEmotion(agent agents.AgentID, e agents.Emotion, magnitude float32) {
	v.pushes = append(v.pushes, pushed{agent, e, magnitude})
}

func (v *village) Relationship(from, to agents.AgentID) (social.Relationship, bool) {
	r, ok := v.rels[[2]agents.AgentID{from, to}]
	return r, ok
}

func (v *village) AffinityGroups(agent agents.AgentID) []social.Membership {
	return v.groups[agent]
}

func (v *village) Emit(cue narrative.Cue) bool {
	v.cues = append(v.cues, cue)
	return true
}

// felt sums the magnitudes pushed to agent for emotion.
func (v *village) felt(agent agents.AgentID, e agents.Emotion) float32 {
	var total float32
	for _, p := range v.pushes {
		if p.agent == agent && p.emotion == e {
			total += p.magnitude
		}
	}
	return total
}

func hear(l *gossip.Ledger, key string, intensity, confidence float32, tick uint64) gossip.Topic {
	t := gossip.Concrete(key)
	l.RecordRumor(gossip.Report{Topic: t, Intensity: intensity, Confidence: confidence, Tick: tick, Paraphrase: key})
	return t
}
