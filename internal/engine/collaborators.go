package engine

import (
	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/social"
)

// roster exposes the simulation to the gossip routines. Every method is
// called from a tick, so the write lock is already held.
type roster struct {
	s *Simulation
}

func (r roster) Ledger(id agents.AgentID) *gossip.Ledger {
	if a := r.s.AgentIndex[id]; a != nil {
		return a.Ledger
	}
	return nil
}

func (r roster) Eligible(id agents.AgentID) bool {
	a := r.s.AgentIndex[id]
	return a != nil && !a.Busy()
}

func (r roster) Mood(id agents.AgentID) float32 {
	if a := r.s.AgentIndex[id]; a != nil {
		return a.Mood()
	}
	return 0
}

func (r roster) Name(id agents.AgentID) string {
	if a := r.s.AgentIndex[id]; a != nil {
		return a.Name
	}
	return ""
}

func (r roster) ForEachNeighbor(id agents.AgentID, radius int, visit func(other agents.AgentID, dist int) bool) {
	at, ok := r.s.Spatial.Position(uint64(id))
	if !ok {
		return
	}
	r.s.Spatial.ForEachWithin(at, radius, func(other uint64, dist int) bool {
		return visit(agents.AgentID(other), dist)
	})
}

func (r roster) PushEmotion(id agents.AgentID, e agents.Emotion, magnitude float32) {
	if a := r.s.AgentIndex[id]; a != nil && a.Alive {
		a.Emotions.Push(e, magnitude)
	}
}

func (r roster) Relationship(from, to agents.AgentID) (social.Relationship, bool) {
	if a := r.s.AgentIndex[from]; a != nil {
		return a.RelationshipWith(to)
	}
	return social.Relationship{}, false
}

func (r roster) AffinityGroups(id agents.AgentID) []social.Membership {
	if a := r.s.AgentIndex[id]; a != nil {
		return a.Memberships
	}
	return nil
}
