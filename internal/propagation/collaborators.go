// Package propagation moves rumors between agents: Circle broadcasts from the
// best-informed agent in a cluster, Whisper passes one story to one neighbor
// under a per-topic budget. Everything outside the ledgers is reached through
// the small interfaces below.
package propagation

import (
	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
	"github.com/talgya/hearsay/internal/social"
)

// EmotionSink receives reaction deltas. Fire and forget.
type EmotionSink interface {
	PushEmotion(agent agents.AgentID, e agents.Emotion, magnitude float32)
}

// RelationshipProvider supplies the social data the harmony bridge reads.
type RelationshipProvider interface {
	Relationship(from, to agents.AgentID) (social.Relationship, bool)
	AffinityGroups(agent agents.AgentID) []social.Membership
}

// NeighborQuery walks the agents within radius hexes of agent in a stable
// order. The agent itself may be visited. Returning false stops the walk.
type NeighborQuery interface {
	ForEachNeighbor(agent agents.AgentID, radius int, visit func(other agents.AgentID, dist int) bool)
}

// CueSink accepts display lines. It may drop them.
type CueSink interface {
	Emit(cue narrative.Cue) bool
}

// Roster gives access to the agents taking part in gossip.
type Roster interface {
	// Ledger returns the agent's ledger, or nil for unknown agents.
	Ledger(id agents.AgentID) *gossip.Ledger
	// Eligible reports whether the agent can tell or hear gossip right now.
	Eligible(id agents.AgentID) bool
	// Mood is the agent's emotional valence in [-1, 1].
	Mood(id agents.AgentID) float32
	Name(id agents.AgentID) string
}

// Collaborators bundles the interfaces both routines use. Emotions, Cues and
// Relationships may be nil.
type Collaborators struct {
	Roster        Roster
	Neighbors     NeighborQuery
	Emotions      EmotionSink
	Relationships RelationshipProvider
	Groups        social.Groups
	Cues          CueSink
}

func (c *Collaborators) push(agent agents.AgentID, e agents.Emotion, magnitude float32) {
	if c.Emotions == nil || magnitude == 0 {
		return
	}
	c.Emotions.PushEmotion(agent, e, magnitude)
}

func (c *Collaborators) cue(cue narrative.Cue) {
	if c.Cues == nil {
		return
	}
	c.Cues.Emit(cue)
}
