// Package agents provides the agent data model: identity, position, social ties,
// emotional state and the rumor ledger each agent carries.
package agents

import (
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

// AgentID is a unique identifier for an agent.
type AgentID uint64

// Agent is a person in the simulation who hears and tells rumors.
type Agent struct {
	ID   AgentID `json:"id"`
	Name string  `json:"name"`

	// Location
	Position    world.HexCoord  `json:"position"`
	Home        world.HexCoord  `json:"home"`
	Destination *world.HexCoord `json:"destination,omitempty"`

	// Social
	Relationships map[AgentID]social.Relationship `json:"relationships"` // directed: this agent's view
	Memberships   []social.Membership             `json:"memberships"`

	// Temperament
	Talkative float32      `json:"talkative"` // 0.0–1.0, shifts gossip cadence
	Emotions  EmotionState `json:"emotions"`
	Activity  Activity     `json:"activity"`

	// Gossip
	Ledger        *gossip.Ledger `json:"-"`
	NextDecayTick uint64         `json:"next_decay_tick"`

	Alive bool `json:"alive"`
}

// Busy reports whether the agent is too occupied to gossip.
func (a *Agent) Busy() bool {
	return !a.Alive || a.Activity.Busy()
}

// RelationshipWith returns this agent's view of another.
func (a *Agent) RelationshipWith(other AgentID) (social.Relationship, bool) {
	r, ok := a.Relationships[other]
	return r, ok
}

// SetRelationship records this agent's view of another, clamping every axis to [-1, 1].
func (a *Agent) SetRelationship(other AgentID, r social.Relationship) {
	if a.Relationships == nil {
		a.Relationships = make(map[AgentID]social.Relationship)
	}
	r.Trust = clampSigned(r.Trust)
	r.Affection = clampSigned(r.Affection)
	r.Respect = clampSigned(r.Respect)
	r.Comfort = clampSigned(r.Comfort)
	a.Relationships[other] = r
}

// Mood is the agent's emotional valence, -1.0 to 1.0.
func (a *Agent) Mood() float32 {
	return a.Emotions.Valence()
}

func clampSigned(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
