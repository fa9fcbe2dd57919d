package propagation

import (
	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/social"
)

// Profile returns the harmony bias between listener and teller. Missing
// relationship data is neutral.
func (c *Collaborators) Profile(listener, teller agents.AgentID) social.HarmonyProfile {
	if c.Relationships == nil {
		return social.Neutral
	}
	in := social.HarmonyInput{
		GroupsA: c.Relationships.AffinityGroups(listener),
		GroupsB: c.Relationships.AffinityGroups(teller),
		Groups:  c.Groups,
	}
	if r, ok := c.Relationships.Relationship(listener, teller); ok {
		in.Forward = &r
	}
	if r, ok := c.Relationships.Relationship(teller, listener); ok {
		in.Backward = &r
	}
	return social.ComputeHarmony(in)
}
