package propagation

import (
	"fmt"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
	"github.com/talgya/hearsay/internal/social"
)

// Circle runs group broadcasts. Only the best-informed agent in a loose
// cluster gets to hold the floor.
type Circle struct {
	cfg CircleConfig
	c   *Collaborators
}

// NewCircle creates a broadcast routine.
func NewCircle(cfg CircleConfig, c *Collaborators) *Circle {
	return &Circle{cfg: cfg, c: c}
}

// Run lets teller attempt a broadcast at tick. Returns one exchange per
// candidate record and listener, or nil when the attempt doesn't happen.
func (ci *Circle) Run(teller agents.AgentID, tick uint64) []Exchange {
	if !cadenceDue(tick, teller, ci.cfg.Cadence) {
		return nil
	}
	roster := ci.c.Roster
	if !roster.Eligible(teller) {
		return nil
	}
	ledger := roster.Ledger(teller)
	if ledger == nil || !ledger.HasShareableRumors(tick) {
		return nil
	}

	candidates := ledger.PeekFreshRumors(ci.cfg.Candidates, tick)
	if len(candidates) < ci.cfg.Candidates {
		candidates = append(candidates, ledger.PeekAbstractRumors(ci.cfg.Candidates-len(candidates), tick)...)
	}
	if len(candidates) == 0 {
		return nil
	}

	listeners := ci.listeners(teller)
	if len(listeners) == 0 {
		return nil
	}
	if !ci.holdsFloor(ledger, listeners, tick) {
		return nil
	}

	var out []Exchange
	for _, r := range candidates {
		tone := gossip.Classify(r, tick)
		var reached []social.HarmonyProfile
		for _, l := range listeners {
			ex, h := ci.tell(teller, l, r, tone, tick)
			if ex.Outcome == OutcomeAdopted || ex.Outcome == OutcomeAbstractHeard {
				reached = append(reached, h)
			}
			out = append(out, ex)
		}
		if len(reached) == 0 {
			continue
		}

		ledger.MarkShared(r.Topic, tick)
		for _, h := range reached {
			ci.c.echo(teller, h, 1/float32(len(listeners)))
		}

		key := gossip.TemplateKey(tone, r, tick)
		ci.c.cue(narrative.Cue{
			ID:          fmt.Sprintf("circle:%d", teller),
			Tick:        tick,
			MinInterval: ci.cfg.CueInterval,
			Speaker:     uint64(teller),
			Text:        narrative.Render(key, roster.Name(teller), narrative.Label(r)),
		})
	}
	return out
}

// listeners collects eligible neighbors in walk order, excluding the teller.
func (ci *Circle) listeners(teller agents.AgentID) []agents.AgentID {
	var out []agents.AgentID
	ci.c.Neighbors.ForEachNeighbor(teller, ci.cfg.Radius, func(other agents.AgentID, _ int) bool {
		if other != teller && ci.c.Roster.Eligible(other) && ci.c.Roster.Ledger(other) != nil {
			out = append(out, other)
		}
		return true
	})
	return out
}

// holdsFloor is the storyteller election: the teller must know more than every
// listener by more than the epsilon. Ties within epsilon mean nobody speaks.
func (ci *Circle) holdsFloor(ledger *gossip.Ledger, listeners []agents.AgentID, tick uint64) bool {
	own := ledger.KnowledgeScore(tick)
	for _, l := range listeners {
		if ci.c.Roster.Ledger(l).KnowledgeScore(tick)+ci.cfg.LeaderEpsilon >= own {
			return false
		}
	}
	return true
}

// tell applies one record to one listener and returns the pair's profile.
func (ci *Circle) tell(teller, listener agents.AgentID, r gossip.Rumor, tone gossip.Tone, tick uint64) (Exchange, social.HarmonyProfile) {
	ex := Exchange{Teller: teller, Listener: listener, Topic: r.Topic, Tone: tone}
	ll := ci.c.Roster.Ledger(listener)
	h := ci.c.Profile(listener, teller)

	switch {
	case ll.HeardRecently(r.Topic, tick, ci.cfg.DuplicateWindow):
		ll.RegisterDuplicate(r.Topic, tick)
		ci.c.hearDuplicate(listener, h)
		ex.Outcome = OutcomeDuplicate
	case gossip.IsAbstract(r.Topic) && !ll.KnowsAbstract(r.Topic):
		ll.RegisterAbstractHeard(r.Topic, tick)
		ci.c.hearAbstract(listener, h)
		ex.Outcome = OutcomeAbstractHeard
	default:
		corroborated := ll.Has(r.Topic) || gossip.IsAbstract(r.Topic)
		ll.IngestFromPeer(toldBy(r, teller), tick, corroborated)
		scale := float32(1)
		ex.Outcome = OutcomeAdopted
		if corroborated {
			scale = corroboratedScale
			ex.Outcome = OutcomeCorroborated
		}
		ci.c.hearTone(listener, tone, r, h, scale)
	}
	return ex, h
}
