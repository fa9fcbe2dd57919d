package propagation

import (
	"fmt"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/narrative"
)

// Session is a whisperer's budget for telling one topic.
type Session struct {
	Budget        float32 `json:"budget"`
	CooldownUntil uint64  `json:"cooldown_until"` // zero while the session is open
}

// whisperState is the per-agent bookkeeping Whisper keeps between runs.
type whisperState struct {
	sessions      map[gossip.Topic]*Session
	cooldownUntil uint64 // whisperer-level pause after any exchange
	optOutUntil   uint64 // refuses to whisper or listen until then
}

// Whisper runs one-on-one exchanges. Each topic a whisperer tells draws down a
// session budget; an empty budget puts that topic on cooldown.
type Whisper struct {
	cfg    WhisperConfig
	c      *Collaborators
	states map[agents.AgentID]*whisperState
}

// NewWhisper creates a whisper routine.
func NewWhisper(cfg WhisperConfig, c *Collaborators) *Whisper {
	return &Whisper{cfg: cfg, c: c, states: make(map[agents.AgentID]*whisperState)}
}

// Cost is the budget one exchange spends.
func Cost(intensity float32, newListener, witnessed bool) float32 {
	cost := 0.8 + intensity*0.5
	if newListener {
		cost += 0.5
	}
	if witnessed {
		cost += 0.25
	}
	return min(max(cost, 0.45), 2.5)
}

// SessionCooldown is how long a depleted topic rests. Strong, well-believed
// stories take longer to want retelling.
func SessionCooldown(r gossip.Rumor) uint64 {
	return 300 + uint64((r.Intensity+r.Confidence)*300)
}

// Session returns a copy of the whisperer's session for topic.
func (w *Whisper) Session(whisperer agents.AgentID, topic gossip.Topic) (Session, bool) {
	st, ok := w.states[whisperer]
	if !ok {
		return Session{}, false
	}
	s, ok := st.sessions[topic]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// OptedOut reports whether agent is refusing gossip at tick.
func (w *Whisper) OptedOut(agent agents.AgentID, tick uint64) bool {
	st, ok := w.states[agent]
	return ok && tick < st.optOutUntil
}

// Run lets whisperer attempt one exchange at tick.
func (w *Whisper) Run(whisperer agents.AgentID, tick uint64) (Exchange, bool) {
	if !cadenceDue(tick, whisperer, w.cfg.Cadence) {
		return Exchange{}, false
	}
	st := w.state(whisperer)
	if tick < st.optOutUntil || tick < st.cooldownUntil {
		return Exchange{}, false
	}
	roster := w.c.Roster
	if !roster.Eligible(whisperer) {
		return Exchange{}, false
	}
	ledger := roster.Ledger(whisperer)
	if ledger == nil || ledger.Len() == 0 {
		return Exchange{}, false
	}
	w.pruneSessions(st, ledger, tick)

	r, sess, ok := w.pickTopic(st, ledger, tick)
	if !ok {
		return Exchange{}, false
	}
	listener, ok := w.nearestListener(whisperer, tick)
	if !ok {
		return Exchange{}, false
	}

	if roster.Mood(listener) <= w.cfg.OptOutMood {
		w.state(listener).optOutUntil = tick + w.cfg.OptOutCooldown
		st.cooldownUntil = tick + w.cfg.PairCooldown
		return Exchange{Teller: whisperer, Listener: listener, Topic: r.Topic, Outcome: OutcomeOptedOut}, true
	}

	tone := gossip.Classify(r, tick)
	ex := Exchange{Teller: whisperer, Listener: listener, Topic: r.Topic, Tone: tone}
	ll := roster.Ledger(listener)
	h := w.c.Profile(listener, whisperer)
	gap := knowledgeGap(ledger, ll, tick)
	abstract := gossip.IsAbstract(r.Topic)
	witnessed := !abstract && ll.WitnessedRecently(r.Topic, tick, w.cfg.WitnessWindow)
	newListener := !ll.Has(r.Topic) && !(abstract && ll.KnowsAbstract(r.Topic))

	switch {
	case witnessed:
		// They saw it too: the strongest, warmest reaction on both sides.
		ll.IngestFromPeer(toldBy(r, whisperer), tick, true)
		w.c.push(listener, agents.EmotionDelight, h.AdjustPositive(witnessDelight))
		w.c.echo(whisperer, h, 1+gap)
		ex.Outcome = OutcomeWitnessed
	case ll.HeardRecently(r.Topic, tick, w.cfg.DuplicateWindow):
		ll.RegisterDuplicate(r.Topic, tick)
		w.c.hearDuplicate(listener, h)
		ex.Outcome = OutcomeDuplicate
	case abstract && newListener:
		ll.RegisterAbstractHeard(r.Topic, tick)
		w.c.hearAbstract(listener, h)
		w.c.echo(whisperer, h, 0.5+gap)
		ex.Outcome = OutcomeAbstractHeard
	default:
		ll.IngestFromPeer(toldBy(r, whisperer), tick, !newListener)
		ex.Outcome = OutcomeCorroborated
		scale := float32(corroboratedScale)
		if newListener {
			ex.Outcome = OutcomeAdopted
			scale = 1
			w.c.echo(whisperer, h, 0.5+gap)
		}
		w.c.hearTone(listener, tone, r, h, scale)
	}

	if newListener {
		ledger.MarkShared(r.Topic, tick)
		key := gossip.TemplateKey(tone, r, tick)
		w.c.cue(narrative.Cue{
			ID:          fmt.Sprintf("whisper:%d", whisperer),
			Tick:        tick,
			MinInterval: w.cfg.CueInterval,
			Speaker:     uint64(whisperer),
			Text:        narrative.Render(key, roster.Name(whisperer), narrative.Label(r)),
		})
	}

	sess.Budget -= Cost(r.Intensity, newListener, witnessed)
	if sess.Budget <= 0 {
		sess.CooldownUntil = tick + SessionCooldown(r)
	}
	st.cooldownUntil = tick + w.cfg.PairCooldown
	return ex, true
}

func (w *Whisper) state(id agents.AgentID) *whisperState {
	st, ok := w.states[id]
	if !ok {
		st = &whisperState{sessions: make(map[gossip.Topic]*Session)}
		w.states[id] = st
	}
	return st
}

// pickTopic returns the first shareable record, then abstract theme, whose
// session still has budget. Sessions whose cooldown has elapsed reopen full.
func (w *Whisper) pickTopic(st *whisperState, ledger *gossip.Ledger, tick uint64) (gossip.Rumor, *Session, bool) {
	candidates := ledger.PeekFreshRumors(ledger.Len(), tick)
	candidates = append(candidates, ledger.PeekAbstractRumors(gossip.NumThemes, tick)...)
	for _, r := range candidates {
		sess, ok := st.sessions[r.Topic]
		if !ok {
			sess = &Session{Budget: w.cfg.SessionBudget}
			st.sessions[r.Topic] = sess
		}
		if sess.CooldownUntil != 0 {
			if tick < sess.CooldownUntil {
				continue
			}
			sess.Budget = w.cfg.SessionBudget
			sess.CooldownUntil = 0
		}
		if sess.Budget > 0 {
			return r, sess, true
		}
	}
	return gossip.Rumor{}, nil, false
}

// pruneSessions drops sessions for records the whisperer no longer holds once
// their cooldown is over.
func (w *Whisper) pruneSessions(st *whisperState, ledger *gossip.Ledger, tick uint64) {
	for t, s := range st.sessions {
		if gossip.IsAbstract(t) || ledger.Has(t) {
			continue
		}
		if tick >= s.CooldownUntil {
			delete(st.sessions, t)
		}
	}
}

// nearestListener picks the closest eligible neighbor. Equal distances go to
// the lower ID.
func (w *Whisper) nearestListener(whisperer agents.AgentID, tick uint64) (agents.AgentID, bool) {
	var (
		best     agents.AgentID
		bestDist = -1
	)
	w.c.Neighbors.ForEachNeighbor(whisperer, w.cfg.Radius, func(other agents.AgentID, dist int) bool {
		if other == whisperer || w.OptedOut(other, tick) {
			return true
		}
		if !w.c.Roster.Eligible(other) || w.c.Roster.Ledger(other) == nil {
			return true
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && other < best) {
			best, bestDist = other, dist
		}
		return true
	})
	return best, bestDist >= 0
}

// knowledgeGap is how much more the whisperer knows than the listener, as a
// fraction of what the whisperer knows.
func knowledgeGap(teller, listener *gossip.Ledger, tick uint64) float32 {
	own := teller.KnowledgeScore(tick)
	if own <= 0 {
		return 0
	}
	gap := (own - listener.KnowledgeScore(tick)) / own
	return min(max(gap, 0), 1)
}
