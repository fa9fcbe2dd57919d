package propagation

import (
	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/social"
)

// Outcome is what happened to one listener in one exchange.
type Outcome uint8

const (
	OutcomeDuplicate     Outcome = iota // heard it too recently
	OutcomeAbstractHeard                // first time hearing the theme
	OutcomeAdopted                      // new record
	OutcomeCorroborated                 // reinforced an existing record
	OutcomeWitnessed                    // listener saw the event themselves
	OutcomeOptedOut                     // listener refused to listen
)

var outcomeNames = [...]string{"duplicate", "abstract_heard", "adopted", "corroborated", "witnessed", "opted_out"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// toldBy is the copy of r a listener keeps: the teller becomes its source.
func toldBy(r gossip.Rumor, teller agents.AgentID) gossip.Rumor {
	src := uint64(teller)
	r.Source = &src
	return r
}

// Exchange records one teller/listener/topic interaction.
type Exchange struct {
	Teller   agents.AgentID `json:"teller"`
	Listener agents.AgentID `json:"listener"`
	Topic    gossip.Topic   `json:"topic"`
	Tone     gossip.Tone    `json:"tone"`
	Outcome  Outcome        `json:"outcome"`
}

// Reaction magnitudes before harmony scaling.
const (
	duplicateFrustration = 0.02
	abstractCuriosity    = 0.03
	witnessDelight       = 0.08
	storytellerEcho      = 0.04
	corroboratedScale    = 0.5
	irritationScale      = 0.2
)

type reaction struct {
	emotion agents.Emotion
	base    float32
}

var toneReactions = [gossip.NumTones]reaction{
	gossip.ToneWhisper: {agents.EmotionCuriosity, 0.05},
	gossip.ToneCozy:    {agents.EmotionDelight, 0.04},
	gossip.ToneWonder:  {agents.EmotionAwe, 0.05},
	gossip.ToneBrag:    {agents.EmotionCuriosity, 0.02},
	gossip.ToneWarning: {agents.EmotionUnease, 0.05},
	gossip.ToneSpooky:  {agents.EmotionDread, 0.06},
	gossip.ToneWeary:   {agents.EmotionBoredom, 0.04},
	gossip.ToneSarcasm: {agents.EmotionDelight, 0.03},
}

// hearTone pushes the listener's reaction to a story told in tone.
func (c *Collaborators) hearTone(listener agents.AgentID, tone gossip.Tone, r gossip.Rumor, h social.HarmonyProfile, scale float32) {
	if int(tone) >= gossip.NumTones {
		return
	}
	react := toneReactions[tone]
	m := react.base * (0.5 + 0.5*r.Intensity) * scale
	switch {
	case react.emotion == agents.EmotionCuriosity:
		m = h.AdjustCuriosity(m)
	case react.emotion.Positive():
		m = h.AdjustPositive(m)
	default:
		m = h.AdjustFrustration(m)
	}
	c.push(listener, react.emotion, m)
	if irr := h.PositiveToneIrritation(tone); irr > 0 {
		c.push(listener, agents.EmotionIrritation, irr*irritationScale)
	}
}

// hearDuplicate is the listener's mild annoyance at old news.
func (c *Collaborators) hearDuplicate(listener agents.AgentID, h social.HarmonyProfile) {
	c.push(listener, agents.EmotionFrustration, h.AdjustFrustration(duplicateFrustration))
}

// hearAbstract is the listener's interest in a theme they hadn't considered.
func (c *Collaborators) hearAbstract(listener agents.AgentID, h social.HarmonyProfile) {
	c.push(listener, agents.EmotionCuriosity, h.AdjustCuriosity(abstractCuriosity))
}

// echo is the teller's satisfaction at being heard, scaled by weight.
func (c *Collaborators) echo(teller agents.AgentID, h social.HarmonyProfile, weight float32) {
	c.push(teller, agents.EmotionPride, h.AdjustStorytellerEcho(storytellerEcho*weight))
}
