// Package social provides affinity groups, relationship profiles, and the
// harmony bias that scales how agents react to each other's gossip.
package social

import (
	"github.com/talgya/hearsay/internal/gossip"
)

// Relationship is one agent's directed view of another. Values range from
// -1.0 (hostile) to 1.0 (devoted).
type Relationship struct {
	Trust     float32 `json:"trust"`
	Affection float32 `json:"affection"`
	Respect   float32 `json:"respect"`
	Comfort   float32 `json:"comfort"`
}

// Bond is the weighted blend of a directed relationship.
func (r Relationship) Bond() float32 {
	return r.Trust*0.35 + r.Affection*0.35 + r.Comfort*0.2 + r.Respect*0.1
}

// HarmonyProfile biases reactions between a pair of agents. All fields are in
// [0, 1].
type HarmonyProfile struct {
	Positive float32 `json:"positive"`
	Negative float32 `json:"negative"`
	Sarcasm  float32 `json:"sarcasm"` // playful ribbing between close friends
}

// Neutral is the profile used when nothing is known about a pair.
var Neutral = HarmonyProfile{}

// HarmonyInput is everything the bridge reads about a pair.
type HarmonyInput struct {
	GroupsA, GroupsB []Membership
	Forward          *Relationship // a's view of b
	Backward         *Relationship // b's view of a
	Groups           Groups        // inter-group relations, may be nil
}

// ComputeHarmony derives the bias profile for a pair. Missing data is neutral.
func ComputeHarmony(in HarmonyInput) HarmonyProfile {
	hasGroups := len(in.GroupsA) > 0 && len(in.GroupsB) > 0
	if !hasGroups && in.Forward == nil && in.Backward == nil {
		return Neutral
	}

	var groupHarmony, groupDisharmony float32
	if hasGroups {
		groupHarmony, groupDisharmony = groupSignals(in.GroupsA, in.GroupsB, in.Groups)
	}

	var bond float32
	n := 0
	for _, r := range []*Relationship{in.Forward, in.Backward} {
		if r != nil {
			bond += r.Bond()
			n++
		}
	}
	if n > 0 {
		bond /= float32(n)
	}

	synergy := max(groupHarmony, max(bond, 0))
	friction := max(groupDisharmony, max(-bond, 0))

	return HarmonyProfile{
		Positive: clamp01(synergy),
		Negative: clamp01(friction),
		Sarcasm:  clamp01(bond*0.65 + synergy*0.45 - friction*0.55),
	}
}

// groupSignals returns shared-group harmony and cross-group disharmony. Harmony
// is the fraction of overlapping groups weighted by the weaker membership.
func groupSignals(a, b []Membership, groups Groups) (harmony, disharmony float32) {
	strengthB := make(map[GroupID]float32, len(b))
	for _, m := range b {
		strengthB[m.Group] = max(strengthB[m.Group], clamp01(m.Strength))
	}

	var shared float32
	for _, m := range a {
		if sb, ok := strengthB[m.Group]; ok {
			shared += min(clamp01(m.Strength), sb)
		}
	}
	harmony = shared / float32(max(len(a), len(b)))

	if groups == nil {
		return harmony, 0
	}
	var hostility float32
	pairs := 0
	for _, ma := range a {
		for _, mb := range b {
			if ma.Group == mb.Group {
				continue
			}
			pairs++
			if rel := groups.Relation(ma.Group, mb.Group); rel < 0 {
				hostility += -rel * min(clamp01(ma.Strength), clamp01(mb.Strength))
			}
		}
	}
	if pairs > 0 {
		disharmony = hostility / float32(pairs)
	}
	return clamp01(harmony), clamp01(disharmony)
}

// AdjustPositive scales a pleasant reaction.
func (h HarmonyProfile) AdjustPositive(m float32) float32 {
	return scale(m, 1+h.Positive*0.5+h.Sarcasm*0.25-h.Negative*0.5)
}

// AdjustCuriosity scales interest in a new theme.
func (h HarmonyProfile) AdjustCuriosity(m float32) float32 {
	return scale(m, 1+h.Positive*0.35+h.Sarcasm*0.2-h.Negative*0.3)
}

// AdjustStorytellerEcho scales the teller's satisfaction at being heard.
func (h HarmonyProfile) AdjustStorytellerEcho(m float32) float32 {
	return scale(m, 1+h.Positive*0.4+h.Sarcasm*0.3-h.Negative*0.4)
}

// AdjustFrustration scales an unpleasant reaction.
func (h HarmonyProfile) AdjustFrustration(m float32) float32 {
	return scale(m, 1+h.Negative*0.6-h.Positive*0.35-h.Sarcasm*0.2)
}

// PositiveToneIrritation is the extra annoyance an upbeat story causes between
// agents on bad terms. Zero for other tones.
func (h HarmonyProfile) PositiveToneIrritation(t gossip.Tone) float32 {
	if !t.Upbeat() {
		return 0
	}
	return clamp01(h.Negative * 0.3 * (1 - h.Positive*0.5 - h.Sarcasm*0.5))
}

func scale(m, factor float32) float32 {
	if factor < 0 {
		factor = 0
	}
	return m * factor
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
