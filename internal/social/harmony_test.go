package social

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hearsay/internal/gossip"
)

func TestComputeHarmonyNeutralWithoutData(t *testing.T) {
	assert.Equal(t, Neutral, ComputeHarmony(HarmonyInput{}))
	assert.Equal(t, Neutral, ComputeHarmony(HarmonyInput{
		GroupsA: []Membership{{Group: 1, Strength: 1}},
	}), "one-sided membership is not enough")
}

func TestComputeHarmonyBondAveraged(t *testing.T) {
	fwd := &Relationship{Trust: 1, Affection: 1, Respect: 1, Comfort: 1}
	back := &Relationship{Trust: 0, Affection: 0, Respect: 0, Comfort: 0}

	h := ComputeHarmony(HarmonyInput{Forward: fwd, Backward: back})
	assert.InDelta(t, 0.5, h.Positive, 1e-6)
	assert.Zero(t, h.Negative)
	// 0.5*0.65 + 0.5*0.45
	assert.InDelta(t, 0.55, h.Sarcasm, 1e-6)

	only := ComputeHarmony(HarmonyInput{Forward: fwd})
	assert.InDelta(t, 1.0, only.Positive, 1e-6)
}

func TestComputeHarmonyHostileBond(t *testing.T) {
	enemy := &Relationship{Trust: -0.8, Affection: -0.8, Respect: -0.5, Comfort: -0.5}
	h := ComputeHarmony(HarmonyInput{Forward: enemy, Backward: enemy})
	assert.Zero(t, h.Positive)
	assert.InDelta(t, 0.71, h.Negative, 1e-5)
	assert.Zero(t, h.Sarcasm)
}

func TestComputeHarmonySharedGroups(t *testing.T) {
	h := ComputeHarmony(HarmonyInput{
		GroupsA: []Membership{{Group: 1, Strength: 0.8}, {Group: 2, Strength: 0.5}},
		GroupsB: []Membership{{Group: 1, Strength: 0.6}},
	})
	// overlap min(0.8, 0.6) over max(2, 1) groups
	assert.InDelta(t, 0.3, h.Positive, 1e-6)
	assert.Zero(t, h.Negative)
}

func TestComputeHarmonyRivalGroups(t *testing.T) {
	groups := SeedGroups()
	h := ComputeHarmony(HarmonyInput{
		GroupsA: []Membership{{Group: 1, Strength: 1}},
		GroupsB: []Membership{{Group: 5, Strength: 0.5}},
		Groups:  groups,
	})
	assert.Zero(t, h.Positive)
	assert.InDelta(t, 0.45, h.Negative, 1e-6)
}

func TestAdjusters(t *testing.T) {
	friendly := HarmonyProfile{Positive: 0.8, Sarcasm: 0.4}
	hostile := HarmonyProfile{Negative: 0.8}

	assert.Greater(t, friendly.AdjustPositive(1), Neutral.AdjustPositive(1))
	assert.Less(t, hostile.AdjustPositive(1), Neutral.AdjustPositive(1))
	assert.Greater(t, friendly.AdjustCuriosity(1), hostile.AdjustCuriosity(1))
	assert.Greater(t, friendly.AdjustStorytellerEcho(1), hostile.AdjustStorytellerEcho(1))
	assert.Greater(t, hostile.AdjustFrustration(1), friendly.AdjustFrustration(1))
	assert.Equal(t, float32(1), Neutral.AdjustFrustration(1))

	worst := HarmonyProfile{Negative: 1, Positive: 0}
	assert.GreaterOrEqual(t, worst.AdjustPositive(1), float32(0))
}

func TestPositiveToneIrritation(t *testing.T) {
	hostile := HarmonyProfile{Negative: 1}
	assert.InDelta(t, 0.3, hostile.PositiveToneIrritation(gossip.ToneBrag), 1e-6)
	assert.Zero(t, hostile.PositiveToneIrritation(gossip.ToneSpooky))
	assert.Zero(t, Neutral.PositiveToneIrritation(gossip.ToneCozy))

	mixed := HarmonyProfile{Negative: 1, Positive: 0.5, Sarcasm: 0.5}
	assert.Less(t, mixed.PositiveToneIrritation(gossip.ToneWonder), hostile.PositiveToneIrritation(gossip.ToneWonder))
}

func TestGroupsRelation(t *testing.T) {
	g := SeedGroups()
	assert.Equal(t, float32(1), g.Relation(2, 2))
	assert.Equal(t, g.Relation(1, 5), g.Relation(5, 1))
	assert.Zero(t, g.Relation(1, 99))
}
