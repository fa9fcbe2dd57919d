package propagation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hearsay/internal/agents"
	"github.com/talgya/hearsay/internal/gossip"
)

func everyTickCircle() CircleConfig {
	cfg := DefaultCircleConfig()
	cfg.Cadence = 1
	return cfg
}

func countOutcomes(exs []Exchange) map[Outcome]int {
	out := make(map[Outcome]int)
	for _, ex := range exs {
		out[ex.Outcome]++
	}
	return out
}

func TestCircleBestInformedTellerBroadcasts(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	b := v.add(2, 1)
	c := v.add(3, 2)
	k1 := hear(a, "k1", 0.6, 0.5, 100)
	k2 := hear(a, "k2", 0.6, 0.5, 100)
	k3 := hear(a, "k3", 0.6, 0.5, 100)
	hear(b, "k1", 0.6, 0.5, 100)

	circle := NewCircle(everyTickCircle(), v.collaborators())

	assert.Nil(t, circle.Run(2, 110), "a better-informed neighbor holds the floor")
	assert.Nil(t, circle.Run(3, 110), "nothing to tell")

	exs := circle.Run(1, 110)
	require.Len(t, exs, 6)
	counts := countOutcomes(exs)
	assert.Equal(t, 1, counts[OutcomeDuplicate])
	assert.Equal(t, 5, counts[OutcomeAdopted])

	for _, topic := range []gossip.Topic{k1, k2, k3} {
		assert.True(t, c.Has(topic))
		r, _ := a.Get(topic)
		assert.Equal(t, uint8(1), r.ShareCount, "told to at least one new listener")
	}
	assert.True(t, b.Has(k2))
	assert.True(t, b.Has(k3))

	assert.Len(t, v.cues, 3)
	assert.Greater(t, v.felt(1, agents.EmotionPride), float32(0))
}

func TestCircleTieWithinEpsilonSilencesEveryone(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	b := v.add(2, 1)
	hear(a, "k1", 0.6, 0.5, 100)
	hear(b, "k1", 0.6, 0.5, 100)
	// Below the epsilon: not enough to win the floor.
	hear(b, "faint", 0.04, 0.04, 100)

	circle := NewCircle(everyTickCircle(), v.collaborators())
	for tick := uint64(101); tick < 120; tick++ {
		assert.Nil(t, circle.Run(1, tick))
		assert.Nil(t, circle.Run(2, tick))
	}
}

func TestCircleLeaderElectionIsDeterministic(t *testing.T) {
	build := func() (*village, *Circle) {
		v := newVillage()
		for id := agents.AgentID(1); id <= 4; id++ {
			l := v.add(id, int(id))
			hear(l, "shared", 0.5, 0.5, 100)
		}
		hear(v.ledgers[3], "extra", 0.9, 0.9, 100)
		return v, NewCircle(everyTickCircle(), v.collaborators())
	}

	for trial := 0; trial < 3; trial++ {
		_, circle := build()
		for id := agents.AgentID(1); id <= 4; id++ {
			exs := circle.Run(id, 110)
			if id == 3 {
				assert.NotEmpty(t, exs)
			} else {
				assert.Nil(t, exs, "agent %d", id)
			}
		}
	}
}

func TestCircleDuplicateSuppression(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	b := v.add(2, 1)

	topic := hear(b, "brawl", 0.6, 0.5, 90)
	b.MarkShared(topic, 95)
	before, _ := b.Get(topic)
	require.Equal(t, uint8(1), before.ShareCount)

	hear(a, "brawl", 0.6, 0.5, 100)
	other := hear(a, "feast", 0.6, 0.5, 100)

	circle := NewCircle(everyTickCircle(), v.collaborators())
	exs := circle.Run(1, 110)
	require.NotEmpty(t, exs)

	after, _ := b.Get(topic)
	assert.LessOrEqual(t, after.Confidence, before.Confidence)
	assert.Equal(t, uint8(0), after.ShareCount)
	assert.Greater(t, v.felt(2, agents.EmotionFrustration), float32(0))

	told, _ := a.Get(topic)
	assert.Zero(t, told.ShareCount, "nobody newly heard it")
	adopted, _ := a.Get(other)
	assert.Equal(t, uint8(1), adopted.ShareCount)

	counts := countOutcomes(exs)
	assert.Equal(t, 1, counts[OutcomeDuplicate])
	assert.Equal(t, 1, counts[OutcomeAdopted])
	assert.Equal(t, 1, counts[OutcomeAbstractHeard], "third slot filled by a theme")
	assert.True(t, b.KnowsAbstract(gossip.Abstract(gossip.ThemeCombat)))
}

func TestCircleSkipsBusyAgents(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	v.add(2, 1)
	v.add(3, 1)
	hear(a, "k1", 0.6, 0.5, 100)
	circle := NewCircle(everyTickCircle(), v.collaborators())

	v.busy[1] = true
	assert.Nil(t, circle.Run(1, 110))

	v.busy[1] = false
	v.busy[2] = true
	exs := circle.Run(1, 111)
	require.NotEmpty(t, exs)
	for _, ex := range exs {
		assert.Equal(t, agents.AgentID(3), ex.Listener)
	}

	v.busy[3] = true
	assert.Nil(t, circle.Run(1, 112), "no listeners")
}

func TestCircleCadence(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	v.add(2, 1)
	hear(a, "k1", 0.6, 0.5, 100)

	cfg := DefaultCircleConfig()
	cfg.Cadence = 90
	circle := NewCircle(cfg, v.collaborators())
	assert.Nil(t, circle.Run(1, 100))
	assert.NotEmpty(t, circle.Run(1, 179))
}

func TestCircleListenersRememberTheTeller(t *testing.T) {
	v := newVillage()
	a := v.add(1, 0)
	b := v.add(2, 1)
	c := v.add(3, 2)
	fire := hear(a, "fire", 0.6, 0.5, 100)
	hear(a, "feast", 0.6, 0.5, 100)
	hear(c, "fire", 0.6, 0.5, 0)

	circle := NewCircle(everyTickCircle(), v.collaborators())
	exs := circle.Run(1, 1000)
	require.NotEmpty(t, exs)

	adopted, ok := b.Get(fire)
	require.True(t, ok)
	require.NotNil(t, adopted.Source)
	assert.Equal(t, uint64(1), *adopted.Source)

	corroborated, ok := c.Get(fire)
	require.True(t, ok)
	require.NotNil(t, corroborated.Source, "a corroborating hearing records who told it")
	assert.Equal(t, uint64(1), *corroborated.Source)

	own, _ := a.Get(fire)
	assert.Nil(t, own.Source, "the teller's own record is untouched")
}
