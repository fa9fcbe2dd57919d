package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hearsay/internal/gossip"
	"github.com/talgya/hearsay/internal/social"
	"github.com/talgya/hearsay/internal/world"
)

func plains(radius int) *world.Map {
	m := world.NewMap(radius)
	for _, c := range (world.HexCoord{}).Within(radius) {
		m.Set(&world.Hex{Coord: c, Terrain: world.TerrainPlains})
	}
	return m
}

func TestEmotionPushClamps(t *testing.T) {
	var s EmotionState
	s.Push(EmotionDread, 0.7)
	s.Push(EmotionDread, 0.7)
	assert.InDelta(t, 1.0, s[EmotionDread], 1e-6)

	s.Push(EmotionDread, -2)
	assert.Zero(t, s[EmotionDread])

	s.Push(Emotion(NumEmotions), 1)
	assert.Equal(t, EmotionState{}, s, "out-of-range emotions are ignored")
}

func TestEmotionValenceAndDominant(t *testing.T) {
	var s EmotionState
	s.Push(EmotionDelight, 0.6)
	s.Push(EmotionUnease, 0.2)
	assert.InDelta(t, 0.4, s.Valence(), 1e-6)

	e, level := s.Dominant()
	assert.Equal(t, EmotionDelight, e)
	assert.InDelta(t, 0.6, level, 1e-6)

	a := &Agent{Emotions: s}
	assert.InDelta(t, 0.4, a.Mood(), 1e-6)
}

func TestEmotionDecay(t *testing.T) {
	var s EmotionState
	s.Push(EmotionCuriosity, 0.5)
	s.Push(EmotionBoredom, 0.0005)
	s.Decay()
	assert.InDelta(t, 0.49, s[EmotionCuriosity], 1e-6)
	assert.Zero(t, s[EmotionBoredom], "tiny levels snap to zero")
}

func TestEmotionString(t *testing.T) {
	assert.Equal(t, "dread", EmotionDread.String())
	assert.Equal(t, "emotion(42)", Emotion(42).String())
	assert.True(t, EmotionPride.Positive())
	assert.False(t, EmotionFrustration.Positive())
}

func TestSetRelationshipClamps(t *testing.T) {
	a := &Agent{ID: 1}
	a.SetRelationship(2, social.Relationship{Trust: 3, Affection: -4, Respect: 0.5})
	r, ok := a.RelationshipWith(2)
	require.True(t, ok)
	assert.Equal(t, social.Relationship{Trust: 1, Affection: -1, Respect: 0.5}, r)

	_, ok = a.RelationshipWith(3)
	assert.False(t, ok)
}

func TestDecideFollowsSchedule(t *testing.T) {
	home := world.HexCoord{Q: 2, R: 0}
	a := &Agent{ID: 7, Name: "Mira", Home: home, Position: home, Alive: true}

	assert.Equal(t, ActivityResting, Decide(a, 23, nil).Activity)
	assert.Equal(t, ActivityWorking, Decide(a, 10, nil).Activity)
	assert.Equal(t, ActivityIdle, Decide(a, 7, nil).Activity)

	a.Position = world.HexCoord{}
	act := Decide(a, 2, nil)
	assert.Equal(t, ActivityTraveling, act.Activity)
	require.NotNil(t, act.Target)
	assert.Equal(t, home, *act.Target)
	assert.True(t, act.Activity.Busy())

	a.Alive = false
	assert.Equal(t, ActivityIdle, Decide(a, 23, nil).Activity)
	assert.True(t, a.Busy(), "the dead do not gossip")
}

func TestDecideEveningCompanyIsStable(t *testing.T) {
	square := world.HexCoord{Q: -3, R: 1}
	a := &Agent{ID: 3, Name: "Finn", Alive: true, Talkative: 1}

	// Fully talkative agents always want company.
	for hour := 17; hour < 22; hour++ {
		act := Decide(a, hour, &square)
		require.NotNil(t, act.Target, "hour %d", hour)
		assert.Equal(t, square, *act.Target)
	}
	assert.Equal(t, Decide(a, 19, &square), Decide(a, 19, &square))
}

func TestApplyActionWalksSteps(t *testing.T) {
	m := plains(6)
	a := &Agent{ID: 1, Position: world.HexCoord{Q: 5, R: 0}, Alive: true}
	target := world.HexCoord{}
	act := Action{AgentID: 1, Activity: ActivityTraveling, Target: &target}

	pos := ApplyAction(a, act, m, 3)
	assert.Equal(t, 2, world.Distance(pos, target))
	assert.Equal(t, ActivityTraveling, a.Activity)
	require.NotNil(t, a.Destination)

	ApplyAction(a, act, m, 3)
	assert.Equal(t, target, a.Position)
	assert.Nil(t, a.Destination, "destination clears on arrival")
}

func TestApplyActionAvoidsWater(t *testing.T) {
	m := plains(4)
	m.Set(&world.Hex{Coord: world.HexCoord{Q: 1, R: 0}, Terrain: world.TerrainWater})
	a := &Agent{ID: 1, Position: world.HexCoord{Q: 2, R: 0}, Alive: true}
	target := world.HexCoord{}
	act := Action{AgentID: 1, Activity: ActivityTraveling, Target: &target}

	for range 4 {
		pos := ApplyAction(a, act, m, 1)
		assert.True(t, m.Passable(pos), "stepped into water at %s", pos)
		assert.LessOrEqual(t, world.Distance(pos, target), 2)
	}
}

func TestApplyActionWithoutTarget(t *testing.T) {
	a := &Agent{ID: 1, Position: world.HexCoord{Q: 1, R: 1}}
	pos := ApplyAction(a, Action{Activity: ActivityWorking}, nil, 0)
	assert.Equal(t, world.HexCoord{Q: 1, R: 1}, pos)
	assert.Equal(t, ActivityWorking, a.Activity)
}

func TestSpawnPopulationIsDeterministic(t *testing.T) {
	m := plains(5)
	tuning := gossip.DefaultTuning()

	first := NewSpawner(9, tuning, social.SeedGroups()).SpawnPopulation(30, m)
	second := NewSpawner(9, tuning, social.SeedGroups()).SpawnPopulation(30, m)
	require.Len(t, first, 30)

	for i := range first {
		a, b := first[i], second[i]
		assert.Equal(t, AgentID(i+1), a.ID)
		assert.Equal(t, a.Name, b.Name)
		assert.Equal(t, a.Home, b.Home)
		assert.Equal(t, a.Memberships, b.Memberships)

		assert.True(t, m.Passable(a.Home))
		assert.Equal(t, a.Home, a.Position)
		assert.LessOrEqual(t, len(a.Memberships), 2)
		assert.NotNil(t, a.Ledger)
		assert.Less(t, a.NextDecayTick, tuning.ActiveDecayDelay)
		assert.NotContains(t, a.Relationships, a.ID, "no one has a view of themselves")
		assert.True(t, a.Alive)
	}
}
