package gossip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRumorClamps(t *testing.T) {
	r := NewRumor(Concrete("x"), 1.7, -0.2, 10, nil, "")
	assert.Equal(t, float32(1), r.Intensity)
	assert.Equal(t, float32(0), r.Confidence)
	assert.Zero(t, r.ShareCount)
}

func TestReinforceCorroborated(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.4, 0.5, 10, nil, "")
	r.Reinforce(0.6, 0.5, 20, nil, "", true)

	assert.InDelta(t, 0.6, r.Intensity, 1e-6)
	// 0.5 + 0.5*0.35 + 0.5*0.2
	assert.InDelta(t, 0.775, r.Confidence, 1e-6)
	assert.Equal(t, uint64(20), r.LastHeardTick)
}

func TestReinforceCorroboratedConvergesToOne(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.4, 0.1, 10, nil, "")
	prev := r.Confidence
	for i := 0; i < 20; i++ {
		r.Reinforce(0.1, 0, 10, nil, "", true)
		require.GreaterOrEqual(t, r.Confidence, prev)
		prev = r.Confidence
	}
	assert.LessOrEqual(t, r.Confidence, float32(1))
	assert.Greater(t, r.Confidence, float32(0.99))
}

func TestReinforceUncorroborated(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.4, 0.5, 10, nil, "")
	r.Reinforce(0.8, 0.3, 5, nil, "", false)

	// 0.4*0.65 + 0.8*0.35
	assert.InDelta(t, 0.54, r.Intensity, 1e-6)
	// max(0.5, 0.3) nudged by 0.05
	assert.InDelta(t, 0.55, r.Confidence, 1e-6)
	assert.Equal(t, uint64(10), r.LastHeardTick, "heard tick never moves backwards")
}

func TestReinforceUncorroboratedNoNudgeAboveThreshold(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.4, 0.9, 10, nil, "")
	r.Reinforce(0.4, 0.2, 11, nil, "", false)
	assert.InDelta(t, 0.9, r.Confidence, 1e-6)
}

func TestReinforceSourceAndParaphrase(t *testing.T) {
	src := uint64(7)
	r := NewRumor(Concrete("x"), 0.4, 0.5, 10, &src, "the mill burned")

	r.Reinforce(0.4, 0.5, 11, nil, "", false)
	require.NotNil(t, r.Source)
	assert.Equal(t, uint64(7), *r.Source)
	assert.Equal(t, "the mill burned", r.Paraphrase)

	other := uint64(9)
	r.Reinforce(0.4, 0.5, 12, &other, "the mill is ash", false)
	assert.Equal(t, uint64(9), *r.Source)
	assert.Equal(t, "the mill is ash", r.Paraphrase)

	other = 11
	assert.Equal(t, uint64(9), *r.Source, "source is copied, not aliased")
}

func TestMarkShared(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.5, 10, nil, "")
	r.MarkShared(50, DefaultShareWear)

	assert.Equal(t, uint8(1), r.ShareCount)
	assert.Equal(t, uint64(50), r.LastSharedTick)
	assert.InDelta(t, 0.47, r.Intensity, 1e-6)
}

func TestMarkSharedCapsCount(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.5, 10, nil, "")
	r.ShareCount = 255
	r.MarkShared(50, 0)
	assert.Equal(t, uint8(255), r.ShareCount)
}

func TestApplyDecayMonotonic(t *testing.T) {
	m := DefaultDecayModel()
	r := NewRumor(Concrete("x"), 0.9, 0.8, 100, nil, "")
	prevI, prevC := r.Intensity, r.Confidence
	for tick := uint64(100); tick < 3000; tick += 37 {
		r.ApplyDecay(tick, m)
		require.LessOrEqual(t, r.Intensity, prevI)
		require.LessOrEqual(t, r.Confidence, prevC)
		require.GreaterOrEqual(t, r.Intensity, float32(0))
		require.GreaterOrEqual(t, r.Confidence, float32(0))
		prevI, prevC = r.Intensity, r.Confidence
	}
}

func TestApplyDecayIntensityFasterThanConfidence(t *testing.T) {
	m := DefaultDecayModel()
	r := NewRumor(Concrete("x"), 0.8, 0.8, 0, nil, "")
	r.MarkShared(1, 1)
	r.ApplyDecay(1000, m)
	assert.Less(t, r.Intensity, r.Confidence)
}

func TestApplyDecayUnsharedIsSticky(t *testing.T) {
	m := DefaultDecayModel()
	shared := NewRumor(Concrete("x"), 0.8, 0.8, 0, nil, "")
	shared.MarkShared(1, 1)
	unshared := NewRumor(Concrete("y"), 0.8, 0.8, 0, nil, "")

	shared.ApplyDecay(1000, m)
	unshared.ApplyDecay(1000, m)
	assert.Greater(t, unshared.Confidence, shared.Confidence)
}

func TestShouldShareFreshRumor(t *testing.T) {
	l := NewLedger(DefaultTuning())
	topic := Concrete("fresh")
	l.RecordRumor(Report{Topic: topic, Intensity: 0.6, Confidence: 0.5, Tick: 100})

	r, ok := l.Get(topic)
	require.True(t, ok)
	assert.Zero(t, r.ShareCount)
	assert.True(t, r.ShouldShare(100, 80, 0.08, 0.1))
}

func TestShouldShareCooldownAndThresholds(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.5, 10, nil, "")
	r.MarkShared(100, 1)
	assert.False(t, r.ShouldShare(150, 80, 0.08, 0.1))
	assert.True(t, r.ShouldShare(180, 80, 0.08, 0.1))

	weak := NewRumor(Concrete("y"), 0.01, 0.02, 10, nil, "")
	assert.False(t, weak.ShouldShare(500, 80, 0.08, 0.1))
}

func TestIsExpired(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.5, 100, nil, "")
	assert.False(t, r.IsExpired(200, 1000))
	assert.True(t, r.IsExpired(1101, 1000))

	spent := NewRumor(Concrete("y"), 0, 0.005, 100, nil, "")
	assert.True(t, spent.IsExpired(100, 1000))
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.6, 90, nil, "")
	r.ShareCount = 1
	before := r.Confidence

	r.RegisterDuplicate(110, DefaultDuplicateWear)
	assert.LessOrEqual(t, r.Confidence, before)
	assert.Equal(t, uint8(0), r.ShareCount)
	assert.Equal(t, uint64(110), r.LastHeardTick)
	assert.InDelta(t, 0.48, r.Intensity, 1e-6)

	r.RegisterDuplicate(120, DefaultDuplicateWear)
	assert.Equal(t, uint8(0), r.ShareCount, "share count never goes below zero")
}

func TestWitness(t *testing.T) {
	r := NewRumor(Concrete("x"), 0.5, 0.6, 90, nil, "")
	assert.False(t, r.WitnessedRecently(100, 500))

	r.MarkWitness(100)
	assert.True(t, r.WitnessedRecently(400, 500))
	assert.False(t, r.WitnessedRecently(700, 500))
}
