package gossip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	topic := Concrete("t")
	tests := []struct {
		name string
		r    Rumor
		tick uint64
		want Tone
	}{
		{"dramatic but doubtful", Rumor{Topic: topic, Intensity: 0.8, Confidence: 0.3, LastHeardTick: 100}, 300, ToneSpooky},
		{"fresh credible danger", Rumor{Topic: topic, Intensity: 0.7, Confidence: 0.7, LastHeardTick: 100}, 150, ToneWarning},
		{"told many times", Rumor{Topic: topic, Intensity: 0.55, Confidence: 0.55, LastHeardTick: 100, ShareCount: 5}, 1000, ToneBrag},
		{"fresh and unsure", Rumor{Topic: topic, Intensity: 0.3, Confidence: 0.2, LastHeardTick: 100}, 120, ToneWhisper},
		{"certain and dull", Rumor{Topic: topic, Intensity: 0.2, Confidence: 0.7, LastHeardTick: 100, ShareCount: 2}, 150, ToneSarcasm},
		{"stale", Rumor{Topic: topic, Intensity: 0.5, Confidence: 0.5, LastHeardTick: 100}, 2000, ToneWeary},
		{"worn out", Rumor{Topic: topic, Intensity: 0.3, Confidence: 0.5, LastHeardTick: 100, ShareCount: 9}, 150, ToneWeary},
		{"exciting and new", Rumor{Topic: topic, Intensity: 0.6, Confidence: 0.3, LastHeardTick: 100}, 400, ToneWonder},
		{"plain", Rumor{Topic: topic, Intensity: 0.4, Confidence: 0.5, LastHeardTick: 100}, 300, ToneCozy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.r, tt.tick))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	a := Rumor{Topic: Concrete("a"), Intensity: 0.6, Confidence: 0.3, LastHeardTick: 100, ShareCount: 1}
	b := a
	b.Topic = Concrete("b")
	b.LastHeardTick = 500
	// Same state relative to the tick gives the same tone regardless of topic.
	assert.Equal(t, Classify(a, 300), Classify(b, 700))
}

func TestTemplateKey(t *testing.T) {
	r := Rumor{Topic: Concrete("a"), ShareCount: 3}
	for tone := Tone(0); tone < NumTones; tone++ {
		k := TemplateKey(tone, r, 77)
		assert.Contains(t, Templates(tone), k)
		assert.Equal(t, k, TemplateKey(tone, r, 77))
	}
	assert.Empty(t, TemplateKey(Tone(99), r, 1))
}

func TestUpbeat(t *testing.T) {
	assert.True(t, ToneBrag.Upbeat())
	assert.True(t, ToneWhisper.Upbeat())
	assert.False(t, ToneSpooky.Upbeat())
	assert.False(t, ToneWeary.Upbeat())
}
