package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hearsay/internal/gossip"
)

func TestEveryToneTemplateHasALine(t *testing.T) {
	for tone := gossip.Tone(0); int(tone) < gossip.NumTones; tone++ {
		for _, key := range gossip.Templates(tone) {
			assert.Contains(t, lines, key)
		}
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "Mira Voss sighs. the brawl is old news by now.",
		Render("tone.weary.old_news", "Mira Voss", "the brawl"))
	assert.Equal(t, "Someone talks about something.", Render("no.such.key", "", ""))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "the feast", Label(gossip.Rumor{Topic: gossip.Concrete("x"), Paraphrase: "  the feast "}))
	assert.Equal(t, "the fighting lately", Label(gossip.Rumor{Topic: gossip.Abstract(gossip.ThemeCombat)}))
	assert.Equal(t, "something that happened", Label(gossip.Rumor{Topic: gossip.Concrete("x")}))
}

func TestCuesMinInterval(t *testing.T) {
	c := NewCues(8)
	assert.True(t, c.Emit(Cue{ID: "circle:1", Tick: 100, MinInterval: 50, Text: "a"}))
	assert.False(t, c.Emit(Cue{ID: "circle:1", Tick: 149, MinInterval: 50, Text: "b"}))
	assert.True(t, c.Emit(Cue{ID: "circle:2", Tick: 149, MinInterval: 50, Text: "c"}))
	assert.True(t, c.Emit(Cue{ID: "circle:1", Tick: 150, MinInterval: 50, Text: "d"}))

	assert.Equal(t, 1, c.Suppressed())
	recent := c.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"a", "c", "d"}, []string{recent[0].Text, recent[1].Text, recent[2].Text})
}

func TestCuesLogIsBounded(t *testing.T) {
	c := NewCues(2)
	for i := uint64(0); i < 5; i++ {
		c.Emit(Cue{ID: "x", Tick: i * 10, Text: string(rune('a' + i))})
	}
	recent := c.Recent(5)
	require.Len(t, recent, 2)
	assert.Equal(t, "d", recent[0].Text)
	assert.Equal(t, "e", recent[1].Text)
	assert.Len(t, c.Recent(1), 1)
}

func TestCuesPrune(t *testing.T) {
	c := NewCues(4)
	c.Emit(Cue{ID: "x", Tick: 10, MinInterval: 1000})
	c.Prune(500, 100)
	assert.True(t, c.Emit(Cue{ID: "x", Tick: 500, MinInterval: 1000}), "pruned state no longer blocks")
}
