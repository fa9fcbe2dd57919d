package gossip

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcreteStable(t *testing.T) {
	assert.Equal(t, Concrete("brawl at the mill"), Concrete("Brawl At The Mill"))
	assert.Equal(t, Concrete("brawl"), Concrete("  brawl "))
	assert.NotEqual(t, Concrete("brawl"), Concrete("feast"))
	assert.NotZero(t, Concrete(""))
}

// Pinned ids: changing these breaks every saved ledger.
func TestConcreteGoldenIDs(t *testing.T) {
	assert.Equal(t, Topic(0x644fdbec4be087e0), Concrete("brawl"))
	assert.Equal(t, Topic(0xe26e53e659441c93), Abstract(ThemeCombat))
}

func TestAbstractNamespaceDisjoint(t *testing.T) {
	for _, at := range AbstractTopics() {
		assert.NotEqual(t, at.ID, Concrete(at.Key), "abstract %q collides with concrete key", at.Key)
		assert.True(t, IsAbstract(at.ID))
	}
	for i := 0; i < 2000; i++ {
		assert.False(t, IsAbstract(Concrete(fmt.Sprintf("event-%d", i))))
	}
}

func TestFindAbstract(t *testing.T) {
	at, ok := FindAbstract(Abstract(ThemeFamily))
	require.True(t, ok)
	assert.Equal(t, "family", at.Key)
	assert.Equal(t, ThemeFamily, at.Theme)

	_, ok = FindAbstract(Concrete("family"))
	assert.False(t, ok)
}

func TestParseTheme(t *testing.T) {
	th, ok := ParseTheme(" Exploration ")
	require.True(t, ok)
	assert.Equal(t, ThemeExploration, th)

	_, ok = ParseTheme("weather")
	assert.False(t, ok)
}

func TestTopicString(t *testing.T) {
	assert.Equal(t, "life", Abstract(ThemeLife).String())
	assert.Len(t, Concrete("x").String(), 16)
}
