// Package gossip provides the rumor data model: topic identities, rumor records
// with their decay/reinforcement algebra, the per-agent ledger, and tone
// classification.
package gossip

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Topic is a stable 64-bit identity for a subject of gossip. Zero is never a
// valid topic.
type Topic uint64

// TopicHashVersion names the hashing scheme baked into every persisted topic id.
// Changing the scheme requires a new version and a save migration.
const TopicHashVersion = "v1"

const (
	abstractNamespace = "hearsay/" + TopicHashVersion + "/abstract:"
	concreteNamespace = "hearsay/" + TopicHashVersion + "/concrete:"
)

// Theme is one of the fixed abstract topics.
type Theme uint8

const (
	ThemeCombat Theme = iota
	ThemeExploration
	ThemeSocial
	ThemeFamily
	ThemeLife
)

// NumThemes is the size of the abstract enumeration.
const NumThemes = 5

// AbstractTopic describes one abstract theme and its baseline state.
type AbstractTopic struct {
	Theme      Theme
	Key        string
	ID         Topic
	Intensity  float32
	Confidence float32
}

var abstractTopics = [NumThemes]AbstractTopic{
	{Theme: ThemeCombat, Key: "combat", Intensity: 0.55, Confidence: 0.60},
	{Theme: ThemeExploration, Key: "exploration", Intensity: 0.45, Confidence: 0.55},
	{Theme: ThemeSocial, Key: "social", Intensity: 0.35, Confidence: 0.50},
	{Theme: ThemeFamily, Key: "family", Intensity: 0.40, Confidence: 0.65},
	{Theme: ThemeLife, Key: "life", Intensity: 0.30, Confidence: 0.50},
}

// abstractIndex maps an abstract topic id back to its slot in abstractTopics.
var abstractIndex = make(map[Topic]int, NumThemes)

func init() {
	for i := range abstractTopics {
		id := hashKey(abstractNamespace + abstractTopics[i].Key)
		if _, dup := abstractIndex[id]; dup {
			panic(fmt.Sprintf("gossip: abstract topic collision for %q", abstractTopics[i].Key))
		}
		abstractTopics[i].ID = id
		abstractIndex[id] = i
	}
}

// hashKey is FNV-1a over the namespaced key. A zero result is remapped so that
// zero stays reserved.
func hashKey(s string) Topic {
	h := fnv.New64a()
	h.Write([]byte(s))
	id := Topic(h.Sum64())
	if id == 0 {
		id = 1
	}
	return id
}

// Concrete derives the topic id for an event key. Keys are case-insensitive and
// surrounding whitespace is ignored. A concrete id never equals an abstract id.
func Concrete(key string) Topic {
	k := concreteNamespace + strings.ToLower(strings.TrimSpace(key))
	id := hashKey(k)
	for IsAbstract(id) {
		k += "#"
		id = hashKey(k)
	}
	return id
}

// Abstract returns the topic id for a theme.
func Abstract(t Theme) Topic {
	return abstractTopics[int(t)%NumThemes].ID
}

// AbstractTopics returns the fixed abstract enumeration in rotation order.
func AbstractTopics() []AbstractTopic {
	out := make([]AbstractTopic, NumThemes)
	copy(out, abstractTopics[:])
	return out
}

// IsAbstract reports whether id belongs to the abstract enumeration.
func IsAbstract(id Topic) bool {
	_, ok := abstractIndex[id]
	return ok
}

// FindAbstract returns the abstract descriptor for id.
func FindAbstract(id Topic) (AbstractTopic, bool) {
	i, ok := abstractIndex[id]
	if !ok {
		return AbstractTopic{}, false
	}
	return abstractTopics[i], true
}

// ParseTheme resolves a theme by its lowercase key.
func ParseTheme(key string) (Theme, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, at := range abstractTopics {
		if at.Key == key {
			return at.Theme, true
		}
	}
	return 0, false
}

// String returns the theme key.
func (t Theme) String() string {
	if int(t) < NumThemes {
		return abstractTopics[t].Key
	}
	return fmt.Sprintf("theme(%d)", uint8(t))
}

// String renders the id in hex, or the theme key for abstract topics.
func (t Topic) String() string {
	if at, ok := FindAbstract(t); ok {
		return at.Key
	}
	return fmt.Sprintf("%016x", uint64(t))
}
