package narrative

import (
	"sync"
)

// Cue is one display line offered by a gossip exchange.
type Cue struct {
	ID          string `json:"id"` // re-fire key, e.g. "circle:<teller>"
	Tick        uint64 `json:"tick"`
	MinInterval uint64 `json:"min_interval"` // ticks before the same ID may fire again
	Speaker     uint64 `json:"speaker"`
	Text        string `json:"text"`
}

// Cues is the cue sink: it drops cues that re-fire inside their minimum
// interval and keeps a bounded log of the ones that got through.
type Cues struct {
	mu         sync.Mutex
	lastFired  map[string]uint64
	log        []Cue // oldest first
	capacity   int
	suppressed int
}

// DefaultCueLogSize is the number of fired cues kept when no size is given.
const DefaultCueLogSize = 256

// NewCues creates a cue sink keeping at most capacity fired cues.
func NewCues(capacity int) *Cues {
	if capacity <= 0 {
		capacity = DefaultCueLogSize
	}
	return &Cues{
		lastFired: make(map[string]uint64),
		capacity:  capacity,
	}
}

// Emit offers a cue. Returns false when the cue's ID fired too recently.
func (c *Cues) Emit(cue Cue) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if last, ok := c.lastFired[cue.ID]; ok && cue.Tick >= last && cue.Tick-last < cue.MinInterval {
		c.suppressed++
		return false
	}
	c.lastFired[cue.ID] = cue.Tick

	if len(c.log) == c.capacity {
		copy(c.log, c.log[1:])
		c.log = c.log[:len(c.log)-1]
	}
	c.log = append(c.log, cue)
	return true
}

// Recent returns up to n of the newest fired cues, newest last.
func (c *Cues) Recent(n int) []Cue {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n <= 0 || n > len(c.log) {
		n = len(c.log)
	}
	out := make([]Cue, n)
	copy(out, c.log[len(c.log)-n:])
	return out
}

// Suppressed returns how many cues have been dropped by the interval check.
func (c *Cues) Suppressed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressed
}

// Prune forgets re-fire state older than horizon ticks.
func (c *Cues) Prune(tick, horizon uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, last := range c.lastFired {
		if tick > last && tick-last > horizon {
			delete(c.lastFired, id)
		}
	}
}
