package gossip

import (
	"slices"
)

// Snapshot is the persisted form of a ledger.
type Snapshot struct {
	Records        []Rumor      `json:"records"`
	Queue          []Topic      `json:"queue"`
	Heard          []HeardEntry `json:"heard"`
	AbstractCursor int          `json:"abstract_cursor,omitempty"`
	AbstractShared []HeardEntry `json:"abstract_shared,omitempty"`
}

// HeardEntry is one topic → tick pair.
type HeardEntry struct {
	Topic Topic  `json:"topic"`
	Tick  uint64 `json:"tick"`
}

// Snapshot captures the ledger. Records and history are ordered by topic id;
// the queue keeps share order.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Records:        l.Records(),
		Queue:          l.QueueOrder(),
		Heard:          sortedEntries(l.heard),
		AbstractCursor: l.abstractCursor,
		AbstractShared: sortedEntries(l.abstractShared),
	}
}

// Restore rebuilds a ledger from a snapshot. Malformed and duplicate entries
// are skipped rather than failing the load; the number skipped is returned.
func Restore(s Snapshot, t Tuning) (*Ledger, int) {
	l := NewLedger(t)
	dropped := 0

	for _, r := range s.Records {
		if r.Topic == 0 || IsAbstract(r.Topic) || l.Has(r.Topic) || len(l.records) >= l.tuning.MaxRumors {
			dropped++
			continue
		}
		rec := r.Clone()
		rec.Intensity = clamp01(rec.Intensity)
		rec.Confidence = clamp01(rec.Confidence)
		l.records[rec.Topic] = &rec
	}

	for _, t := range s.Queue {
		if !l.Has(t) || slices.Contains(l.queue, t) {
			dropped++
			continue
		}
		l.queue = append(l.queue, t)
	}

	for _, h := range s.Heard {
		if h.Topic == 0 {
			dropped++
			continue
		}
		if _, dup := l.heard[h.Topic]; dup {
			dropped++
			continue
		}
		l.heard[h.Topic] = h.Tick
	}

	for _, h := range s.AbstractShared {
		if !IsAbstract(h.Topic) {
			dropped++
			continue
		}
		if _, dup := l.abstractShared[h.Topic]; dup {
			dropped++
			continue
		}
		l.abstractShared[h.Topic] = h.Tick
	}
	if s.AbstractCursor >= 0 && s.AbstractCursor < NumThemes {
		l.abstractCursor = s.AbstractCursor
	}

	return l, dropped
}

func sortedEntries(m map[Topic]uint64) []HeardEntry {
	out := make([]HeardEntry, 0, len(m))
	for t, tick := range m {
		out = append(out, HeardEntry{Topic: t, Tick: tick})
	}
	slices.SortFunc(out, func(a, b HeardEntry) int {
		switch {
		case a.Topic < b.Topic:
			return -1
		case a.Topic > b.Topic:
			return 1
		}
		return 0
	})
	return out
}
