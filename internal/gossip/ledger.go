package gossip

import (
	"slices"
)

// MaxRumorCount is the default ledger capacity.
const MaxRumorCount = 64

// Tuning holds the ledger knobs. Zero fields fall back to DefaultTuning.
type Tuning struct {
	MaxRumors        int        `yaml:"max_rumors"`
	MaxAge           uint64     `yaml:"max_age"`         // ticks unheard before a record expires
	HeardRetention   uint64     `yaml:"heard_retention"` // ticks a heard-history entry outlives its hearing
	ShareCooldown    uint64     `yaml:"share_cooldown"`
	MinIntensity     float32    `yaml:"min_intensity"`
	MinConfidence    float32    `yaml:"min_confidence"`
	AbstractCooldown uint64     `yaml:"abstract_cooldown"`
	ShareWear        float32    `yaml:"share_wear"`
	DuplicateWear    float32    `yaml:"duplicate_wear"`
	Decay            DecayModel `yaml:"decay"`
	ActiveDecayDelay uint64     `yaml:"active_decay_delay"`
	IdleDecayDelay   uint64     `yaml:"idle_decay_delay"`
}

// DefaultTuning returns the stock ledger parameters.
func DefaultTuning() Tuning {
	return Tuning{
		MaxRumors:        MaxRumorCount,
		MaxAge:           2400,
		HeardRetention:   3000,
		ShareCooldown:    80,
		MinIntensity:     0.08,
		MinConfidence:    0.1,
		AbstractCooldown: 360,
		ShareWear:        DefaultShareWear,
		DuplicateWear:    DefaultDuplicateWear,
		Decay:            DefaultDecayModel(),
		ActiveDecayDelay: 40,
		IdleDecayDelay:   400,
	}
}

func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.MaxRumors <= 0 {
		t.MaxRumors = d.MaxRumors
	}
	if t.MaxAge == 0 {
		t.MaxAge = d.MaxAge
	}
	if t.HeardRetention < t.MaxAge {
		t.HeardRetention = t.MaxAge
	}
	if t.ShareWear <= 0 {
		t.ShareWear = d.ShareWear
	}
	if t.DuplicateWear <= 0 {
		t.DuplicateWear = d.DuplicateWear
	}
	if t.Decay == (DecayModel{}) {
		t.Decay = d.Decay
	}
	if t.ActiveDecayDelay == 0 {
		t.ActiveDecayDelay = d.ActiveDecayDelay
	}
	if t.IdleDecayDelay == 0 {
		t.IdleDecayDelay = d.IdleDecayDelay
	}
	return t
}

// Report is one hearing of a topic.
type Report struct {
	Topic      Topic
	Intensity  float32
	Confidence float32
	Tick       uint64
	Source     *uint64
	Paraphrase string
}

// Ledger is one agent's bounded store of rumors plus its share queue and
// heard-history. It is not safe for concurrent use; callers keep at most one
// mutation in flight per ledger.
type Ledger struct {
	tuning  Tuning
	records map[Topic]*Rumor
	queue   []Topic          // share order, front is next
	heard   map[Topic]uint64 // topic → last heard tick, outlives records

	abstractCursor int
	abstractShared map[Topic]uint64
}

// NewLedger creates an empty ledger.
func NewLedger(t Tuning) *Ledger {
	t = t.withDefaults()
	return &Ledger{
		tuning:         t,
		records:        make(map[Topic]*Rumor, t.MaxRumors),
		heard:          make(map[Topic]uint64),
		abstractShared: make(map[Topic]uint64),
	}
}

// Tuning returns the ledger's effective parameters.
func (l *Ledger) Tuning() Tuning { return l.tuning }

// Len returns the number of records held.
func (l *Ledger) Len() int { return len(l.records) }

// Has reports whether a record exists for topic.
func (l *Ledger) Has(topic Topic) bool {
	_, ok := l.records[topic]
	return ok
}

// Get returns a copy of the record for topic.
func (l *Ledger) Get(topic Topic) (Rumor, bool) {
	r, ok := l.records[topic]
	if !ok {
		return Rumor{}, false
	}
	return r.Clone(), true
}

// Records returns copies of all records ordered by topic id.
func (l *Ledger) Records() []Rumor {
	out := make([]Rumor, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.Clone())
	}
	slices.SortFunc(out, func(a, b Rumor) int {
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

// QueueOrder returns the share queue front to back.
func (l *Ledger) QueueOrder() []Topic {
	return slices.Clone(l.queue)
}

// RecordRumor creates or reinforces a record on the uncorroborated path, then
// re-queues it for sharing. Abstract topics only touch heard-history. Returns
// the topic evicted to make room, or zero.
func (l *Ledger) RecordRumor(rep Report) Topic {
	if rep.Topic == 0 {
		return 0
	}
	if IsAbstract(rep.Topic) {
		l.RegisterAbstractHeard(rep.Topic, rep.Tick)
		return 0
	}

	var evicted Topic
	if r, ok := l.records[rep.Topic]; ok {
		r.Reinforce(rep.Intensity, rep.Confidence, rep.Tick, rep.Source, rep.Paraphrase, false)
	} else {
		evicted, _ = l.EnforceCapacity()
		l.records[rep.Topic] = NewRumor(rep.Topic, rep.Intensity, rep.Confidence, rep.Tick, rep.Source, rep.Paraphrase)
	}
	l.enqueue(rep.Topic)
	l.noteHeard(rep.Topic, rep.Tick)
	return evicted
}

// IngestFromPeer folds a record told by a peer into the ledger. The caller
// decides whether the hearing corroborates existing knowledge.
func (l *Ledger) IngestFromPeer(shared Rumor, tick uint64, corroborated bool) Topic {
	if shared.Topic == 0 {
		return 0
	}
	if IsAbstract(shared.Topic) {
		l.RegisterAbstractHeard(shared.Topic, tick)
		return 0
	}

	var evicted Topic
	if r, ok := l.records[shared.Topic]; ok {
		r.Reinforce(shared.Intensity, shared.Confidence, tick, shared.Source, shared.Paraphrase, corroborated)
	} else {
		evicted, _ = l.EnforceCapacity()
		l.records[shared.Topic] = NewRumor(shared.Topic, shared.Intensity, shared.Confidence, tick, shared.Source, shared.Paraphrase)
	}
	l.enqueue(shared.Topic)
	l.noteHeard(shared.Topic, tick)
	return evicted
}

// HasShareableRumors prunes dangling queue entries and reports whether any
// queued record is ready to share.
func (l *Ledger) HasShareableRumors(tick uint64) bool {
	l.queue = slices.DeleteFunc(l.queue, func(t Topic) bool {
		_, ok := l.records[t]
		return !ok
	})
	for _, t := range l.queue {
		if l.shouldShare(l.records[t], tick) {
			return true
		}
	}
	return false
}

// PeekFreshRumors returns up to limit shareable concrete records in queue order
// without changing the ledger.
func (l *Ledger) PeekFreshRumors(limit int, tick uint64) []Rumor {
	if limit <= 0 {
		return nil
	}
	var out []Rumor
	for _, t := range l.queue {
		r, ok := l.records[t]
		if !ok || !l.shouldShare(r, tick) {
			continue
		}
		out = append(out, r.Clone())
		if len(out) == limit {
			break
		}
	}
	return out
}

// PeekAbstractRumors returns up to limit abstract themes whose cooldown has
// elapsed, starting at the rotation cursor. The cursor only moves on MarkShared.
func (l *Ledger) PeekAbstractRumors(limit int, tick uint64) []Rumor {
	if limit <= 0 {
		return nil
	}
	var out []Rumor
	for i := 0; i < NumThemes && len(out) < limit; i++ {
		at := abstractTopics[(l.abstractCursor+i)%NumThemes]
		last, shared := l.abstractShared[at.ID]
		if shared && ticksSince(tick, last) < l.tuning.AbstractCooldown {
			continue
		}
		out = append(out, Rumor{
			Topic:          at.ID,
			Intensity:      at.Intensity,
			Confidence:     at.Confidence,
			LastHeardTick:  tick,
			LastSharedTick: last,
		})
	}
	return out
}

// PollForSharing removes and returns the first shareable record from the queue.
func (l *Ledger) PollForSharing(tick uint64) (Rumor, bool) {
	for i, t := range l.queue {
		r, ok := l.records[t]
		if !ok || !l.shouldShare(r, tick) {
			continue
		}
		l.queue = slices.Delete(l.queue, i, i+1)
		return r.Clone(), true
	}
	return Rumor{}, false
}

// MarkShared records that the holder told topic. Concrete topics wear the
// record and move to the back of the queue; abstract topics advance the
// rotation cursor past the theme.
func (l *Ledger) MarkShared(topic Topic, tick uint64) {
	if i, ok := abstractIndex[topic]; ok {
		l.abstractShared[topic] = tick
		l.abstractCursor = (i + 1) % NumThemes
		return
	}
	r, ok := l.records[topic]
	if !ok {
		return
	}
	r.MarkShared(tick, l.tuning.ShareWear)
	l.enqueue(topic)
}

// TickDecay decays every record, drops expired ones, re-queues records that
// have become shareable again and ages out heard-history. Returns the number
// of records removed.
func (l *Ledger) TickDecay(tick uint64) int {
	removed := 0
	var requeue []Topic
	for t, r := range l.records {
		r.ApplyDecay(tick, l.tuning.Decay)
		if r.IsExpired(tick, l.tuning.MaxAge) {
			delete(l.records, t)
			l.dequeue(t)
			removed++
			continue
		}
		if !slices.Contains(l.queue, t) && l.shouldShare(r, tick) {
			requeue = append(requeue, t)
		}
	}
	slices.Sort(requeue)
	l.queue = append(l.queue, requeue...)
	for t, at := range l.heard {
		if _, ok := l.records[t]; ok {
			continue
		}
		if ticksSince(tick, at) > l.tuning.HeardRetention {
			delete(l.heard, t)
		}
	}
	return removed
}

// EnforceCapacity evicts the weakest record when the ledger is full. Ties go to
// the lowest topic id. Returns the evicted topic.
func (l *Ledger) EnforceCapacity() (Topic, bool) {
	if len(l.records) < l.tuning.MaxRumors {
		return 0, false
	}
	var (
		weakest Topic
		score   float32
		found   bool
	)
	for t, r := range l.records {
		s := r.Score()
		if !found || s < score || (s == score && t < weakest) {
			weakest, score, found = t, s, true
		}
	}
	if !found {
		return 0, false
	}
	l.forget(weakest)
	return weakest, true
}

// KnowledgeScore sums record strength weighted by freshness, which falls
// linearly to one half across the max-age window. Used for storyteller election.
func (l *Ledger) KnowledgeScore(tick uint64) float32 {
	var total float32
	for _, r := range l.records {
		age := ticksSince(tick, r.LastHeardTick)
		frac := float32(1)
		if age < l.tuning.MaxAge {
			frac = float32(age) / float32(l.tuning.MaxAge)
		}
		total += r.Score() * (1 - 0.5*frac)
	}
	return total
}

// ScheduleNextDecayDelay returns how many ticks until the ledger next needs a
// decay pass: short while it holds records, long while empty.
func (l *Ledger) ScheduleNextDecayDelay() uint64 {
	if len(l.records) > 0 {
		return l.tuning.ActiveDecayDelay
	}
	return l.tuning.IdleDecayDelay
}

// HeardRecently reports whether topic was heard within window ticks, even if
// its record has since expired.
func (l *Ledger) HeardRecently(topic Topic, tick, window uint64) bool {
	at, ok := l.heard[topic]
	return ok && ticksSince(tick, at) <= window
}

// HeardAt returns the last tick topic was heard.
func (l *Ledger) HeardAt(topic Topic) (uint64, bool) {
	at, ok := l.heard[topic]
	return at, ok
}

// RegisterDuplicate applies a too-soon repeat hearing. Reports whether a record
// was affected.
func (l *Ledger) RegisterDuplicate(topic Topic, tick uint64) bool {
	l.noteHeard(topic, tick)
	r, ok := l.records[topic]
	if !ok {
		return false
	}
	r.RegisterDuplicate(tick, l.tuning.DuplicateWear)
	return true
}

// MarkWitness flags that the holder saw topic's event first-hand.
func (l *Ledger) MarkWitness(topic Topic, tick uint64) bool {
	r, ok := l.records[topic]
	if !ok {
		return false
	}
	r.MarkWitness(tick)
	return true
}

// WitnessedRecently reports whether the holder saw topic's event within window.
func (l *Ledger) WitnessedRecently(topic Topic, tick, window uint64) bool {
	r, ok := l.records[topic]
	return ok && r.WitnessedRecently(tick, window)
}

// RegisterAbstractHeard notes that the holder has heard an abstract theme.
func (l *Ledger) RegisterAbstractHeard(topic Topic, tick uint64) {
	if !IsAbstract(topic) {
		return
	}
	l.noteHeard(topic, tick)
}

// KnowsAbstract reports whether an abstract theme is in heard-history.
func (l *Ledger) KnowsAbstract(topic Topic) bool {
	if !IsAbstract(topic) {
		return false
	}
	_, ok := l.heard[topic]
	return ok
}

func (l *Ledger) shouldShare(r *Rumor, tick uint64) bool {
	return r.ShouldShare(tick, l.tuning.ShareCooldown, l.tuning.MinIntensity, l.tuning.MinConfidence)
}

func (l *Ledger) noteHeard(topic Topic, tick uint64) {
	if at, ok := l.heard[topic]; !ok || tick > at {
		l.heard[topic] = tick
	}
}

// enqueue moves topic to the back of the share queue.
func (l *Ledger) enqueue(topic Topic) {
	l.dequeue(topic)
	l.queue = append(l.queue, topic)
}

func (l *Ledger) dequeue(topic Topic) {
	if i := slices.Index(l.queue, topic); i >= 0 {
		l.queue = slices.Delete(l.queue, i, i+1)
	}
}

func (l *Ledger) forget(topic Topic) {
	delete(l.records, topic)
	delete(l.heard, topic)
	l.dequeue(topic)
}
