package gossip

// Default wear applied to a record by sharing and by duplicate hearings.
const (
	DefaultShareWear     float32 = 0.94
	DefaultDuplicateWear float32 = 0.96
)

// Floor is the level at which intensity and confidence count as spent.
const Floor float32 = 0.01

const (
	maxShareCount          = 255
	duplicateConfidenceHit = 0.03
)

// Rumor is one agent's knowledge of one topic.
type Rumor struct {
	Topic           Topic   `json:"topic"`
	Intensity       float32 `json:"intensity"`  // 0.0–1.0, how dramatic
	Confidence      float32 `json:"confidence"` // 0.0–1.0, how certain
	LastHeardTick   uint64  `json:"last_heard_tick"`
	LastSharedTick  uint64  `json:"last_shared_tick"`
	ShareCount      uint8   `json:"share_count"`
	LastWitnessTick uint64  `json:"last_witness_tick"`
	Source          *uint64 `json:"source,omitempty"`     // Agent the rumor was last heard from
	Paraphrase      string  `json:"paraphrase,omitempty"` // Display text, empty when absent
}

// DecayModel parameterises passive decay.
type DecayModel struct {
	Window                  uint64  `yaml:"window"`                    // ticks-since-heard at which decay reaches full rate
	IntensityRate           float32 `yaml:"intensity_rate"`            // per pass at full rate
	ConfidenceRate          float32 `yaml:"confidence_rate"`           // per pass at full rate
	UnsharedConfidenceScale float32 `yaml:"unshared_confidence_scale"` // multiplier for never-shared records
}

// DefaultDecayModel returns the stock decay parameters.
func DefaultDecayModel() DecayModel {
	return DecayModel{
		Window:                  400,
		IntensityRate:           0.02,
		ConfidenceRate:          0.008,
		UnsharedConfidenceScale: 0.5,
	}
}

// NewRumor creates a record heard for the first time.
func NewRumor(topic Topic, intensity, confidence float32, tick uint64, source *uint64, paraphrase string) *Rumor {
	return &Rumor{
		Topic:         topic,
		Intensity:     clamp01(intensity),
		Confidence:    clamp01(confidence),
		LastHeardTick: tick,
		Source:        copySource(source),
		Paraphrase:    paraphrase,
	}
}

// Reinforce folds another hearing of the same topic into the record.
// Corroborated reports push confidence toward 1 with diminishing returns; fresh
// reports blend intensity and take the more confident of the two.
func (r *Rumor) Reinforce(intensity, confidence float32, tick uint64, source *uint64, paraphrase string, corroborated bool) {
	intensity = clamp01(intensity)
	confidence = clamp01(confidence)

	if corroborated {
		r.Intensity = clamp01(max(r.Intensity, intensity))
		r.Confidence = clamp01(r.Confidence + (1-r.Confidence)*0.35 + confidence*0.2)
	} else {
		r.Intensity = clamp01(r.Intensity*0.65 + intensity*0.35)
		r.Confidence = clamp01(max(r.Confidence, confidence))
		if r.Confidence < 0.85 {
			r.Confidence = clamp01(r.Confidence + 0.05)
		}
	}

	r.LastHeardTick = max(r.LastHeardTick, tick)
	if source != nil {
		r.Source = copySource(source)
	}
	if paraphrase != "" {
		r.Paraphrase = paraphrase
	}
}

// MarkShared records that the holder told the story. Telling wears it down by
// the given factor; a non-positive wear uses DefaultShareWear.
func (r *Rumor) MarkShared(tick uint64, wear float32) {
	if wear <= 0 {
		wear = DefaultShareWear
	}
	r.LastSharedTick = max(r.LastSharedTick, tick)
	if r.ShareCount < maxShareCount {
		r.ShareCount++
	}
	r.Intensity = clamp01(r.Intensity * wear)
}

// ApplyDecay weakens the record in proportion to how long ago it was last heard.
// Decay never increases either value.
func (r *Rumor) ApplyDecay(tick uint64, m DecayModel) {
	age := ticksSince(tick, r.LastHeardTick)
	if age == 0 {
		return
	}
	factor := float32(1)
	if m.Window > 0 && age < m.Window {
		factor = float32(age) / float32(m.Window)
	}

	confRate := m.ConfidenceRate
	if r.neverShared() {
		confRate *= m.UnsharedConfidenceScale
	}

	r.Intensity = clamp01(r.Intensity - m.IntensityRate*factor)
	r.Confidence = clamp01(r.Confidence - confRate*factor)
}

// ShouldShare reports whether the record is strong enough to tell and the
// cooldown since it was last told has elapsed.
func (r *Rumor) ShouldShare(tick, cooldown uint64, minIntensity, minConfidence float32) bool {
	if r.Intensity < minIntensity && r.Confidence < minConfidence {
		return false
	}
	if r.neverShared() {
		return true
	}
	return ticksSince(tick, r.LastSharedTick) >= cooldown
}

// IsExpired reports whether the record is spent or has gone unheard for longer
// than maxAge.
func (r *Rumor) IsExpired(tick, maxAge uint64) bool {
	if r.Intensity <= Floor && r.Confidence <= Floor {
		return true
	}
	return ticksSince(tick, r.LastHeardTick) > maxAge
}

// RegisterDuplicate is applied when the holder hears the same story again too
// soon. The story wears thin: confidence never rises and share count drops.
func (r *Rumor) RegisterDuplicate(tick uint64, wear float32) {
	if wear <= 0 {
		wear = DefaultDuplicateWear
	}
	r.LastHeardTick = max(r.LastHeardTick, tick)
	r.Intensity = clamp01(r.Intensity * wear)
	r.Confidence = clamp01(r.Confidence - duplicateConfidenceHit)
	if r.ShareCount > 0 {
		r.ShareCount--
	}
}

// MarkWitness records that the holder saw the underlying event first-hand.
func (r *Rumor) MarkWitness(tick uint64) {
	r.LastWitnessTick = max(r.LastWitnessTick, tick)
}

// WitnessedRecently reports whether the holder saw the event within window ticks.
func (r *Rumor) WitnessedRecently(tick, window uint64) bool {
	if r.LastWitnessTick == 0 {
		return false
	}
	return ticksSince(tick, r.LastWitnessTick) <= window
}

// Score is the composite strength used for eviction and knowledge scoring.
func (r *Rumor) Score() float32 {
	return r.Intensity*0.7 + r.Confidence*0.3
}

func (r *Rumor) neverShared() bool {
	return r.ShareCount == 0 && r.LastSharedTick == 0
}

// Clone returns an independent copy.
func (r *Rumor) Clone() Rumor {
	c := *r
	c.Source = copySource(r.Source)
	return c
}

func copySource(src *uint64) *uint64 {
	if src == nil {
		return nil
	}
	v := *src
	return &v
}

func clamp01(v float32) float32 {
	if v != v { // NaN
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func ticksSince(now, then uint64) uint64 {
	if now <= then {
		return 0
	}
	return now - then
}
