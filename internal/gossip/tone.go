package gossip

// Tone is the narrative register a rumor is told in.
type Tone uint8

const (
	ToneWhisper Tone = iota
	ToneCozy
	ToneWonder
	ToneBrag
	ToneWarning
	ToneSpooky
	ToneWeary
	ToneSarcasm
)

// NumTones is the number of tone buckets.
const NumTones = 8

var toneNames = [NumTones]string{"whisper", "cozy", "wonder", "brag", "warning", "spooky", "weary", "sarcasm"}

func (t Tone) String() string {
	if int(t) < NumTones {
		return toneNames[t]
	}
	return "unknown"
}

// Upbeat reports whether the tone reads as a happy story.
func (t Tone) Upbeat() bool {
	switch t {
	case ToneBrag, ToneCozy, ToneWonder, ToneWhisper:
		return true
	}
	return false
}

// Recency windows, in ticks since last heard.
const (
	FreshWindow  uint64 = 200
	RecentWindow uint64 = 600
	StaleWindow  uint64 = 1600
)

var toneTemplates = [NumTones][]string{
	ToneWhisper: {"tone.whisper.lean_in", "tone.whisper.between_us", "tone.whisper.dont_repeat"},
	ToneCozy:    {"tone.cozy.fireside", "tone.cozy.over_bread", "tone.cozy.old_friend"},
	ToneWonder:  {"tone.wonder.can_you_believe", "tone.wonder.never_seen", "tone.wonder.stars"},
	ToneBrag:    {"tone.brag.i_was_there", "tone.brag.told_you_first", "tone.brag.ask_anyone"},
	ToneWarning: {"tone.warning.be_careful", "tone.warning.stay_close", "tone.warning.lock_doors"},
	ToneSpooky:  {"tone.spooky.they_say", "tone.spooky.after_dark", "tone.spooky.chill"},
	ToneWeary:   {"tone.weary.old_news", "tone.weary.again", "tone.weary.heard_it"},
	ToneSarcasm: {"tone.sarcasm.oh_sure", "tone.sarcasm.riveting", "tone.sarcasm.shocking"},
}

// Classify maps a rumor's state at tick onto a tone. Conditions are checked in
// a fixed priority order and the first match wins; Cozy is the fallback.
func Classify(r Rumor, tick uint64) Tone {
	age := ticksSince(tick, r.LastHeardTick)
	gap := r.Intensity - r.Confidence

	switch {
	case r.Intensity >= 0.7 && r.Confidence < 0.45 && age <= RecentWindow:
		return ToneSpooky
	case r.Intensity >= 0.65 && r.Confidence >= 0.6 && age <= FreshWindow:
		return ToneWarning
	case r.ShareCount >= 4 && r.Intensity >= 0.5:
		return ToneBrag
	case r.Confidence < 0.35 && age <= FreshWindow:
		return ToneWhisper
	case gap <= -0.35 && r.ShareCount >= 2:
		return ToneSarcasm
	case age > StaleWindow || r.ShareCount >= 8 || (r.Intensity < 0.2 && age > RecentWindow):
		return ToneWeary
	case gap >= 0.25 && age <= RecentWindow:
		return ToneWonder
	}
	return ToneCozy
}

// Templates returns the template keys for a tone.
func Templates(t Tone) []string {
	if int(t) >= NumTones {
		return nil
	}
	return toneTemplates[t]
}

// TemplateKey picks a template for the rumor deterministically from its topic,
// share count and the tick.
func TemplateKey(t Tone, r Rumor, tick uint64) string {
	keys := Templates(t)
	if len(keys) == 0 {
		return ""
	}
	mix := uint64(r.Topic) ^ (uint64(r.ShareCount) * 31) ^ tick
	return keys[mix%uint64(len(keys))]
}
