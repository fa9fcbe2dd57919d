package propagation

import "github.com/talgya/hearsay/internal/agents"

// CircleConfig tunes group broadcasts.
type CircleConfig struct {
	Cadence         uint64  `yaml:"cadence"`          // ticks between attempts per agent
	Radius          int     `yaml:"radius"`           // hexes
	Candidates      int     `yaml:"candidates"`       // records told per broadcast
	LeaderEpsilon   float32 `yaml:"leader_epsilon"`   // knowledge margin a teller must hold over every listener
	DuplicateWindow uint64  `yaml:"duplicate_window"` // ticks within which a repeat hearing is a duplicate
	CueInterval     uint64  `yaml:"cue_interval"`
}

// DefaultCircleConfig returns the standard broadcast settings.
func DefaultCircleConfig() CircleConfig {
	return CircleConfig{
		Cadence:         90,
		Radius:          2,
		Candidates:      3,
		LeaderEpsilon:   0.05,
		DuplicateWindow: 600,
		CueInterval:     180,
	}
}

// WhisperConfig tunes one-on-one exchanges.
type WhisperConfig struct {
	Cadence         uint64  `yaml:"cadence"`
	Radius          int     `yaml:"radius"`
	SessionBudget   float32 `yaml:"session_budget"` // spent per exchange on one topic
	PairCooldown    uint64  `yaml:"pair_cooldown"`  // ticks a whisperer waits after any exchange
	OptOutMood      float32 `yaml:"opt_out_mood"`   // listeners at or below this mood refuse
	OptOutCooldown  uint64  `yaml:"opt_out_cooldown"`
	WitnessWindow   uint64  `yaml:"witness_window"`
	DuplicateWindow uint64  `yaml:"duplicate_window"`
	CueInterval     uint64  `yaml:"cue_interval"`
}

// DefaultWhisperConfig returns the standard whisper settings.
func DefaultWhisperConfig() WhisperConfig {
	return WhisperConfig{
		Cadence:         45,
		Radius:          1,
		SessionBudget:   3.0,
		PairCooldown:    30,
		OptOutMood:      -0.6,
		OptOutCooldown:  240,
		WitnessWindow:   1200,
		DuplicateWindow: 600,
		CueInterval:     90,
	}
}

// cadenceDue staggers agents across the cadence so they don't all talk on the
// same tick.
func cadenceDue(tick uint64, id agents.AgentID, cadence uint64) bool {
	if cadence <= 1 {
		return true
	}
	return (tick+uint64(id))%cadence == 0
}
