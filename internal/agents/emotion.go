// Emotion state: the sink gossip pushes reactions into.
package agents

import "fmt"

// Emotion is one category of feeling.
type Emotion uint8

const (
	EmotionDelight     Emotion = iota // A story landed well
	EmotionCuriosity                  // Something new to wonder about
	EmotionAwe                        // Wonder at the world
	EmotionPride                      // Being the one who knew
	EmotionUnease                     // A warning sits badly
	EmotionDread                      // Spooky tales
	EmotionIrritation                 // Happy stories from people one dislikes
	EmotionFrustration                // Old news, again
	EmotionBoredom                    // Nothing new
)

// NumEmotions is the number of emotion categories.
const NumEmotions = 9

var emotionNames = [NumEmotions]string{
	"delight", "curiosity", "awe", "pride", "unease", "dread", "irritation", "frustration", "boredom",
}

func (e Emotion) String() string {
	if int(e) < NumEmotions {
		return emotionNames[e]
	}
	return fmt.Sprintf("emotion(%d)", uint8(e))
}

// Positive reports whether the emotion lifts mood.
func (e Emotion) Positive() bool {
	switch e {
	case EmotionDelight, EmotionCuriosity, EmotionAwe, EmotionPride:
		return true
	}
	return false
}

// EmotionState holds the current level of each emotion, 0.0–1.0.
type EmotionState [NumEmotions]float32

// emotionRetention is the fraction of each emotion kept per decay step.
const emotionRetention = 0.98

// Push adds magnitude to an emotion. Negative magnitudes soothe it.
func (s *EmotionState) Push(e Emotion, magnitude float32) {
	if int(e) >= NumEmotions {
		return
	}
	v := s[e] + magnitude
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s[e] = v
}

// Decay lets every emotion fade toward zero.
func (s *EmotionState) Decay() {
	for i := range s {
		s[i] *= emotionRetention
		if s[i] < 0.001 {
			s[i] = 0
		}
	}
}

// Valence is positive minus negative feeling, clamped to [-1, 1].
func (s *EmotionState) Valence() float32 {
	var v float32
	for i, level := range s {
		if Emotion(i).Positive() {
			v += level
		} else {
			v -= level
		}
	}
	return clampSigned(v)
}

// Dominant returns the strongest emotion and its level.
func (s *EmotionState) Dominant() (Emotion, float32) {
	best := Emotion(0)
	for i := range s {
		if s[i] > s[best] {
			best = Emotion(i)
		}
	}
	return best, s[best]
}
