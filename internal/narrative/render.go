// Package narrative turns gossip exchanges into short display lines and
// rate-limits how often each kind of line is surfaced.
package narrative

import (
	"fmt"
	"strings"

	"github.com/talgya/hearsay/internal/gossip"
)

// Format verbs: %[1]s is the teller, %[2]s is the topic label.
var lines = map[string]string{
	"tone.whisper.lean_in":     "%[1]s leans in close: \"Have you heard about %[2]s?\"",
	"tone.whisper.between_us":  "%[1]s lowers their voice. \"Just between us, %[2]s.\"",
	"tone.whisper.dont_repeat": "%[1]s glances around. \"Don't repeat this, but %[2]s.\"",

	"tone.cozy.fireside":   "%[1]s settles in by the fire to talk about %[2]s.",
	"tone.cozy.over_bread": "Over a heel of bread, %[1]s brings up %[2]s.",
	"tone.cozy.old_friend": "%[1]s chats about %[2]s like an old friend.",

	"tone.wonder.can_you_believe": "%[1]s can hardly believe it: %[2]s!",
	"tone.wonder.never_seen":      "\"Never in my life,\" says %[1]s of %[2]s.",
	"tone.wonder.stars":           "%[1]s gazes skyward, still thinking about %[2]s.",

	"tone.brag.i_was_there":    "\"I was there, you know,\" %[1]s says of %[2]s.",
	"tone.brag.told_you_first": "%[1]s reminds everyone they told them first about %[2]s.",
	"tone.brag.ask_anyone":     "\"Ask anyone,\" boasts %[1]s, holding forth on %[2]s.",

	"tone.warning.be_careful": "%[1]s warns everyone to be careful: %[2]s.",
	"tone.warning.stay_close": "\"Stay close tonight,\" %[1]s urges. \"%[2]s.\"",
	"tone.warning.lock_doors": "%[1]s is locking their doors over %[2]s.",

	"tone.spooky.they_say":   "They say, %[1]s murmurs, that %[2]s.",
	"tone.spooky.after_dark": "%[1]s won't talk about %[2]s after dark.",
	"tone.spooky.chill":      "A chill runs through the crowd as %[1]s recounts %[2]s.",

	"tone.weary.old_news": "%[1]s sighs. %[2]s is old news by now.",
	"tone.weary.again":    "\"Not %[2]s again,\" mutters %[1]s.",
	"tone.weary.heard_it": "%[1]s has heard enough about %[2]s.",

	"tone.sarcasm.oh_sure":  "\"Oh sure,\" %[1]s drawls, \"%[2]s. Naturally.\"",
	"tone.sarcasm.riveting": "%[1]s calls %[2]s simply riveting, eyes rolling.",
	"tone.sarcasm.shocking": "\"Shocking,\" deadpans %[1]s about %[2]s.",
}

// fallbackLine is used for template keys with no line of their own.
const fallbackLine = "%[1]s talks about %[2]s."

// Render formats the line for templateKey. Unknown keys fall back to a plain
// sentence rather than failing.
func Render(templateKey, teller, label string) string {
	format, ok := lines[templateKey]
	if !ok {
		format = fallbackLine
	}
	if teller == "" {
		teller = "Someone"
	}
	if label == "" {
		label = "something"
	}
	return fmt.Sprintf(format, teller, label)
}

// Label is the human-facing name for what a rumor is about: its paraphrase,
// its theme for abstract topics, or a placeholder.
func Label(r gossip.Rumor) string {
	if p := strings.TrimSpace(r.Paraphrase); p != "" {
		return p
	}
	if at, ok := gossip.FindAbstract(r.Topic); ok {
		return themeLabels[at.Theme]
	}
	return "something that happened"
}

var themeLabels = [gossip.NumThemes]string{
	gossip.ThemeCombat:      "the fighting lately",
	gossip.ThemeExploration: "what lies past the hills",
	gossip.ThemeSocial:      "who's been seen with whom",
	gossip.ThemeFamily:      "the families in town",
	gossip.ThemeLife:        "how life goes on",
}
