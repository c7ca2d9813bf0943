package wish

import (
	"fmt"
	"strings"
)

// Tone selects which set of message passages the composer uses.
type Tone string

const (
	ToneSweet  Tone = "sweet"
	ToneFun    Tone = "fun"
	TonePoetic Tone = "poetic"
)

// DefaultEmoji is used when the caller does not provide one.
const DefaultEmoji = "🎉"

// NormalizeTone maps arbitrary user input to a valid Tone.
// Unrecognized or empty input falls back to ToneSweet.
func NormalizeTone(val string) Tone {
	switch t := Tone(strings.ToLower(val)); t {
	case ToneSweet, ToneFun, TonePoetic:
		return t
	default:
		return ToneSweet
	}
}

// Options carries the optional inputs for Generate.
type Options struct {
	Tone  Tone
	Emoji string
	From  string
}

var intros = map[Tone]string{
	ToneSweet:  "Happy Birthday, %[1]s! %[2]s Today is all about you—may your heart feel full and your smile shine bright.",
	ToneFun:    "Hey %[1]s! %[2]s Another lap around the sun—queue the cake, laughs, and zero responsibilities!",
	TonePoetic: "Dearest %[1]s, %[2]s on this day, the sky hums softly and time pauses to celebrate you.",
}

var middles = map[Tone]string{
	ToneSweet:  "Wishing you cuddly moments, sweet surprises, and memories that wrap you up like a warm hug.",
	ToneFun:    "May your day be packed with confetti moments, inside jokes, and happy chaos that makes the best stories.",
	TonePoetic: "May joy fall like petals at your feet, and may gentle light follow every step you take this year.",
}

var closes = map[Tone]string{
	ToneSweet:  "You’re loved more than you know—here’s to a beautiful year ahead! %s",
	ToneFun:    "Level up unlocked—go be awesome and save me some cake! %s",
	TonePoetic: "Here’s to your radiant journey ahead—soft, bright, and wonderfully you. %s",
}

// Generate renders the birthday message for name. It is a pure function:
// the same inputs always produce the same text. Callers are expected to
// have trimmed name and normalized the tone already.
func Generate(name string, opts Options) string {
	tone := opts.Tone
	if _, ok := intros[tone]; !ok {
		tone = ToneSweet
	}
	emoji := opts.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}

	var b strings.Builder
	fmt.Fprintf(&b, intros[tone], name, emoji)
	b.WriteString("\n\n")
	b.WriteString(middles[tone])
	b.WriteString("\n\n")
	fmt.Fprintf(&b, closes[tone], emoji)

	if from := strings.TrimSpace(opts.From); from != "" {
		b.WriteString("\n\nWith love,\n")
		b.WriteString(from)
	}
	return b.String()
}
