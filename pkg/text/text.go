// Package text holds the text utilities the layout engine consumes:
// rune-aware truncation and the reading-direction heuristic.
package text

import (
	"math/rand/v2"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
)

// Truncate returns the first maxLen runes of s.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	i := 0
	for n := 0; n < maxLen; n++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// Ellipsize shortens s to at most maxLen runes for display, replacing the
// tail with "…" when it has to cut.
func Ellipsize(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return Truncate("…", maxLen)
	}
	return Truncate(s, maxLen-1) + "…"
}

// Length returns the number of runes in s.
func Length(s string) int { return utf8.RuneCountInString(s) }

const (
	// verticalMinRatio is the share of CJK runes above which text may be
	// set vertically at all.
	verticalMinRatio = 0.5

	// verticalMaxLength is the longest combined content+note length that
	// is still set vertically by the deterministic heuristic.
	verticalMaxLength = 30

	shortVerticalChance = 0.5
	longVerticalChance  = 0.2
)

// DecideDirection picks a reading direction from content and note text.
//
// Text that is not predominantly CJK is always horizontal. For CJK text the
// deterministic rule (rng == nil) picks vertical for short text. With a
// non-nil rng the choice is randomized: short text goes vertical half of the
// time, longer text a fifth of the time.
func DecideDirection(content, note string, rng *rand.Rand) fragment.Direction {
	if cjkRatio(content+note) < verticalMinRatio {
		return fragment.Horizontal
	}

	n := Length(content) + Length(note)
	if rng == nil {
		if n <= verticalMaxLength {
			return fragment.Vertical
		}
		return fragment.Horizontal
	}

	chance := longVerticalChance
	if n <= verticalMaxLength {
		chance = shortVerticalChance
	}
	if rng.Float64() < chance {
		return fragment.Vertical
	}
	return fragment.Horizontal
}

// cjkRatio returns the share of CJK runes among the letters of s.
func cjkRatio(s string) float64 {
	var letters, cjk int
	for _, r := range strings.TrimSpace(s) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			cjk++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(cjk) / float64(letters)
}
