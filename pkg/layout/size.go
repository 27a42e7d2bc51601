package layout

import (
	"math"

	"github.com/matzehuels/fragmentgrid/pkg/fragment"
	"github.com/matzehuels/fragmentgrid/pkg/grid"
	"github.com/matzehuels/fragmentgrid/pkg/text"
)

// Card size bounds in grid units.
const (
	MinCardWidth  = 5
	MaxCardWidth  = 15
	MinCardHeight = 4
	MaxCardHeight = 12
)

// BaseFontSize is the font size at which the size formulas are calibrated.
const BaseFontSize = 14.0

// Size estimation constants. The horizontal and vertical formulas use
// different scales on purpose; they are not transposes of each other.
const (
	nominalChars    = 15.0 // characters per line/column at BaseFontSize
	minCharsPerLine = 10
	maxAvgChars     = 20
	maxTextLines    = 8 // shared between content and note

	maxTagLines     = 2 // horizontal: tags wrap four to a line
	tagsPerLine     = 4
	maxTagColumns   = 3 // vertical: one tag per column
	tagLineSize     = 1.5
	tagBlockPadding = 1.5
	noteScale       = 0.8

	hLineHeight = 1.4
	hCharWidth  = 0.6
	hPadHeight  = 3.5
	hPadWidth   = 2.0

	vColumnWidth = 1.6
	vCharHeight  = 1.1
	vPadWidth    = 3.5
	vPadHeight   = 2.0
)

// FontSize returns the font size for a fragment with the given relevance
// score. Every fragment currently gets BaseFontSize; the score is accepted
// so that relevance-driven sizing can be introduced without touching the
// callers.
func FontSize(relevance float64) float64 {
	return BaseFontSize
}

// EstimateSize derives a card size in grid units from a fragment's content,
// first note, tag count, reading direction, and font size. It never fails:
// the result is always clamped to the card bounds.
func EstimateSize(f *fragment.Fragment, dir fragment.Direction, fontSize float64, cfg Config) grid.Size {
	contentLen := text.Length(text.Truncate(f.Content, cfg.MaxContentLength))
	noteLen := text.Length(text.Truncate(f.NoteText(), cfg.MaxNoteLength))
	tags := len(f.Tags)

	fontFactor := fontSize / BaseFontSize
	if fontFactor <= 0 || math.IsNaN(fontFactor) || math.IsInf(fontFactor, 0) {
		fontFactor = 1
	}
	perLine := max(minCharsPerLine, int(math.Ceil(nominalChars/fontFactor)))

	contentLines := max(1, ceilDiv(contentLen, perLine))
	noteLines := ceilDiv(noteLen, perLine)
	contentLines = min(contentLines, maxTextLines)
	noteLines = min(noteLines, max(0, maxTextLines-contentLines))

	var width, height float64
	if dir == fragment.Vertical {
		tagColumns := min(tags, maxTagColumns)

		columnWidth := fontFactor * vColumnWidth
		contentWidth := float64(contentLines) * columnWidth
		noteWidth := float64(noteLines) * columnWidth * noteScale
		tagWidth := 0.0
		if tagColumns > 0 {
			tagWidth = float64(tagColumns)*tagLineSize + tagBlockPadding
		}

		charHeight := fontFactor * vCharHeight
		contentHeight := float64(min(perLine, maxAvgChars)) * charHeight

		width = math.Round(contentWidth + noteWidth + tagWidth + vPadWidth)
		height = math.Round(contentHeight + vPadHeight)
	} else {
		tagLines := min(maxTagLines, ceilDiv(tags, tagsPerLine))

		lineHeight := fontFactor * hLineHeight
		contentHeight := float64(contentLines) * lineHeight
		noteHeight := float64(noteLines) * lineHeight * noteScale
		tagHeight := 0.0
		if tagLines > 0 {
			tagHeight = float64(tagLines)*tagLineSize + tagBlockPadding
		}

		charWidth := fontFactor * hCharWidth
		contentWidth := float64(min(perLine, maxAvgChars)) * charWidth

		width = math.Round(contentWidth + hPadWidth)
		height = math.Round(contentHeight + noteHeight + tagHeight + hPadHeight)
	}

	return grid.Size{
		Width:  clamp(int(width), MinCardWidth, MaxCardWidth),
		Height: clamp(int(height), MinCardHeight, MaxCardHeight),
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
