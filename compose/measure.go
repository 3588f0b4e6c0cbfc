package compose

// Measurer reports the horizontal advance of a single rune when drawn with a
// style. The compositor is pure layout; anything that can answer this
// question (a font face, a heuristic, a test stub) can drive it.
type Measurer interface {
	RuneWidth(r rune, style TextStyle) float64
}

// HeuristicMeasurer estimates advances without consulting font metrics:
// ideographic and other full-width scripts advance one em, everything else a
// little over half an em. Deterministic, so layout output is stable across
// platforms with no font files on hand.
type HeuristicMeasurer struct{}

func (HeuristicMeasurer) RuneWidth(r rune, style TextStyle) float64 {
	if isFullWidth(r) {
		return style.Size
	}
	return style.Size * 0.55
}

// isFullWidth covers CJK ideographs, kana, hangul, and the fullwidth forms
// block, the scripts the grading service emits without inter-word spaces.
func isFullWidth(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x115f,
		r >= 0x2e80 && r <= 0x9fff,
		r >= 0xa000 && r <= 0xa4cf,
		r >= 0xac00 && r <= 0xd7a3,
		r >= 0xf900 && r <= 0xfaff,
		r >= 0xfe30 && r <= 0xfe4f,
		r >= 0xff00 && r <= 0xff60,
		r >= 0xffe0 && r <= 0xffe6:
		return true
	}
	return false
}
