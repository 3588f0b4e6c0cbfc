package compose

// WrapText splits text into lines no wider than maxWidth by greedy character
// accumulation: characters are appended one by one, and when the next one
// would exceed maxWidth the accumulated line is flushed and a new line
// starts at that character. Character granularity, not word granularity,
// keeps scripts without inter-word spaces wrappable. A single character
// wider than maxWidth still occupies a line of its own, so the routine
// terminates for any positive width. Embedded newlines force a break.
func WrapText(text string, maxWidth float64, style TextStyle, m Measurer) []string {
	if text == "" {
		return nil
	}
	var lines []string
	line := make([]rune, 0, 32)
	width := 0.0
	for _, r := range text {
		if r == '\n' {
			lines = append(lines, string(line))
			line = line[:0]
			width = 0
			continue
		}
		w := m.RuneWidth(r, style)
		if len(line) > 0 && width+w > maxWidth {
			lines = append(lines, string(line))
			line = line[:0]
			width = 0
		}
		line = append(line, r)
		width += w
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// WrapBlock wraps text into a DrawWrappedText command whose first line's top
// sits at (x, y), and returns the command together with the cursor position
// just below the last line. For non-empty text the returned cursor is
// strictly greater than y, so stacked blocks never overlap.
func WrapBlock(text string, x, y, maxWidth float64, style TextStyle, lineHeight float64, m Measurer) (DrawWrappedText, float64) {
	lines := WrapText(text, maxWidth, style, m)
	cmd := DrawWrappedText{
		Lines:      lines,
		X:          x,
		Y:          y,
		LineHeight: lineHeight,
		Style:      style,
	}
	return cmd, y + float64(len(lines))*lineHeight
}
