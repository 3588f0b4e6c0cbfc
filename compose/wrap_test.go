package compose

import (
	"testing"
	"unicode/utf8"
)

func TestWrapTextCharacterGranular(t *testing.T) {
	style := TextStyle{Size: 10}
	// ASCII advance is 5.5 at size 10, so three characters fit in 16.5.
	lines := WrapText("abcdef", 16.5, style, HeuristicMeasurer{})
	if len(lines) != 2 || lines[0] != "abc" || lines[1] != "def" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestWrapTextFullWidth(t *testing.T) {
	style := TextStyle{Size: 10}
	lines := WrapText("你好世界", 20, style, HeuristicMeasurer{})
	if len(lines) != 2 || lines[0] != "你好" || lines[1] != "世界" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestWrapTextOverwideCharacters(t *testing.T) {
	style := TextStyle{Size: 10}
	text := "排版引擎"
	lines := WrapText(text, 1, style, HeuristicMeasurer{})
	if len(lines) != utf8.RuneCountInString(text) {
		t.Fatalf("want one rune per line, got %q", lines)
	}
	for _, l := range lines {
		if utf8.RuneCountInString(l) != 1 {
			t.Fatalf("line %q holds more than one rune", l)
		}
	}
}

func TestWrapTextNewlines(t *testing.T) {
	style := TextStyle{Size: 10}
	lines := WrapText("first\nsecond", 1000, style, HeuristicMeasurer{})
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Fatalf("lines = %q", lines)
	}
	lines = WrapText("a\n\nb", 1000, style, HeuristicMeasurer{})
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("blank line not preserved: %q", lines)
	}
}

func TestWrapTextEmpty(t *testing.T) {
	if lines := WrapText("", 100, TextStyle{Size: 10}, HeuristicMeasurer{}); lines != nil {
		t.Fatalf("empty text produced %q", lines)
	}
}

func TestWrapBlockAdvancesCursor(t *testing.T) {
	style := TextStyle{Size: 12}
	for _, text := range []string{"x", "a longer sentence that will wrap a few times", "中文的一段较长说明文字"} {
		cmd, next := WrapBlock(text, 5, 40, 30, style, 16, HeuristicMeasurer{})
		if next <= 40 {
			t.Fatalf("cursor did not advance for %q: %v", text, next)
		}
		if len(cmd.Lines) == 0 {
			t.Fatalf("no lines for %q", text)
		}
		if want := 40 + float64(len(cmd.Lines))*16; next != want {
			t.Fatalf("cursor = %v, want %v", next, want)
		}
	}
}

func TestWrapBlockEmptyText(t *testing.T) {
	cmd, next := WrapBlock("", 5, 40, 30, TextStyle{Size: 12}, 16, HeuristicMeasurer{})
	if next != 40 || len(cmd.Lines) != 0 {
		t.Fatalf("empty block moved the cursor: lines=%d next=%v", len(cmd.Lines), next)
	}
}

func TestHeuristicMeasurerWidths(t *testing.T) {
	m := HeuristicMeasurer{}
	style := TextStyle{Size: 20}
	if w := m.RuneWidth('中', style); w != 20 {
		t.Fatalf("full-width advance = %v", w)
	}
	if w := m.RuneWidth('a', style); w != 11 {
		t.Fatalf("latin advance = %v", w)
	}
}
