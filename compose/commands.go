package compose

import "image"

// Command is one immutable drawing instruction within a composed surface.
// Layout emits an ordered command list; a renderer replays it without any
// layout knowledge of its own.
type Command interface {
	command()
	Kind() string
}

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float64
}

// FontRole selects which face a renderer uses for a text block.
type FontRole string

const (
	FontRegular FontRole = "regular"
	FontBold    FontRole = "bold"
)

// TextStyle describes how one wrapped text block is drawn and measured.
type TextStyle struct {
	Role  FontRole
	Size  float64
	Color Color
}

// GlyphShape identifies a status glyph.
type GlyphShape string

const (
	GlyphCheck GlyphShape = "check"
	GlyphCross GlyphShape = "cross"
)

// DrawImage places a decoded image with its top-left corner at (X, Y) at
// native scale.
type DrawImage struct {
	Image image.Image
	X, Y  float64
}

func (DrawImage) command()     {}
func (DrawImage) Kind() string { return "image" }

// FillRect fills an axis-aligned rectangle.
type FillRect struct {
	X, Y, W, H float64
	Color      Color
}

func (FillRect) command()     {}
func (FillRect) Kind() string { return "fill_rect" }

// DrawGlyph stamps a status glyph centered on (X, Y).
type DrawGlyph struct {
	Shape GlyphShape
	X, Y  float64
	Size  float64
	Color Color
}

func (DrawGlyph) command()     {}
func (DrawGlyph) Kind() string { return "glyph" }

// DrawDashedLine strokes a dashed segment from (X1, Y1) to (X2, Y2).
type DrawDashedLine struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Dash, Gap      float64
	Color          Color
}

func (DrawDashedLine) command()     {}
func (DrawDashedLine) Kind() string { return "dashed_line" }

// DrawWrappedText draws pre-wrapped lines starting at (X, Y), where Y is the
// top of the first line and each subsequent line sits LineHeight below the
// previous one. Wrapping happened at layout time; renderers draw the lines
// verbatim.
type DrawWrappedText struct {
	Lines      []string
	X, Y       float64
	LineHeight float64
	Style      TextStyle
}

func (DrawWrappedText) command()     {}
func (DrawWrappedText) Kind() string { return "wrapped_text" }
