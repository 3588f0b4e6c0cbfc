package render

import (
	"bytes"
	"image"
	"image/png"

	"github.com/fogleman/gg"

	"github.com/gradesheet/gradesheet/compose"
)

// Rasterizer replays a surface's draw commands onto a raster canvas. It
// holds no layout logic; every position and line break was decided at
// composition time.
type Rasterizer struct {
	fonts *FontSet
}

// Option configures a Rasterizer.
type Option func(*Rasterizer)

// WithFontSet supplies TTF-backed faces. Without one the rasterizer draws
// text with a fixed bitmap face.
func WithFontSet(fs *FontSet) Option {
	return func(r *Rasterizer) { r.fonts = fs }
}

// New constructs a Rasterizer.
func New(opts ...Option) *Rasterizer {
	r := &Rasterizer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rasterize replays the surface's commands in order and returns the canvas.
func (r *Rasterizer) Rasterize(s *compose.Surface) image.Image {
	dc := gg.NewContext(s.Width, s.Height)
	for _, cmd := range s.Commands {
		switch c := cmd.(type) {
		case compose.FillRect:
			setColor(dc, c.Color)
			dc.DrawRectangle(c.X, c.Y, c.W, c.H)
			dc.Fill()
		case compose.DrawImage:
			dc.DrawImage(c.Image, int(c.X), int(c.Y))
		case compose.DrawGlyph:
			r.glyph(dc, c)
		case compose.DrawDashedLine:
			setColor(dc, c.Color)
			dc.SetLineWidth(c.Width)
			dc.SetDash(c.Dash, c.Gap)
			dc.DrawLine(c.X1, c.Y1, c.X2, c.Y2)
			dc.Stroke()
			dc.SetDash()
		case compose.DrawWrappedText:
			r.text(dc, c)
		}
	}
	return dc.Image()
}

func (r *Rasterizer) glyph(dc *gg.Context, c compose.DrawGlyph) {
	setColor(dc, c.Color)
	dc.SetLineWidth(c.Size * 0.18)
	dc.SetLineCapRound()
	s := c.Size
	switch c.Shape {
	case compose.GlyphCross:
		dc.DrawLine(c.X-0.45*s, c.Y-0.45*s, c.X+0.45*s, c.Y+0.45*s)
		dc.Stroke()
		dc.DrawLine(c.X-0.45*s, c.Y+0.45*s, c.X+0.45*s, c.Y-0.45*s)
		dc.Stroke()
	default:
		dc.MoveTo(c.X-0.5*s, c.Y+0.05*s)
		dc.LineTo(c.X-0.1*s, c.Y+0.45*s)
		dc.LineTo(c.X+0.5*s, c.Y-0.4*s)
		dc.Stroke()
	}
	dc.SetLineCapButt()
}

func (r *Rasterizer) text(dc *gg.Context, c compose.DrawWrappedText) {
	dc.SetFontFace(r.fonts.Face(c.Style.Role, c.Style.Size))
	setColor(dc, c.Style.Color)
	for i, line := range c.Lines {
		if line == "" {
			continue
		}
		top := c.Y + float64(i)*c.LineHeight
		dc.DrawStringAnchored(line, c.X, top, 0, 0.75)
	}
}

func setColor(dc *gg.Context, c compose.Color) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

// EncodePNG serializes a rendered canvas, for previews and tests.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
