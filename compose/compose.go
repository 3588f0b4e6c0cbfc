package compose

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"sort"

	"github.com/gradesheet/gradesheet/exam"
)

// SidebarRatio is the sidebar width as a fraction of the page image width.
// The fixed ratio keeps sidebar text legible across source resolutions
// without a separate metrics pass.
const SidebarRatio = 0.45

const (
	sidebarPadRatio = 0.07
	baseTextRatio   = 0.022
	minTextSize     = 9
	noteScale       = 0.85
	lineSpacing     = 1.4
	itemGapScale    = 0.9
	glyphRatio      = 0.028
	minGlyphSize    = 10
)

var (
	canvasWhite  = Color{R: 1, G: 1, B: 1, A: 1}
	sidebarFill  = Color{R: 0.975, G: 0.97, B: 0.955, A: 1}
	dividerInk   = Color{R: 0.8, G: 0.8, B: 0.8, A: 1}
	textInk      = Color{R: 0.13, G: 0.13, B: 0.15, A: 1}
	noteInk      = Color{R: 0.45, G: 0.45, B: 0.48, A: 1}
	correctInk   = Color{R: 0.12, G: 0.6, B: 0.32, A: 1}
	incorrectInk = Color{R: 0.83, G: 0.18, B: 0.16, A: 1}
)

// LoadError reports a page whose image could not be decoded at composition
// time. Only the failing page is affected; whether to abort the batch or
// skip the page is the caller's policy.
type LoadError struct {
	PageID string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("compose: load page %s: %v", e.PageID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Surface is a fully laid-out report page: final pixel dimensions plus the
// ordered draw commands that produce it.
type Surface struct {
	Width, Height int
	Commands      []Command
}

// Compositor lays out one corrected page and its marks into a Surface. It is
// pure computation; rasterization lives elsewhere.
type Compositor struct {
	measurer Measurer
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithMeasurer replaces the default heuristic measurer, typically with one
// backed by the same faces the renderer draws with.
func WithMeasurer(m Measurer) Option {
	return func(c *Compositor) {
		if m != nil {
			c.measurer = m
		}
	}
}

// New constructs a Compositor using the heuristic measurer unless an option
// substitutes another.
func New(opts ...Option) *Compositor {
	c := &Compositor{measurer: HeuristicMeasurer{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textBlock struct {
	text  string
	style TextStyle
}

// Compose renders one page into a surface: the image unscaled at the origin,
// a sidebar of SidebarRatio times the image width on the right, and per mark
// a status glyph, a dashed connector into the sidebar, and the mark's text
// blocks wrapped at the sidebar content width. Marks are processed in stable
// ascending-Y order so the sidebar reads top to bottom.
//
// The surface height starts at the image height and grows when sidebar
// content runs past it; content is never clipped.
func (c *Compositor) Compose(page exam.Page, marks []exam.Mark) (*Surface, error) {
	img, _, err := image.Decode(bytes.NewReader(page.Image))
	if err != nil {
		return nil, &LoadError{PageID: page.ID, Err: err}
	}
	b := img.Bounds()
	imgW := float64(b.Dx())
	imgH := float64(b.Dy())

	sidebarW := imgW * SidebarRatio
	width := imgW + sidebarW
	pad := sidebarW * sidebarPadRatio
	contentX := imgW + pad
	contentW := sidebarW - 2*pad

	baseSize := math.Max(imgW*baseTextRatio, minTextSize)
	lineH := baseSize * lineSpacing
	glyphSize := math.Max(imgW*glyphRatio, minGlyphSize)
	labels := exam.LabelsFor(page.Language)

	sorted := make([]exam.Mark, len(marks))
	copy(sorted, marks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	cursor := pad
	var markCmds []Command
	for _, m := range sorted {
		gx := imgW * m.X / 100
		gy := imgH * m.Y / 100

		ink := correctInk
		shape := GlyphCheck
		if m.Status == exam.StatusIncorrect {
			ink = incorrectInk
			shape = GlyphCross
		}
		markCmds = append(markCmds, DrawGlyph{
			Shape: shape,
			X:     gx,
			Y:     gy,
			Size:  glyphSize,
			Color: ink,
		})
		markCmds = append(markCmds, DrawDashedLine{
			X1:    gx + glyphSize*0.75,
			Y1:    gy,
			X2:    contentX - pad*0.35,
			Y2:    cursor + lineH*0.5,
			Width: math.Max(1, imgW*0.0015),
			Dash:  5,
			Gap:   4,
			Color: Color{R: ink.R, G: ink.G, B: ink.B, A: 0.75},
		})

		for _, blk := range c.blocks(m, labels, baseSize) {
			if blk.text == "" {
				continue
			}
			blockLineH := blk.style.Size * lineSpacing
			cmd, next := WrapBlock(blk.text, contentX, cursor, contentW, blk.style, blockLineH, c.measurer)
			markCmds = append(markCmds, cmd)
			cursor = next
		}
		cursor += lineH * itemGapScale
	}

	height := math.Max(imgH, cursor)

	cmds := make([]Command, 0, len(markCmds)+4)
	cmds = append(cmds,
		FillRect{X: 0, Y: 0, W: width, H: height, Color: canvasWhite},
		DrawImage{Image: img, X: 0, Y: 0},
		FillRect{X: imgW, Y: 0, W: sidebarW, H: height, Color: sidebarFill},
		FillRect{X: imgW, Y: 0, W: math.Max(1, imgW*0.002), H: height, Color: dividerInk},
	)
	cmds = append(cmds, markCmds...)

	return &Surface{
		Width:    int(math.Ceil(width)),
		Height:   int(math.Ceil(height)),
		Commands: cmds,
	}, nil
}

// blocks lists a mark's sidebar text in its fixed order: question in bold,
// the student answer behind its prefix, the correct answer only when the
// mark is incorrect and one was supplied, then the explanation in a smaller
// note style.
func (c *Compositor) blocks(m exam.Mark, labels exam.Labels, baseSize float64) []textBlock {
	var out []textBlock
	if m.Question != "" {
		out = append(out, textBlock{m.Question, TextStyle{Role: FontBold, Size: baseSize, Color: textInk}})
	}
	if m.StudentAnswer != "" {
		out = append(out, textBlock{labels.AnswerPrefix + m.StudentAnswer, TextStyle{Role: FontRegular, Size: baseSize, Color: textInk}})
	}
	if m.Status == exam.StatusIncorrect && m.CorrectAnswer != "" {
		out = append(out, textBlock{m.CorrectAnswer, TextStyle{Role: FontBold, Size: baseSize, Color: incorrectInk}})
	}
	if m.Explanation != "" {
		out = append(out, textBlock{m.Explanation, TextStyle{Role: FontRegular, Size: baseSize * noteScale, Color: noteInk}})
	}
	return out
}
