package render

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/gradesheet/gradesheet/compose"
)

// FontSet supplies scalable faces for the roles a surface can request.
// Faces are cached per role and size; the zero FontSet serves the fixed
// bitmap fallback face for everything.
type FontSet struct {
	regular *truetype.Font
	bold    *truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	role compose.FontRole
	size float64
}

// NewFontSet parses TTF data for the regular and bold roles. Bold may be
// nil, in which case the regular font serves both.
func NewFontSet(regular, bold []byte) (*FontSet, error) {
	fs := &FontSet{}
	if len(regular) > 0 {
		f, err := truetype.Parse(regular)
		if err != nil {
			return nil, fmt.Errorf("render: parse regular font: %w", err)
		}
		fs.regular = f
	}
	if len(bold) > 0 {
		f, err := truetype.Parse(bold)
		if err != nil {
			return nil, fmt.Errorf("render: parse bold font: %w", err)
		}
		fs.bold = f
	}
	return fs, nil
}

// Face returns a face for the role at the given pixel size. Without parsed
// TTF data it falls back to a fixed 7x13 bitmap face, which ignores size but
// keeps rendering functional.
func (s *FontSet) Face(role compose.FontRole, size float64) font.Face {
	if s == nil {
		return basicfont.Face7x13
	}
	f := s.regular
	if role == compose.FontBold && s.bold != nil {
		f = s.bold
	}
	if f == nil {
		return basicfont.Face7x13
	}

	key := faceKey{role: role, size: size}
	s.mu.Lock()
	defer s.mu.Unlock()
	if face, ok := s.faces[key]; ok {
		return face
	}
	face := truetype.NewFace(f, &truetype.Options{Size: size})
	if s.faces == nil {
		s.faces = make(map[faceKey]font.Face)
	}
	s.faces[key] = face
	return face
}

// FaceMeasurer measures rune advances with the same faces the rasterizer
// draws with, so wrapped lines match rendered widths exactly.
type FaceMeasurer struct {
	fonts *FontSet
}

// NewFaceMeasurer wraps a font set as a compose.Measurer.
func NewFaceMeasurer(fs *FontSet) *FaceMeasurer { return &FaceMeasurer{fonts: fs} }

func (m *FaceMeasurer) RuneWidth(r rune, style compose.TextStyle) float64 {
	face := m.fonts.Face(style.Role, style.Size)
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		return compose.HeuristicMeasurer{}.RuneWidth(r, style)
	}
	return float64(adv) / 64
}
