// Package assemble sequences rasterized report surfaces into a single
// PDF document, one page per surface, each page sized exactly to its
// surface so the raster embeds at 1:1 logical size.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"unicode"

	"github.com/gradesheet/gradesheet/builder"
	"github.com/gradesheet/gradesheet/ir/semantic"
	"github.com/gradesheet/gradesheet/writer"
)

const jpegQuality = 92

// Assembler accumulates page surfaces and finalizes them into a PDF.
// Pages appear in append order. It is not safe for concurrent use;
// callers collect all surfaces first, then build.
type Assembler struct {
	b        builder.PDFBuilder
	pages    int
	lossless bool
	info     *semantic.DocumentInfo
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLossless embeds surfaces as Flate-compressed raw samples instead
// of JPEG. Larger output, no recompression artifacts.
func WithLossless() Option {
	return func(a *Assembler) { a.lossless = true }
}

// WithInfo sets the document metadata written to the Info dictionary.
func WithInfo(info *semantic.DocumentInfo) Option {
	return func(a *Assembler) { a.info = info }
}

// New returns an empty Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{b: builder.NewBuilder()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AppendSurface adds one page sized to the surface's pixel dimensions
// and places the raster filling it.
func (a *Assembler) AppendSurface(img image.Image) error {
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return fmt.Errorf("assemble: surface has empty bounds")
	}

	var xobj *semantic.Image
	if a.lossless {
		xobj = builder.FromImage(img)
	} else {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("assemble: encode surface: %w", err)
		}
		xobj = builder.FromJPEG(buf.Bytes(), bounds.Dx(), bounds.Dy())
	}

	a.b.NewPage(w, h).DrawImage(xobj, 0, 0, w, h).Finish()
	a.pages++
	return nil
}

// PageCount reports how many surfaces have been appended.
func (a *Assembler) PageCount() int { return a.pages }

// Build finalizes the document and returns the serialized bytes.
func (a *Assembler) Build(ctx context.Context) ([]byte, error) {
	if a.pages == 0 {
		return nil, fmt.Errorf("assemble: no pages appended")
	}
	if a.info != nil {
		a.b.SetInfo(a.info)
	}
	doc, err := a.b.Build()
	if err != nil {
		return nil, fmt.Errorf("assemble: build document: %w", err)
	}

	cfg := writer.Config{Version: writer.PDF17}
	if a.lossless {
		cfg.ContentFilter = writer.FilterFlate
	}
	var buf bytes.Buffer
	if err := writer.NewWriter().Write(ctx, doc, &buf, cfg); err != nil {
		return nil, fmt.Errorf("assemble: write document: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFilename derives a download filename from a student identifier.
// Runs of non-alphanumeric characters collapse to a single underscore.
func ReportFilename(studentID string) string {
	var out []rune
	pending := false
	for _, r := range studentID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && len(out) > 0 {
				out = append(out, '_')
			}
			pending = false
			out = append(out, r)
			continue
		}
		pending = true
	}
	if len(out) == 0 {
		return "report.pdf"
	}
	return string(out) + ".pdf"
}
