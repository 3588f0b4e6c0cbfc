package builder

import (
	"fmt"

	"github.com/gradesheet/gradesheet/ir/semantic"
)

// PDFBuilder provides a fluent API for assembling a report document.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for one page's content.
type PageBuilder interface {
	DrawImage(img *semantic.Image, x, y, width, height float64) PageBuilder
	Finish() PDFBuilder
}

type builderImpl struct {
	pages        []*semantic.Page
	info         *semantic.DocumentInfo
	xobjectCount int
	xobjectNames map[*semantic.Image]string
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

// NewBuilder constructs a PDFBuilder.
func NewBuilder() PDFBuilder { return &builderImpl{} }

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h}}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) Build() (*semantic.Document, error) {
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{Pages: b.pages, Info: b.info}, nil
}

// DrawImage places img with its lower-left corner at (x, y), scaled to width
// by height in user-space units. Zero width or height falls back to the
// image's pixel dimensions, giving a 1:1 embedding. The XObject is
// registered on the page's resources under a stable generated name.
func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64) PageBuilder {
	if img == nil {
		return p
	}
	res := p.ensureResources()
	name := p.parent.imageName(img)
	if _, exists := res.XObjects[name]; !exists {
		res.XObjects[name] = *img
	}
	w := width
	if w == 0 {
		w = float64(img.Width)
	}
	h := height
	if h == 0 {
		h = float64(img.Height)
	}

	ops := p.ensureContentOps()
	*ops = append(*ops, semantic.Operation{Operator: "q"})
	*ops = append(*ops, semantic.Operation{
		Operator: "cm",
		Operands: []semantic.Operand{
			semantic.NumberOperand{Value: w},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: 0},
			semantic.NumberOperand{Value: h},
			semantic.NumberOperand{Value: x},
			semantic.NumberOperand{Value: y},
		},
	})
	*ops = append(*ops, semantic.Operation{
		Operator: "Do",
		Operands: []semantic.Operand{semantic.NameOperand{Value: name}},
	})
	*ops = append(*ops, semantic.Operation{Operator: "Q"})
	return p
}

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (b *builderImpl) imageName(img *semantic.Image) string {
	if b.xobjectNames == nil {
		b.xobjectNames = make(map[*semantic.Image]string)
	}
	if name, ok := b.xobjectNames[img]; ok {
		return name
	}
	b.xobjectCount++
	name := fmt.Sprintf("Im%d", b.xobjectCount)
	b.xobjectNames[img] = name
	return name
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]semantic.Image)
	}
	return p.page.Resources
}

func (p *pageBuilderImpl) ensureContentOps() *[]semantic.Operation {
	if len(p.page.Contents) == 0 {
		p.page.Contents = append(p.page.Contents, semantic.ContentStream{})
	}
	return &p.page.Contents[0].Operations
}
