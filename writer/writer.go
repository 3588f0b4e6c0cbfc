package writer

import (
	"github.com/gradesheet/gradesheet/ir/raw"
	"github.com/gradesheet/gradesheet/ir/semantic"
)

type PDFVersion string

const (
	PDF17 PDFVersion = "1.7"
)

// ContentFilter selects the encoding applied to content streams and raw
// image samples. Pre-encoded images (DCTDecode) pass through untouched.
type ContentFilter int

const (
	FilterNone ContentFilter = iota
	FilterFlate
)

// Config controls document serialization.
type Config struct {
	Version       PDFVersion
	ContentFilter ContentFilter
}

// Writer serializes a semantic document into PDF bytes. Output is
// deterministic: the same document and config produce identical bytes.
type Writer interface {
	Write(ctx Context, doc *semantic.Document, w WriterAt, cfg Config) error
	SerializeObject(ref raw.ObjectRef, obj raw.Object) ([]byte, error)
}

// Interceptor observes indirect objects as they are written.
type Interceptor interface {
	BeforeWrite(ctx Context, obj raw.Object) error
	AfterWrite(ctx Context, obj raw.Object, bytesWritten int64) error
}

// WriterBuilder assembles a Writer with optional interceptors.
type WriterBuilder struct{ interceptors []Interceptor }

func (b *WriterBuilder) WithInterceptor(i Interceptor) *WriterBuilder {
	b.interceptors = append(b.interceptors, i)
	return b
}

func (b *WriterBuilder) Build() Writer { return &impl{interceptors: b.interceptors} }

// NewWriter returns a Writer with no interceptors installed.
func NewWriter() Writer { return &impl{} }

type WriterAt interface {
	Write(p []byte) (n int, err error)
}

// Context is the minimal cancellation surface the writer needs;
// context.Context satisfies it.
type Context interface{ Done() <-chan struct{} }
