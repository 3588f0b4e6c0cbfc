// Package pipeline drives a grading session end to end: every page is
// graded by the external service, reoriented, and annotated, then the
// refined session is composited and assembled into a report document.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/gradesheet/gradesheet/assemble"
	"github.com/gradesheet/gradesheet/compose"
	"github.com/gradesheet/gradesheet/exam"
	"github.com/gradesheet/gradesheet/grader"
	"github.com/gradesheet/gradesheet/ir/semantic"
	"github.com/gradesheet/gradesheet/observability"
	"github.com/gradesheet/gradesheet/orient"
	"github.com/gradesheet/gradesheet/render"
	"github.com/gradesheet/gradesheet/session"
)

// Pipeline wires the grading service, the orientation step, the
// compositor, and the assembler around a session.
type Pipeline struct {
	grader     grader.Grader
	logger     observability.Logger
	tracer     observability.Tracer
	fonts      *render.FontSet
	skipFailed bool
	lossless   bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the progress logger. Default is silent.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer for per-page spans.
func WithTracer(tr observability.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tr }
}

// WithFonts supplies TrueType faces for sidebar text. Without it the
// renderer falls back to a built-in bitmap face and heuristic metrics.
func WithFonts(fs *render.FontSet) Option {
	return func(p *Pipeline) { p.fonts = fs }
}

// WithSkipFailedPages continues the batch when a page fails to grade,
// leaving that page unannotated. The default aborts the whole batch so
// a partial document cannot silently mis-order pages.
func WithSkipFailedPages() Option {
	return func(p *Pipeline) { p.skipFailed = true }
}

// WithLosslessExport embeds report surfaces without JPEG recompression.
func WithLosslessExport() Option {
	return func(p *Pipeline) { p.lossless = true }
}

// New returns a Pipeline grading through g.
func New(g grader.Grader, opts ...Option) *Pipeline {
	p := &Pipeline{
		grader: g,
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type gradedPage struct {
	index      int
	page       exam.Page
	candidates []exam.MarkCandidate
}

// Annotate grades every page in the session, reorients pages the
// service flagged as rotated, and installs the resulting marks with
// language-appropriate placeholder text filled in.
//
// Results are collected for the whole batch before any page is
// committed, so a failure leaves the session exactly as it was.
func (p *Pipeline) Annotate(ctx context.Context, ed *session.Editor) error {
	pages := ed.Pages()
	if len(pages) == 0 {
		return fmt.Errorf("pipeline: session has no pages")
	}

	logger := p.logger.With(observability.Int("pages", len(pages)))
	logger.Info("Annotating session")

	graded := make([]gradedPage, 0, len(pages))
	for i, page := range pages {
		g, err := p.annotatePage(ctx, page)
		if err != nil {
			if p.skipFailed {
				logger.Warn("Skipping failed page",
					observability.String("page", page.ID),
					observability.Error("error", err))
				continue
			}
			return err
		}
		g.index = i
		graded = append(graded, g)
	}

	for _, g := range graded {
		ed.Install(g.index, g.page, g.candidates)
	}

	logger.Info("Annotated session", observability.Int("graded", len(graded)))
	return nil
}

func (p *Pipeline) annotatePage(ctx context.Context, page exam.Page) (gradedPage, error) {
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.annotate_page")
	defer span.Finish()
	span.SetTag("page", page.ID)

	start := time.Now()
	res, err := p.grader.GradePage(ctx, grader.PageRequest{PageID: page.ID, Image: page.Image})
	if err != nil {
		span.SetError(err)
		return gradedPage{}, fmt.Errorf("pipeline: grade page %s: %w", page.ID, err)
	}
	p.logger.Debug("Graded page",
		observability.String("page", page.ID),
		observability.Int64(observability.MetricGradeTime, time.Since(start).Milliseconds()),
		observability.Int(observability.MetricMarkCount, len(res.Marks)))

	corrected, candidates, err := orient.Reconcile(page, res)
	if err != nil {
		span.SetError(err)
		return gradedPage{}, fmt.Errorf("pipeline: reconcile page %s: %w", page.ID, err)
	}

	ph := exam.PlaceholdersFor(corrected.Language)
	for i := range candidates {
		candidates[i] = ph.Apply(candidates[i])
	}

	return gradedPage{page: corrected, candidates: candidates}, nil
}

// ExportResult is the finalized report document.
type ExportResult struct {
	Document []byte
	Filename string
	Pages    int
}

// Export composites every session page with its current marks and
// assembles the surfaces into a single PDF. The mark set is snapshotted
// per page before compositing, so concurrent edits after Export begins
// do not tear a page.
func (p *Pipeline) Export(ctx context.Context, ed *session.Editor, studentID string) (*ExportResult, error) {
	pages := ed.Pages()
	if len(pages) == 0 {
		return nil, fmt.Errorf("pipeline: session has no pages")
	}

	logger := p.logger.With(observability.String("student", studentID))
	logger.Info("Exporting report", observability.Int(observability.MetricPageCount, len(pages)))

	compositor := compose.New(compose.WithMeasurer(render.NewFaceMeasurer(p.fonts)))
	rasterizer := render.New(render.WithFontSet(p.fonts))

	info := &semantic.DocumentInfo{Producer: "gradesheet"}
	if studentID != "" {
		info.Title = "Exam report " + studentID
	}
	opts := []assemble.Option{assemble.WithInfo(info)}
	if p.lossless {
		opts = append(opts, assemble.WithLossless())
	}
	asm := assemble.New(opts...)

	for i, page := range pages {
		surface, err := p.composePage(ctx, compositor, rasterizer, asm, page, ed.MarksForPage(i))
		if err != nil {
			return nil, err
		}
		logger.Debug("Composited page",
			observability.String("page", page.ID),
			observability.Int("width", surface.Width),
			observability.Int("height", surface.Height))
	}

	doc, err := asm.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: assemble report: %w", err)
	}

	logger.Info("Exported report",
		observability.Int64(observability.MetricDocumentBytes, int64(len(doc))))
	return &ExportResult{
		Document: doc,
		Filename: assemble.ReportFilename(studentID),
		Pages:    asm.PageCount(),
	}, nil
}

func (p *Pipeline) composePage(
	ctx context.Context,
	compositor *compose.Compositor,
	rasterizer *render.Rasterizer,
	asm *assemble.Assembler,
	page exam.Page,
	marks []exam.Mark,
) (*compose.Surface, error) {
	_, span := p.tracer.StartSpan(ctx, "pipeline.compose_page")
	defer span.Finish()
	span.SetTag("page", page.ID)

	surface, err := compositor.Compose(page, marks)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("pipeline: compose page %s: %w", page.ID, err)
	}
	img := rasterizer.Rasterize(surface)
	if err := asm.AppendSurface(img); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("pipeline: append page %s: %w", page.ID, err)
	}
	return surface, nil
}
