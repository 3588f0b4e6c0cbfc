package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradesheet/gradesheet/exam"
	"github.com/gradesheet/gradesheet/grader"
	"github.com/gradesheet/gradesheet/orient"
	"github.com/gradesheet/gradesheet/session"
)

type scriptedGrader struct {
	results map[string]orient.Result
	errs    map[string]error
	calls   []string
}

func (g *scriptedGrader) Name() string { return "scripted" }

func (g *scriptedGrader) GradePage(ctx context.Context, req grader.PageRequest) (orient.Result, error) {
	g.calls = append(g.calls, req.PageID)
	if err := g.errs[req.PageID]; err != nil {
		return orient.Result{}, err
	}
	return g.results[req.PageID], nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 235, G: 235, B: 228, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAnnotateRemapsRotatedPage(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "p1", Image: encodePNG(t, 100, 50)})

	g := &scriptedGrader{results: map[string]orient.Result{
		"p1": {
			Rotation: exam.Rotate90,
			Language: exam.LanguageEnglish,
			Marks:    []exam.MarkCandidate{{X: 10, Y: 20, Status: exam.StatusCorrect}},
		},
	}}

	require.NoError(t, New(g).Annotate(context.Background(), ed))

	marks := ed.MarksForPage(0)
	require.Len(t, marks, 1)
	assert.InDelta(t, 80, marks[0].X, 1e-9)
	assert.InDelta(t, 10, marks[0].Y, 1e-9)

	page, ok := ed.Page(0)
	require.True(t, ok)
	img, _, err := image.Decode(bytes.NewReader(page.Image))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestAnnotateAppliesChinesePlaceholders(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "p1", Image: encodePNG(t, 60, 40)})

	g := &scriptedGrader{results: map[string]orient.Result{
		"p1": {
			Rotation: exam.Rotate0,
			Language: exam.LanguageChinese,
			Marks:    []exam.MarkCandidate{{X: 30, Y: 30, Status: exam.StatusIncorrect}},
		},
	}}

	require.NoError(t, New(g).Annotate(context.Background(), ed))

	marks := ed.MarksForPage(0)
	require.Len(t, marks, 1)
	assert.Equal(t, "题目", marks[0].Question)
	assert.Equal(t, "未知", marks[0].StudentAnswer)
	assert.Equal(t, "-", marks[0].CorrectAnswer)
	assert.Equal(t, "无解析", marks[0].Explanation)

	page, ok := ed.Page(0)
	require.True(t, ok)
	assert.Equal(t, exam.LanguageChinese, page.Language)
}

func TestAnnotateAbortsBatchWithoutCommitting(t *testing.T) {
	ed := session.NewEditor()
	original := encodePNG(t, 80, 40)
	ed.AddPage(exam.Page{ID: "p1", Image: original})
	ed.AddPage(exam.Page{ID: "p2", Image: encodePNG(t, 80, 40)})

	g := &scriptedGrader{
		results: map[string]orient.Result{
			"p1": {Rotation: exam.Rotate90, Marks: []exam.MarkCandidate{{X: 5, Y: 5, Status: exam.StatusCorrect}}},
		},
		errs: map[string]error{
			"p2": &grader.ServiceError{Provider: "scripted", Err: errors.New("rate limited")},
		},
	}

	err := New(g).Annotate(context.Background(), ed)
	require.Error(t, err)

	var svcErr *grader.ServiceError
	assert.ErrorAs(t, err, &svcErr)

	assert.Empty(t, ed.Snapshot(), "no page may be committed after a batch failure")
	page, ok := ed.Page(0)
	require.True(t, ok)
	assert.True(t, bytes.Equal(original, page.Image), "original page image must stay intact")
}

func TestAnnotateSkipFailedPages(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "p1", Image: encodePNG(t, 80, 40)})
	ed.AddPage(exam.Page{ID: "p2", Image: encodePNG(t, 80, 40)})

	g := &scriptedGrader{
		results: map[string]orient.Result{
			"p2": {Rotation: exam.Rotate0, Marks: []exam.MarkCandidate{{X: 50, Y: 50, Status: exam.StatusCorrect}}},
		},
		errs: map[string]error{
			"p1": &grader.ServiceError{Provider: "scripted", Err: errors.New("timeout")},
		},
	}

	require.NoError(t, New(g, WithSkipFailedPages()).Annotate(context.Background(), ed))

	assert.Empty(t, ed.MarksForPage(0))
	assert.Len(t, ed.MarksForPage(1), 1)
}

func TestAnnotateEmptySession(t *testing.T) {
	err := New(&scriptedGrader{}).Annotate(context.Background(), session.NewEditor())
	assert.Error(t, err)
}

func TestExportSinglePageGeometry(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "p1", Image: encodePNG(t, 200, 100), Language: exam.LanguageEnglish})

	ed.AddMark(25, 30, 0)
	wrong := ed.AddMark(70, 60, 0)
	wrong.Status = exam.StatusIncorrect
	ed.UpdateMark(wrong)

	p := New(&scriptedGrader{})
	res, err := p.Export(context.Background(), ed, "s-042")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "s_042.pdf", res.Filename)

	out := string(res.Document)
	assert.True(t, strings.HasPrefix(out, "%PDF-1.7"))
	assert.Contains(t, out, "/Count 1")
	assert.Contains(t, out, "[0 0 290 100]", "page must be image width plus sidebar by image height")
	assert.Contains(t, out, "/Title (Exam report s-042)")
}

func TestExportOrdersPagesLikeSession(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "p1", Image: encodePNG(t, 100, 100)})
	ed.AddPage(exam.Page{ID: "p2", Image: encodePNG(t, 200, 80)})

	res, err := New(&scriptedGrader{}).Export(context.Background(), ed, "batch")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)

	out := string(res.Document)
	first := strings.Index(out, "[0 0 145 100]")
	second := strings.Index(out, "[0 0 290 80]")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}

func TestExportEmptySession(t *testing.T) {
	_, err := New(&scriptedGrader{}).Export(context.Background(), session.NewEditor(), "x")
	assert.Error(t, err)
}

func TestExportFailsOnUndecodablePage(t *testing.T) {
	ed := session.NewEditor()
	ed.AddPage(exam.Page{ID: "bad", Image: []byte("not an image")})

	_, err := New(&scriptedGrader{}).Export(context.Background(), ed, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
