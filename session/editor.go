package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/gradesheet/gradesheet/exam"
)

// Editor owns the authoritative, user-editable set of pages and marks for
// one grading session. Every mutation runs under a single lock, so callers
// never observe a partially applied add, update, or remove. Reads hand out
// copies; the compositor works from a Snapshot taken at export time instead
// of holding any lock.
type Editor struct {
	mu    sync.Mutex
	pages []exam.Page
	marks []exam.Mark // arrival order across all pages
}

// NewEditor returns an empty session.
func NewEditor() *Editor { return &Editor{} }

// AddPage appends a page at ingestion time and returns its index.
func (e *Editor) AddPage(p exam.Page) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages = append(e.pages, p)
	return len(e.pages) - 1
}

// Install replaces the page at pageIndex with its corrected version and
// swaps that page's marks for freshly minted ones built from the reconciled
// candidates. Marks belonging to other pages are untouched.
func (e *Editor) Install(pageIndex int, p exam.Page, candidates []exam.MarkCandidate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pageIndex < 0 || pageIndex >= len(e.pages) {
		return
	}
	e.pages[pageIndex] = p

	kept := e.marks[:0]
	for _, m := range e.marks {
		if m.PageIndex != pageIndex {
			kept = append(kept, m)
		}
	}
	e.marks = kept
	for _, c := range candidates {
		e.marks = append(e.marks, exam.Mark{
			ID:            uuid.NewString(),
			X:             c.X,
			Y:             c.Y,
			Status:        c.Status,
			PageIndex:     pageIndex,
			Question:      c.Question,
			StudentAnswer: c.StudentAnswer,
			CorrectAnswer: c.CorrectAnswer,
			Explanation:   c.Explanation,
		})
	}
}

// AddMark creates a mark at (x, y) on the given page with a fresh unique ID,
// status correct, and no text. Coordinates are trusted to already lie in
// [0,100]; clamping is the interaction boundary's job.
func (e *Editor) AddMark(x, y float64, pageIndex int) exam.Mark {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := exam.Mark{
		ID:        uuid.NewString(),
		X:         x,
		Y:         y,
		Status:    exam.StatusCorrect,
		PageIndex: pageIndex,
	}
	e.marks = append(e.marks, m)
	return m
}

// UpdateMark replaces the stored mark that shares m's ID. An unknown ID is a
// silent no-op rather than an error: a removal from another view can race
// with an update issued from a stale one.
func (e *Editor) UpdateMark(m exam.Mark) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.marks {
		if e.marks[i].ID == m.ID {
			e.marks[i] = m
			return
		}
	}
}

// RemoveMark deletes the mark with the given ID if present.
func (e *Editor) RemoveMark(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.marks {
		if e.marks[i].ID == id {
			e.marks = append(e.marks[:i], e.marks[i+1:]...)
			return
		}
	}
}

// MarksForPage returns the page's marks in arrival order. The slice is a
// copy; layout re-sorts by vertical position downstream.
func (e *Editor) MarksForPage(pageIndex int) []exam.Mark {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []exam.Mark
	for _, m := range e.marks {
		if m.PageIndex == pageIndex {
			out = append(out, m)
		}
	}
	return out
}

// Pages returns a copy of the page list in ingestion order.
func (e *Editor) Pages() []exam.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]exam.Page, len(e.pages))
	copy(out, e.pages)
	return out
}

// PageCount reports the number of ingested pages.
func (e *Editor) PageCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// Page returns the page at index i and whether it exists.
func (e *Editor) Page(i int) (exam.Page, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i < 0 || i >= len(e.pages) {
		return exam.Page{}, false
	}
	return e.pages[i], true
}

// Snapshot copies the full mark set, in arrival order, for export.
func (e *Editor) Snapshot() []exam.Mark {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]exam.Mark, len(e.marks))
	copy(out, e.marks)
	return out
}

// Reset discards every page and mark, ending the session.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages = nil
	e.marks = nil
}
