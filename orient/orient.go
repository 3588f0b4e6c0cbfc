package orient

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gradesheet/gradesheet/exam"
)

// Re-encode quality for rotated page buffers.
const encodeQuality = 92

// DecodeError reports a page whose image buffer could not be decoded. The
// page is left unprocessed; other pages in the batch are unaffected.
type DecodeError struct {
	PageID string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("orient: decode page %s: %v", e.PageID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Result is the orientation-relevant slice of a grading response for one
// page: how far to rotate, what language was detected, and the marks the
// service produced in the pre-rotation coordinate frame.
type Result struct {
	Rotation exam.Rotation
	Language exam.Language
	Marks    []exam.MarkCandidate
}

// RemapPoint maps a percentage-space point from the unrotated frame into the
// frame produced by rotating the page clockwise by rot. The mapping operates
// on percentages, so it is independent of pixel dimensions even when the
// rotation swaps width and height.
func RemapPoint(rot exam.Rotation, x, y float64) (float64, float64) {
	switch rot {
	case exam.Rotate90:
		return 100 - y, x
	case exam.Rotate180:
		return 100 - x, 100 - y
	case exam.Rotate270:
		return y, 100 - x
	}
	return x, y
}

// Reconcile applies a grading result's orientation instruction to one page.
// It rotates the pixel buffer clockwise, remaps every candidate's
// coordinates into the corrected frame, and tags the page with the detected
// language. All other candidate fields pass through untouched.
//
// The returned candidate set is a full replacement for the page's marks, and
// the returned page owns a freshly encoded buffer when rotation was needed;
// the input page is never mutated.
func Reconcile(page exam.Page, res Result) (exam.Page, []exam.MarkCandidate, error) {
	if !res.Rotation.Valid() {
		return page, nil, fmt.Errorf("orient: page %s: rotation %d is not a quarter turn", page.ID, res.Rotation)
	}

	out := page
	out.Language = res.Language
	marks := make([]exam.MarkCandidate, len(res.Marks))
	copy(marks, res.Marks)

	if res.Rotation == exam.Rotate0 {
		return out, marks, nil
	}

	img, _, err := image.Decode(bytes.NewReader(page.Image))
	if err != nil {
		return page, nil, &DecodeError{PageID: page.ID, Err: err}
	}

	// imaging rotates counter-clockwise, so a clockwise turn uses the
	// complementary angle.
	var rotated image.Image
	switch res.Rotation {
	case exam.Rotate90:
		rotated = imaging.Rotate270(img)
	case exam.Rotate180:
		rotated = imaging.Rotate180(img)
	case exam.Rotate270:
		rotated = imaging.Rotate90(img)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rotated, &jpeg.Options{Quality: encodeQuality}); err != nil {
		return page, nil, fmt.Errorf("orient: encode rotated page %s: %w", page.ID, err)
	}
	out.Image = buf.Bytes()

	for i := range marks {
		marks[i].X, marks[i].Y = RemapPoint(res.Rotation, marks[i].X, marks[i].Y)
	}
	return out, marks, nil
}
