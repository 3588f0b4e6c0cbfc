package exam

// Language identifies the detected language of an exam page.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

// Status records the grading verdict for a single answer.
type Status string

const (
	StatusCorrect   Status = "correct"
	StatusIncorrect Status = "incorrect"
)

// Rotation is a clockwise page rotation in whole quarter turns.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Valid reports whether r is one of the four supported quarter turns.
func (r Rotation) Valid() bool {
	return r == Rotate0 || r == Rotate90 || r == Rotate180 || r == Rotate270
}

// SwapsAxes reports whether applying r exchanges image width and height.
func (r Rotation) SwapsAxes() bool { return r == Rotate90 || r == Rotate270 }

// Page is one photographed exam page within a grading session.
type Page struct {
	// ID is an opaque caller-assigned identifier used in error reporting.
	ID string
	// Image is the encoded image buffer. The orientation step replaces it
	// when the page needs rotating; afterwards it is only copied, never
	// mutated.
	Image []byte
	// Language is the detected page language, set during orientation
	// reconciliation. Empty until then.
	Language Language
}

// Mark is a single graded annotation anchored to a point on a page.
//
// X and Y are percentages in [0,100] of the owning page's image width and
// height as currently stored, so they stay valid across resolutions. A mark
// never carries coordinates from a pre-rotation frame: remapping happens
// before the mark is attached to a corrected page.
type Mark struct {
	ID            string
	X             float64
	Y             float64
	Status        Status
	PageIndex     int
	Question      string
	StudentAnswer string
	CorrectAnswer string
	Explanation   string
}

// MarkCandidate is a service-produced mark that has not yet been installed
// into a session. Candidates have no ID; the editor mints one on
// installation. Empty text fields mean the service omitted them.
type MarkCandidate struct {
	X             float64
	Y             float64
	Status        Status
	Question      string
	StudentAnswer string
	CorrectAnswer string
	Explanation   string
}

// Placeholders holds the language-appropriate defaults substituted for text
// fields the grading service omitted. Defaulting is the pipeline's job, not
// the service's.
type Placeholders struct {
	Question      string
	StudentAnswer string
	CorrectAnswer string
	Explanation   string
}

// PlaceholdersFor returns the defaults for lang. Unrecognized languages fall
// back to English.
func PlaceholdersFor(lang Language) Placeholders {
	if lang == LanguageChinese {
		return Placeholders{
			Question:      "题目",
			StudentAnswer: "未知",
			CorrectAnswer: "-",
			Explanation:   "无解析",
		}
	}
	return Placeholders{
		Question:      "Question",
		StudentAnswer: "Unknown",
		CorrectAnswer: "-",
		Explanation:   "No explanation provided.",
	}
}

// Apply fills any empty text field of c with the placeholder value and
// returns the result. Non-empty fields pass through untouched.
func (p Placeholders) Apply(c MarkCandidate) MarkCandidate {
	if c.Question == "" {
		c.Question = p.Question
	}
	if c.StudentAnswer == "" {
		c.StudentAnswer = p.StudentAnswer
	}
	if c.CorrectAnswer == "" {
		c.CorrectAnswer = p.CorrectAnswer
	}
	if c.Explanation == "" {
		c.Explanation = p.Explanation
	}
	return c
}

// Labels carries the fixed strings the report sidebar prints around mark
// text.
type Labels struct {
	// AnswerPrefix precedes the student answer block.
	AnswerPrefix string
}

// LabelsFor returns the sidebar labels for lang, defaulting to English.
func LabelsFor(lang Language) Labels {
	if lang == LanguageChinese {
		return Labels{AnswerPrefix: "回答："}
	}
	return Labels{AnswerPrefix: "Answer: "}
}
