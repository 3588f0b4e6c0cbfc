package grader

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gradesheet/gradesheet/exam"
	"github.com/gradesheet/gradesheet/orient"
)

type wireMark struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Status        string  `json:"status"`
	Question      string  `json:"question"`
	StudentAnswer string  `json:"student_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation"`
}

type wireResult struct {
	RotationNeeded   int        `json:"rotation_needed"`
	DetectedLanguage string     `json:"detected_language"`
	Marks            []wireMark `json:"marks"`
}

// parseResult decodes the service's JSON reply. Vision models often
// wrap JSON in markdown fences or prose, so everything outside the
// outermost braces is discarded first. Coordinates are clamped into
// [0,100]; a bad rotation or status rejects the whole reply.
func parseResult(text string) (orient.Result, error) {
	body, err := extractJSON(text)
	if err != nil {
		return orient.Result{}, err
	}

	var w wireResult
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return orient.Result{}, fmt.Errorf("decode reply: %w", err)
	}

	rot := exam.Rotation(w.RotationNeeded)
	if !rot.Valid() {
		return orient.Result{}, fmt.Errorf("reply rotation %d is not a quarter turn", w.RotationNeeded)
	}

	lang := exam.LanguageEnglish
	if w.DetectedLanguage == string(exam.LanguageChinese) {
		lang = exam.LanguageChinese
	}

	marks := make([]exam.MarkCandidate, 0, len(w.Marks))
	for i, m := range w.Marks {
		var status exam.Status
		switch m.Status {
		case string(exam.StatusCorrect):
			status = exam.StatusCorrect
		case string(exam.StatusIncorrect):
			status = exam.StatusIncorrect
		default:
			return orient.Result{}, fmt.Errorf("mark %d has unknown status %q", i, m.Status)
		}
		marks = append(marks, exam.MarkCandidate{
			X:             clampPercent(m.X),
			Y:             clampPercent(m.Y),
			Status:        status,
			Question:      m.Question,
			StudentAnswer: m.StudentAnswer,
			CorrectAnswer: m.CorrectAnswer,
			Explanation:   m.Explanation,
		})
	}

	return orient.Result{Rotation: rot, Language: lang, Marks: marks}, nil
}

func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("reply contains no JSON object")
	}
	return text[start : end+1], nil
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
