package grader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/gradesheet/gradesheet/orient"
)

// geminiGrader grades pages through Google Gemini.
type geminiGrader struct {
	model       string
	prompt      string
	temperature *float64
	maxEdge     int
}

func newGeminiGrader(cfg Config) (*geminiGrader, error) {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &geminiGrader{
		model:       cfg.Model,
		prompt:      prompt,
		temperature: cfg.Temperature,
		maxEdge:     cfg.MaxEdge,
	}, nil
}

func (g *geminiGrader) Name() string { return "gemini/" + g.model }

func (g *geminiGrader) GradePage(ctx context.Context, req PageRequest) (orient.Result, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: errors.New("GEMINI_API_KEY environment variable not set")}
	}

	logger := log.WithFields(logrus.Fields{
		"provider": "gemini",
		"model":    g.model,
		"page":     req.PageID,
	})
	logger.Debug("Grading page")

	payload, err := preparePayload(req.Image, g.maxEdge)
	if err != nil {
		return orient.Result{}, fmt.Errorf("grader: prepare page %s: %w", req.PageID, err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: fmt.Errorf("create client: %w", err)}
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if g.temperature != nil {
		model.SetTemperature(float32(*g.temperature))
	}

	resp, err := model.GenerateContent(ctx, genai.ImageData("jpeg", payload), genai.Text(g.prompt))
	if err != nil {
		logger.WithError(err).Error("Gemini call failed")
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: err}
	}
	if len(resp.Candidates) == 0 {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: errors.New("no candidates returned")}
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: errors.New("empty content returned")}
	}
	txt, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: errors.New("unexpected response format")}
	}

	res, err := parseResult(string(txt))
	if err != nil {
		logger.WithError(err).Error("Unparseable grading reply")
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: err}
	}

	logger.WithFields(logrus.Fields{
		"rotation": int(res.Rotation),
		"language": string(res.Language),
		"marks":    len(res.Marks),
	}).Info("Graded page")
	return res, nil
}
