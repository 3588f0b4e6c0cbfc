package grader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/gradesheet/gradesheet/orient"
)

// llmGrader grades pages through a langchaingo vision model.
type llmGrader struct {
	provider    string
	model       string
	llm         llms.Model
	prompt      string
	maxTokens   int
	temperature *float64
	maxEdge     int
}

func newLLMGrader(cfg Config) (*llmGrader, error) {
	logger := log.WithFields(logrus.Fields{
		"provider": cfg.Provider,
		"model":    cfg.Model,
	})
	logger.Info("Creating vision grader")

	var model llms.Model
	var err error
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		model, err = createOpenAIClient(cfg)
	case "ollama":
		model, err = createOllamaClient(cfg)
	case "mistral":
		model, err = createMistralClient(cfg)
	case "anthropic":
		model, err = createAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("grader: unsupported vision provider: %s", cfg.Provider)
	}
	if err != nil {
		logger.WithError(err).Error("Failed to create vision client")
		return nil, fmt.Errorf("grader: create vision client: %w", err)
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	return &llmGrader{
		provider:    strings.ToLower(cfg.Provider),
		model:       cfg.Model,
		llm:         model,
		prompt:      prompt,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		maxEdge:     cfg.MaxEdge,
	}, nil
}

func (g *llmGrader) Name() string { return g.provider + "/" + g.model }

func (g *llmGrader) GradePage(ctx context.Context, req PageRequest) (orient.Result, error) {
	ctx = WithRequestMeta(ctx, RequestMeta{PageID: req.PageID})

	logger := log.WithFields(logrus.Fields{
		"provider": g.provider,
		"model":    g.model,
		"page":     req.PageID,
	})
	logger.Debug("Grading page")

	payload, err := preparePayload(req.Image, g.maxEdge)
	if err != nil {
		return orient.Result{}, fmt.Errorf("grader: prepare page %s: %w", req.PageID, err)
	}

	// OpenAI-compatible endpoints take data URLs, the rest raw bytes.
	var imagePart llms.ContentPart
	if g.provider == "openai" || g.provider == "mistral" {
		imagePart = llms.ImageURLPart("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload))
	} else {
		imagePart = llms.BinaryPart("image/jpeg", payload)
	}

	var callOpts []llms.CallOption
	if g.maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(g.maxTokens))
	}
	if g.temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*g.temperature))
	}

	completion, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{imagePart, llms.TextPart(g.prompt)},
		},
	}, callOpts...)
	if err != nil {
		logger.WithError(err).Error("Vision model call failed")
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: err}
	}
	if len(completion.Choices) == 0 {
		return orient.Result{}, &ServiceError{Provider: g.Name(), Err: errors.New("empty completion")}
	}

	res, err := parseResult(completion.Choices[0].Content)
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

func createOpenAIClient(cfg Config) (llms.Model, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
		openai.WithHTTPClient(createInstrumentedHTTPClient()),
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(opts...)
}

func createOllamaClient(cfg Config) (llms.Model, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	return ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(host),
	)
}

func createMistralClient(cfg Config) (llms.Model, error) {
	apiKey := os.Getenv("MISTRAL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("Mistral API key is not set")
	}
	return mistral.New(
		mistral.WithModel(cfg.Model),
		mistral.WithAPIKey(apiKey),
	)
}

func createAnthropicClient(cfg Config) (llms.Model, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is not set")
	}
	return anthropic.New(
		anthropic.WithModel(cfg.Model),
		anthropic.WithToken(apiKey),
	)
}
