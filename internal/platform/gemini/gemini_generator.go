package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = time.Second
)

// contentModels is the part of *genai.Models the generator uses.
type contentModels interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements generation.TextGenerator on the Gemini API.
type GeminiGenerator struct {
	logger     *slog.Logger
	models     contentModels
	model      string
	maxRetries int
	retryDelay time.Duration
}

var _ generation.TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for cfg. It does not contact the API.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return newGenerator(logger, client.Models, cfg.ModelName, maxRetries, retryDelay), nil
}

func newGenerator(
	logger *slog.Logger,
	models contentModels,
	model string,
	maxRetries int,
	retryDelay time.Duration,
) *GeminiGenerator {
	return &GeminiGenerator{
		logger:     logger.With(slog.String("component", "gemini_generator")),
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Generate implements generation.TextGenerator.
func (g *GeminiGenerator) Generate(
	ctx context.Context,
	turns []generation.Turn,
	opts generation.Options,
) (string, error) {
	contents, genConfig, err := buildRequest(turns, opts)
	if err != nil {
		return "", err
	}

	// One generator serves every request; *rand.Rand is not safe to share.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		text, err := g.call(ctx, contents, genConfig)
		if err == nil {
			g.logger.DebugContext(ctx, "Gemini call succeeded",
				slog.Int("attempt", attempt+1),
				slog.Int("response_length", len(text)))
			return text, nil
		}

		if !errors.Is(err, generation.ErrTransientFailure) {
			g.logger.WarnContext(ctx, "permanent Gemini error, not retrying",
				slog.String("error", err.Error()))
			return "", err
		}
		if attempt >= g.maxRetries {
			g.logger.WarnContext(ctx, "maximum Gemini retry attempts reached",
				slog.Int("max_retries", g.maxRetries))
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %w",
				generation.ErrGenerationUnavailable, g.maxRetries, err)
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(g.retryDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
		g.logger.InfoContext(ctx, "retrying Gemini call after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w: %v",
				generation.ErrGenerationUnavailable, generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *GeminiGenerator) call(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, contents, genConfig)
	switch {
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrGenerationUnavailable, ctxErr)
		}
		return "", classifyError(err)
	case resp == nil || len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no candidates", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// classifyError maps a failed API call to a generation error. Rate limits,
// server errors and transport failures are retried. Rejected credentials mean
// generation is unavailable; other 4xx responses are permanent.
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
		apiErr = *apiErrPtr
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", generation.ErrGenerationUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
}

func buildRequest(
	turns []generation.Turn,
	opts generation.Options,
) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	genConfig := &genai.GenerateContentConfig{}
	if opts.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.Temperature > 0 {
		temperature := opts.Temperature
		genConfig.Temperature = &temperature
	}
	if opts.JSON {
		genConfig.ResponseMIMEType = "application/json"
	}

	var system []*genai.Part
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case generation.RoleSystem:
			system = append(system, &genai.Part{Text: turn.Text})
		case generation.RoleUser, generation.RoleModel:
			contents = append(contents, &genai.Content{
				Role:  string(turn.Role),
				Parts: []*genai.Part{{Text: turn.Text}},
			})
		default:
			return nil, nil, fmt.Errorf("%w: unknown role %q", generation.ErrGenerationFailed, turn.Role)
		}
	}
	if len(contents) == 0 {
		return nil, nil, fmt.Errorf("%w: prompt has no user turn", generation.ErrGenerationFailed)
	}
	if len(system) > 0 {
		genConfig.SystemInstruction = &genai.Content{Parts: system}
	}
	return contents, genConfig, nil
}
