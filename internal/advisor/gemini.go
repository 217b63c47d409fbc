package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"google.golang.org/api/option"

	"github.com/i474232898/agro-climate/internal/climate"
	"github.com/i474232898/agro-climate/internal/metrics"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

const geminiName = "gemini"

var errEmptyResponse = errors.New("model returned no text")

// GeminiGenerator implements Generator with the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewGeminiGenerator creates a client for apiKey. Callers must Close it.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration, m *metrics.Metrics) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not configured", climate.ErrConfiguration)
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        geminiName,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		metrics: m,
	}, nil
}

// Generate sends prompt to the model and returns the concatenated text parts.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return responseText(resp)
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = metrics.OutcomeCircuitOpen
		}
		g.metrics.ObserveUpstream(geminiName, outcome, elapsed)
		return "", fmt.Errorf("%w: %s: %w", climate.ErrUpstream, geminiName, err)
	}

	g.metrics.ObserveUpstream(geminiName, metrics.OutcomeSuccess, elapsed)
	text, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected result type from circuit breaker")
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// Only the first candidate is requested.
		break
	}
	if b.Len() == 0 {
		return "", errEmptyResponse
	}
	return b.String(), nil
}
