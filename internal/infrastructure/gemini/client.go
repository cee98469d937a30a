// Package gemini wraps the generative-text provider SDK.
package gemini

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/city-explorer-api/internal/pkg/config"
)

// GenerationConfig carries the per-call sampling parameters. Zero-valued
// fields are left to the provider defaults.
type GenerationConfig struct {
	Temperature     float32
	TopK            float32
	TopP            float32
	MaxOutputTokens int32
}

// Client is a thin wrapper over the genai SDK. A missing API key yields a
// disabled client; callers degrade to their safe defaults.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewClient(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) *Client {
	c := &Client{model: cfg.Model, logger: logger}

	if cfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, generative features disabled")
		return c
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("Failed to create genai client, generative features disabled", zap.Error(err))
		return c
	}

	c.client = client
	return c
}

// Enabled reports whether the underlying SDK client is usable.
func (c *Client) Enabled() bool {
	return c.client != nil
}

// GenerateContent runs a single completion call and returns the first
// candidate's text.
func (c *Client) GenerateContent(ctx context.Context, prompt string, genCfg GenerationConfig) (string, error) {
	ctx, span := otel.Tracer("GeminiClient").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.String("model", c.model),
		attribute.Int("max_output_tokens", int(genCfg.MaxOutputTokens)),
	))
	defer span.End()

	if c.client == nil {
		err := fmt.Errorf("genai client not configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Client disabled")
		return "", err
	}

	cc := &genai.GenerateContentConfig{
		MaxOutputTokens: genCfg.MaxOutputTokens,
	}
	if genCfg.Temperature > 0 {
		cc.Temperature = genai.Ptr[float32](genCfg.Temperature)
	}
	if genCfg.TopK > 0 {
		cc.TopK = genai.Ptr[float32](genCfg.TopK)
	}
	if genCfg.TopP > 0 {
		cc.TopP = genai.Ptr[float32](genCfg.TopP)
	}

	response, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cc)
	if err != nil {
		c.logger.Error("GenerateContent failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Generation failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil || len(response.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("empty response from model")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty response")
		return "", err
	}

	text := response.Candidates[0].Content.Parts[0].Text
	if response.UsageMetadata != nil {
		span.SetAttributes(
			attribute.Int("usage.prompt_tokens", int(response.UsageMetadata.PromptTokenCount)),
			attribute.Int("usage.candidate_tokens", int(response.UsageMetadata.CandidatesTokenCount)),
		)
	}

	span.SetStatus(codes.Ok, "Content generated")
	return text, nil
}
