package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/peroute/concierge/internal/domain"
	"github.com/peroute/concierge/internal/metrics"
)

// Generator produces text through the OpenAI-compatible chat completions API.
// The first segment is sent as the system instruction, the rest as one user
// message.
type Generator struct {
	client *openai.Client
	model  string
}

// GeneratorConfig holds the generative backend settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewGenerator creates an OpenAI-compatible chat completions backend.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

// Generate implements domain.TextGenerator.
func (g *Generator) Generate(ctx context.Context, segments ...string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("no prompt segments: %w", domain.ErrGenerativeUnavailable)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: segments[0]},
	}
	if len(segments) > 1 {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: strings.Join(segments[1:], "\n\n"),
		})
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.GenerativeRequestsTotal.WithLabelValues("chat", "error").Inc()
		return "", parseAPIError("chat", err, domain.ErrGenerativeUnavailable)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.GenerativeRequestsTotal.WithLabelValues("chat", "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrNoCandidates)
	}

	metrics.GenerativeRequestsTotal.WithLabelValues("chat", "success").Inc()
	metrics.GenerativeRequestDuration.WithLabelValues("chat").Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
