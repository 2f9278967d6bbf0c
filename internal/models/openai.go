// Package models provides provider adapters for the generative service.
package models

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/quillworks/dossier/internal/generative"
)

// openaiModel wraps an OpenAI-compatible chat client.
type openaiModel struct {
	client             *openai.Client
	name               string
	versionHeaderValue string
}

func NewOpenAIModel(modelName, apiKey string) (generative.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	// Create header value once, when the model is created
	headerValue := fmt.Sprintf("openai-go/%s go/%s",
		"1.0.0", strings.TrimPrefix(runtime.Version(), "go"))

	return &openaiModel{
		name:               modelName,
		client:             &client,
		versionHeaderValue: headerValue,
	}, nil
}

// NewGrokModel creates a Grok model instance.
//
// It reuses the OpenAI-compatible client against the x.ai endpoint. The
// modelName specifies which Grok model to target (e.g., "grok-4-fast").
func NewGrokModel(modelName, apiKey string) (generative.Model, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL("https://api.x.ai/v1"),
	)

	headerValue := fmt.Sprintf("grok-go/%s go/%s",
		"1.0.0", strings.TrimPrefix(runtime.Version(), "go"))

	return &openaiModel{
		name:               modelName,
		client:             &client,
		versionHeaderValue: headerValue,
	}, nil
}

func (m *openaiModel) Name() string {
	return m.name
}

func (m *openaiModel) Complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: m.name,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	resp, err := m.client.Chat.Completions.New(ctx, params,
		option.WithHeader("user-agent", m.versionHeaderValue))
	if err != nil {
		return "", fmt.Errorf("failed to call chat API: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion response has no text")
	}
	return content, nil
}
