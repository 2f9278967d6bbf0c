package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/quillworks/dossier/internal/generative"
)

type geminiModel struct {
	client *genai.Client
	name   string
}

func NewGeminiModel(ctx context.Context, modelName, apiKey string) (generative.Model, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiModel{
		client: client,
		name:   strings.TrimSpace(modelName),
	}, nil
}

func (m *geminiModel) Name() string {
	return m.name
}

func (m *geminiModel) Complete(ctx context.Context, system, user string) (string, error) {
	if m == nil || m.client == nil {
		return "", fmt.Errorf("model not configured")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.name, genai.Text(user), config)
	if err != nil {
		return "", fmt.Errorf("failed to call genai API: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty completion response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("completion response has no text")
	}
	return strings.TrimSpace(text.String()), nil
}
