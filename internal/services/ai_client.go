package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type IAIClient interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// IMultimodalAIClient accepts inline binary parts next to the prompt.
type IMultimodalAIClient interface {
	IAIClient
	GenerateWithFiles(ctx context.Context, prompt string, files []InlineFile) (string, error)
}

type InlineFile struct {
	MimeType string
	Data     []byte
}

var ErrEmptyResponse = errors.New("model returned an empty response")

type GeminiAIClient struct {
	client  *genai.Client
	tracker ITokenTracker
	model   string
}
type GeminiAIClientFuncOptions = func(client *GeminiAIClient) error

// NewGenAIClient creates the shared Gemini API client.
func NewGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	return client, nil
}

func NewGeminiAIClient(client *genai.Client, opts ...GeminiAIClientFuncOptions) (*GeminiAIClient, error) {
	geminiai := GeminiAIClient{
		client: client,
		model:  "gemini-2.5-flash",
	}
	err := applyFuncOptions(&geminiai, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}
	return &geminiai, nil
}

func WithModel(model string) GeminiAIClientFuncOptions {
	return func(client *GeminiAIClient) error {
		if model == "" {
			return errors.New("model name is required")
		}
		client.model = model
		return nil
	}
}

func WithTokenTracker(tracker ITokenTracker) GeminiAIClientFuncOptions {
	return func(client *GeminiAIClient) error {
		client.tracker = tracker
		return nil
	}
}

func (g *GeminiAIClient) Model() string {
	return g.model
}

func (g *GeminiAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, genai.Text(prompt))
}

func (g *GeminiAIClient) GenerateWithFiles(ctx context.Context, prompt string, files []InlineFile) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, f := range files {
		parts = append(parts, genai.NewPartFromBytes(f.Data, f.MimeType))
	}
	return g.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (g *GeminiAIClient) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}
	g.trackTokens(ctx, Deref(result.UsageMetadata))

	text := result.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiAIClient) trackTokens(ctx context.Context, um genai.GenerateContentResponseUsageMetadata) {
	if g.tracker == nil {
		return
	}
	tknIn := um.PromptTokenCount
	tknOut := um.TotalTokenCount - tknIn
	g.tracker.AddTokens(ctx, g.model, int(tknIn), int(tknOut))
}
