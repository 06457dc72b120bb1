package services

import (
	"context"
	"errors"
	"strings"
)

var errContentAndInstruction = errors.New("content and instruction are required")

type Refiner struct {
	ai IAIClient
}

// NewRefiner takes the chain to call, normally a FallbackGenerator.
func NewRefiner(ai IAIClient) *Refiner {
	return &Refiner{ai: ai}
}

func (r *Refiner) Refine(ctx context.Context, content, instruction string) (string, error) {
	content = strings.TrimSpace(content)
	instruction = strings.TrimSpace(instruction)
	if content == "" || instruction == "" {
		return "", &ValidationError{Err: errContentAndInstruction}
	}

	text, err := r.ai.GenerateContent(ctx, buildRefinePrompt(content, instruction))
	if err != nil {
		return "", err
	}
	return stripCodeFences(text), nil
}
