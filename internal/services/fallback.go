package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/logging"
)

var ErrAllModelsFailed = errors.New("all models failed")

// NamedAIClient is a client that can report which model it calls.
type NamedAIClient interface {
	IAIClient
	Model() string
}

// FallbackGenerator tries the primary model once and, on any failure, the
// fallback model once with the identical prompt.
type FallbackGenerator struct {
	primary  NamedAIClient
	fallback NamedAIClient
}

func NewFallbackGenerator(primary, fallback NamedAIClient) *FallbackGenerator {
	return &FallbackGenerator{primary: primary, fallback: fallback}
}

func (f *FallbackGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	text, err := f.primary.GenerateContent(ctx, prompt)
	if err == nil {
		logging.EnrichModel(ctx, f.primary.Model())
		return text, nil
	}

	log.Warn().
		Err(err).
		Str("primary", f.primary.Model()).
		Str("fallback", f.fallback.Model()).
		Msg("Primary model failed, trying fallback")

	text, fbErr := f.fallback.GenerateContent(ctx, prompt)
	if fbErr != nil {
		return "", fmt.Errorf("%w: %s: %v; %s: %v", ErrAllModelsFailed,
			f.primary.Model(), err, f.fallback.Model(), fbErr)
	}
	logging.EnrichModel(ctx, f.fallback.Model())
	return text, nil
}
