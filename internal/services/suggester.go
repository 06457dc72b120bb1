package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/cache"
	"github.com/techpostia/techpost/internal/models"
)

const suggestionRepoCount = 3

type RepoLister interface {
	ListRecentRepos(ctx context.Context, username string, n int) ([]models.RepoSummary, error)
}

type Suggester struct {
	ai    IAIClient
	repos RepoLister
	cache cache.SuggestionCache
}

func NewSuggester(ai IAIClient, repos RepoLister, suggestionCache cache.SuggestionCache) *Suggester {
	return &Suggester{
		ai:    ai,
		repos: repos,
		cache: suggestionCache,
	}
}

// Suggest returns post ideas for the user's most recently updated
// repositories. When the model fails the canned offline set is returned with
// Fallback set, and nothing is cached.
func (s *Suggester) Suggest(ctx context.Context, req models.SuggestionsRequest) (*models.SuggestionsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}

	if req.Refresh {
		s.cache.Invalidate(ctx, req.Username)
	} else if cached, ok := s.cache.Get(ctx, req.Username); ok {
		log.Debug().Str("username", req.Username).Msg("Suggestion cache hit")
		return &models.SuggestionsResponse{Suggestions: cached}, nil
	}

	repos, err := s.repos.ListRecentRepos(ctx, req.Username, suggestionRepoCount)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.generate(ctx, repos)
	if err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("Serving offline suggestions")
		return &models.SuggestionsResponse{Suggestions: OfflineSuggestions(), Fallback: true}, nil
	}

	if err := s.cache.Put(ctx, req.Username, suggestions); err != nil {
		log.Warn().Err(err).Str("username", req.Username).Msg("Failed to cache suggestions")
	}
	return &models.SuggestionsResponse{Suggestions: suggestions}, nil
}

func (s *Suggester) generate(ctx context.Context, repos []models.RepoSummary) ([]models.RepoSuggestion, error) {
	prompt, err := buildSuggestionsPrompt(repos)
	if err != nil {
		return nil, err
	}

	text, err := s.ai.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var suggestions []models.RepoSuggestion
	if err := json.Unmarshal([]byte(cleanJSONMarkdown(text)), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to parse suggestions: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, errors.New("model returned no suggestions")
	}
	return suggestions, nil
}

func OfflineSuggestions() []models.RepoSuggestion {
	return []models.RepoSuggestion{{
		RepoName: "Modo Offline (API Limitada)",
		Ideas: []models.Idea{
			{Title: "Limite da IA Atingido", ContextPrompt: "A API do Google chegou ao limite. Tente mais tarde."},
			{Title: "Escrever Manualmente", ContextPrompt: "Use o botão 'Gerar Post' para criar seu conteúdo."},
			{Title: "Revisar Conteúdo", ContextPrompt: "Que tal revisar seus posts antigos?"},
		},
	}}
}
