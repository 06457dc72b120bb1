package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/entitlement"
	"github.com/techpostia/techpost/internal/github"
	"github.com/techpostia/techpost/internal/logging"
	"github.com/techpostia/techpost/internal/models"
)

var ErrUnauthenticated = errors.New("you must be signed in to generate posts")

// ValidationError marks a request the caller must fix.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID, email, fullName string) (*models.Profile, error)
	IncrementUsage(ctx context.Context, userID string) (int, error)
}

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
}

type RepoLoader interface {
	Load(ctx context.Context, repoURL string) github.LoadResult
}

type GenerationResult struct {
	Title      string
	Text       string
	PostID     string
	Saved      bool
	UsageCount int
	RepoStatus github.LoadStatus
}

type Generator struct {
	ai       IMultimodalAIClient
	profiles ProfileStore
	posts    PostStore
	loader   RepoLoader
}

func NewGenerator(ai IMultimodalAIClient, profiles ProfileStore, posts PostStore, loader RepoLoader) *Generator {
	return &Generator{
		ai:       ai,
		profiles: profiles,
		posts:    posts,
		loader:   loader,
	}
}

// Generate runs one paywalled generation. Persisting the post and counting the
// usage happen after the model answered and never fail the request.
func (g *Generator) Generate(ctx context.Context, user *auth.User, req models.GenerationRequest) (*GenerationResult, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthenticated
	}

	// The paywall answers before anything about the request is inspected.
	profile, err := g.profiles.GetOrCreate(ctx, user.ID, user.Email, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if err := entitlement.Check(profile); err != nil {
		logging.EnrichQuotaBlocked(ctx, profile.UsageCount)
		return nil, err
	}

	req.Files = models.NormalizeAttachments(req.Files)
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Err: err}
	}
	files, err := decodeAttachments(req.Files)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	result := &GenerationResult{}
	repoContext := ""
	if req.RepoURL != "" && github.IsGitHubURL(req.RepoURL) && g.loader != nil {
		loaded := g.loader.Load(ctx, req.RepoURL)
		result.RepoStatus = loaded.Status
		logging.EnrichRepo(ctx, string(loaded.Status), len(loaded.Files))
		if loaded.Status == github.StatusLoaded {
			repoContext = loaded.Text
		}
	}

	prompt := BuildGenerationPrompt(req, repoContext, len(files) > 0)
	raw, err := g.ai.GenerateWithFiles(ctx, prompt, files)
	if err != nil {
		return nil, fmt.Errorf("failed to generate post: %w", err)
	}
	result.Title, result.Text = SplitTitleBody(raw)

	// The answer is already paid for; finish bookkeeping even if the client left.
	detached := context.WithoutCancel(ctx)

	post := &models.Post{
		UserID:        user.ID,
		Title:         result.Title,
		GeneratedText: result.Text,
		ContextPrompt: req.Context,
		Audience:      req.Audience,
		Tone:          req.Tone,
		Objective:     req.Objective,
		Platform:      req.Channel,
		Status:        models.PostStatusDraft,
	}
	if err := g.posts.Create(detached, post); err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to save generated post")
		logging.EnrichError(ctx, err, "save_post")
	} else {
		result.PostID = post.ID
		result.Saved = true
	}

	count, err := g.profiles.IncrementUsage(detached, user.ID)
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("Failed to increment usage")
		logging.EnrichError(ctx, err, "increment_usage")
	}
	result.UsageCount = count
	logging.EnrichGeneration(ctx, result.PostID, count)

	return result, nil
}

func decodeAttachments(files []models.Attachment) ([]InlineFile, error) {
	out := make([]InlineFile, 0, len(files))
	for _, f := range files {
		data, err := base64.StdEncoding.DecodeString(f.Base64)
		if err != nil {
			return nil, fmt.Errorf("attachment %q is not valid base64: %w", f.Name, err)
		}
		out = append(out, InlineFile{MimeType: f.MimeType, Data: data})
	}
	return out, nil
}
