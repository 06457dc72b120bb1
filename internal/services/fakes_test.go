package services

import (
	"context"
	"errors"
	"sync"

	"github.com/techpostia/techpost/internal/github"
	"github.com/techpostia/techpost/internal/models"
)

type fakeAI struct {
	mu      sync.Mutex
	model   string
	text    string
	err     error
	prompts []string
	files   [][]InlineFile
}

func (f *fakeAI) Model() string { return f.model }

func (f *fakeAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f.GenerateWithFiles(ctx, prompt, nil)
}

func (f *fakeAI) GenerateWithFiles(ctx context.Context, prompt string, files []InlineFile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.files = append(f.files, files)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeAI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeProfiles struct {
	mu           sync.Mutex
	profiles     map[string]*models.Profile
	getErr       error
	incErr       error
	incrementCnt int
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]*models.Profile{}}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetOrCreate(ctx context.Context, userID, email, fullName string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		p = &models.Profile{ID: userID, Email: email, FullName: fullName, Plan: models.PlanFree}
		f.profiles[userID] = p
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) IncrementUsage(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incrementCnt++
	if f.incErr != nil {
		return 0, f.incErr
	}
	p := f.profiles[userID]
	p.UsageCount++
	return p.UsageCount, nil
}

func (f *fakeProfiles) usage(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[userID].UsageCount
}

type fakePosts struct {
	mu    sync.Mutex
	posts []*models.Post
	err   error
	ctxs  []context.Context
}

func (f *fakePosts) Create(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxs = append(f.ctxs, ctx)
	if f.err != nil {
		return f.err
	}
	p.ID = "post-1"
	f.posts = append(f.posts, p)
	return nil
}

type fakeLoader struct {
	result github.LoadResult
	urls   []string
}

func (f *fakeLoader) Load(ctx context.Context, repoURL string) github.LoadResult {
	f.urls = append(f.urls, repoURL)
	return f.result
}

type fakeLister struct {
	repos []models.RepoSummary
	err   error
	calls int
}

func (f *fakeLister) ListRecentRepos(ctx context.Context, username string, n int) ([]models.RepoSummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.repos, nil
}

var errUpstream = errors.New("upstream unavailable")
