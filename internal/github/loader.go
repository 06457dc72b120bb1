package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type LoadStatus string

const (
	StatusLoaded   LoadStatus = "loaded"
	StatusSkipped  LoadStatus = "skipped"
	StatusDegraded LoadStatus = "degraded"
	StatusFailed   LoadStatus = "failed"
)

const maxFileRunes = 3000

// LoadResult is the outcome of reading a repository. Text is only meant for a
// prompt when Status is StatusLoaded.
type LoadResult struct {
	Text   string
	Status LoadStatus
	Files  []string
}

type Source interface {
	DefaultBranch(ctx context.Context, owner, repo string) string
	Tree(ctx context.Context, owner, repo, branch string) ([]TreeEntry, error)
	RawFile(ctx context.Context, owner, repo, branch, filePath string) (string, error)
}

type Loader struct {
	source       Source
	maxFiles     int
	concurrency  int
	fetchTimeout time.Duration
	deadline     time.Duration
}

type LoaderFuncOption = func(l *Loader) error

func NewLoader(source Source, opts ...LoaderFuncOption) (*Loader, error) {
	l := &Loader{
		source:       source,
		maxFiles:     12,
		concurrency:  4,
		fetchTimeout: 10 * time.Second,
		deadline:     30 * time.Second,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}
	return l, nil
}

func WithMaxFiles(n int) LoaderFuncOption {
	return func(l *Loader) error {
		if n <= 0 {
			return fmt.Errorf("max files must be positive, got %d", n)
		}
		l.maxFiles = n
		return nil
	}
}

func WithConcurrency(n int) LoaderFuncOption {
	return func(l *Loader) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		l.concurrency = n
		return nil
	}
}

func WithFetchTimeout(d time.Duration) LoaderFuncOption {
	return func(l *Loader) error {
		l.fetchTimeout = d
		return nil
	}
}

func WithDeadline(d time.Duration) LoaderFuncOption {
	return func(l *Loader) error {
		l.deadline = d
		return nil
	}
}

// Load builds the plain-text repository report for repoURL. It never returns
// an error; failures are reported through LoadResult.Status.
func (l *Loader) Load(ctx context.Context, repoURL string) LoadResult {
	owner, repo, ok := ParseRepoURL(repoURL)
	if !ok {
		return LoadResult{Status: StatusSkipped}
	}

	branch := l.source.DefaultBranch(ctx, owner, repo)

	tree, err := l.source.Tree(ctx, owner, repo, branch)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			log.Warn().Str("repo", owner+"/"+repo).Int("status", se.StatusCode).Msg("github tree request rejected")
			return LoadResult{
				Text:   fmt.Sprintf("GitHub read error: %d", se.StatusCode),
				Status: StatusDegraded,
			}
		}
		log.Error().Err(err).Str("repo", owner+"/"+repo).Msg("github tree request failed")
		return LoadResult{Status: StatusFailed}
	}

	selected := SelectFiles(tree, l.maxFiles)
	for _, f := range selected {
		log.Debug().Str("path", f.Path).Int("score", f.Score).Msg("selected file")
	}

	contents := l.fetchAll(ctx, owner, repo, branch, selected)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- REPOSITORY REPORT (%s/%s) ---\n", owner, repo)
	files := make([]string, 0, len(selected))
	for i, f := range selected {
		if contents[i] == nil {
			continue
		}
		fmt.Fprintf(&sb, "\n--- FILE: %s ---\n%s\n", f.Path, *contents[i])
		files = append(files, f.Path)
	}

	log.Info().
		Str("repo", owner+"/"+repo).
		Str("branch", branch).
		Int("selected", len(selected)).
		Int("fetched", len(files)).
		Msg("repository loaded")

	return LoadResult{Text: sb.String(), Status: StatusLoaded, Files: files}
}

// fetchAll downloads the selected files with bounded concurrency. The result
// is indexed like files; nil marks a failed fetch.
func (l *Loader) fetchAll(ctx context.Context, owner, repo, branch string, files []ScoredFile) []*string {
	if l.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.deadline)
		defer cancel()
	}

	out := make([]*string, len(files))
	var g errgroup.Group
	g.SetLimit(l.concurrency)

	for i, f := range files {
		g.Go(func() error {
			fctx := ctx
			if l.fetchTimeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, l.fetchTimeout)
				defer cancel()
			}

			text, err := l.source.RawFile(fctx, owner, repo, branch, f.Path)
			if err != nil {
				log.Warn().Err(err).Str("path", f.Path).Msg("skipping file")
				return nil
			}
			text = truncateRunes(text, maxFileRunes)
			out[i] = &text
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
