package services

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/entitlement"
	"github.com/techpostia/techpost/internal/github"
	"github.com/techpostia/techpost/internal/models"
)

var testUser = &auth.User{ID: "u1", Email: "dev@example.com", FullName: "Ada"}

func baseRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Channel:   "LinkedIn",
		Audience:  "Engineers",
		Objective: "Authority",
		Tone:      "Professional",
		Length:    models.LengthShort,
		Context:   "We migrated our queue to Postgres",
	}
}

func TestGenerateRequiresUser(t *testing.T) {
	ai := &fakeAI{text: "T\nB"}
	profiles := newFakeProfiles()
	g := NewGenerator(ai, profiles, &fakePosts{}, nil)

	if _, err := g.Generate(context.Background(), nil, baseRequest()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if ai.calls() != 0 {
		t.Fatalf("model must not be called without a user")
	}
}

func TestGenerateBlocksAtFreeLimit(t *testing.T) {
	ai := &fakeAI{text: "T\nB"}
	profiles := newFakeProfiles(&models.Profile{ID: "u1", UsageCount: entitlement.FreeLimit})
	posts := &fakePosts{}
	g := NewGenerator(ai, profiles, posts, nil)

	_, err := g.Generate(context.Background(), testUser, baseRequest())
	if !errors.Is(err, entitlement.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if ai.calls() != 0 || len(posts.posts) != 0 {
		t.Fatalf("blocked request must not call the model or persist")
	}
	if profiles.incrementCnt != 0 || profiles.usage("u1") != entitlement.FreeLimit {
		t.Fatalf("blocked request must not change the counter")
	}
}

func TestGenerateQuotaCheckedBeforeValidation(t *testing.T) {
	invalid := baseRequest()
	invalid.Channel = ""
	invalid.Files = []models.Attachment{{Name: "a.png", MimeType: "image/png", Base64: "%%%"}}

	ai := &fakeAI{text: "T\nB"}
	profiles := newFakeProfiles(&models.Profile{ID: "u1", UsageCount: entitlement.FreeLimit})
	g := NewGenerator(ai, profiles, &fakePosts{}, nil)

	_, err := g.Generate(context.Background(), testUser, invalid)
	if !errors.Is(err, entitlement.ErrQuotaExceeded) {
		t.Fatalf("exhausted user must see the paywall, got %v", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("validation ran before the quota check: %v", err)
	}
	if ai.calls() != 0 || profiles.incrementCnt != 0 {
		t.Fatalf("blocked request must not call the model or count")
	}
}

func TestGenerateVIPBypassesLimit(t *testing.T) {
	ai := &fakeAI{text: "T\nB"}
	profiles := newFakeProfiles(&models.Profile{ID: "u1", UsageCount: 40, IsVIP: true})
	g := NewGenerator(ai, profiles, &fakePosts{}, nil)

	if _, err := g.Generate(context.Background(), testUser, baseRequest()); err != nil {
		t.Fatalf("vip should generate, got %v", err)
	}
	if profiles.usage("u1") != 41 {
		t.Fatalf("vip usage still counted, got %d", profiles.usage("u1"))
	}
}

func TestGenerateHappyPath(t *testing.T) {
	ai := &fakeAI{text: "  Postgres as a queue  \n\nHook line.\n\nBody.\n"}
	profiles := newFakeProfiles()
	posts := &fakePosts{}
	g := NewGenerator(ai, profiles, posts, nil)

	res, err := g.Generate(context.Background(), testUser, baseRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Title != "Postgres as a queue" || res.Text != "Hook line.\n\nBody." {
		t.Fatalf("unexpected split %q / %q", res.Title, res.Text)
	}
	if !res.Saved || res.PostID != "post-1" || res.UsageCount != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if profiles.incrementCnt != 1 {
		t.Fatalf("increment must happen exactly once, got %d", profiles.incrementCnt)
	}

	saved := posts.posts[0]
	if saved.UserID != "u1" || saved.Platform != "LinkedIn" || saved.Status != models.PostStatusDraft {
		t.Fatalf("unexpected saved post %+v", saved)
	}
	if saved.Title+"\n"+saved.GeneratedText != res.Title+"\n"+res.Text {
		t.Fatalf("persisted post differs from response")
	}

	prompt := ai.prompts[0]
	for _, want := range []string{"LinkedIn", "Engineers", "Authority", "Professional", LengthInstruction(models.LengthShort), "We migrated our queue to Postgres"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestGenerateSucceedsWhenPersistenceFails(t *testing.T) {
	ai := &fakeAI{text: "Title\nBody"}
	profiles := newFakeProfiles()
	posts := &fakePosts{err: errUpstream}
	g := NewGenerator(ai, profiles, posts, nil)

	res, err := g.Generate(context.Background(), testUser, baseRequest())
	if err != nil {
		t.Fatalf("persist failure must not fail the request: %v", err)
	}
	if res.Saved || res.PostID != "" || res.Text != "Body" {
		t.Fatalf("unexpected result %+v", res)
	}
	if profiles.incrementCnt != 1 {
		t.Fatalf("usage must still be counted")
	}
}

func TestGenerateSucceedsWhenIncrementFails(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.incErr = errUpstream
	g := NewGenerator(&fakeAI{text: "Title\nBody"}, profiles, &fakePosts{}, nil)

	if _, err := g.Generate(context.Background(), testUser, baseRequest()); err != nil {
		t.Fatalf("increment failure must not fail the request: %v", err)
	}
}

func TestGenerateModelFailureDoesNotCount(t *testing.T) {
	profiles := newFakeProfiles()
	posts := &fakePosts{}
	g := NewGenerator(&fakeAI{err: errUpstream}, profiles, posts, nil)

	if _, err := g.Generate(context.Background(), testUser, baseRequest()); !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if profiles.incrementCnt != 0 || len(posts.posts) != 0 {
		t.Fatalf("failed generation must not persist or count")
	}
}

func TestGenerateBookkeepingSurvivesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ai := &cancelingAI{cancel: cancel}
	posts := &fakePosts{}
	g := NewGenerator(ai, newFakeProfiles(), posts, nil)

	if _, err := g.Generate(ctx, testUser, baseRequest()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := posts.ctxs[0].Err(); err != nil {
		t.Fatalf("post insert context should not be canceled, got %v", err)
	}
}

type cancelingAI struct {
	cancel context.CancelFunc
}

func (c *cancelingAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithFiles(ctx, prompt, nil)
}

func (c *cancelingAI) GenerateWithFiles(ctx context.Context, prompt string, files []InlineFile) (string, error) {
	c.cancel()
	return "Title\nBody", nil
}

func TestGenerateAttachments(t *testing.T) {
	ai := &fakeAI{text: "T\nB"}
	g := NewGenerator(ai, newFakeProfiles(), &fakePosts{}, nil)

	payload := base64.StdEncoding.EncodeToString([]byte("diagram-bytes"))
	req := baseRequest()
	req.Files = []models.Attachment{
		{Name: "arch.png", MimeType: "image/png", Base64: "data:image/png;base64," + payload},
		{Name: "empty.png", MimeType: "image/png", Base64: "data:image/png;base64,"},
	}

	if _, err := g.Generate(context.Background(), testUser, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	files := ai.files[0]
	if len(files) != 1 || string(files[0].Data) != "diagram-bytes" || files[0].MimeType != "image/png" {
		t.Fatalf("unexpected inline files %+v", files)
	}
	if !strings.Contains(ai.prompts[0], "attached files") {
		t.Fatalf("prompt should mention attachments")
	}
}

func TestGenerateRejectsBadAttachment(t *testing.T) {
	ai := &fakeAI{text: "T\nB"}
	profiles := newFakeProfiles()
	g := NewGenerator(ai, profiles, &fakePosts{}, nil)

	req := baseRequest()
	req.Files = []models.Attachment{{Name: "x", MimeType: "", Base64: "aGVsbG8="}}

	_, err := g.Generate(context.Background(), testUser, req)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ai.calls() != 0 || profiles.incrementCnt != 0 {
		t.Fatalf("invalid request must not reach the model")
	}
}

func TestGenerateSplicesOnlyLoadedRepoContext(t *testing.T) {
	tests := []struct {
		name   string
		result github.LoadResult
		want   bool
	}{
		{"loaded", github.LoadResult{Status: github.StatusLoaded, Text: "--- REPOSITORY REPORT (acme/widget) ---"}, true},
		{"degraded", github.LoadResult{Status: github.StatusDegraded, Text: "GitHub read error: 404"}, false},
		{"failed", github.LoadResult{Status: github.StatusFailed}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeAI{text: "T\nB"}
			loader := &fakeLoader{result: tt.result}
			g := NewGenerator(ai, newFakeProfiles(), &fakePosts{}, loader)

			req := baseRequest()
			req.RepoURL = "https://github.com/acme/widget"
			res, err := g.Generate(context.Background(), testUser, req)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if res.RepoStatus != tt.result.Status {
				t.Fatalf("RepoStatus = %s", res.RepoStatus)
			}
			hasRepo := strings.Contains(ai.prompts[0], "REPOSITORY CONTEXT")
			if hasRepo != tt.want {
				t.Fatalf("repo context spliced = %v, want %v", hasRepo, tt.want)
			}
			if strings.Contains(ai.prompts[0], "GitHub read error") {
				t.Fatalf("degraded text must not reach the prompt")
			}
		})
	}
}

func TestGenerateIgnoresNonGitHubURL(t *testing.T) {
	loader := &fakeLoader{}
	g := NewGenerator(&fakeAI{text: "T\nB"}, newFakeProfiles(), &fakePosts{}, loader)

	req := baseRequest()
	req.RepoURL = "https://gitlab.com/acme/widget"
	if _, err := g.Generate(context.Background(), testUser, req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(loader.urls) != 0 {
		t.Fatalf("loader should not be called for non-GitHub URLs")
	}
}

type recordingSource struct {
	calls int
}

func (s *recordingSource) DefaultBranch(ctx context.Context, owner, repo string) string {
	s.calls++
	return "main"
}

func (s *recordingSource) Tree(ctx context.Context, owner, repo, branch string) ([]github.TreeEntry, error) {
	s.calls++
	return nil, nil
}

func (s *recordingSource) RawFile(ctx context.Context, owner, repo, branch, filePath string) (string, error) {
	s.calls++
	return "", nil
}

func TestGenerateMalformedRepoURLIsSkipped(t *testing.T) {
	for _, raw := range []string{"github.com/owner repo", "https://github.com/", "not a url github.com"} {
		t.Run(raw, func(t *testing.T) {
			source := &recordingSource{}
			loader, err := github.NewLoader(source)
			if err != nil {
				t.Fatalf("NewLoader: %v", err)
			}
			ai := &fakeAI{text: "T\nB"}
			g := NewGenerator(ai, newFakeProfiles(), &fakePosts{}, loader)

			req := baseRequest()
			req.RepoURL = raw
			res, err := g.Generate(context.Background(), testUser, req)
			if err != nil {
				t.Fatalf("malformed repo URL must not fail generation: %v", err)
			}
			if res.RepoStatus != github.StatusSkipped {
				t.Fatalf("repo status = %q", res.RepoStatus)
			}
			if source.calls != 0 {
				t.Fatalf("GitHub must not be contacted for %q", raw)
			}
			if strings.Contains(ai.prompts[0], "REPOSITORY CONTEXT") {
				t.Fatalf("prompt must not carry a repository section")
			}
		})
	}
}

func TestSplitTitleBody(t *testing.T) {
	tests := []struct {
		raw, title, body string
	}{
		{"Title\n\nBody text", "Title", "Body text"},
		{"  Only a title  ", "Only a title", ""},
		{"T\nline1\nline2\n", "T", "line1\nline2"},
		{"", "", ""},
	}
	for _, tt := range tests {
		title, body := SplitTitleBody(tt.raw)
		if title != tt.title || body != tt.body {
			t.Errorf("SplitTitleBody(%q) = %q, %q; want %q, %q", tt.raw, title, body, tt.title, tt.body)
		}
	}
}

func TestLengthInstructionDefaultsToMedium(t *testing.T) {
	if LengthInstruction("HUGE") != LengthInstruction(models.LengthMedium) {
		t.Fatalf("unknown length should map to medium")
	}
	if LengthInstruction(models.LengthShort) == LengthInstruction(models.LengthLong) {
		t.Fatalf("short and long must differ")
	}
}
