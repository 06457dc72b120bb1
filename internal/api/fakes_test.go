package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/billing"
	"github.com/techpostia/techpost/internal/cache"
	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/post"
	"github.com/techpostia/techpost/internal/profile"
	"github.com/techpostia/techpost/internal/services"
)

const (
	userToken   = "token-user-1"
	testWebhook = "whsec_api_test"
	asaasToken  = "asaas-secret"
	welcomeKey  = "welcome-secret"
)

var testUser = &auth.User{ID: "user-1", Email: "dev@example.com", FullName: "Ada Lovelace"}

type staticVerifier map[string]*auth.User

func (s staticVerifier) VerifyToken(token string) (*auth.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidToken
}

// memoryProfiles implements profile.Repository in memory.
type memoryProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: make(map[string]*models.Profile)}
}

func (m *memoryProfiles) seed(p *models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
}

func (m *memoryProfiles) get(id string) models.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		return *p
	}
	return models.Profile{}
}

func (m *memoryProfiles) InitializeDatabase(ctx context.Context) error { return nil }

func (m *memoryProfiles) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfiles) GetOrCreate(ctx context.Context, userID, email, fullName string) (*models.Profile, error) {
	m.mu.Lock()
	if _, ok := m.profiles[userID]; !ok {
		m.profiles[userID] = &models.Profile{ID: userID, Email: email, FullName: fullName, Plan: models.PlanFree}
	}
	m.mu.Unlock()
	return m.GetByID(ctx, userID)
}

func (m *memoryProfiles) UpdateDetails(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.Profile, error) {
	m.mu.Lock()
	p, ok := m.profiles[userID]
	if !ok {
		m.mu.Unlock()
		return nil, profile.ErrNotFound
	}
	if upd.FullName != nil {
		p.FullName = *upd.FullName
	}
	if upd.DefaultTone != nil {
		p.DefaultTone = *upd.DefaultTone
	}
	m.mu.Unlock()
	return m.GetByID(ctx, userID)
}

func (m *memoryProfiles) IncrementUsage(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return 0, profile.ErrNotFound
	}
	p.UsageCount++
	return p.UsageCount, nil
}

func (m *memoryProfiles) MarkVIP(ctx context.Context, userID, plan string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return false, nil
	}
	p.IsVIP = true
	p.Plan = plan
	return true, nil
}

func (m *memoryProfiles) SetAsaasCustomerID(ctx context.Context, userID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		p.AsaasCustomerID = &customerID
	}
	return nil
}

func (m *memoryProfiles) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		p.StripeCustomerID = &customerID
	}
	return nil
}

type memoryPosts struct {
	mu    sync.Mutex
	posts []*models.Post
	seq   int
}

func (m *memoryPosts) Create(ctx context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("post-%d", m.seq)
	if p.Status == "" {
		p.Status = models.PostStatusDraft
	}
	p.CreatedAt = time.Now()
	cp := *p
	m.posts = append(m.posts, &cp)
	return nil
}

func (m *memoryPosts) find(ownerID, postID string) (*models.Post, error) {
	for _, p := range m.posts {
		if p.ID == postID && p.UserID == ownerID {
			return p, nil
		}
	}
	return nil, post.ErrNotFound
}

func (m *memoryPosts) GetByID(ctx context.Context, ownerID, postID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.find(ownerID, postID)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPosts) ListByOwner(ctx context.Context, ownerID string) ([]*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Post
	for _, p := range m.posts {
		if p.UserID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryPosts) UpdateContent(ctx context.Context, ownerID, postID, title, text string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.find(ownerID, postID)
	if err != nil {
		return nil, err
	}
	p.Title, p.GeneratedText = title, text
	cp := *p
	return &cp, nil
}

func (m *memoryPosts) UpdateStatus(ctx context.Context, ownerID, postID string, status models.PostStatus) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.find(ownerID, postID)
	if err != nil {
		return nil, err
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

// scriptedAI answers every prompt with the same text, or fails.
type scriptedAI struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (s *scriptedAI) Model() string { return "scripted" }

func (s *scriptedAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *scriptedAI) GenerateWithFiles(ctx context.Context, prompt string, files []services.InlineFile) (string, error) {
	return s.GenerateContent(ctx, prompt)
}

type stubRepos struct {
	repos []models.RepoSummary
	err   error
}

func (s stubRepos) ListRecentRepos(ctx context.Context, username string, n int) ([]models.RepoSummary, error) {
	return s.repos, s.err
}

type stubAsaas struct {
	customers int
}

func (s *stubAsaas) FindCustomerByExternalReference(ctx context.Context, ref string) (*billing.AsaasCustomer, error) {
	return nil, nil
}

func (s *stubAsaas) CreateCustomer(ctx context.Context, c billing.AsaasCustomer) (*billing.AsaasCustomer, error) {
	s.customers++
	c.ID = "cus_1"
	return &c, nil
}

func (s *stubAsaas) CreatePayment(ctx context.Context, customerID, userID string, plan *billing.Plan) (*billing.AsaasPayment, error) {
	return &billing.AsaasPayment{ID: "pay_1", InvoiceURL: "https://asaas.test/i/pay_1"}, nil
}

func (s *stubAsaas) CreateSubscription(ctx context.Context, customerID, userID string, plan *billing.Plan) (*billing.AsaasSubscription, error) {
	return &billing.AsaasSubscription{ID: "sub_1"}, nil
}

func (s *stubAsaas) FirstSubscriptionInvoice(ctx context.Context, subscriptionID string) (string, error) {
	return "https://asaas.test/i/sub_1", nil
}

type recordingWelcome struct {
	mu     sync.Mutex
	emails []string
	names  []string
	err    error
}

func (r *recordingWelcome) SendWelcome(ctx context.Context, email, fullName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.emails = append(r.emails, email)
	r.names = append(r.names, fullName)
	return nil
}

var errUpstream = errors.New("upstream unavailable")

type testServer struct {
	router   *mux.Router
	profiles *memoryProfiles
	posts    *memoryPosts
	ai       *scriptedAI
	asaas    *stubAsaas
	welcome  *recordingWelcome
	repos    *stubRepos
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		profiles: newMemoryProfiles(),
		posts:    &memoryPosts{},
		ai:       &scriptedAI{answer: "Shipping faster\nWe cut build times in half."},
		asaas:    &stubAsaas{},
		welcome:  &recordingWelcome{},
		repos:    &stubRepos{},
	}

	plan := billing.ProPlan(1490)
	checkout := billing.NewCheckout(ts.asaas, nil, ts.profiles, plan, "http://fe.test")
	stripeClient := billing.NewStripeClient("sk_test", testWebhook, plan)
	profiles := profile.NewProfileService(ts.profiles)
	suggestionCache := cache.NewInMemorySuggestionCache(time.Hour, time.Now)

	ts.router = SetupRoutes(RouterConfig{
		Verifier: staticVerifier{userToken: testUser},
		Profiles: profiles,
		Generation: NewGenerationHandler(
			services.NewGenerator(ts.ai, ts.profiles, ts.posts, nil),
			services.NewRefiner(ts.ai),
			services.NewSuggester(ts.ai, ts.repos, suggestionCache),
		),
		Checkout:    NewCheckoutHandler(checkout, stripeClient, asaasToken),
		Welcome:     NewWelcomeHandler(ts.welcome, welcomeKey),
		Profile:     NewProfileHandler(profiles),
		Posts:       NewPostsHandler(ts.posts),
		RateLimiter: NewIPRateLimiter(1000),
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		FEBaseURL:   "http://fe.test",
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func authed() map[string]string {
	return map[string]string{"Authorization": "Bearer " + userToken}
}
