package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/api"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/billing"
	"github.com/techpostia/techpost/internal/cache"
	"github.com/techpostia/techpost/internal/config"
	"github.com/techpostia/techpost/internal/db"
	"github.com/techpostia/techpost/internal/github"
	"github.com/techpostia/techpost/internal/logger"
	"github.com/techpostia/techpost/internal/mailer"
	"github.com/techpostia/techpost/internal/post"
	"github.com/techpostia/techpost/internal/profile"
	"github.com/techpostia/techpost/internal/services"
	"google.golang.org/genai"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file, using process environment")
	}
	cfg := config.Load()
	ctx := context.Background()

	bunDB := db.NewBunPostgresClient(cfg.DatabaseURL)
	defer bunDB.Close()

	profileRepo := profile.NewProfileRepository(bunDB)
	if err := profileRepo.InitializeDatabase(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize profiles table")
	}
	postRepo := post.NewPostRepository(bunDB)
	if err := postRepo.InitializeDatabase(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize posts table")
	}
	profileService := profile.NewProfileService(profileRepo)

	genaiClient, err := services.NewGenAIClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	tracker := services.NewTokenTracker()
	generateAI := mustGemini(genaiClient, cfg.GenerateModel, tracker)
	refinePrimary := mustGemini(genaiClient, cfg.RefinePrimaryModel, tracker)
	refineFallback := mustGemini(genaiClient, cfg.RefineFallbackModel, tracker)
	suggestionsAI := mustGemini(genaiClient, cfg.SuggestionsModel, tracker)

	githubClient, err := github.NewClient(
		github.WithAPIURL(cfg.GitHubAPIURL),
		github.WithRawURL(cfg.GitHubRawURL),
		github.WithToken(cfg.GitHubToken),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GitHub client")
	}
	loader, err := github.NewLoader(githubClient,
		github.WithMaxFiles(cfg.LoaderMaxFiles),
		github.WithConcurrency(cfg.LoaderConcurrency),
		github.WithFetchTimeout(cfg.LoaderFetchTimeout),
		github.WithDeadline(cfg.LoaderDeadline),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repository loader")
	}

	suggestionCache := cache.NewInMemorySuggestionCache(cfg.SuggestionsCacheTTL, time.Now)
	rateLimiter := api.NewIPRateLimiter(cfg.PublicRatePerMinute, api.WithTrustedProxy(cfg.TrustProxyHeaders))
	janitor, err := cache.StartJanitor(cache.DefaultPurgeSchedule, suggestionCache, rateLimiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start cache janitor")
	}

	generator := services.NewGenerator(generateAI, profileRepo, postRepo, loader)
	refiner := services.NewRefiner(services.NewFallbackGenerator(refinePrimary, refineFallback))
	suggester := services.NewSuggester(suggestionsAI, githubClient, suggestionCache)

	plan := billing.ProPlan(int64(cfg.ProPriceCents))
	plan.StripePriceID = cfg.StripePriceID

	// Unconfigured providers stay nil interfaces so Checkout reports them.
	var asaasGateway billing.AsaasGateway
	if cfg.AsaasAPIKey != "" {
		asaasGateway = billing.NewAsaasClient(cfg.AsaasAPIURL, cfg.AsaasAPIKey)
	}
	var stripeGateway billing.StripeGateway
	var stripeVerifier api.WebhookVerifier
	if cfg.StripeSecretKey != "" {
		stripeClient := billing.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret, plan)
		if plan.StripePriceID == "" {
			if err := stripeClient.SyncStripeCatalog(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to sync Stripe catalog, using inline price data")
			}
		}
		stripeGateway = stripeClient
		stripeVerifier = stripeClient
	}
	checkout := billing.NewCheckout(asaasGateway, stripeGateway, profileRepo, plan, cfg.FE_BASE_URL)

	var welcomeSender api.WelcomeSender
	if cfg.SMTPUser != "" {
		m, err := mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			FromName: cfg.MailFromName,
			Price:    plan.PriceLabel(),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create mailer")
		}
		welcomeSender = m
	}

	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWTSecret, cfg.SupabaseJWKSURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT verifier")
	}

	router := api.SetupRoutes(api.RouterConfig{
		Verifier:    jwtVerifier,
		Profiles:    profileService,
		Generation:  api.NewGenerationHandler(generator, refiner, suggester),
		Checkout:    api.NewCheckoutHandler(checkout, stripeVerifier, cfg.AsaasWebhookToken),
		Welcome:     api.NewWelcomeHandler(welcomeSender, cfg.WelcomeWebhookSecret),
		Profile:     api.NewProfileHandler(profileService),
		Posts:       api.NewPostsHandler(postRepo),
		RateLimiter: rateLimiter,
		Logger:      logger.Log,
		FEBaseURL:   cfg.FE_BASE_URL,
		TrustProxy:  cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down server...")
		<-janitor.Stop().Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", cfg.ServerAddr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	logTokenTotals(tracker, cfg.GenerateModel, cfg.RefinePrimaryModel, cfg.RefineFallbackModel, cfg.SuggestionsModel)
	log.Info().Msg("Server stopped")
}

func mustGemini(client *genai.Client, model string, tracker services.ITokenTracker) *services.GeminiAIClient {
	ai, err := services.NewGeminiAIClient(client, services.WithModel(model), services.WithTokenTracker(tracker))
	if err != nil {
		log.Fatal().Err(err).Str("model", model).Msg("Failed to create AI client")
	}
	return ai
}

func logTokenTotals(tracker *services.TokenTracker, models ...string) {
	seen := make(map[string]bool, len(models))
	for _, model := range models {
		if seen[model] {
			continue
		}
		seen[model] = true
		totals := tracker.Totals(model)
		log.Info().Str("model", model).Int("tokensIn", totals.In).Int("tokensOut", totals.Out).Msg("Token usage")
	}
}
