package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/profile"
)

type RouterConfig struct {
	Verifier    auth.TokenVerifier
	Profiles    profile.Service
	Generation  *GenerationHandler
	Checkout    *CheckoutHandler
	Welcome     *WelcomeHandler
	Profile     *ProfileHandler
	Posts       *PostsHandler
	RateLimiter *IPRateLimiter
	Logger      *slog.Logger
	FEBaseURL   string
	TrustProxy  bool
}

func SetupRoutes(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(CORSMiddleware(cfg.FEBaseURL))
	r.Use(LoggingMiddleware(cfg.Logger, cfg.TrustProxy))
	r.Use(RecoveryMiddleware)
	r.Use(auth.Middleware(cfg.Verifier))
	r.Use(UserEventMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	// Every preflight is answered here, after CORSMiddleware set the headers.
	api.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Webhooks authenticate with their own credentials.
	api.HandleFunc("/webhook", cfg.Checkout.StripeWebhook).Methods(http.MethodPost)
	api.HandleFunc("/webhook/asaas", cfg.Checkout.AsaasWebhook).Methods(http.MethodPost)
	api.HandleFunc("/webhook/welcome", cfg.Welcome.HandleWelcome).Methods(http.MethodPost)

	public := api.NewRoute().Subrouter()
	if cfg.RateLimiter != nil {
		public.Use(cfg.RateLimiter.Middleware)
	}
	public.HandleFunc("/refine", cfg.Generation.Refine).Methods(http.MethodPost)
	public.HandleFunc("/suggestions", cfg.Generation.Suggestions).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth.RequireUser)
	protected.HandleFunc("/generate", cfg.Generation.Generate).Methods(http.MethodPost)
	protected.HandleFunc("/posts", cfg.Posts.ListPosts).Methods(http.MethodGet)
	protected.HandleFunc("/posts", cfg.Posts.CreatePost).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id}", cfg.Posts.GetPost).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id}", cfg.Posts.UpdatePost).Methods(http.MethodPatch)
	protected.HandleFunc("/posts/{id}/status", cfg.Posts.UpdatePostStatus).Methods(http.MethodPatch)

	withProfile := api.NewRoute().Subrouter()
	withProfile.Use(auth.RequireUser)
	withProfile.Use(profile.Middleware(cfg.Profiles))
	withProfile.HandleFunc("/profile", cfg.Profile.GetProfile).Methods(http.MethodGet)
	withProfile.HandleFunc("/profile", cfg.Profile.UpdateProfile).Methods(http.MethodPatch)
	withProfile.HandleFunc("/checkout", cfg.Checkout.AsaasCheckout).Methods(http.MethodPost)
	withProfile.HandleFunc("/checkout/subscription", cfg.Checkout.AsaasSubscriptionCheckout).Methods(http.MethodPost)
	withProfile.HandleFunc("/checkout/stripe", cfg.Checkout.StripeCheckout).Methods(http.MethodPost)

	return r
}
