package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v84"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/billing"
	"github.com/techpostia/techpost/internal/logging"
	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/profile"
)

const (
	asaasTokenHeader      = "asaas-access-token"
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBytes       = 1 << 20
)

type CheckoutService interface {
	AsaasOneTime(ctx context.Context, user *auth.User, p *models.Profile, req billing.CheckoutRequest) (string, error)
	AsaasSubscription(ctx context.Context, user *auth.User, p *models.Profile, req billing.CheckoutRequest) (string, error)
	StripeCheckout(ctx context.Context, user *auth.User, p *models.Profile) (string, error)
	GrantPro(ctx context.Context, userID string) (bool, error)
}

type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error)
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type webhookAck struct {
	Received bool `json:"received"`
}

type CheckoutHandler struct {
	checkout   CheckoutService
	verifier   WebhookVerifier
	asaasToken string
}

// NewCheckoutHandler wires the payment routes. verifier may be nil when Stripe
// is not configured; the Stripe webhook then rejects every call.
func NewCheckoutHandler(checkout CheckoutService, verifier WebhookVerifier, asaasWebhookToken string) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, verifier: verifier, asaasToken: asaasWebhookToken}
}

func (h *CheckoutHandler) AsaasCheckout(w http.ResponseWriter, r *http.Request) {
	h.asaasCheckout(w, r, h.checkout.AsaasOneTime)
}

func (h *CheckoutHandler) AsaasSubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	h.asaasCheckout(w, r, h.checkout.AsaasSubscription)
}

type asaasCheckoutFunc func(ctx context.Context, user *auth.User, p *models.Profile, req billing.CheckoutRequest) (string, error)

func (h *CheckoutHandler) asaasCheckout(w http.ResponseWriter, r *http.Request, create asaasCheckoutFunc) {
	user, ok := auth.GetUserFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
		return
	}
	p, _ := profile.GetProfileFromContext(r.Context())

	var req billing.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}

	logging.EnrichPayment(r.Context(), "asaas", "checkout")
	url, err := create(r.Context(), user, p, req)
	if err != nil {
		writeServiceError(w, r, err, "asaas_checkout", "Failed to process payment")
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

func (h *CheckoutHandler) StripeCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
		return
	}
	p, _ := profile.GetProfileFromContext(r.Context())

	logging.EnrichPayment(r.Context(), "stripe", "checkout")
	url, err := h.checkout.StripeCheckout(r.Context(), user, p)
	if err != nil {
		writeServiceError(w, r, err, "stripe_checkout", "Failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

func (h *CheckoutHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, "Failed to read body")
		return
	}

	if h.verifier == nil {
		logging.EnrichError(r.Context(), billing.ErrNotConfigured, "stripe_webhook")
		writeJSONError(w, http.StatusBadRequest, codeInvalid, "Webhook Error: stripe is not configured")
		return
	}
	event, err := h.verifier.VerifyWebhookSignature(payload, r.Header.Get(stripeSignatureHeader))
	if err != nil {
		log.Warn().Err(err).Msg("Stripe webhook signature verification failed")
		logging.EnrichError(r.Context(), err, "stripe_webhook")
		writeJSONError(w, http.StatusBadRequest, codeInvalid, fmt.Sprintf("Webhook Error: %v", err))
		return
	}
	logging.EnrichPayment(r.Context(), "stripe", string(event.Type))

	userID, err := billing.CompletedCheckoutUserID(event)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	if err := h.grant(r.Context(), "stripe", userID); err != nil {
		writeServiceError(w, r, err, "stripe_webhook", "Failed to update account")
		return
	}
	writeJSON(w, http.StatusOK, webhookAck{Received: true})
}

func (h *CheckoutHandler) AsaasWebhook(w http.ResponseWriter, r *http.Request) {
	if h.asaasToken == "" {
		logging.EnrichError(r.Context(), billing.ErrNotConfigured, "asaas_webhook")
		writeJSONError(w, http.StatusInternalServerError, codeInternal, internalServerError)
		return
	}
	if !secretsEqual(r.Header.Get(asaasTokenHeader), h.asaasToken) {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid webhook token")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, "Failed to read body")
		return
	}
	event, err := parseEventData[billing.AsaasWebhookEvent](payload)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	logging.EnrichPayment(r.Context(), "asaas", event.Event)
	log.Info().Str("event", event.Event).Str("paymentID", event.Payment.ID).Msg("Asaas webhook received")

	if event.GrantsAccess() {
		if err := h.grant(r.Context(), "asaas", event.Payment.ExternalReference); err != nil {
			writeServiceError(w, r, err, "asaas_webhook", "Failed to update account")
			return
		}
	}
	writeJSON(w, http.StatusOK, webhookAck{Received: true})
}

func (h *CheckoutHandler) grant(ctx context.Context, provider, userID string) error {
	if userID == "" {
		return nil
	}
	matched, err := h.checkout.GrantPro(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to mark %s as pro: %w", userID, err)
	}
	if !matched {
		log.Warn().Str("provider", provider).Str("userID", userID).Msg("Payment confirmed for unknown profile")
		return nil
	}
	log.Info().Str("provider", provider).Str("userID", userID).Msg("Profile upgraded to pro")
	return nil
}

func secretsEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func parseEventData[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty event payload")
	}
	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}
	return &data, nil
}
