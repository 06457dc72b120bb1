package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

var ErrInvalidSignature = errors.New("webhook signature verification failed")

const EventCheckoutSessionCompleted = "checkout.session.completed"

type StripeClient struct {
	sc            *stripe.Client
	webhookSecret string
	plan          *Plan
}

func NewStripeClient(secretKey, webhookSecret string, plan *Plan) *StripeClient {
	return &StripeClient{
		sc:            stripe.NewClient(secretKey),
		webhookSecret: webhookSecret,
		plan:          plan,
	}
}

func (b *StripeClient) CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerCreateParams{
		Email:    stripe.String(email),
		Metadata: map[string]string{"user_id": userID},
	}
	return b.sc.V1Customers.Create(ctx, params)
}

// CreateCheckoutSession opens a one-time payment for the plan. The user id
// travels as client_reference_id so the webhook can find the profile.
func (b *StripeClient) CreateCheckoutSession(ctx context.Context, customerID, userID, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(userID),
		LineItems:         []*stripe.CheckoutSessionCreateLineItemParams{b.lineItem()},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		Metadata: map[string]string{
			"type":    "pro_purchase",
			"plan":    b.plan.ID,
			"user_id": userID,
		},
	}
	return b.sc.V1CheckoutSessions.Create(ctx, params)
}

func (b *StripeClient) lineItem() *stripe.CheckoutSessionCreateLineItemParams {
	if b.plan.StripePriceID != "" {
		return &stripe.CheckoutSessionCreateLineItemParams{
			Price:    stripe.String(b.plan.StripePriceID),
			Quantity: stripe.Int64(1),
		}
	}
	return &stripe.CheckoutSessionCreateLineItemParams{
		PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
			Currency: stripe.String(b.plan.Currency),
			ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
				Name:        stripe.String(b.plan.DisplayName),
				Description: stripe.String(b.plan.Description),
			},
			UnitAmount: stripe.Int64(b.plan.PriceCents),
		},
		Quantity: stripe.Int64(1),
	}
}

func (b *StripeClient) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	if b.webhookSecret == "" {
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, b.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}

// CompletedCheckoutUserID returns the user id of a completed checkout event,
// or "" for any other event.
func CompletedCheckoutUserID(event *stripe.Event) (string, error) {
	if event.Type != EventCheckoutSessionCompleted {
		return "", nil
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return session.ClientReferenceID, nil
}
