package billing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v84"
	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/models"
)

var (
	ErrMissingTaxID    = errors.New("CPF is required")
	ErrInvalidTaxID    = errors.New("CPF/CNPJ must have 11 or 14 digits")
	ErrNotConfigured   = errors.New("payment provider is not configured")
	ErrMissingUserData = errors.New("account has no e-mail")

	taxIDDigits = regexp.MustCompile(`^(\d{11}|\d{14})$`)
	nonDigits   = regexp.MustCompile(`\D`)
)

const defaultCustomerName = "Cliente TechPost"

type AsaasGateway interface {
	FindCustomerByExternalReference(ctx context.Context, ref string) (*AsaasCustomer, error)
	CreateCustomer(ctx context.Context, customer AsaasCustomer) (*AsaasCustomer, error)
	CreatePayment(ctx context.Context, customerID, userID string, plan *Plan) (*AsaasPayment, error)
	CreateSubscription(ctx context.Context, customerID, userID string, plan *Plan) (*AsaasSubscription, error)
	FirstSubscriptionInvoice(ctx context.Context, subscriptionID string) (string, error)
}

type StripeGateway interface {
	CreateCustomer(ctx context.Context, userID, email string) (*stripe.Customer, error)
	CreateCheckoutSession(ctx context.Context, customerID, userID, successURL, cancelURL string) (*stripe.CheckoutSession, error)
}

type CustomerStore interface {
	SetAsaasCustomerID(ctx context.Context, userID, customerID string) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	MarkVIP(ctx context.Context, userID, plan string) (bool, error)
}

type CheckoutRequest struct {
	CPF string `json:"cpf"`
}

// NormalizedTaxID keeps only digits.
func (r CheckoutRequest) NormalizedTaxID() string {
	return nonDigits.ReplaceAllString(r.CPF, "")
}

func (r CheckoutRequest) Validate() error {
	taxID := r.NormalizedTaxID()
	if taxID == "" {
		return ErrMissingTaxID
	}
	if err := v.Validate(taxID, v.Match(taxIDDigits)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTaxID, err)
	}
	return nil
}

type Checkout struct {
	asaas     AsaasGateway
	stripe    StripeGateway
	customers CustomerStore
	plan      *Plan
	feBaseURL string
}

func NewCheckout(asaas AsaasGateway, stripeGateway StripeGateway, customers CustomerStore, plan *Plan, feBaseURL string) *Checkout {
	return &Checkout{
		asaas:     asaas,
		stripe:    stripeGateway,
		customers: customers,
		plan:      plan,
		feBaseURL: strings.TrimRight(feBaseURL, "/"),
	}
}

// AsaasOneTime returns the hosted invoice url for a single PRO payment.
func (c *Checkout) AsaasOneTime(ctx context.Context, user *auth.User, p *models.Profile, req CheckoutRequest) (string, error) {
	customerID, err := c.ensureAsaasCustomer(ctx, user, p, req)
	if err != nil {
		return "", err
	}
	payment, err := c.asaas.CreatePayment(ctx, customerID, user.ID, c.plan)
	if err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}
	return payment.InvoiceURL, nil
}

// AsaasSubscription creates a monthly subscription and returns the invoice url
// of its first payment.
func (c *Checkout) AsaasSubscription(ctx context.Context, user *auth.User, p *models.Profile, req CheckoutRequest) (string, error) {
	customerID, err := c.ensureAsaasCustomer(ctx, user, p, req)
	if err != nil {
		return "", err
	}
	sub, err := c.asaas.CreateSubscription(ctx, customerID, user.ID, c.plan)
	if err != nil {
		return "", fmt.Errorf("failed to create subscription: %w", err)
	}
	url, err := c.asaas.FirstSubscriptionInvoice(ctx, sub.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load subscription invoice: %w", err)
	}
	return url, nil
}

func (c *Checkout) StripeCheckout(ctx context.Context, user *auth.User, p *models.Profile) (string, error) {
	if c.stripe == nil {
		return "", ErrNotConfigured
	}
	customerID, err := c.ensureStripeCustomer(ctx, user, p)
	if err != nil {
		return "", err
	}
	session, err := c.stripe.CreateCheckoutSession(ctx, customerID, user.ID,
		c.feBaseURL+"/dashboard?checkout=success",
		c.feBaseURL+"/dashboard?checkout=cancel",
	)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

// GrantPro flips the entitlement after a verified payment. It reports whether
// a profile matched.
func (c *Checkout) GrantPro(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return c.customers.MarkVIP(ctx, userID, models.PlanPro)
}

func (c *Checkout) ensureAsaasCustomer(ctx context.Context, user *auth.User, p *models.Profile, req CheckoutRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if c.asaas == nil {
		return "", ErrNotConfigured
	}
	if p != nil && p.AsaasCustomerID != nil && *p.AsaasCustomerID != "" {
		return *p.AsaasCustomerID, nil
	}

	existing, err := c.asaas.FindCustomerByExternalReference(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to look up customer: %w", err)
	}
	if existing != nil {
		c.rememberAsaasCustomer(ctx, user.ID, existing.ID)
		return existing.ID, nil
	}

	name := user.FullName
	if name == "" {
		name = defaultCustomerName
	}
	created, err := c.asaas.CreateCustomer(ctx, AsaasCustomer{
		Name:              name,
		Email:             user.Email,
		CpfCnpj:           req.NormalizedTaxID(),
		ExternalReference: user.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	c.rememberAsaasCustomer(ctx, user.ID, created.ID)
	return created.ID, nil
}

func (c *Checkout) ensureStripeCustomer(ctx context.Context, user *auth.User, p *models.Profile) (string, error) {
	if p != nil && p.StripeCustomerID != nil && *p.StripeCustomerID != "" {
		return *p.StripeCustomerID, nil
	}
	if user.Email == "" {
		return "", ErrMissingUserData
	}
	customer, err := c.stripe.CreateCustomer(ctx, user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	if err := c.customers.SetStripeCustomerID(ctx, user.ID, customer.ID); err != nil {
		log.Warn().Err(err).Str("userID", user.ID).Msg("Failed to store Stripe customer id")
	}
	return customer.ID, nil
}

func (c *Checkout) rememberAsaasCustomer(ctx context.Context, userID, customerID string) {
	if err := c.customers.SetAsaasCustomerID(ctx, userID, customerID); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("Failed to store Asaas customer id")
	}
}
