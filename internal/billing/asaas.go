package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultAsaasURL = "https://sandbox.asaas.com/api/v3"

	AsaasEventPaymentReceived  = "PAYMENT_RECEIVED"
	AsaasEventPaymentConfirmed = "PAYMENT_CONFIRMED"

	billingTypeUndefined = "UNDEFINED"
	cycleMonthly         = "MONTHLY"
	asaasDateLayout      = "2006-01-02"
)

var ErrNoInvoice = errors.New("asaas returned no invoice url")

// AsaasError is a rejection reported by the gateway. Description is safe to
// show to the payer.
type AsaasError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *AsaasError) Error() string {
	return fmt.Sprintf("asaas error %d (%s): %s", e.StatusCode, e.Code, e.Description)
}

type asaasErrorBody struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

type AsaasCustomer struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	CpfCnpj           string `json:"cpfCnpj"`
	ExternalReference string `json:"externalReference"`
}

type AsaasPayment struct {
	ID                string  `json:"id,omitempty"`
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	DueDate           string  `json:"dueDate"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"externalReference"`
	PostalService     bool    `json:"postalService"`
	InvoiceURL        string  `json:"invoiceUrl,omitempty"`
}

type AsaasSubscription struct {
	ID                string  `json:"id,omitempty"`
	Customer          string  `json:"customer"`
	BillingType       string  `json:"billingType"`
	Value             float64 `json:"value"`
	NextDueDate       string  `json:"nextDueDate"`
	Cycle             string  `json:"cycle"`
	Description       string  `json:"description"`
	ExternalReference string  `json:"externalReference"`
}

type asaasList[T any] struct {
	Data []T `json:"data"`
}

// AsaasWebhookEvent is the body Asaas posts to the webhook.
type AsaasWebhookEvent struct {
	Event   string `json:"event"`
	Payment struct {
		ID                string `json:"id"`
		ExternalReference string `json:"externalReference"`
		Status            string `json:"status"`
	} `json:"payment"`
}

// GrantsAccess reports whether the event confirms money was received.
func (e AsaasWebhookEvent) GrantsAccess() bool {
	return e.Event == AsaasEventPaymentReceived || e.Event == AsaasEventPaymentConfirmed
}

type AsaasClient struct {
	http *resty.Client
	now  func() time.Time
}

func NewAsaasClient(baseURL, apiKey string) *AsaasClient {
	if baseURL == "" {
		baseURL = DefaultAsaasURL
	}
	return &AsaasClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(20*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("User-Agent", "techpost-backend").
			SetHeader("access_token", apiKey),
		now: time.Now,
	}
}

func (c *AsaasClient) FindCustomerByExternalReference(ctx context.Context, ref string) (*AsaasCustomer, error) {
	var list asaasList[AsaasCustomer]
	if err := c.do(ctx, "GET", "/customers", map[string]string{"externalReference": ref}, nil, &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	return &list.Data[0], nil
}

func (c *AsaasClient) CreateCustomer(ctx context.Context, customer AsaasCustomer) (*AsaasCustomer, error) {
	var out AsaasCustomer
	if err := c.do(ctx, "POST", "/customers", nil, customer, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePayment creates a one-time charge due today with the payment method
// left to the payer.
func (c *AsaasClient) CreatePayment(ctx context.Context, customerID, userID string, plan *Plan) (*AsaasPayment, error) {
	req := AsaasPayment{
		Customer:          customerID,
		BillingType:       billingTypeUndefined,
		Value:             plan.PriceReais(),
		DueDate:           c.now().Format(asaasDateLayout),
		Description:       plan.Description,
		ExternalReference: userID,
	}
	var out AsaasPayment
	if err := c.do(ctx, "POST", "/payments", nil, req, &out); err != nil {
		return nil, err
	}
	if out.InvoiceURL == "" {
		return nil, ErrNoInvoice
	}
	return &out, nil
}

func (c *AsaasClient) CreateSubscription(ctx context.Context, customerID, userID string, plan *Plan) (*AsaasSubscription, error) {
	req := AsaasSubscription{
		Customer:          customerID,
		BillingType:       billingTypeUndefined,
		Value:             plan.PriceReais(),
		NextDueDate:       c.now().Format(asaasDateLayout),
		Cycle:             cycleMonthly,
		Description:       plan.Description,
		ExternalReference: userID,
	}
	var out AsaasSubscription
	if err := c.do(ctx, "POST", "/subscriptions", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FirstSubscriptionInvoice returns the invoice url of the subscription's first
// generated payment.
func (c *AsaasClient) FirstSubscriptionInvoice(ctx context.Context, subscriptionID string) (string, error) {
	var list asaasList[AsaasPayment]
	if err := c.do(ctx, "GET", "/subscriptions/"+subscriptionID+"/payments", nil, nil, &list); err != nil {
		return "", err
	}
	for _, p := range list.Data {
		if p.InvoiceURL != "" {
			return p.InvoiceURL, nil
		}
	}
	return "", ErrNoInvoice
}

func (c *AsaasClient) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("asaas %s %s failed: %w", method, path, err)
	}

	if resp.IsError() {
		var eb asaasErrorBody
		if json.Unmarshal(resp.Body(), &eb) == nil && len(eb.Errors) > 0 {
			return &AsaasError{
				StatusCode:  resp.StatusCode(),
				Code:        eb.Errors[0].Code,
				Description: eb.Errors[0].Description,
			}
		}
		return &AsaasError{StatusCode: resp.StatusCode(), Description: resp.Status()}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode asaas response: %w", err)
	}
	return nil
}
