package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAsaas(t *testing.T, h http.HandlerFunc) *AsaasClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewAsaasClient(srv.URL, "key-123")
	c.now = func() time.Time { return time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC) }
	return c
}

func TestAsaasCreatePayment(t *testing.T) {
	var got AsaasPayment
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("access_token") != "key-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"id":"pay_1","invoiceUrl":"https://asaas.test/i/pay_1"}`)
	})

	p, err := c.CreatePayment(context.Background(), "cus_1", "user-1", ProPlan(1490))
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if p.InvoiceURL != "https://asaas.test/i/pay_1" {
		t.Fatalf("invoice = %q", p.InvoiceURL)
	}
	if got.Customer != "cus_1" || got.BillingType != "UNDEFINED" || got.Value != 14.90 ||
		got.DueDate != "2025-03-09" || got.ExternalReference != "user-1" {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestAsaasErrorDescription(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"errors":[{"code":"invalid_cpfCnpj","description":"O CPF informado é inválido."}]}`)
	})

	_, err := c.CreateCustomer(context.Background(), AsaasCustomer{Name: "Ada", CpfCnpj: "1"})
	var ae *AsaasError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AsaasError, got %v", err)
	}
	if ae.StatusCode != 400 || ae.Code != "invalid_cpfCnpj" || ae.Description != "O CPF informado é inválido." {
		t.Fatalf("unexpected error %+v", ae)
	}
}

func TestAsaasFindCustomer(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("externalReference") == "known" {
			fmt.Fprint(w, `{"data":[{"id":"cus_9","name":"Ada"}]}`)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	})

	cus, err := c.FindCustomerByExternalReference(context.Background(), "known")
	if err != nil || cus == nil || cus.ID != "cus_9" {
		t.Fatalf("got %+v, %v", cus, err)
	}
	cus, err = c.FindCustomerByExternalReference(context.Background(), "unknown")
	if err != nil || cus != nil {
		t.Fatalf("expected no customer, got %+v, %v", cus, err)
	}
}

func TestAsaasSubscriptionInvoice(t *testing.T) {
	var sub AsaasSubscription
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/subscriptions":
			json.NewDecoder(r.Body).Decode(&sub)
			fmt.Fprint(w, `{"id":"sub_1"}`)
		case "/subscriptions/sub_1/payments":
			fmt.Fprint(w, `{"data":[{"id":"pay_1","invoiceUrl":"https://asaas.test/i/first"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	s, err := c.CreateSubscription(context.Background(), "cus_1", "user-1", ProPlan(1490))
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.Cycle != "MONTHLY" || sub.NextDueDate != "2025-03-09" {
		t.Fatalf("unexpected subscription body %+v", sub)
	}
	url, err := c.FirstSubscriptionInvoice(context.Background(), s.ID)
	if err != nil || url != "https://asaas.test/i/first" {
		t.Fatalf("got %q, %v", url, err)
	}
}

func TestAsaasWebhookEventGrantsAccess(t *testing.T) {
	for event, want := range map[string]bool{
		"PAYMENT_RECEIVED":  true,
		"PAYMENT_CONFIRMED": true,
		"PAYMENT_CREATED":   false,
		"PAYMENT_OVERDUE":   false,
	} {
		if got := (AsaasWebhookEvent{Event: event}).GrantsAccess(); got != want {
			t.Errorf("GrantsAccess(%s) = %v, want %v", event, got, want)
		}
	}
}
