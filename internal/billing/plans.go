package billing

import (
	"fmt"
	"strings"
)

const (
	StripeMetadataPlan      = "techpost_plan"
	StripeMetadataPriceType = "techpost_price_type"
	StripePriceTypeOneTime  = "one_time"

	CurrencyBRL = "brl"
)

// Plan is the single paid offer. StripeProductID and StripePriceID are filled
// by SyncStripeCatalog when no price is configured.
type Plan struct {
	ID              string
	DisplayName     string
	Description     string
	PriceCents      int64
	Currency        string
	StripeProductID string
	StripePriceID   string
}

func ProPlan(priceCents int64) *Plan {
	return &Plan{
		ID:          "pro",
		DisplayName: "TechPost PRO",
		Description: "Acesso vitalício ao TechPost IA",
		PriceCents:  priceCents,
		Currency:    CurrencyBRL,
	}
}

// PriceReais returns the price as the decimal amount Asaas expects.
func (p *Plan) PriceReais() float64 {
	return float64(p.PriceCents) / 100
}

func (p *Plan) String() string {
	return fmt.Sprintf("%s (R$ %.2f)", p.DisplayName, p.PriceReais())
}

// PriceLabel formats the price the way it is shown to Brazilian buyers.
func (p *Plan) PriceLabel() string {
	return "R$ " + strings.Replace(fmt.Sprintf("%.2f", p.PriceReais()), ".", ",", 1)
}
