package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v84"
)

// SyncStripeCatalog makes sure a product and a one-time price exist for the
// plan and stores their ids on it. A plan that already has a price id is left
// untouched.
func (b *StripeClient) SyncStripeCatalog(ctx context.Context) error {
	if b.plan.StripePriceID != "" {
		return nil
	}

	products, err := b.listActiveProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}
	productID, err := b.ensureProduct(ctx, products)
	if err != nil {
		return err
	}

	prices, err := b.listActivePrices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list prices: %w", err)
	}
	priceID, err := b.ensurePrice(ctx, productID, prices)
	if err != nil {
		return err
	}

	b.plan.StripeProductID = productID
	b.plan.StripePriceID = priceID
	log.Info().
		Str("plan", b.plan.ID).
		Str("product", productID).
		Str("price", priceID).
		Msg("Stripe catalog synced")
	return nil
}

func (b *StripeClient) listActiveProducts(ctx context.Context) ([]*stripe.Product, error) {
	var products []*stripe.Product
	for p, err := range b.sc.V1Products.List(ctx, &stripe.ProductListParams{Active: stripe.Bool(true)}) {
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (b *StripeClient) listActivePrices(ctx context.Context) ([]*stripe.Price, error) {
	var prices []*stripe.Price
	for p, err := range b.sc.V1Prices.List(ctx, &stripe.PriceListParams{Active: stripe.Bool(true)}) {
		if err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, nil
}

func findProduct(products []*stripe.Product, planID string) string {
	for _, p := range products {
		if p.Metadata[StripeMetadataPlan] == planID {
			return p.ID
		}
	}
	return ""
}

// findPrice matches on amount and currency too, so a price change in config
// creates a new price instead of reusing the old one.
func findPrice(prices []*stripe.Price, productID string, plan *Plan) string {
	for _, p := range prices {
		if p.Product == nil || p.Product.ID != productID {
			continue
		}
		if p.Metadata[StripeMetadataPriceType] != StripePriceTypeOneTime {
			continue
		}
		if p.UnitAmount == plan.PriceCents && string(p.Currency) == plan.Currency {
			return p.ID
		}
	}
	return ""
}

func (b *StripeClient) ensureProduct(ctx context.Context, products []*stripe.Product) (string, error) {
	if id := findProduct(products, b.plan.ID); id != "" {
		return id, nil
	}
	params := &stripe.ProductCreateParams{
		Name:        stripe.String(b.plan.DisplayName),
		Description: stripe.String(b.plan.Description),
		Metadata: map[string]string{
			StripeMetadataPlan: b.plan.ID,
		},
	}
	product, err := b.sc.V1Products.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return product.ID, nil
}

func (b *StripeClient) ensurePrice(ctx context.Context, productID string, prices []*stripe.Price) (string, error) {
	if id := findPrice(prices, productID, b.plan); id != "" {
		return id, nil
	}
	params := &stripe.PriceCreateParams{
		Product:    stripe.String(productID),
		Currency:   stripe.String(b.plan.Currency),
		UnitAmount: stripe.Int64(b.plan.PriceCents),
		Metadata: map[string]string{
			StripeMetadataPriceType: StripePriceTypeOneTime,
			StripeMetadataPlan:      b.plan.ID,
		},
	}
	price, err := b.sc.V1Prices.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create price: %w", err)
	}
	return price.ID, nil
}
