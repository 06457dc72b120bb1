package services

import (
	"context"
	"sync"

	"github.com/techpostia/techpost/internal/logging"
)

type ITokenTracker interface {
	AddTokens(ctx context.Context, model string, tknIn, tknOut int)
}

type TokenTotals struct {
	In  int
	Out int
}

// TokenTracker keeps running per-model token totals and copies the counts of
// each call onto the request's wide event.
type TokenTracker struct {
	mu     sync.RWMutex
	totals map[string]TokenTotals
}

func NewTokenTracker() *TokenTracker {
	return &TokenTracker{totals: make(map[string]TokenTotals)}
}

func (t *TokenTracker) AddTokens(ctx context.Context, model string, tknIn, tknOut int) {
	t.mu.Lock()
	cur := t.totals[model]
	cur.In += tknIn
	cur.Out += tknOut
	t.totals[model] = cur
	t.mu.Unlock()

	logging.EnrichMetadata(ctx, "tokens_in", tknIn)
	logging.EnrichMetadata(ctx, "tokens_out", tknOut)
}

func (t *TokenTracker) Totals(model string) TokenTotals {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[model]
}
