// Package entitlement decides whether an account may run another generation.
package entitlement

import (
	"errors"
	"fmt"

	"github.com/techpostia/techpost/internal/models"
)

// FreeLimit is the number of generations a non-VIP account gets.
const FreeLimit = 2

var ErrQuotaExceeded = errors.New("free generation limit reached")

type QuotaError struct {
	Limit int
	Used  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: used %d of %d", ErrQuotaExceeded, e.Used, e.Limit)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// Check returns nil when the profile may generate. A missing profile is
// allowed.
func Check(p *models.Profile) error {
	if p == nil || p.IsVIP || p.UsageCount < FreeLimit {
		return nil
	}
	return &QuotaError{Limit: FreeLimit, Used: p.UsageCount}
}

// Remaining reports how many free generations are left, or -1 for VIP.
func Remaining(p *models.Profile) int {
	if p == nil {
		return FreeLimit
	}
	if p.IsVIP {
		return -1
	}
	if left := FreeLimit - p.UsageCount; left > 0 {
		return left
	}
	return 0
}
