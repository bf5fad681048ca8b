package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
)

type rates struct {
	UnitRateCents int
	ShippingCents int
	Currency      string
}

// resolveRates prefers the stored settings row and falls back to config
// defaults when no row exists yet.
func (s *service) resolveRates(ctx context.Context) (rates, error) {
	settings, err := s.repo.GetBillingSettings(ctx)
	if err != nil {
		return rates{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load billing settings")
	}
	if settings == nil {
		return rates{
			UnitRateCents: s.cfg.DefaultUnitRateCents,
			ShippingCents: s.cfg.DefaultShippingCents,
			Currency:      s.cfg.Currency,
		}, nil
	}
	currency := settings.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	return rates{
		UnitRateCents: settings.UnitRateCents,
		ShippingCents: settings.ShippingCents,
		Currency:      currency,
	}, nil
}

// ParseRateCents converts a human-entered dollar amount ("25.00") to cents.
func ParseRateCents(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("rate is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: %w", value, err)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("rate must not be negative")
	}
	cents := amount.Mul(decimal.NewFromInt(100))
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("rate %q has sub-cent precision", value)
	}
	return int(cents.IntPart()), nil
}
