package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JurisdictionRates holds the sales tax and cannabis excise tax rates
// for one jurisdiction.
type JurisdictionRates struct {
	TaxRate    decimal.Decimal
	ExciseRate decimal.Decimal
}

// RateTable resolves tax rates per dispensary, falling back to the
// configured defaults. Rates are injected configuration, never
// hard-coded per dispensary.
type RateTable struct {
	defaults  JurisdictionRates
	overrides map[uuid.UUID]JurisdictionRates
}

// NewRateTable parses decimal rate strings (e.g. "0.08875") into a
// RateTable.
func NewRateTable(defaultTax, defaultExcise string, overrides map[string]struct{ Tax, Excise string }) (*RateTable, error) {
	defaults, err := parseRates(defaultTax, defaultExcise)
	if err != nil {
		return nil, fmt.Errorf("default rates: %w", err)
	}

	table := &RateTable{
		defaults:  defaults,
		overrides: make(map[uuid.UUID]JurisdictionRates, len(overrides)),
	}
	for key, rates := range overrides {
		dispensaryID, err := uuid.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("rate override key %q: %w", key, err)
		}
		parsed, err := parseRates(rates.Tax, rates.Excise)
		if err != nil {
			return nil, fmt.Errorf("rate override %q: %w", key, err)
		}
		table.overrides[dispensaryID] = parsed
	}
	return table, nil
}

func parseRates(tax, excise string) (JurisdictionRates, error) {
	taxRate, err := decimal.NewFromString(tax)
	if err != nil {
		return JurisdictionRates{}, fmt.Errorf("tax rate %q: %w", tax, err)
	}
	exciseRate, err := decimal.NewFromString(excise)
	if err != nil {
		return JurisdictionRates{}, fmt.Errorf("excise rate %q: %w", excise, err)
	}
	return JurisdictionRates{TaxRate: taxRate, ExciseRate: exciseRate}, nil
}

// RatesFor returns the rates for a dispensary.
func (t *RateTable) RatesFor(dispensaryID uuid.UUID) JurisdictionRates {
	if rates, ok := t.overrides[dispensaryID]; ok {
		return rates
	}
	return t.defaults
}

// Totals is the monetary breakdown of an order, in integer cents.
type Totals struct {
	SubtotalCents  int64
	TaxCents       int64
	ExciseTaxCents int64
	DiscountCents  int64
	TotalCents     int64
}

// CalculateTotals computes sales tax and excise tax on the subtotal
// with half-up rounding to whole cents. Pure function.
func CalculateTotals(subtotalCents int64, rates JurisdictionRates) Totals {
	subtotal := decimal.NewFromInt(subtotalCents)
	// decimal.Round rounds half away from zero, which is half-up for
	// the non-negative amounts handled here.
	tax := subtotal.Mul(rates.TaxRate).Round(0).IntPart()
	excise := subtotal.Mul(rates.ExciseRate).Round(0).IntPart()
	return Totals{
		SubtotalCents:  subtotalCents,
		TaxCents:       tax,
		ExciseTaxCents: excise,
		DiscountCents:  0,
		TotalCents:     subtotalCents + tax + excise,
	}
}
