// Package pricing computes line and document amounts (HT, TVA, TTC).
// All functions are pure; rounding is round-half-up and only happens where noted.
package pricing

import "github.com/shopspring/decimal"

// DefaultTaxRate is applied to a new line when no rate is supplied (percent).
var DefaultTaxRate = decimal.RequireFromString("20.00")

var hundred = decimal.NewFromInt(100)

// Amounts are the computed totals of one line.
type Amounts struct {
	HT  decimal.Decimal
	TTC decimal.Decimal
}

// TVA is the tax part of the line.
func (a Amounts) TVA() decimal.Decimal { return a.TTC.Sub(a.HT) }

// Line computes a line's totals. HT keeps full precision; the tax coefficient is
// rounded to 4 decimals and TTC to 2. An absent rate means TTC equals HT.
// Callers guarantee quantity > 0 and unitPriceHT >= 0.
func Line(unitPriceHT decimal.Decimal, quantity int, taxRate decimal.NullDecimal) Amounts {
	ht := unitPriceHT.Mul(decimal.NewFromInt(int64(quantity)))
	if !taxRate.Valid {
		return Amounts{HT: ht, TTC: ht}
	}
	coef := decimal.NewFromInt(1).Add(taxRate.Decimal.DivRound(hundred, 4))
	return Amounts{HT: ht, TTC: ht.Mul(coef).Round(2)}
}

// Totals are the document-level sums.
type Totals struct {
	HT  decimal.Decimal
	TVA decimal.Decimal
	TTC decimal.Decimal
}

// Recalculator is a line able to refresh its own amounts.
type Recalculator interface {
	Recalculate() Amounts
}

// Recompute refreshes every line then sums them from zero. The slice must be the
// document's complete current line list.
func Recompute(lines []Recalculator) Totals {
	t := Totals{HT: decimal.Zero, TVA: decimal.Zero, TTC: decimal.Zero}
	for _, l := range lines {
		a := l.Recalculate()
		t.HT = t.HT.Add(a.HT)
		t.TVA = t.TVA.Add(a.TVA())
		t.TTC = t.TTC.Add(a.TTC)
	}
	return t
}
