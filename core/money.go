package core

import (
	"github.com/shopspring/decimal"
)

const monetaryPrecision int32 = 4 // 4 decimal places (0.0001 of a crore)

func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(monetaryPrecision)
}

func fromDecimal(d decimal.Decimal) float64 {
	f, _ := d.Round(monetaryPrecision).Float64()
	return f
}

// AddMoney returns a+b using decimal arithmetic at monetary precision.
func AddMoney(a, b float64) float64 {
	return fromDecimal(toDecimal(a).Add(toDecimal(b)))
}

// SubMoney returns a-b using decimal arithmetic at monetary precision.
func SubMoney(a, b float64) float64 {
	return fromDecimal(toDecimal(a).Sub(toDecimal(b)))
}

// MoneyCmp compares a and b at monetary precision: -1 if a<b, 0 if equal, +1 if a>b.
func MoneyCmp(a, b float64) int {
	return toDecimal(a).Cmp(toDecimal(b))
}

// Affordable reports whether amount fits within budget.
func Affordable(amount, budget float64) bool {
	return MoneyCmp(amount, budget) <= 0
}
