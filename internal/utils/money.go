package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 rounds half-up on value*100, matching how money and percentages
// are presented everywhere in the API.
func Round2(v float64) float64 {
	d := decimal.NewFromFloat(v).Mul(hundred).Add(decimal.NewFromFloat(0.5)).Floor().Div(hundred)
	f, _ := d.Float64()
	return f
}

// FormatMoney prefixes a currency symbol to an amount with at most two decimals.
func FormatMoney(symbol string, v float64) string {
	return symbol + decimal.NewFromFloat(v).Round(2).String()
}

// SumMoney adds amounts in decimal space to avoid float drift.
func SumMoney(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}
