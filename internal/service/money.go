package service

import "github.com/shopspring/decimal"

// roundTo rounds half away from zero to the given number of decimal places
func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// roundWhole rounds a currency amount to whole units
func roundWhole(v float64) float64 {
	return roundTo(v, 0)
}

func roundInt(v float64) int {
	return int(decimal.NewFromFloat(v).Round(0).IntPart())
}
