package calculator

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// resultPlaces is the number of decimal places results are rounded to before
// rendering, which hides binary floating-point noise such as 0.1+0.2.
const resultPlaces = 10

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// FormatResult rounds v to ten decimal places and renders it in its shortest
// decimal form. Magnitudes of 1e21 and above, or below 1e-6, use exponent
// notation ("1e+21", "1e-7").
func FormatResult(v float64) string {
	return formatNumber(roundPlaces(v, resultPlaces))
}

// roundPlaces rounds v to places decimals with ties going away from zero,
// judged on the exact binary value of v.
func roundPlaces(v float64, places int) float64 {
	if !IsFinite(v) || math.Abs(v) >= 1e21 {
		return v
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)

	r := new(big.Rat).SetFloat64(math.Abs(v))
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	rounded, _ := new(big.Rat).SetFrac(n, scale).Float64()
	return math.Copysign(rounded, v)
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// strconv pads the exponent to two digits ("1e-07"); trim it back.
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// ParseOperand reads the longest leading numeral of s ("3." is 3, "12 apples"
// is 12). Text without a numeric prefix yields NaN.
func ParseOperand(s string) float64 {
	prefix := numericPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(prefix, "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
