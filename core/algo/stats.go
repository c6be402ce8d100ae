// Package algo has the numeric building blocks shared by the in-memory metrics.
//
// Every formula here mirrors the one the relational queries use, so both
// engines round the same way. Rounding is half away from zero, which is what
// SQL ROUND does for the values these metrics produce.
package algo

import (
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// P75Fraction is the percentile rank used for bucket statistics.
const P75Fraction = 0.75

const (
	// maxFractional is 2^52. Larger doubles are integers already.
	maxFractional = 4503599627370496.0

	// exactPrec holds any double times a small power of ten without loss.
	exactPrec = 256
)

// KahanSum adds values with Kahan-Babuska-Neumaier compensation, the same
// scheme SQLite applies to floating SUM aggregates.
func KahanSum(values []float64) float64 {
	var sum, comp float64
	for _, v := range values {
		t := sum + v
		if math.Abs(sum) > math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}
		sum = t
	}
	return sum + comp
}

// RoundTo rounds the exact binary value of x to the given number of decimal
// places, half away from zero, as SQLite ROUND does. Scaling x by a power of
// ten first would round the product instead, which turns 10.1349999... into
// the tie 1013.5.
func RoundTo(x float64, places int) float64 {
	if places < 0 || math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > maxFractional {
		return x
	}

	scaled := new(big.Float).SetPrec(exactPrec).SetFloat64(math.Abs(x))
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	scaled.Mul(scaled, new(big.Float).SetPrec(exactPrec).SetInt(pow))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(exactPrec).Sub(scaled, new(big.Float).SetPrec(exactPrec).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		whole.Add(whole, big.NewInt(1))
	}

	digits := whole.String()
	if places > 0 {
		if len(digits) <= places {
			digits = strings.Repeat("0", places-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-places] + "." + digits[len(digits)-places:]
	}
	if x < 0 && whole.Sign() != 0 {
		digits = "-" + digits
	}
	r, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return x
	}
	return r
}

// RoundInt rounds x to the nearest integer, half away from zero, using the
// add-one-half-and-truncate step of SQLite ROUND(x, 0).
func RoundInt(x float64) int64 {
	if math.Abs(x) > maxFractional {
		return int64(x)
	}
	if x < 0 {
		return -int64(-x + 0.5)
	}
	return int64(x + 0.5)
}

// Percentile returns the linearly interpolated percentile of values at rank
// fraction q in [0, 1]. The input is not modified.
func Percentile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}

	idx := float64(n-1) * q
	lo := math.Floor(idx)
	frac := idx - lo
	loVal := sorted[int(lo)]
	hiVal := loVal
	if int(lo)+1 < n {
		hiVal = sorted[int(lo)+1]
	}
	// Explicit conversions keep the compiler from fusing into FMA.
	return float64((1.0-frac)*loVal) + float64(frac*hiVal)
}

// SampleStdev returns the Bessel-corrected standard deviation of values.
// It uses the sum and sum-of-squares form and clamps the variance at zero.
func SampleStdev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	squares := make([]float64, n)
	for i, v := range values {
		squares[i] = float64(v * v)
	}
	s := KahanSum(values)
	s2 := KahanSum(squares)
	variance := (s2 - s*s/float64(n)) / float64(n-1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
