package algo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		q        float64
		expected float64
	}{
		{"empty", nil, P75Fraction, 0},
		{"single", []float64{42}, P75Fraction, 42},
		{"pair interpolates", []float64{10, 30}, P75Fraction, 25},
		{"unsorted input", []float64{30, 10}, P75Fraction, 25},
		{"exact rank", []float64{1, 2, 3, 4, 5}, P75Fraction, 4},
		{"four values", []float64{1440, 2880, 4320, 1440}, P75Fraction, 3240},
		{"median", []float64{1, 2, 3, 4}, 0.5, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(tt.values, tt.q), 1e-9)
		})
	}
}

func TestPercentileDoesNotMutate(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Percentile(values, P75Fraction)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSampleStdev(t *testing.T) {
	// Days 1, 2, 4, 7 give gaps of 1, 2 and 3 days.
	values := []float64{1440, 2880, 4320}
	mean := (1440.0 + 2880.0 + 4320.0) / 3
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	closedForm := math.Sqrt(ss / 2)
	population := math.Sqrt(ss / 3)

	got := SampleStdev(values)
	assert.InDelta(t, closedForm, got, 1e-9)
	assert.Equal(t, int64(1440), RoundInt(got))
	assert.NotEqual(t, RoundInt(population), RoundInt(got))

	assert.Equal(t, 0.0, SampleStdev([]float64{5}))
	assert.Equal(t, 0.0, SampleStdev([]float64{7, 7, 7}))
}

func TestKahanSum(t *testing.T) {
	assert.Equal(t, 0.0, KahanSum(nil))
	assert.Equal(t, 6.0, KahanSum([]float64{1, 2, 3}))
	// Naive summation loses the small terms entirely.
	assert.Equal(t, 2.0, KahanSum([]float64{1, 1e100, 1, -1e100}))
}

func TestRounding(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		places   int
		expected float64
	}{
		{"exact tie rounds away", 0.125, 2, 0.13},
		{"negative exact tie rounds away", -0.125, 2, -0.13},
		{"repeating minutes", 1000.0 / 60.0, 2, 16.67},
		{"repeating rate", 100.0 / 3.0, 1, 33.3},
		{"average just below tie", (10.0 + 10.27) / 2, 2, 10.13},
		{"rate just below tie", 100.0 * 3 / 2000, 1, 0.1},
		{"large average", 26589.67 / 2, 2, 13294.83},
		{"small magnitude", 0.004, 2, 0},
		{"whole places", 2.5, 0, 3},
		{"already rounded", 42.5, 1, 42.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundTo(tt.x, tt.places))
		})
	}

	assert.Equal(t, int64(3), RoundInt(2.5))
	assert.Equal(t, int64(-3), RoundInt(-2.5))
	assert.Equal(t, int64(2), RoundInt(2.4999))
	assert.Equal(t, int64(25), RoundInt(Percentile([]float64{10, 30}, P75Fraction)))
}

// TestRoundToBelowTieProduct covers values whose product with the scale is a
// tie in floating point although the value itself is below the tie.
func TestRoundToBelowTieProduct(t *testing.T) {
	x := (10.0 + 10.27) / 2
	assert.Equal(t, 1013.5, x*100)
	assert.Equal(t, 10.13, RoundTo(x, 2))
}
