package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var gst = decimal.RequireFromString("0.06")

func TestFormat(t *testing.T) {
	tests := []struct {
		pence int64
		want  string
	}{
		{0, "£0.00"},
		{5, "£0.05"},
		{100, "£1.00"},
		{450, "£4.50"},
		{123456, "£1234.56"},
		{-70, "-£0.70"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.pence))
	}
}

func TestSubtotal(t *testing.T) {
	assert.Zero(t, Subtotal(nil))
	assert.Zero(t, Subtotal([]Line{}))

	lines := []Line{
		{UnitPricePence: 100, Quantity: 2},
		{UnitPricePence: 250, Quantity: 1},
	}
	assert.Equal(t, int64(450), Subtotal(lines))

	// Order independent.
	reversed := []Line{lines[1], lines[0]}
	assert.Equal(t, Subtotal(lines), Subtotal(reversed))
}

func TestTax(t *testing.T) {
	// 6% of 520 = 31.2 -> 31
	assert.Equal(t, int64(31), Tax(520, gst))
	// 6% of 450 = 27.0 -> 27
	assert.Equal(t, int64(27), Tax(450, gst))
	// 6% of 425 = 25.5 -> rounds half away from zero
	assert.Equal(t, int64(26), Tax(425, gst))

	assert.Zero(t, Tax(0, gst))
	assert.Zero(t, Tax(1000, decimal.Zero))
}

func TestTotal_ReferenceScenario(t *testing.T) {
	// Basket: 2 x 100p + 1 x 250p, bag opted in at 70p.
	lines := []Line{
		{UnitPricePence: 100, Quantity: 2},
		{UnitPricePence: 250, Quantity: 1},
	}
	subtotal := Subtotal(lines)
	assert.Equal(t, int64(450), subtotal)

	bagFee := int64(70)
	tax := Tax(subtotal+bagFee, gst)
	assert.Equal(t, int64(31), tax) // round(0.06 * 520)

	assert.Equal(t, int64(551), Total(subtotal, bagFee, tax))
}

func TestTotal_MonotonicInSubtotal(t *testing.T) {
	prev := int64(-1)
	for subtotal := int64(0); subtotal <= 2000; subtotal += 37 {
		total := Total(subtotal, 70, Tax(subtotal+70, gst))
		assert.GreaterOrEqual(t, total, prev)
		prev = total
	}
}
