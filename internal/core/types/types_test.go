package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestQuantityString(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"whole units", NewQuantityFromInt(10), "10.0000"},
		{"fraction", NewQuantityFromFloat64(2.5), "2.5000"},
		{"four digits", NewQuantityFromInt64Scaled(12345), "1.2345"},
		{"zero", 0, "0.0000"},
		{"negative", NewQuantityFromFloat64(-0.25), "-0.2500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Quantity
		wantErr bool
	}{
		{"number", `2.5`, NewQuantityFromFloat64(2.5), false},
		{"string", `"2.5"`, NewQuantityFromFloat64(2.5), false},
		{"integer", `10`, NewQuantityFromInt(10), false},
		{"negative", `-1.25`, NewQuantityFromFloat64(-1.25), false},
		{"null", `null`, 0, false},
		{"garbage", `"abc"`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			err := json.Unmarshal([]byte(tt.input), &q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && q != tt.want {
				t.Errorf("got %d, want %d", q, tt.want)
			}
		})
	}
}

func TestQuantityMul(t *testing.T) {
	// 2.5 per unit, 4 units produced
	per := NewQuantityFromFloat64(2.5)
	units := NewQuantityFromInt(4)
	if got := per.Mul(units); got != NewQuantityFromInt(10) {
		t.Errorf("2.5 * 4 = %s, want 10.0000", got)
	}

	// fractional both sides
	if got := NewQuantityFromFloat64(0.5).Mul(NewQuantityFromFloat64(0.5)); got != NewQuantityFromFloat64(0.25) {
		t.Errorf("0.5 * 0.5 = %s, want 0.2500", got)
	}
}

func TestQuantityMulLargeValues(t *testing.T) {
	// The scaled intermediate of 3e6 * 3e6 units exceeds int64; the result
	// itself does not and must come out exact, not wrapped.
	big := NewQuantityFromInt(3_000_000)
	if got, want := big.Mul(big), NewQuantityFromInt(9_000_000_000_000); got != want {
		t.Errorf("3e6 * 3e6 = %s, want %s", got, want)
	}

	// Results beyond the representable range clamp instead of wrapping.
	huge := NewQuantityFromInt64Scaled(math.MaxInt64)
	if got := huge.Mul(NewQuantityFromInt(2)); got != Quantity(math.MaxInt64) {
		t.Errorf("overflow = %d, want clamp to MaxInt64", got)
	}
	if got := huge.Mul(NewQuantityFromInt(-2)); got != Quantity(math.MinInt64) {
		t.Errorf("negative overflow = %d, want clamp to MinInt64", got)
	}
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(2.5)
	price := NewMoneyFromInt(10_000)
	if got := price.Mul(q.Decimal()); !got.Equal(NewMoneyFromInt(25_000)) {
		t.Errorf("10000 * 2.5 = %s, want 25000", got)
	}
}
