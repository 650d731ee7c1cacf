package textmatch

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"hola", "", 0.0},
		{"", "hola", 0.0},
		{"hola", "hola", 1.0},
		// longest match "bcd" (3) -> 2*3/8
		{"abcd", "bcde", 0.75},
		{"pago", "pagos", 2.0 * 4.0 / 9.0},
	}

	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Fatalf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

// Matching blocks anchor on the first argument, so the score is
// order-dependent, like difflib's SequenceMatcher. Callers always pass
// (message, candidate); these values pin that fixed-order contract.
func TestRatioOrderDependent(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		// only 'i' survives the leftmost-match recursion
		{"internet lento", "velocidad", 2.0 / 23.0},
		// reversed, 'e', 'l' and 'o' all match
		{"velocidad", "internet lento", 6.0 / 23.0},
		// a full substring scores the same either way
		{"como pago mi deuda", "pago", 2.0 * 4.0 / 22.0},
		{"pago", "como pago mi deuda", 2.0 * 4.0 / 22.0},
	}

	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Fatalf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	r := Ratio("factura de internet", "quiero pagar mi factura")
	if r < 0 || r > 1 {
		t.Fatalf("Ratio out of bounds: %v", r)
	}
	if r == 0 {
		t.Fatal("expected partial overlap to produce a positive score")
	}
}
