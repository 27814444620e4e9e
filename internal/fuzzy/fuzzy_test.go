package fuzzy

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestIndelRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 100},
		{"abc", "abc", 100},
		{"abcd", "abce", 75},
		{"abc", "", 0},
		{"100", "109", 66.67},
	}
	for _, tt := range tests {
		if got := ratio(tt.a, tt.b); !almostEqual(got, tt.want) {
			t.Errorf("ratio(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "123 MAIN", "123 MAIN", 100},
		{"order independent", "MAIN 123", "123 MAIN", 100},
		{"subset", "123 MAIN ST", "123 MAIN", 100},
		{"duplicates ignored", "123 MAIN MAIN", "123 MAIN", 100},
		{"one digit apart", "100 MAIN", "109 MAIN", 87.5},
		{"different street", "4500 MAIN", "4500 MAPLE", 73.68},
		{"no shared tokens", "123 MAIN", "125 OAK", 53.33},
		{"empty side", "", "123 MAIN", 0},
		{"blank side", "   ", "123 MAIN", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenSetRatio(tt.a, tt.b); !almostEqual(got, tt.want) {
				t.Errorf("TokenSetRatio(%q, %q) = %.2f, want %.2f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTokenSetRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"1200 W FULLERTON", "1202 FULLERTON"},
		{"3500 N KEDZIE", "3510 KEDZIE"},
		{"10 OAK", "19 OAKLEY"},
	}
	for _, p := range pairs {
		if ab, ba := TokenSetRatio(p[0], p[1]), TokenSetRatio(p[1], p[0]); !almostEqual(ab, ba) {
			t.Errorf("TokenSetRatio not symmetric for %q/%q: %.2f vs %.2f", p[0], p[1], ab, ba)
		}
	}
}

func TestIndelDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"kitten", "sitting", 5},
		{"MAIN", "MAPLE", 5},
		{"abc", "abc", 0},
	}
	for _, tt := range tests {
		if got := indelDistance([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("indelDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
