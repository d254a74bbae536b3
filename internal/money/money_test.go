package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestApportion(t *testing.T) {
	tests := []struct {
		name    string
		target  int64
		weights []Weight
		want    map[string]int64
	}{
		{
			name:   "even two-way split",
			target: 3198,
			weights: []Weight{
				{UserID: "A", Weight: dec("1")},
				{UserID: "B", Weight: dec("1")},
			},
			want: map[string]int64{"A": 1599, "B": 1599},
		},
		{
			name:   "leftover cent goes to largest share",
			target: 100,
			weights: []Weight{
				{UserID: "A", Weight: dec("2")},
				{UserID: "B", Weight: dec("1")},
			},
			// raw: A=66.67 -> 67, B=33.33 -> 33
			want: map[string]int64{"A": 67, "B": 33},
		},
		{
			name:   "three-way tie repairs at lowest user id",
			target: 100,
			weights: []Weight{
				{UserID: "C", Weight: dec("1")},
				{UserID: "A", Weight: dec("1")},
				{UserID: "B", Weight: dec("1")},
			},
			// raw 33.33 each rounds to 33; missing cent goes to A.
			want: map[string]int64{"A": 34, "B": 33, "C": 33},
		},
		{
			name:   "negative drift taken from largest share",
			target: 1,
			weights: []Weight{
				{UserID: "A", Weight: dec("1")},
				{UserID: "B", Weight: dec("1")},
			},
			// raw 0.5 each rounds up to 1; A gives the extra cent back.
			want: map[string]int64{"A": 0, "B": 1},
		},
		{
			name:   "zero target",
			target: 0,
			weights: []Weight{
				{UserID: "A", Weight: dec("3")},
				{UserID: "B", Weight: dec("1")},
			},
			want: map[string]int64{"A": 0, "B": 0},
		},
		{
			name:   "fractional weights",
			target: 1599,
			weights: []Weight{
				{UserID: "A", Weight: dec("0.5")},
				{UserID: "B", Weight: dec("0.5")},
			},
			// raw 799.5 each rounds to 800; A absorbs the -1 drift.
			want: map[string]int64{"A": 799, "B": 800},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apportion(tt.target, tt.weights)

			var sum int64
			for _, s := range got {
				sum += s.Cents
				if s.Cents < 0 {
					t.Errorf("share for %s is negative: %d", s.UserID, s.Cents)
				}
				if want, ok := tt.want[s.UserID]; !ok {
					t.Errorf("unexpected share for %s", s.UserID)
				} else if s.Cents != want {
					t.Errorf("share for %s = %d, want %d", s.UserID, s.Cents, want)
				}
			}
			if sum != tt.target {
				t.Errorf("shares sum to %d, want %d", sum, tt.target)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d shares, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestApportionDeterministic(t *testing.T) {
	a := []Weight{
		{UserID: "B", Weight: dec("1")},
		{UserID: "A", Weight: dec("1")},
		{UserID: "C", Weight: dec("2")},
	}
	b := []Weight{
		{UserID: "C", Weight: dec("2")},
		{UserID: "A", Weight: dec("1")},
		{UserID: "B", Weight: dec("1")},
	}

	first := Apportion(101, a)
	second := Apportion(101, b)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("share %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1.4", 1},
		{"1.5", 2},
		{"2.5", 3},
		{"799.5", 800},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(dec(tt.in)); got != tt.want {
			t.Errorf("RoundHalfUp(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
