package interval

import (
	"errors"
	"math"
	"testing"
)

func TestNewBoundsValidation(t *testing.T) {
	cases := []struct {
		name   string
		t1, t2 float64
		ok     bool
	}{
		{"span", 1, 5, true},
		{"point", 3, 3, true},
		{"zero", 0, 0, true},
		{"reversed", 3, 1, false},
		{"negative start", -1, 5, false},
		{"negative end", 0, -2, false},
		{"nan", math.NaN(), 1, false},
		{"inf", 0, math.Inf(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := NewBounds(tc.t1, tc.t2)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected valid bounds, got %v", err)
				}
				if b.T1 != tc.t1 || b.T2 != tc.t2 {
					t.Fatalf("bounds not preserved: %v", b)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for [%v, %v]", tc.t1, tc.t2)
			}
			var ir InvalidRangeError
			if !errors.As(err, &ir) {
				t.Fatalf("expected InvalidRangeError, got %T", err)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	b, err := NewBounds(2, 5.5)
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if got := b.Span(); got != 3.5 {
		t.Fatalf("span = %v, want 3.5", got)
	}
	p, _ := NewPoint(4)
	if p.Span() != 0 {
		t.Fatalf("point span must be zero")
	}
}

func TestContainsPointClosedSemantics(t *testing.T) {
	b, _ := NewBounds(2, 5)
	for _, p := range []float64{2, 3.7, 5} {
		if !b.ContainsPoint(p) {
			t.Fatalf("expected %v contained in %v", p, b)
		}
	}
	for _, p := range []float64{1.9999, 5.0001} {
		if b.ContainsPoint(p) {
			t.Fatalf("expected %v outside %v", p, b)
		}
	}
}

func TestIntersectsHalfOpenSemantics(t *testing.T) {
	b, _ := NewBounds(2, 5)
	cases := []struct {
		w    [2]float64
		want bool
	}{
		{[2]float64{0, 1}, false},
		{[2]float64{0, 2}, false}, // touching the start is not a hit
		{[2]float64{0, 2.1}, true},
		{[2]float64{3, 4}, true},
		{[2]float64{5, 9}, false}, // window starting at the end is not a hit
		{[2]float64{4.9, 9}, true},
		{[2]float64{6, 9}, false},
	}
	for _, tc := range cases {
		w, _ := NewBounds(tc.w[0], tc.w[1])
		if got := b.Intersects(w); got != tc.want {
			t.Fatalf("Intersects(%v, %v) = %v, want %v", b, w, got, tc.want)
		}
	}
}
