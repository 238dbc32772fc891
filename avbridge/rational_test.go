package avbridge

import "testing"

func TestRationalArithmetic(t *testing.T) {
	half := NewRational(1, 2)
	third := NewRational(1, 3)

	tests := []struct {
		name string
		got  Rational
		want Rational
	}{
		{"add", half.Add(third), NewRational(5, 6)},
		{"sub", half.Sub(third), NewRational(1, 6)},
		{"mul", half.Mul(third), NewRational(1, 6)},
		{"div", half.Div(third), NewRational(3, 2)},
		{"invert", half.Invert(), NewRational(2, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.want) {
				t.Errorf("%s = %d/%d, want %d/%d", tt.name, tt.got.Num, tt.got.Den, tt.want.Num, tt.want.Den)
			}
		})
	}
}

func TestRationalEqualIgnoresReduction(t *testing.T) {
	a := NewRational(2, 4)
	b := NewRational(1, 2)
	if !a.Equal(b) {
		t.Errorf("%d/%d should equal %d/%d", a.Num, a.Den, b.Num, b.Den)
	}
	if a.Compare(b) != 0 {
		t.Errorf("Compare(%d/%d, %d/%d) = %d, want 0", a.Num, a.Den, b.Num, b.Den, a.Compare(b))
	}
}

func TestRationalCompareOrdering(t *testing.T) {
	small := NewRational(1, 4)
	big := NewRational(3, 4)

	if small.Compare(big) != -1 {
		t.Errorf("Compare(1/4, 3/4) = %d, want -1", small.Compare(big))
	}
	if big.Compare(small) != 1 {
		t.Errorf("Compare(3/4, 1/4) = %d, want 1", big.Compare(small))
	}
}

func TestRationalReduce(t *testing.T) {
	r := NewRational(100, 200)
	reduced, exact := r.Reduce(0)
	if !exact {
		t.Fatalf("Reduce(100/200) should be exact")
	}
	if !reduced.Equal(NewRational(1, 2)) {
		t.Errorf("Reduce(100/200) = %d/%d, want 1/2", reduced.Num, reduced.Den)
	}
}

func TestRationalIsUnspecified(t *testing.T) {
	if !(Rational{}).IsUnspecified() {
		t.Error("zero-value Rational should be unspecified")
	}
	if NewRational(1, 1).IsUnspecified() {
		t.Error("1/1 should not be unspecified")
	}
}

func TestRationalFloat64RoundTrip(t *testing.T) {
	r := NewRational(1, 4)
	got := r.Float64()
	if got != 0.25 {
		t.Errorf("Float64(1/4) = %v, want 0.25", got)
	}

	back := RationalFromFloat64(0.25, 1000)
	if !back.Equal(r) {
		t.Errorf("RationalFromFloat64(0.25) = %d/%d, want equal to 1/4", back.Num, back.Den)
	}
}
