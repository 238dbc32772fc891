package avbridge

/*
#include <libavutil/rational.h>
*/
import "C"

// Rational is a signed 32-bit numerator/denominator pair. A zero
// denominator is only valid as the backend's "unspecified" sentinel
// (Rational{0, 0}), returned by some backend calls in place of a real
// value.
type Rational struct {
	Num int32
	Den int32
}

// NewRational constructs a Rational without reducing it. Use Reduce to
// obtain lowest terms.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

func (r Rational) toC() C.AVRational {
	return C.AVRational{num: C.int(r.Num), den: C.int(r.Den)}
}

func fromC(r C.AVRational) Rational {
	return Rational{Num: int32(r.num), Den: int32(r.den)}
}

// IsUnspecified reports whether r is the backend's 0/0 sentinel.
func (r Rational) IsUnspecified() bool { return r.Num == 0 && r.Den == 0 }

// Reduce returns r in lowest terms, clamped to a denominator no larger
// than maxDen. When maxDen <= 0, a bound of 1<<30 is used. The second return value is false when the reduction could only be
// approximate within the given bound.
func (r Rational) Reduce(maxDen int32) (Rational, bool) {
	if maxDen <= 0 {
		maxDen = 1 << 30
	}
	var dstNum, dstDen C.int64_t
	exact := C.av_reduce(&dstNum, &dstDen, C.int64_t(r.Num), C.int64_t(r.Den), C.int64_t(maxDen))
	return Rational{Num: int32(dstNum), Den: int32(dstDen)}, exact != 0
}

// Invert returns 1/r.
func (r Rational) Invert() Rational { return fromC(C.av_inv_q(r.toC())) }

// Add returns r + other.
func (r Rational) Add(other Rational) Rational { return fromC(C.av_add_q(r.toC(), other.toC())) }

// Sub returns r - other.
func (r Rational) Sub(other Rational) Rational { return fromC(C.av_sub_q(r.toC(), other.toC())) }

// Mul returns r * other.
func (r Rational) Mul(other Rational) Rational { return fromC(C.av_mul_q(r.toC(), other.toC())) }

// Div returns r / other.
func (r Rational) Div(other Rational) Rational { return fromC(C.av_div_q(r.toC(), other.toC())) }

// Float64 converts r to a float64 approximation.
func (r Rational) Float64() float64 { return float64(C.av_q2d(r.toC())) }

// RationalFromFloat64 approximates f as a Rational with the given maximum
// denominator (backend's av_d2q).
func RationalFromFloat64(f float64, maxDen int32) Rational {
	return fromC(C.av_d2q(C.double(f), C.int(maxDen)))
}

// Compare returns -1, 0, or 1 comparing r and other via cross-multiplication
// (backend's av_cmp_q), avoiding floating point rounding in the comparison.
func (r Rational) Compare(other Rational) int { return int(C.av_cmp_q(r.toC(), other.toC())) }

// Equal reports whether r and other represent the same rational value,
// independent of reduction (e.g. 2/4 equals 1/2).
func (r Rational) Equal(other Rational) bool { return r.Compare(other) == 0 }
