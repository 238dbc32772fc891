package avbridge

/*
#include <libavutil/avutil.h>
#include <libavutil/mathematics.h>
*/
import "C"

// AVTimeBase is the backend's internal time unit: microseconds. Matches
// the backend's AV_TIME_BASE macro.
const AVTimeBase = int32(C.AV_TIME_BASE)

// Time is an optional integer timestamp paired with a Rational time base.
// A Time with HasValue() == false means "no timestamp" (the backend's
// AV_NOPTS_VALUE).
type Time struct {
	value    int64
	hasValue bool
	base     Rational
}

// noPTSValue mirrors the backend's AV_NOPTS_VALUE sentinel.
const noPTSValue = int64(C.int64_t(C.AV_NOPTS_VALUE))

// NewTime constructs a Time with an explicit value in base.
func NewTime(value int64, base Rational) Time {
	return Time{value: value, hasValue: true, base: base}
}

// NoTime constructs a Time carrying no value, in base.
func NoTime(base Rational) Time {
	return Time{hasValue: false, base: base}
}

// TimeFromBackend interprets a raw backend timestamp, treating
// AV_NOPTS_VALUE as "no value".
func TimeFromBackend(raw int64, base Rational) Time {
	if raw == noPTSValue {
		return NoTime(base)
	}
	return NewTime(raw, base)
}

// Zero returns the zero timestamp in the backend's internal time base
// (1/AV_TIME_BASE).
func Zero() Time {
	return NewTime(0, Rational{Num: 1, Den: AVTimeBase})
}

// FromNthOfASecond constructs the exact duration 1/n seconds as a Time with
// value 1 in base (1, n).
func FromNthOfASecond(n int32) Time {
	return NewTime(1, Rational{Num: 1, Den: n})
}

// Base returns the Time's time base.
func (t Time) Base() Rational { return t.base }

// HasValue reports whether t carries a defined integer value.
func (t Time) HasValue() bool { return t.hasValue }

// IntoValue returns the raw integer value, or (0, false) if t has no value.
func (t Time) IntoValue() (int64, bool) {
	if !t.hasValue {
		return 0, false
	}
	return t.value, true
}

// Seconds returns the timestamp's value expressed in seconds, or NaN-like
// 0 with ok=false if t has no value.
func (t Time) Seconds() (float64, bool) {
	if !t.hasValue {
		return 0, false
	}
	return float64(t.value) * t.base.Float64(), true
}

// AlignedWith rescales t's integer value into newBase using round-to-
// nearest semantics with ties toward positive infinity (backend's
// AV_ROUND_NEAR_INF). A Time with no value rescales to a Time with no
// value in the new base.
func (t Time) AlignedWith(newBase Rational) Time {
	if !t.hasValue {
		return NoTime(newBase)
	}
	rescaled := int64(C.av_rescale_q_rnd(
		C.int64_t(t.value),
		t.base.toC(),
		newBase.toC(),
		C.AV_ROUND_NEAR_INF,
	))
	return NewTime(rescaled, newBase)
}

// rescaleTS converts a single raw timestamp value from src to dst with the
// same rounding as AlignedWith, passing AV_NOPTS_VALUE through unchanged
// (used by Packet.RescaleTS for each of pts/dts/duration).
func rescaleTS(value int64, src, dst Rational) int64 {
	if value == noPTSValue {
		return noPTSValue
	}
	return int64(C.av_rescale_q_rnd(C.int64_t(value), src.toC(), dst.toC(), C.AV_ROUND_NEAR_INF))
}
