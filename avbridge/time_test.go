package avbridge

import "testing"

func TestTimeHasValue(t *testing.T) {
	base := Rational{Num: 1, Den: 90000}

	got := NewTime(1500, base)
	if !got.HasValue() {
		t.Fatal("NewTime should carry a value")
	}
	if v, ok := got.IntoValue(); !ok || v != 1500 {
		t.Errorf("IntoValue() = (%d, %v), want (1500, true)", v, ok)
	}

	none := NoTime(base)
	if none.HasValue() {
		t.Fatal("NoTime should carry no value")
	}
	if _, ok := none.IntoValue(); ok {
		t.Error("IntoValue() on NoTime should report ok=false")
	}
}

func TestTimeFromBackendNoPTSValue(t *testing.T) {
	base := Rational{Num: 1, Den: 90000}
	got := TimeFromBackend(noPTSValue, base)
	if got.HasValue() {
		t.Error("TimeFromBackend(AV_NOPTS_VALUE) should produce a valueless Time")
	}

	got = TimeFromBackend(42, base)
	if v, ok := got.IntoValue(); !ok || v != 42 {
		t.Errorf("TimeFromBackend(42) = (%d, %v), want (42, true)", v, ok)
	}
}

func TestTimeAlignedWithRescalesValue(t *testing.T) {
	src := Rational{Num: 1, Den: 1000}
	dst := Rational{Num: 1, Den: 90000}

	ts := NewTime(1000, src) // 1 second at 1ms resolution
	rescaled := ts.AlignedWith(dst)

	v, ok := rescaled.IntoValue()
	if !ok {
		t.Fatal("rescaled Time should carry a value")
	}
	if v != 90000 {
		t.Errorf("AlignedWith(90kHz) = %d, want 90000 (1 second)", v)
	}
	if rescaled.Base() != dst {
		t.Errorf("AlignedWith base = %+v, want %+v", rescaled.Base(), dst)
	}
}

func TestTimeAlignedWithRoundTrip(t *testing.T) {
	src := Rational{Num: 1, Den: 30}
	dst := Rational{Num: 1, Den: 90000}

	ts := NewTime(7, src)
	there := ts.AlignedWith(dst)
	back := there.AlignedWith(src)

	v, _ := back.IntoValue()
	if diff := v - 7; diff < -1 || diff > 1 {
		t.Errorf("round-tripped value = %d, want within 1 unit of 7", v)
	}
}

func TestTimeAlignedWithNoValue(t *testing.T) {
	src := Rational{Num: 1, Den: 1000}
	dst := Rational{Num: 1, Den: 90000}

	none := NoTime(src)
	rescaled := none.AlignedWith(dst)
	if rescaled.HasValue() {
		t.Error("AlignedWith on a valueless Time should stay valueless")
	}
	if rescaled.Base() != dst {
		t.Errorf("AlignedWith should still carry the new base even with no value, got %+v", rescaled.Base())
	}
}

func TestTimeSeconds(t *testing.T) {
	base := Rational{Num: 1, Den: 10}
	ts := NewTime(25, base)
	secs, ok := ts.Seconds()
	if !ok {
		t.Fatal("Seconds() should report ok=true for a Time with a value")
	}
	if secs != 2.5 {
		t.Errorf("Seconds() = %v, want 2.5", secs)
	}

	none := NoTime(base)
	if _, ok := none.Seconds(); ok {
		t.Error("Seconds() on NoTime should report ok=false")
	}
}

func TestZeroAndFromNthOfASecond(t *testing.T) {
	z := Zero()
	v, ok := z.IntoValue()
	if !ok || v != 0 {
		t.Errorf("Zero() value = (%d, %v), want (0, true)", v, ok)
	}
	if z.Base() != (Rational{Num: 1, Den: AVTimeBase}) {
		t.Errorf("Zero() base = %+v, want 1/%d", z.Base(), AVTimeBase)
	}

	nth := FromNthOfASecond(25)
	v, ok = nth.IntoValue()
	if !ok || v != 1 {
		t.Errorf("FromNthOfASecond(25) value = (%d, %v), want (1, true)", v, ok)
	}
	if nth.Base() != (Rational{Num: 1, Den: 25}) {
		t.Errorf("FromNthOfASecond(25) base = %+v, want 1/25", nth.Base())
	}
}
