package avbridge

import "testing"

func TestPacketFlagHas(t *testing.T) {
	flags := PacketFlagKey | PacketFlagDiscard

	if !PacketFlagKey.Has(flags) {
		t.Error("flags should have PacketFlagKey set")
	}
	if !PacketFlagDiscard.Has(flags) {
		t.Error("flags should have PacketFlagDiscard set")
	}
	if PacketFlagCorrupt.Has(flags) {
		t.Error("flags should not have PacketFlagCorrupt set")
	}
}

func TestCopyPacketRoundTrip(t *testing.T) {
	want := []byte{1, 2, 3, 4, 5}
	pkt, err := CopyPacket(want)
	if err != nil {
		t.Fatalf("CopyPacket: %v", err)
	}
	defer pkt.Close()

	if pkt.Size() != len(want) {
		t.Errorf("Size() = %d, want %d", pkt.Size(), len(want))
	}
	got := pkt.Data()
	if len(got) != len(want) {
		t.Fatalf("Data() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Data()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCopyPacketEmpty(t *testing.T) {
	pkt, err := CopyPacket(nil)
	if err != nil {
		t.Fatalf("CopyPacket(nil): %v", err)
	}
	defer pkt.Close()

	if pkt.Size() != 0 {
		t.Errorf("Size() = %d, want 0", pkt.Size())
	}
	if pkt.Data() != nil {
		t.Error("Data() on an empty packet should be nil")
	}
}

func TestPacketCloseIsIdempotent(t *testing.T) {
	pkt, err := CopyPacket([]byte{9})
	if err != nil {
		t.Fatalf("CopyPacket: %v", err)
	}
	pkt.Close()
	pkt.Close() // must not panic or double-free
}

func TestPacketRescaleTS(t *testing.T) {
	src := Rational{Num: 1, Den: 1000}
	dst := Rational{Num: 1, Den: 90000}

	pkt, err := CopyPacket([]byte{0})
	if err != nil {
		t.Fatalf("CopyPacket: %v", err)
	}
	defer pkt.Close()

	pkt.timeBase = src
	pkt.SetPTS(1000)
	pkt.SetDTS(1000)
	pkt.SetDuration(40)

	pkt.RescaleTS(src, dst)

	if pkt.TimeBase() != dst {
		t.Errorf("TimeBase() = %+v, want %+v", pkt.TimeBase(), dst)
	}
	if v, ok := pkt.PTS().IntoValue(); !ok || v != 90000 {
		t.Errorf("PTS() after rescale = (%d, %v), want (90000, true)", v, ok)
	}
	if v, ok := pkt.DTS().IntoValue(); !ok || v != 90000 {
		t.Errorf("DTS() after rescale = (%d, %v), want (90000, true)", v, ok)
	}
	if d := pkt.Duration(); d != 3600 {
		t.Errorf("Duration() after rescale = %d, want 3600", d)
	}
}

func TestPacketSideDataEmpty(t *testing.T) {
	pkt, err := CopyPacket([]byte{0})
	if err != nil {
		t.Fatalf("CopyPacket: %v", err)
	}
	defer pkt.Close()

	if sd := pkt.SideData(); sd != nil {
		t.Errorf("SideData() on a freshly copied packet = %v, want nil", sd)
	}
}

func TestPacketSetKeyframe(t *testing.T) {
	pkt, err := CopyPacket([]byte{0})
	if err != nil {
		t.Fatalf("CopyPacket: %v", err)
	}
	defer pkt.Close()

	pkt.SetKeyframe(true)
	if !pkt.Flags().Has(PacketFlagKey) {
		t.Error("SetKeyframe(true) should set PacketFlagKey")
	}
	pkt.SetKeyframe(false)
	if pkt.Flags().Has(PacketFlagKey) {
		t.Error("SetKeyframe(false) should clear PacketFlagKey")
	}
}
