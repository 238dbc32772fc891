package media

import (
	"testing"

	"github.com/pion/rtp"
)

func TestPacketizedBufWriterPacketizeFragments(t *testing.T) {
	w := &PacketizedBufWriter{
		chunkSize: 10,
		ssrc:      0xCAFEBABE,
		payloadPT: 96,
	}

	data := make([]byte, 25)
	for i := range data {
		data[i] = byte(i)
	}

	frags, err := w.packetize(data)
	if err != nil {
		t.Fatalf("packetize: %v", err)
	}
	if len(frags) != 3 {
		t.Fatalf("got %d fragments, want 3", len(frags))
	}

	wantLens := []int{10, 10, 5}
	for i, raw := range frags {
		var pkt rtp.Packet
		if err := pkt.Unmarshal(raw); err != nil {
			t.Fatalf("fragment %d: unmarshal: %v", i, err)
		}
		if pkt.SSRC != w.ssrc {
			t.Errorf("fragment %d: SSRC = %x, want %x", i, pkt.SSRC, w.ssrc)
		}
		if pkt.PayloadType != w.payloadPT {
			t.Errorf("fragment %d: PayloadType = %d, want %d", i, pkt.PayloadType, w.payloadPT)
		}
		if int(pkt.SequenceNumber) != i {
			t.Errorf("fragment %d: SequenceNumber = %d, want %d", i, pkt.SequenceNumber, i)
		}
		wantMarker := i == len(frags)-1
		if pkt.Marker != wantMarker {
			t.Errorf("fragment %d: Marker = %v, want %v", i, pkt.Marker, wantMarker)
		}
		if len(pkt.Payload) != wantLens[i] {
			t.Errorf("fragment %d: payload len = %d, want %d", i, len(pkt.Payload), wantLens[i])
		}
	}

	if w.timestamp != uint32(len(data)) {
		t.Errorf("timestamp = %d, want %d", w.timestamp, len(data))
	}
}

func TestPacketizedBufWriterPacketizeAdvancesAcrossCalls(t *testing.T) {
	w := &PacketizedBufWriter{chunkSize: 4, payloadPT: 96}

	first, err := w.packetize([]byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("first packetize: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first: got %d fragments, want 2", len(first))
	}

	second, err := w.packetize([]byte{6, 7})
	if err != nil {
		t.Fatalf("second packetize: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second: got %d fragments, want 1", len(second))
	}

	var pkt rtp.Packet
	if err := pkt.Unmarshal(second[0]); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if pkt.SequenceNumber != 2 {
		t.Errorf("second call SequenceNumber = %d, want 2 (continues from first call)", pkt.SequenceNumber)
	}
	if !pkt.Marker {
		t.Errorf("second call's only fragment should carry Marker=true")
	}
	if w.timestamp != 7 {
		t.Errorf("timestamp = %d, want 7 (5 + 2, cumulative across calls)", w.timestamp)
	}
}

func TestPacketizedBufWriterPacketizeEmpty(t *testing.T) {
	w := &PacketizedBufWriter{chunkSize: 10, payloadPT: 96}

	frags, err := w.packetize(nil)
	if err != nil {
		t.Fatalf("packetize(nil): %v", err)
	}
	if frags != nil {
		t.Errorf("packetize(nil) = %v, want nil", frags)
	}
	if w.timestamp != 0 {
		t.Errorf("timestamp = %d, want 0 (unchanged on empty input)", w.timestamp)
	}
}
