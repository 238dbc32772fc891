package avbridge

/*
#include <string.h>
#include <libavcodec/packet.h>
#include <libavutil/mem.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// PacketFlag is a bitset of packet attributes.
type PacketFlag int32

const (
	PacketFlagKey        PacketFlag = C.AV_PKT_FLAG_KEY
	PacketFlagCorrupt    PacketFlag = C.AV_PKT_FLAG_CORRUPT
	PacketFlagDiscard    PacketFlag = C.AV_PKT_FLAG_DISCARD
	PacketFlagTrusted    PacketFlag = C.AV_PKT_FLAG_TRUSTED
	PacketFlagDisposable PacketFlag = C.AV_PKT_FLAG_DISPOSABLE
)

// Has reports whether flags contains f.
func (f PacketFlag) Has(flags PacketFlag) bool { return flags&f != 0 }

// Packet owns a reference-counted compressed-data buffer from the backend.
// A Packet is either empty (Size() == 0, no backing buffer) or owns a
// valid buffer; exactly one Close() call releases that ownership.
type Packet struct {
	ptr      *C.AVPacket
	closed   bool
	timeBase Rational
}

// EmptyPacket allocates a zero-sized packet for a demuxer to fill via
// Read.
func EmptyPacket() *Packet {
	p := C.av_packet_alloc()
	return &Packet{ptr: p}
}

// NewPacketWithSize allocates a packet owning an n-byte buffer.
func NewPacketWithSize(n int) (*Packet, error) {
	p := C.av_packet_alloc()
	if p == nil {
		return nil, NewTranscodeError("packet alloc failed", nil)
	}
	if ret := C.av_new_packet(p, C.int(n)); ret < 0 {
		C.av_packet_free(&p)
		return nil, newBackendError("packet alloc buffer", int32(ret))
	}
	return &Packet{ptr: p}, nil
}

// CopyPacket allocates a packet and copies bytes into its buffer.
func CopyPacket(bytes []byte) (*Packet, error) {
	pkt, err := NewPacketWithSize(len(bytes))
	if err != nil {
		return nil, err
	}
	if len(bytes) > 0 {
		C.memcpy(unsafe.Pointer(pkt.ptr.data), unsafe.Pointer(&bytes[0]), C.size_t(len(bytes)))
	}
	return pkt, nil
}

// Close releases the packet's backing buffer. Safe to call more than once;
// only the first call has effect, matching the destructor invariant of
// exactly one unref per construction.
func (p *Packet) Close() {
	if p.closed {
		return
	}
	p.closed = true
	C.av_packet_free(&p.ptr)
}

func (p *Packet) checkOpen(op string) error {
	if p.closed || p.ptr == nil {
		return fmt.Errorf("%s: %w", op, ErrUninitializedCodec)
	}
	return nil
}

// StreamIndex returns the packet's associated demuxer/muxer stream index.
func (p *Packet) StreamIndex() int { return int(p.ptr.stream_index) }

// SetStreamIndex sets the packet's stream index.
func (p *Packet) SetStreamIndex(i int) { p.ptr.stream_index = C.int(i) }

// PTS returns the packet's presentation timestamp in its time base.
func (p *Packet) PTS() Time { return TimeFromBackend(int64(p.ptr.pts), p.TimeBase()) }

// DTS returns the packet's decode timestamp in its time base.
func (p *Packet) DTS() Time { return TimeFromBackend(int64(p.ptr.dts), p.TimeBase()) }

// SetPTS sets the packet's presentation timestamp (raw integer, in the
// packet's current time base).
func (p *Packet) SetPTS(v int64) { p.ptr.pts = C.int64_t(v) }

// SetDTS sets the packet's decode timestamp.
func (p *Packet) SetDTS(v int64) { p.ptr.dts = C.int64_t(v) }

// Duration returns the packet's duration in its time base.
func (p *Packet) Duration() int64 { return int64(p.ptr.duration) }

// SetDuration sets the packet's duration.
func (p *Packet) SetDuration(v int64) { p.ptr.duration = C.int64_t(v) }

// Position returns the packet's byte position in the source stream, or -1
// if unknown.
func (p *Packet) Position() int64 { return int64(p.ptr.pos) }

// SetPosition sets the packet's byte position.
func (p *Packet) SetPosition(v int64) { p.ptr.pos = C.int64_t(v) }

// Size returns the packet's data size in bytes.
func (p *Packet) Size() int { return int(p.ptr.size) }

// Flags returns the packet's flag bitset.
func (p *Packet) Flags() PacketFlag { return PacketFlag(p.ptr.flags) }

// SetFlags overwrites the packet's flag bitset.
func (p *Packet) SetFlags(f PacketFlag) { p.ptr.flags = C.int(f) }

// SetKeyframe sets or clears the KEY flag.
func (p *Packet) SetKeyframe(key bool) {
	if key {
		p.ptr.flags |= C.AV_PKT_FLAG_KEY
	} else {
		p.ptr.flags &^= C.AV_PKT_FLAG_KEY
	}
}

// TimeBase returns the Rational the packet's pts/dts/duration are
// expressed in. The backend's AVPacket does not itself carry a time base
// field in all versions; reel tracks it alongside the packet explicitly.
func (p *Packet) TimeBase() Rational { return p.timeBase }

// Data returns a read-only view of the packet's buffer. The slice is only
// valid until the next mutating call on p or until Close.
func (p *Packet) Data() []byte {
	if p.ptr.size == 0 || p.ptr.data == nil {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p.ptr.data)), int(p.ptr.size))
}

// SideDataEntry is a read-only view of one backend-attached packet side
// data entry (display matrix, mastering display metadata, and similar
// demuxer/encoder-attached blobs). Data is only valid until the next
// mutating call on the owning Packet or until Close.
type SideDataEntry struct {
	Type int32
	Data []byte
}

// SideData returns every side data entry the backend has attached to p.
// This is a read-only accessor: reel does not attach or mutate packet
// side data itself.
func (p *Packet) SideData() []SideDataEntry {
	n := int(p.ptr.side_data_elems)
	if n == 0 {
		return nil
	}
	entries := unsafe.Slice(p.ptr.side_data, n)
	out := make([]SideDataEntry, n)
	for i, e := range entries {
		var data []byte
		if e.size > 0 && e.data != nil {
			data = unsafe.Slice((*byte)(unsafe.Pointer(e.data)), int(e.size))
		}
		out[i] = SideDataEntry{Type: int32(e._type), Data: data}
	}
	return out
}

// RescaleTS converts pts, dts, and duration together from src to dst,
// atomically from the caller's point of view.
func (p *Packet) RescaleTS(src, dst Rational) {
	if v, ok := p.PTS().IntoValue(); ok {
		p.SetPTS(rescaleTS(v, src, dst))
	}
	if v, ok := p.DTS().IntoValue(); ok {
		p.SetDTS(rescaleTS(v, src, dst))
	}
	if d := p.Duration(); d != noPTSValue {
		p.SetDuration(rescaleTS(d, src, dst))
	}
	p.timeBase = dst
}
