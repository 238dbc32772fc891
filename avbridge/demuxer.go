package avbridge

/*
#include <stdlib.h>
#include <libavformat/avformat.h>
*/
import "C"
import (
	"fmt"
	"unsafe"
)

// StreamInfo templates a decoder/encoder from one of a Demuxer's streams.
type StreamInfo struct {
	StreamIndex     int
	CodecParameters *CodecParameters
	TimeBase        Rational
}

// CodecParameters is an opaque, copyable blob of codec configuration
// (dimensions, pixel format, extradata, ...), mirroring the backend's
// AVCodecParameters. It is distinct from CodecContext (open, stateful).
type CodecParameters struct {
	ptr *C.AVCodecParameters
	// owned is false when ptr aliases a stream's own parameters (caller
	// must not free); true when Clone produced an independent copy.
	owned bool
}

// Clone returns an independent copy of p, safe to hold after the demuxer
// that produced it is closed.
func (p *CodecParameters) Clone() (*CodecParameters, error) {
	dst := C.avcodec_parameters_alloc()
	if dst == nil {
		return nil, NewTranscodeError("codec parameters alloc failed", nil)
	}
	if ret := C.avcodec_parameters_copy(dst, p.ptr); ret < 0 {
		C.avcodec_parameters_free(&dst)
		return nil, newBackendError("codec parameters copy", int32(ret))
	}
	return &CodecParameters{ptr: dst, owned: true}, nil
}

// Close releases an owned CodecParameters; a no-op for borrowed ones.
func (p *CodecParameters) Close() {
	if p.owned && p.ptr != nil {
		C.avcodec_parameters_free(&p.ptr)
		p.ptr = nil
	}
}

// CodecID returns the parameters' codec id.
func (p *CodecParameters) CodecID() CodecID { return CodecID(p.ptr.codec_id) }

// Demuxer opens a source and serves packets and seek requests. It owns its
// backend format context; Packets it produces own their data
// independently and outlive the Demuxer.
type Demuxer struct {
	ctx     *C.AVFormatContext
	streams []StreamInfo
	closed  bool
}

// OpenInput opens loc as a demuxer input with the given options, then asks
// the backend to scan for stream info. On failure the input is closed
// before the error is returned.
func OpenInput(loc Location, opts Options) (*Demuxer, error) {
	Init()

	ctx := C.avformat_alloc_context()
	if ctx == nil {
		return nil, NewTranscodeError("format context alloc failed", nil)
	}

	path := loc.cString()
	cpath := (*C.char)(unsafe.Pointer(&path[0]))

	dict := opts.toDict()
	ret := C.avformat_open_input(&ctx, cpath, nil, &dict)
	freeDict(dict)
	if ret < 0 {
		return nil, newBackendError("open input", int32(ret))
	}

	if ret := C.avformat_find_stream_info(ctx, nil); ret < 0 {
		C.avformat_close_input(&ctx)
		return nil, newBackendError("find stream info", int32(ret))
	}

	d := &Demuxer{ctx: ctx}
	d.loadStreams()
	return d, nil
}

func (d *Demuxer) loadStreams() {
	n := int(d.ctx.nb_streams)
	streamsArr := unsafe.Slice(d.ctx.streams, n)
	d.streams = make([]StreamInfo, n)
	for i := 0; i < n; i++ {
		s := streamsArr[i]
		d.streams[i] = StreamInfo{
			StreamIndex:     i,
			CodecParameters: &CodecParameters{ptr: s.codecpar, owned: false},
			TimeBase:        fromC(s.time_base),
		}
	}
}

// Close closes the demuxer's input. Safe to call more than once.
func (d *Demuxer) Close() {
	if d.closed {
		return
	}
	d.closed = true
	C.avformat_close_input(&d.ctx)
}

// BestVideoStreamIndex delegates to the backend's "find best stream"
// heuristic.
func (d *Demuxer) BestVideoStreamIndex() (int, error) {
	ret := C.av_find_best_stream(d.ctx, C.AVMEDIA_TYPE_VIDEO, -1, -1, nil, 0)
	if ret < 0 {
		return 0, newBackendError("find best stream", int32(ret))
	}
	return int(ret), nil
}

// StreamInfo returns stream i's time base and an independently owned clone
// of its codec parameters, safe to retain past Close. The caller is
// responsible for calling the returned CodecParameters' Close.
func (d *Demuxer) StreamInfo(i int) (StreamInfo, error) {
	if i < 0 || i >= len(d.streams) {
		return StreamInfo{}, fmt.Errorf("stream info: %w", ErrInvalidCodecParameters)
	}
	cloned, err := d.streams[i].CodecParameters.Clone()
	if err != nil {
		return StreamInfo{}, err
	}
	info := d.streams[i]
	info.CodecParameters = cloned
	return info, nil
}

// maxConsecutiveReadErrors bounds the demux retry loop in Read: after
// this many consecutive demux errors, Read gives up and returns
// ErrReadExhausted.
const maxConsecutiveReadErrors = 3

// Read demuxes packets until one matches streamIndex, discarding others.
// After maxConsecutiveReadErrors consecutive demux errors it returns
// ErrReadExhausted.
func (d *Demuxer) Read(streamIndex int) (*Packet, error) {
	consecutiveErrors := 0
	for {
		pkt := EmptyPacket()
		ret := C.av_read_frame(d.ctx, pkt.ptr)
		if ret < 0 {
			pkt.Close()
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveReadErrors {
				return nil, ErrReadExhausted
			}
			continue
		}
		consecutiveErrors = 0
		if int(pkt.ptr.stream_index) != streamIndex {
			pkt.Close()
			continue
		}
		pkt.timeBase = d.streams[pkt.ptr.stream_index].TimeBase
		return pkt, nil
	}
}

// msToBackendTimeBase converts a millisecond offset to the backend's
// internal AV_TIME_BASE units used by av_seek_frame's generic (stream
// index -1) form.
func msToBackendTimeBase(ms int64) int64 {
	return rescaleTS(ms, Rational{Num: 1, Den: 1000}, Rational{Num: 1, Den: AVTimeBase})
}

// Seek seeks to tsMs milliseconds with a +/-1 second leeway window.
func (d *Demuxer) Seek(tsMs int64) error {
	ts := msToBackendTimeBase(tsMs)
	leeway := int64(AVTimeBase) // 1 second, in AV_TIME_BASE units
	ret := C.avformat_seek_file(d.ctx, -1, C.int64_t(ts-leeway), C.int64_t(ts), C.int64_t(ts+leeway), 0)
	if ret < 0 {
		return newBackendError("seek file", int32(ret))
	}
	return nil
}

// SeekToFrame seeks by frame number on streamIndex using the backend's
// frame-offset flag. This flag is documented upstream as "may or may not
// work depending on demuxer"; a demuxer that rejects it surfaces as
// ErrUnsupported, not papered over.
func (d *Demuxer) SeekToFrame(streamIndex int, frameNumber int64) error {
	ret := C.av_seek_frame(d.ctx, C.int(streamIndex), C.int64_t(frameNumber), C.AVSEEK_FLAG_FRAME)
	if ret < 0 {
		return fmt.Errorf("seek to frame: %w", ErrUnsupported)
	}
	return nil
}

// SeekAny seeks to the nearest frame of any type (not just a keyframe),
// using the backend's AVSEEK_FLAG_ANY.
func (d *Demuxer) SeekAny(streamIndex int, ts Time) error {
	v, ok := ts.IntoValue()
	if !ok {
		return fmt.Errorf("seek any: %w", ErrInvalidCodecParameters)
	}
	ret := C.av_seek_frame(d.ctx, C.int(streamIndex), C.int64_t(v), C.AVSEEK_FLAG_ANY)
	if ret < 0 {
		return newBackendError("seek any", int32(ret))
	}
	return nil
}

// SeekToStart seeks to the beginning of the stream.
func (d *Demuxer) SeekToStart() error {
	ret := C.avformat_seek_file(d.ctx, -1, C.int64_t(minInt64), C.int64_t(minInt64), C.int64_t(minInt64), 0)
	if ret < 0 {
		return newBackendError("seek to start", int32(ret))
	}
	return nil
}

const minInt64 = -(1 << 63)
