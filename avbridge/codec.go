package avbridge

/*
#include <libavcodec/avcodec.h>
*/
import "C"
import (
	"fmt"
)

// ThreadKind selects the backend's codec threading model.
type ThreadKind int32

const (
	ThreadFrame ThreadKind = C.FF_THREAD_FRAME
	ThreadSlice ThreadKind = C.FF_THREAD_SLICE
)

// CodecContext wraps a backend AVCodecContext: either a decoder or an
// encoder. Construction and the send/receive protocol are symmetric
// between the two; DecoderSplit and Encoder in the media package drive
// the Feeding/Draining/Flushed state machine on top of this type.
type CodecContext struct {
	ptr    *C.AVCodecContext
	opened bool
	closed bool
}

// FindDecoder finds a decoder matching id and allocates a fresh codec
// context for it.
func FindDecoder(id CodecID) (*CodecContext, error) {
	codec := C.avcodec_find_decoder(C.enum_AVCodecID(id))
	if codec == nil {
		return nil, fmt.Errorf("find decoder: %w", ErrUnsupportedCodecParameterSets)
	}
	ctx := C.avcodec_alloc_context3(codec)
	if ctx == nil {
		return nil, NewTranscodeError("decoder context alloc failed", nil)
	}
	return &CodecContext{ptr: ctx}, nil
}

// FindEncoderH264 prefers the libx264 encoder by name, falling back to
// the backend's generic H.264 encoder.
func FindEncoderH264() (*CodecContext, error) {
	codec := C.avcodec_find_encoder_by_name(C.CString("libx264"))
	if codec == nil {
		codec = C.avcodec_find_encoder(C.AV_CODEC_ID_H264)
	}
	if codec == nil {
		return nil, fmt.Errorf("find encoder: %w", ErrUnsupportedCodecParameterSets)
	}
	ctx := C.avcodec_alloc_context3(codec)
	if ctx == nil {
		return nil, NewTranscodeError("encoder context alloc failed", nil)
	}
	return &CodecContext{ptr: ctx}, nil
}

// ApplyCodecParameters copies params into the codec context.
func (c *CodecContext) ApplyCodecParameters(params *CodecParameters) error {
	if ret := C.avcodec_parameters_to_context(c.ptr, params.ptr); ret < 0 {
		return newBackendError("apply codec parameters", int32(ret))
	}
	return nil
}

// SetTimeBase sets the codec context's time base.
func (c *CodecContext) SetTimeBase(tb Rational) { c.ptr.time_base = tb.toC() }

// TimeBase returns the codec context's time base.
func (c *CodecContext) TimeBase() Rational { return fromC(c.ptr.time_base) }

// SetDimensions sets width/height (encoder configuration).
func (c *CodecContext) SetDimensions(w, h int) {
	c.ptr.width = C.int(w)
	c.ptr.height = C.int(h)
}

// Width returns the codec context's width.
func (c *CodecContext) Width() int { return int(c.ptr.width) }

// Height returns the codec context's height.
func (c *CodecContext) Height() int { return int(c.ptr.height) }

// SetPixFmt sets the codec context's pixel format (encoder configuration).
func (c *CodecContext) SetPixFmt(f PixelFormat) { c.ptr.pix_fmt = C.enum_AVPixelFormat(f) }

// PixFmt returns the codec context's pixel format.
func (c *CodecContext) PixFmt() PixelFormat { return PixelFormat(c.ptr.pix_fmt) }

// SetBitrate sets the encoder's target bitrate in bits/second.
func (c *CodecContext) SetBitrate(bps int64) { c.ptr.bit_rate = C.int64_t(bps) }

// SetFramerate sets the encoder's nominal framerate.
func (c *CodecContext) SetFramerate(r Rational) { c.ptr.framerate = r.toC() }

// SetGlobalHeader sets or clears the GLOBAL_HEADER codec flag, required
// when the output container reports AVFMT_GLOBALHEADER.
func (c *CodecContext) SetGlobalHeader(on bool) {
	if on {
		c.ptr.flags |= C.AV_CODEC_FLAG_GLOBAL_HEADER
	} else {
		c.ptr.flags &^= C.AV_CODEC_FLAG_GLOBAL_HEADER
	}
}

// SetThreading configures the codec context's threading model (count,
// kind) before Open.
func (c *CodecContext) SetThreading(count int, kind ThreadKind) {
	c.ptr.thread_count = C.int(count)
	c.ptr.thread_type = C.int(kind)
}

// AttachHW attaches hw to this codec context before Open: installs the
// get_format callback and the hw_frames_ctx/hw_device_ctx references.
func (c *CodecContext) AttachHW(hw *HWContext) {
	hw.attachGetFormat(c.ptr)
}

// Open opens the codec context with the given options.
func (c *CodecContext) Open(opts Options) error {
	dict := opts.toDict()
	ret := C.avcodec_open2(c.ptr, c.ptr.codec, &dict)
	freeDict(dict)
	if ret < 0 {
		return newBackendError("open codec", int32(ret))
	}
	c.opened = true
	return nil
}

// IsOpen reports whether Open succeeded and Close has not yet been
// called.
func (c *CodecContext) IsOpen() bool { return c.opened && !c.closed }

// Close frees the codec context. Safe to call more than once.
func (c *CodecContext) Close() {
	if c.closed {
		return
	}
	c.closed = true
	C.avcodec_free_context(&c.ptr)
}

// SendPacket feeds pkt to the codec (decoder direction). A nil pkt signals
// EOF, transitioning the backend's internal state toward draining. Valid
// only while the owning state machine is in Feeding.
func (c *CodecContext) SendPacket(pkt *Packet) error {
	if !c.opened {
		return ErrUninitializedCodec
	}
	var cpkt *C.AVPacket
	if pkt != nil {
		cpkt = pkt.ptr
	}
	if ret := C.avcodec_send_packet(c.ptr, cpkt); ret < 0 {
		return newBackendError("send packet", int32(ret))
	}
	return nil
}

// ReceiveFrame pulls one decoded frame from the codec. Returns
// (frame, nil) on success, (nil, err) with IsAgain(err) true when more
// input is needed, or (nil, err) with IsEOF(err) true once the codec has
// been fully drained.
func (c *CodecContext) ReceiveFrame() (*RawFrame, error) {
	f := NewRawFrame()
	ret := C.avcodec_receive_frame(c.ptr, f.ptr)
	if ret < 0 {
		f.Close()
		return nil, newBackendError("receive frame", int32(ret))
	}
	f.timeBase = c.TimeBase()
	return f, nil
}

// SendFrame feeds frame to the codec (encoder direction). A nil frame
// signals EOF.
func (c *CodecContext) SendFrame(frame *RawFrame) error {
	if !c.opened {
		return ErrUninitializedCodec
	}
	var cframe *C.AVFrame
	if frame != nil {
		cframe = frame.ptr
	}
	if ret := C.avcodec_send_frame(c.ptr, cframe); ret < 0 {
		return newBackendError("send frame", int32(ret))
	}
	return nil
}

// ReceivePacket pulls one encoded packet from the codec, with the same
// EAGAIN/EOF signaling convention as ReceiveFrame.
func (c *CodecContext) ReceivePacket() (*Packet, error) {
	pkt := EmptyPacket()
	ret := C.avcodec_receive_packet(c.ptr, pkt.ptr)
	if ret < 0 {
		pkt.Close()
		return nil, newBackendError("receive packet", int32(ret))
	}
	pkt.timeBase = c.TimeBase()
	return pkt, nil
}

// FlushBuffers discards all pending input/output without signaling EOF.
// Used after a seek.
func (c *CodecContext) FlushBuffers() {
	C.avcodec_flush_buffers(c.ptr)
}

// ExtractCodecParameters copies this (encoder) context's negotiated
// parameters into a fresh CodecParameters, for populating a muxer stream.
func (c *CodecContext) ExtractCodecParameters() (*CodecParameters, error) {
	params := C.avcodec_parameters_alloc()
	if params == nil {
		return nil, NewTranscodeError("codec parameters alloc failed", nil)
	}
	if ret := C.avcodec_parameters_from_context(params, c.ptr); ret < 0 {
		C.avcodec_parameters_free(&params)
		return nil, newBackendError("codec parameters from context", int32(ret))
	}
	return &CodecParameters{ptr: params, owned: true}, nil
}
