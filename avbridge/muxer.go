package avbridge

/*
#include <stdlib.h>
#include <libavformat/avformat.h>
#include <libavformat/avio.h>

int goWritePacketTrampoline(void *opaque, const uint8_t *buf, int bufSize);

static void reel_set_write_callback(AVIOContext *io) {
	io->write_packet = goWritePacketTrampoline;
}
*/
import "C"
import (
	"fmt"
	"runtime/cgo"
	"unsafe"
)

// sinkWriter is satisfied by the in-memory sink implementations
// (BufWriter, PacketizedBufWriter) a custom AVIOContext writes into.
// writeChunk must copy b rather than retain it: the slice is pool-backed
// and reused immediately after the call returns.
type sinkWriter interface {
	writeChunk(b []byte)
}

const avioBufferSize = 4096

// Muxer writes compressed packets into a container, maintaining per-
// stream ordering. It owns its backend muxer context.
type Muxer struct {
	ctx         *C.AVFormatContext
	ioCtx       *C.AVIOContext
	handle      cgo.Handle
	headerDone  bool
	trailerDone bool
	closed      bool
}

// AllocOutputContext allocates a muxer for formatName (or inferred from
// loc's extension if formatName is empty) targeting loc.
func AllocOutputContext(formatName string, loc Location) (*Muxer, error) {
	Init()
	var ctx *C.AVFormatContext
	var cFormatName *C.char
	if formatName != "" {
		cFormatName = C.CString(formatName)
		defer C.free(unsafe.Pointer(cFormatName))
	}
	path := loc.cString()
	cpath := (*C.char)(unsafe.Pointer(&path[0]))

	ret := C.avformat_alloc_output_context2(&ctx, nil, cFormatName, cpath)
	if ret < 0 || ctx == nil {
		return nil, newBackendError("alloc output context", int32(ret))
	}
	return &Muxer{ctx: ctx}, nil
}

// HasGlobalHeader reports whether the output container format requires
// codecs to emit global (rather than in-band) headers.
func (m *Muxer) HasGlobalHeader() bool {
	return m.ctx.oformat.flags&C.AVFMT_GLOBALHEADER != 0
}

// MuxStream is a stream within a Muxer's output container.
type MuxStream struct {
	ptr *C.AVStream
}

// NewStream creates a new output stream.
func (m *Muxer) NewStream() (*MuxStream, error) {
	s := C.avformat_new_stream(m.ctx, nil)
	if s == nil {
		return nil, NewTranscodeError("new stream failed", nil)
	}
	return &MuxStream{ptr: s}, nil
}

// Index returns the stream's index within the container.
func (s *MuxStream) Index() int { return int(s.ptr.index) }

// SetTimeBase sets the stream's time base.
func (s *MuxStream) SetTimeBase(tb Rational) { s.ptr.time_base = tb.toC() }

// TimeBase returns the stream's time base.
func (s *MuxStream) TimeBase() Rational { return fromC(s.ptr.time_base) }

// SetCodecParameters populates the stream's codec parameters from params.
func (s *MuxStream) SetCodecParameters(params *CodecParameters) error {
	if ret := C.avcodec_parameters_copy(s.ptr.codecpar, params.ptr); ret < 0 {
		return newBackendError("stream set codec parameters", int32(ret))
	}
	return nil
}

// OpenFileIO opens loc for writing using the backend's own file I/O.
func (m *Muxer) OpenFileIO(loc Location) error {
	if m.ctx.oformat.flags&C.AVFMT_NOFILE != 0 {
		return nil
	}
	path := loc.cString()
	cpath := (*C.char)(unsafe.Pointer(&path[0]))
	if ret := C.avio_open(&m.ctx.pb, cpath, C.AVIO_FLAG_WRITE); ret < 0 {
		return newBackendError("avio open", int32(ret))
	}
	return nil
}

// OpenCustomIO installs a memory-backed AVIOContext whose write callback
// appends every write to sink.
func (m *Muxer) OpenCustomIO(sink sinkWriter) error {
	buf := C.av_malloc(C.size_t(avioBufferSize))
	if buf == nil {
		return NewTranscodeError("avio buffer alloc failed", nil)
	}
	m.handle = cgo.NewHandle(sink)
	io := C.avio_alloc_context(
		(*C.uchar)(buf), C.int(avioBufferSize), 1, /* write_flag */
		unsafe.Pointer(&m.handle), nil, nil, nil,
	)
	if io == nil {
		C.av_free(buf)
		m.handle.Delete()
		return NewTranscodeError("avio alloc context failed", nil)
	}
	C.reel_set_write_callback(io)
	m.ioCtx = io
	m.ctx.pb = io
	m.ctx.flags |= C.AVFMT_FLAG_CUSTOM_IO
	return nil
}

// WriteHeader writes the container header with the given muxer options.
func (m *Muxer) WriteHeader(opts Options) error {
	if m.headerDone {
		return nil
	}
	dict := opts.toDict()
	ret := C.avformat_write_header(m.ctx, &dict)
	freeDict(dict)
	if ret < 0 {
		return newBackendError("write header", int32(ret))
	}
	m.headerDone = true
	return nil
}

// HeaderWritten reports whether WriteHeader has succeeded.
func (m *Muxer) HeaderWritten() bool { return m.headerDone }

// Write writes pkt without interleaving.
func (m *Muxer) Write(pkt *Packet) error {
	if !m.headerDone {
		return fmt.Errorf("muxer write: %w", ErrUninitializedCodec)
	}
	if ret := C.av_write_frame(m.ctx, pkt.ptr); ret < 0 {
		return newBackendError("write frame", int32(ret))
	}
	return nil
}

// WriteInterleaved writes pkt through the backend's interleaving queue,
// which may buffer and reorder across streams to keep DTS monotonic per
// stream.
func (m *Muxer) WriteInterleaved(pkt *Packet) error {
	if !m.headerDone {
		return fmt.Errorf("muxer write interleaved: %w", ErrUninitializedCodec)
	}
	if ret := C.av_interleaved_write_frame(m.ctx, pkt.ptr); ret < 0 {
		return newBackendError("write interleaved frame", int32(ret))
	}
	return nil
}

// WriteTrailer writes the container trailer. A no-op if the header was
// never written.
func (m *Muxer) WriteTrailer() error {
	if !m.headerDone || m.trailerDone {
		return nil
	}
	if ret := C.av_write_trailer(m.ctx); ret < 0 {
		return newBackendError("write trailer", int32(ret))
	}
	m.trailerDone = true
	return nil
}

// TrailerWritten reports whether WriteTrailer has succeeded.
func (m *Muxer) TrailerWritten() bool { return m.trailerDone }

// Close releases the muxer context and any custom I/O. If the muxer is
// still in the HeaderWritten state, the trailer is written first.
func (m *Muxer) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.headerDone && !m.trailerDone {
		_ = m.WriteTrailer()
	}
	if m.ioCtx != nil {
		C.av_freep(unsafe.Pointer(&m.ioCtx.buffer))
		C.avio_context_free(&m.ioCtx)
	} else if m.ctx.pb != nil && m.ctx.oformat.flags&C.AVFMT_NOFILE == 0 {
		C.avio_closep(&m.ctx.pb)
	}
	if m.handle != 0 {
		m.handle.Delete()
		m.handle = 0
	}
	C.avformat_free_context(m.ctx)
}
