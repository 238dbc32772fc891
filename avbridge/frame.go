package avbridge

/*
#include <libavutil/frame.h>
#include <libavutil/imgutils.h>
#include <libavutil/pixdesc.h>
*/
import "C"
import "unsafe"

// PictureType identifies the coding type of a decoded/to-be-encoded frame.
type PictureType int32

const (
	PictureTypeNone PictureType = C.AV_PICTURE_TYPE_NONE
	PictureTypeI    PictureType = C.AV_PICTURE_TYPE_I
	PictureTypeP    PictureType = C.AV_PICTURE_TYPE_P
	PictureTypeB    PictureType = C.AV_PICTURE_TYPE_B
)

// maxPlanes bounds the plane arrays this wrapper exposes; AVFrame itself
// allows up to AV_NUM_DATA_POINTERS (8), which is also reel's bound.
const maxPlanes = 8

// RawFrame owns planar or hardware-backed image memory. If the frame is
// hardware-resident (IsHardwareResident() and Format() equals the owning
// HWContext's configured hardware format), Data()/Linesize() must not be
// read as CPU memory; use HWContext.Download first.
type RawFrame struct {
	ptr      *C.AVFrame
	closed   bool
	timeBase Rational
}

// NewRawFrame allocates an unset frame; set Width/Height/Format then call
// AllocBuffer before writing pixel data.
func NewRawFrame() *RawFrame {
	return &RawFrame{ptr: C.av_frame_alloc()}
}

// Close releases the frame's backing buffer(s). Safe to call more than
// once.
func (f *RawFrame) Close() {
	if f.closed {
		return
	}
	f.closed = true
	C.av_frame_free(&f.ptr)
}

// Width returns the frame's pixel width.
func (f *RawFrame) Width() int { return int(f.ptr.width) }

// Height returns the frame's pixel height.
func (f *RawFrame) Height() int { return int(f.ptr.height) }

// SetDimensions sets width and height; must be called before AllocBuffer.
func (f *RawFrame) SetDimensions(w, h int) {
	f.ptr.width = C.int(w)
	f.ptr.height = C.int(h)
}

// Format returns the frame's pixel format.
func (f *RawFrame) Format() PixelFormat { return PixelFormat(f.ptr.format) }

// SetFormat sets the frame's pixel format; must be called before
// AllocBuffer.
func (f *RawFrame) SetFormat(pf PixelFormat) { f.ptr.format = C.int(pf) }

// AllocBuffer allocates the frame's backing buffer(s) after Width, Height,
// and Format have been set.
func (f *RawFrame) AllocBuffer() error {
	if ret := C.av_frame_get_buffer(f.ptr, 0); ret < 0 {
		return newBackendError("frame alloc buffer", int32(ret))
	}
	return nil
}

// MakeWritable ensures the frame's backing buffer is not shared with any
// other frame, copying it first if necessary.
func (f *RawFrame) MakeWritable() error {
	if ret := C.av_frame_make_writable(f.ptr); ret < 0 {
		return newBackendError("frame make writable", int32(ret))
	}
	return nil
}

// PictType returns the frame's picture type.
func (f *RawFrame) PictType() PictureType { return PictureType(f.ptr.pict_type) }

// SetPictType sets the frame's picture type. Used by the encoder to force
// keyframes; the backend treats this as a hint, not a guarantee.
func (f *RawFrame) SetPictType(pt PictureType) { f.ptr.pict_type = C.enum_AVPictureType(pt) }

// PTS returns the frame's presentation timestamp in its time base.
func (f *RawFrame) PTS() Time { return TimeFromBackend(int64(f.ptr.pts), f.timeBase) }

// SetPTS sets the raw PTS value (in the frame's current time base).
func (f *RawFrame) SetPTS(v int64) { f.ptr.pts = C.int64_t(v) }

// SetTimeBase records the Rational f's PTS is expressed in. The backend's
// AVFrame time_base field availability varies by build; reel tracks it
// alongside the frame explicitly, as it does for Packet.
func (f *RawFrame) SetTimeBase(tb Rational) { f.timeBase = tb }

// TimeBase returns the frame's tracked time base.
func (f *RawFrame) TimeBase() Rational { return f.timeBase }

// PktDTS returns the DTS of the packet that produced this frame during
// decode (backend's pkt_dts field); decoder post-processing copies this
// into the frame's presented PTS for the encoder to consume.
func (f *RawFrame) PktDTS() int64 { return int64(f.ptr.pkt_dts) }

// IsHardwareResident reports whether plane 0 has a non-nil backing buffer
// reference, i.e. the frame may be GPU-resident. Definitive hardware
// classification (matching the configured hw format) is HWContext.IsHWFrame.
func (f *RawFrame) IsHardwareResident() bool { return f.ptr.buf[0] != nil }

// HWFramesCtx reports whether the frame carries an attached hardware
// frames context (it is the product of, or destined for, hardware codec
// I/O).
func (f *RawFrame) HWFramesCtx() bool { return f.ptr.hw_frames_ctx != nil }

// planeHeight returns plane i's actual height: full frame height for the
// luma/alpha planes, but the backend's vertically subsampled chroma height
// (AV_CEIL_RSHIFT(height, log2_chroma_h), read from the format's
// av_pix_fmt_desc_get descriptor) for chroma planes 1 and 2 in planar and
// semi-planar YUV formats such as YUV420P/NV12, which the backend does not
// allocate at full luma height.
func (f *RawFrame) planeHeight(i int) int {
	h := f.Height()
	if i != 1 && i != 2 {
		return h
	}
	desc := C.av_pix_fmt_desc_get(C.enum_AVPixelFormat(f.ptr.format))
	if desc == nil {
		return h
	}
	shift := uint(desc.log2_chroma_h)
	return (h + (1 << shift) - 1) >> shift
}

// Plane returns a mutable view of plane i's data, sized by Linesize(i) and
// planeHeight(i). Returns nil past the backend's reported number of planes
// for this format.
func (f *RawFrame) Plane(i int) []byte {
	if i < 0 || i >= maxPlanes || f.ptr.data[i] == nil {
		return nil
	}
	ls := f.Linesize(i)
	if ls <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(f.ptr.data[i])), ls*f.planeHeight(i))
}

// Linesize returns the stride, in bytes, of plane i.
func (f *RawFrame) Linesize(i int) int {
	if i < 0 || i >= maxPlanes {
		return 0
	}
	return int(f.ptr.linesize[i])
}

// FillRGB24 paints an RGB24 HWC byte array into an already-allocated
// frame's plane 0, respecting the plane's linesize stride. Used by the
// array-frame encode path. Returns ErrInvalidFrameFormat if
// the frame isn't RGB24 or data's length doesn't match width*height*3.
func (f *RawFrame) FillRGB24(data []byte) error {
	if f.Format() != PixFmtRGB24 {
		return ErrInvalidFrameFormat
	}
	w, h := f.Width(), f.Height()
	if len(data) != w*h*3 {
		return ErrInvalidFrameFormat
	}
	ls := f.Linesize(0)
	plane := f.Plane(0)
	if plane == nil {
		return ErrInvalidFrameFormat
	}
	rowBytes := w * 3
	for y := 0; y < h; y++ {
		copy(plane[y*ls:y*ls+rowBytes], data[y*rowBytes:(y+1)*rowBytes])
	}
	return nil
}
