package avbridge

/*
#include <libswscale/swscale.h>
*/
import "C"
import "unsafe"

// Scaler performs pixel-format and resolution conversion via the
// backend's software scaler.
type Scaler struct {
	ctx                      *C.struct_SwsContext
	srcW, srcH, dstW, dstH   int
	srcFmt, dstFmt           PixelFormat
}

// NewScaler constructs a Scaler converting (srcW, srcH, srcFmt) to
// (dstW, dstH, dstFmt) with bilinear filtering, equivalent to the
// backend's "empty" (no special) flags.
func NewScaler(srcW, srcH int, srcFmt PixelFormat, dstW, dstH int, dstFmt PixelFormat) (*Scaler, error) {
	ctx := C.sws_getContext(
		C.int(srcW), C.int(srcH), C.enum_AVPixelFormat(srcFmt),
		C.int(dstW), C.int(dstH), C.enum_AVPixelFormat(dstFmt),
		C.SWS_BILINEAR, nil, nil, nil,
	)
	if ctx == nil {
		return nil, ErrInvalidPixelFormat
	}
	return &Scaler{
		ctx: ctx, srcW: srcW, srcH: srcH, dstW: dstW, dstH: dstH,
		srcFmt: srcFmt, dstFmt: dstFmt,
	}, nil
}

// Close frees the underlying scaler context.
func (s *Scaler) Close() {
	if s.ctx != nil {
		C.sws_freeContext(s.ctx)
		s.ctx = nil
	}
}

// SrcDims returns the scaler's configured input dimensions and format.
func (s *Scaler) SrcDims() (w, h int, f PixelFormat) { return s.srcW, s.srcH, s.srcFmt }

// DstDims returns the scaler's configured output dimensions and format.
func (s *Scaler) DstDims() (w, h int, f PixelFormat) { return s.dstW, s.dstH, s.dstFmt }

// Scale converts src into a freshly allocated frame in the scaler's
// output format/dimensions.
func (s *Scaler) Scale(src *RawFrame) (*RawFrame, error) {
	dst := NewRawFrame()
	dst.SetDimensions(s.dstW, s.dstH)
	dst.SetFormat(s.dstFmt)
	if err := dst.AllocBuffer(); err != nil {
		dst.Close()
		return nil, err
	}

	srcSlices := (**C.uint8_t)(unsafe.Pointer(&src.ptr.data[0]))
	srcStride := (*C.int)(unsafe.Pointer(&src.ptr.linesize[0]))
	dstSlices := (**C.uint8_t)(unsafe.Pointer(&dst.ptr.data[0]))
	dstStride := (*C.int)(unsafe.Pointer(&dst.ptr.linesize[0]))

	ret := C.sws_scale(s.ctx, srcSlices, srcStride, 0, C.int(s.srcH), dstSlices, dstStride)
	if ret <= 0 {
		dst.Close()
		return nil, ErrInvalidPixelFormat
	}
	dst.timeBase = src.timeBase
	dst.SetPTS(func() int64 { v, _ := src.PTS().IntoValue(); return v }())
	return dst, nil
}
