package avbridge

/*
#include <libavutil/pixfmt.h>
*/
import "C"

// PixelFormat is a thin newtype over the backend's raw AVPixelFormat
// integer. The hundreds of backend variants are not re-enumerated; only
// the dozen formats the core actually exercises get named constants. Any
// other backend value round-trips through PixelFormat unchanged (construct
// with PixelFormat(raw), read back with Raw()).
type PixelFormat int32

// Named pixel formats the pipeline exercises directly.
const (
	PixFmtNone    PixelFormat = PixelFormat(C.AV_PIX_FMT_NONE)
	PixFmtYUV420P PixelFormat = PixelFormat(C.AV_PIX_FMT_YUV420P)
	PixFmtRGB24   PixelFormat = PixelFormat(C.AV_PIX_FMT_RGB24)
	PixFmtNV12    PixelFormat = PixelFormat(C.AV_PIX_FMT_NV12)
	PixFmtRGBA    PixelFormat = PixelFormat(C.AV_PIX_FMT_RGBA)
	PixFmtCUDA    PixelFormat = PixelFormat(C.AV_PIX_FMT_CUDA)
	PixFmtVAAPI   PixelFormat = PixelFormat(C.AV_PIX_FMT_VAAPI)
)

// Raw returns the underlying backend integer.
func (f PixelFormat) Raw() int32 { return int32(f) }

// String returns the backend's canonical short name for f (e.g. "yuv420p"),
// or "none" if f is unrecognized.
func (f PixelFormat) String() string {
	name := C.av_get_pix_fmt_name(C.enum_AVPixelFormat(f))
	if name == nil {
		return "none"
	}
	return C.GoString(name)
}

// CodecID is a thin newtype over the backend's raw AVCodecID integer,
// following the same minimal-enumeration policy as PixelFormat.
type CodecID int32

const (
	CodecIDNone CodecID = CodecID(C.AV_CODEC_ID_NONE)
	CodecIDH264 CodecID = CodecID(C.AV_CODEC_ID_H264)
)

func (c CodecID) Raw() int32 { return int32(c) }
