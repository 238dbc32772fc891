package avbridge

/*
#include <libavutil/avutil.h>
#include <libavutil/error.h>
#include <errno.h>

static int reel_averror_eagain(void)        { return AVERROR(EAGAIN); }
static int reel_averror_eof(void)            { return AVERROR_EOF; }
static int reel_averror_invaliddata(void)    { return AVERROR_INVALIDDATA; }
static int reel_averror_streamnotfound(void) { return AVERROR_STREAM_NOT_FOUND; }
*/
import "C"

import (
	"unsafe"
)

// averrorEAGAIN etc. are resolved once at package init from the backend's
// own macros rather than hard-coded, since AVERROR(EAGAIN) depends on the
// platform's errno numbering.
var (
	averrorEAGAIN         = int32(C.reel_averror_eagain())
	averrorEOF            = int32(C.reel_averror_eof())
	averrorInvalidData    = int32(C.reel_averror_invaliddata())
	averrorStreamNotFound = int32(C.reel_averror_streamnotfound())
)

// averrorString fills buf with the backend's human-readable description of
// code via av_strerror, returning false if the backend could not describe
// it.
func averrorString(code int32, buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	ret := C.av_strerror(C.int(code), (*C.char)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)))
	return ret == 0
}
