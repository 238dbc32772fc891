package avbridge

/*
#include <libavcodec/avcodec.h>
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"
)

// goGetFormatTrampoline is the AVCodecContext.get_format callback target
// (installed by HWContext.attachGetFormat). cgo cannot export a method or
// closure directly as a C callback, so this package-level function
// recovers the owning *HWContext from the cgo.Handle stashed in
// ctx->opaque and delegates to HWContext.chooseFormat.
//
//export goGetFormatTrampoline
func goGetFormatTrampoline(ctx *C.AVCodecContext, fmts *C.enum_AVPixelFormat) C.enum_AVPixelFormat {
	handlePtr := (*cgo.Handle)(ctx.opaque)
	if handlePtr == nil {
		return C.AV_PIX_FMT_NONE
	}
	hw, ok := handlePtr.Value().(*HWContext)
	if !ok {
		return C.AV_PIX_FMT_NONE
	}

	var offered []PixelFormat
	for p := unsafe.Pointer(fmts); ; p = unsafe.Add(p, unsafe.Sizeof(C.enum_AVPixelFormat(0))) {
		f := *(*C.enum_AVPixelFormat)(p)
		if f == C.AV_PIX_FMT_NONE {
			break
		}
		offered = append(offered, PixelFormat(f))
	}

	chosen := hw.chooseFormat(offered)
	return C.enum_AVPixelFormat(chosen)
}
