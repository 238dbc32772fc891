package avbridge

/*
#include <libavformat/avio.h>
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"
)

// goWritePacketTrampoline is the AVIOContext.write_packet callback target
// (installed by Muxer.OpenCustomIO via reel_set_write_callback). cgo
// cannot export a method or closure directly as a C callback, so this
// package-level function recovers the owning sinkWriter from the
// cgo.Handle stashed in the AVIOContext's opaque pointer and forwards the
// written bytes to it.
//
//export goWritePacketTrampoline
func goWritePacketTrampoline(opaque unsafe.Pointer, buf *C.uint8_t, bufSize C.int) C.int {
	handlePtr := (*cgo.Handle)(opaque)
	if handlePtr == nil || bufSize <= 0 {
		return bufSize
	}
	sink, ok := handlePtr.Value().(sinkWriter)
	if !ok {
		return bufSize
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(bufSize))
	chunk := writeCallbackBufs.Get(len(b))
	copy(chunk, b)
	sink.writeChunk(chunk)
	writeCallbackBufs.Put(chunk)
	return bufSize
}
