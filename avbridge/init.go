package avbridge

/*
#include <libavformat/avformat.h>
#include <libavdevice/avdevice.h>
#include <libavutil/log.h>
*/
import "C"
import "sync"

var initOnce sync.Once

// Init performs the backend's process-wide setup: network protocol
// registration and (for device-backed inputs) device registration. It is
// idempotent and safe to call from multiple goroutines; OpenInput and
// AllocOutputContext call it implicitly.
func Init() {
	initOnce.Do(func() {
		C.avformat_network_init()
		C.avdevice_register_all()
		C.av_log_set_level(C.AV_LOG_ERROR)
	})
}

// SetLogLevel adjusts the backend's process-wide log verbosity. The
// backend's log level is process-wide state; this call is idempotent in
// the sense that setting the same level twice has no additional effect.
func SetLogLevel(level int32) {
	Init()
	C.av_log_set_level(C.int(level))
}
