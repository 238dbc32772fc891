package avbridge

/*
#include <stdlib.h>
#include <libavutil/dict.h>
*/
import "C"
import "unsafe"

// Options is a key/value bag passed to the backend when opening inputs,
// outputs, or codecs. It mirrors FFmpeg's AVDictionary at the Go level so
// callers never touch the backend's dictionary directly.
type Options map[string]string

// NewOptions returns an empty Options bag.
func NewOptions() Options { return Options{} }

// Set stores a key/value pair, overwriting any existing value for key.
func (o Options) Set(key, value string) Options {
	o[key] = value
	return o
}

// Merge copies every entry of other into o, overwriting on conflict, and
// returns o for chaining.
func (o Options) Merge(other Options) Options {
	for k, v := range other {
		o[k] = v
	}
	return o
}

// toDict allocates a backend AVDictionary* populated from o. The caller
// owns the returned dictionary and must free it via freeDict, unless it is
// consumed (and nilled) by a backend call that takes ownership on success
// (e.g. avformat_open_input, avcodec_open2).
func (o Options) toDict() *C.AVDictionary {
	var dict *C.AVDictionary
	for k, v := range o {
		ck := C.CString(k)
		cv := C.CString(v)
		C.av_dict_set(&dict, ck, cv, 0)
		C.free(unsafe.Pointer(ck))
		C.free(unsafe.Pointer(cv))
	}
	return dict
}

func freeDict(dict *C.AVDictionary) {
	if dict != nil {
		C.av_dict_free(&dict)
	}
}

// Preset constructors
// PresetRTSPTransportTCP forces RTSP transport over TCP.
func PresetRTSPTransportTCP() Options {
	return NewOptions().Set("rtsp_transport", "tcp")
}

// PresetRTSPTransportTCPAndSaneTimeouts forces TCP transport and applies
// conservative read/connect timeouts (16s) suitable for flaky networks.
func PresetRTSPTransportTCPAndSaneTimeouts() Options {
	return PresetRTSPTransportTCP().
		Set("rw_timeout", "16000000").
		Set("stimeout", "16000000")
}

// PresetFragmentedMOV configures fragmented/streamable MP4 output.
func PresetFragmentedMOV() Options {
	return NewOptions().Set("movflags", "faststart+frag_keyframe+frag_custom+empty_moov+omit_tfhd_offset")
}

// PresetH264 applies the libx264 "medium" preset.
func PresetH264() Options {
	return NewOptions().Set("preset", "medium")
}

// PresetH264Realtime applies libx264 "medium" with zero-latency tuning for
// live/realtime encoding.
func PresetH264Realtime() Options {
	return PresetH264().
		Set("quality", "fast").
		Set("tune", "zerolatency")
}
