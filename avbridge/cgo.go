// Package avbridge provides low-level Go bindings for the FFmpeg multimedia
// C framework (libavformat, libavcodec, libavutil, libswscale, libavdevice).
// This package wraps the backend's C structures and functions, providing
// direct access to demuxing, decoding, encoding, scaling, and hardware
// frame transfer.
//
// # Overview
//
// The avbridge package is the foundation layer of reel, providing direct
// mappings to backend structures and constants. It handles the low-level
// interactions with the multimedia framework through cgo calls and manual
// reference-counted buffer management.
//
// Most applications should use the higher-level media package instead of
// this package directly, unless fine-grained control over backend
// operations is required.
//
// # Architecture
//
// The package is organized into functional areas:
//
//   - Rational/Time: exact rational arithmetic and timestamp rescaling
//   - Packet/RawFrame: reference-counted compressed/uncompressed data units
//   - HWContext: hardware device binding and GPU<->CPU frame transfer
//   - Options: backend key/value configuration bags and presets
//   - Errors: backend error taxonomy and code mapping
//
// # System Requirements
//
//   - FFmpeg 6.x/7.x development headers and shared libraries
//   - CGO enabled for C bindings
//   - pkg-config entries for libavformat, libavcodec, libavutil, libswscale,
//     libavdevice, libswresample
package avbridge

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale libavdevice libswresample

#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libavutil/avutil.h>
#include <libavutil/opt.h>
#include <libavutil/pixdesc.h>
#include <libavutil/hwcontext.h>
#include <libavutil/imgutils.h>
#include <libswscale/swscale.h>
#include <libavdevice/avdevice.h>

// goGetFormatTrampoline is the Go function exported with C linkage in
// frame_hw.go; cgo cannot pass a Go function pointer directly as an
// AVCodecContext.get_format callback, so this prototype gives C code a
// name it can take the address of, and the exported function dispatches
// to HWContext.chooseFormat.
extern enum AVPixelFormat goGetFormatTrampoline(struct AVCodecContext *ctx, const enum AVPixelFormat *fmts);
*/
import "C"

// This file centralizes all CGO compiler directives for the avbridge
// package.
//
// The default configuration expects FFmpeg development packages discoverable
// via pkg-config (the ffmpeg-dev / ffmpeg-devel package family on most
// distributions, or a Homebrew "ffmpeg" install on macOS).
//
// To build against a custom or vendored FFmpeg checkout, override the
// search path using PKG_CONFIG_PATH:
//
//	PKG_CONFIG_PATH=/path/to/ffmpeg/lib/pkgconfig go build
//
// For cross-compilation, point PKG_CONFIG_PATH and PKG_CONFIG_SYSROOT_DIR
// at your target's sysroot:
//
//	PKG_CONFIG_SYSROOT_DIR=/path/to/sysroot \
//	PKG_CONFIG_PATH=/path/to/sysroot/usr/lib/pkgconfig \
//	CC=aarch64-linux-gnu-gcc \
//	GOOS=linux GOARCH=arm64 \
//	go build
