package avbridge

/*
#include <stdlib.h>
#include <libavutil/hwcontext.h>
#include <libavcodec/avcodec.h>

enum AVPixelFormat goGetFormatTrampoline(struct AVCodecContext *ctx, const enum AVPixelFormat *fmts);

static void reel_install_get_format(AVCodecContext *ctx) {
	ctx->get_format = goGetFormatTrampoline;
}
*/
import "C"
import (
	"fmt"
	"runtime/cgo"
	"unsafe"
)

// HWDeviceType identifies a hardware-acceleration backend kind.
type HWDeviceType int32

const (
	HWDeviceCUDA          HWDeviceType = C.AV_HWDEVICE_TYPE_CUDA
	HWDeviceVAAPI         HWDeviceType = C.AV_HWDEVICE_TYPE_VAAPI
	HWDeviceVDPAU         HWDeviceType = C.AV_HWDEVICE_TYPE_VDPAU
	HWDeviceDXVA2         HWDeviceType = C.AV_HWDEVICE_TYPE_DXVA2
	HWDeviceQSV           HWDeviceType = C.AV_HWDEVICE_TYPE_QSV
	HWDeviceVideoToolbox  HWDeviceType = C.AV_HWDEVICE_TYPE_VIDEOTOOLBOX
	HWDeviceD3D11VA       HWDeviceType = C.AV_HWDEVICE_TYPE_D3D11VA
	HWDeviceDRM           HWDeviceType = C.AV_HWDEVICE_TYPE_DRM
	HWDeviceOpenCL        HWDeviceType = C.AV_HWDEVICE_TYPE_OPENCL
	HWDeviceMediaCodec    HWDeviceType = C.AV_HWDEVICE_TYPE_MEDIACODEC
	HWDeviceVulkan        HWDeviceType = C.AV_HWDEVICE_TYPE_VULKAN
	HWDeviceD3D12VA       HWDeviceType = C.AV_HWDEVICE_TYPE_D3D12VA
	HWDeviceNone          HWDeviceType = C.AV_HWDEVICE_TYPE_NONE
)

func (t HWDeviceType) String() string {
	return C.GoString(C.av_hwdevice_get_type_name(C.enum_AVHWDeviceType(t)))
}

// HWDeviceConfig names the hardware-native and software-fallback pixel
// formats for a device kind.
type HWDeviceConfig struct {
	Kind       HWDeviceType
	HWFormat   PixelFormat
	SWFormat   PixelFormat
	DevicePath string
}

// defaultHWDeviceConfig returns the backend's conventional hw/sw format
// pairing for kind: NV12 software fallback for most backends, RGBA for
// OpenCL and Vulkan.
func defaultHWDeviceConfig(kind HWDeviceType, devicePath string) HWDeviceConfig {
	cfg := HWDeviceConfig{Kind: kind, SWFormat: PixFmtNV12, DevicePath: devicePath}
	switch kind {
	case HWDeviceOpenCL, HWDeviceVulkan:
		cfg.SWFormat = PixFmtRGBA
	}
	switch kind {
	case HWDeviceCUDA:
		cfg.HWFormat = PixFmtCUDA
	case HWDeviceVAAPI:
		cfg.HWFormat = PixFmtVAAPI
	default:
		cfg.HWFormat = PixFmtCUDA // narrowest common default; overridden by AutoBestDevice callers per kind as needed
	}
	return cfg
}

// AvailableHWDeviceTypes lists every hardware-acceleration kind the
// backend reports as compiled in and available on this system.
func AvailableHWDeviceTypes() []HWDeviceType {
	var types []HWDeviceType
	t := C.AV_HWDEVICE_TYPE_NONE
	for {
		t = C.av_hwdevice_iterate_types(t)
		if t == C.AV_HWDEVICE_TYPE_NONE {
			break
		}
		types = append(types, HWDeviceType(t))
	}
	return types
}

// HWContext binds a hardware device handle and, once attached to a codec,
// owns the frames pool used for GPU<->CPU transfer. Frames it produces
// reference the pool via the backend's own reference counting; HWContext
// is the arena root.
type HWContext struct {
	deviceCtx   *C.AVBufferRef
	framesCtx   *C.AVBufferRef
	cfg         HWDeviceConfig
	handle      cgo.Handle
}

// AutoBestDevice creates an HWContext for cfg.Kind if available, or for
// any available device kind otherwise. Returns
// ErrUnsupportedCodecHWDeviceType only when the backend reports no
// hardware device kinds available at all.
func AutoBestDevice(cfg HWDeviceConfig) (*HWContext, error) {
	available := AvailableHWDeviceTypes()
	if len(available) == 0 {
		return nil, ErrUnsupportedCodecHWDeviceType
	}
	chosen := cfg.Kind
	found := false
	for _, t := range available {
		if t == cfg.Kind {
			found = true
			break
		}
	}
	if !found {
		chosen = available[0]
		cfg = defaultHWDeviceConfig(chosen, cfg.DevicePath)
	}

	var devicePath *C.char
	if cfg.DevicePath != "" {
		devicePath = C.CString(cfg.DevicePath)
		defer C.free(unsafe.Pointer(devicePath))
	}

	var ref *C.AVBufferRef
	ret := C.av_hwdevice_ctx_create(&ref, C.enum_AVHWDeviceType(chosen), devicePath, nil, 0)
	if ret < 0 {
		return nil, newBackendError("hwdevice ctx create", int32(ret))
	}
	return &HWContext{deviceCtx: ref, cfg: cfg}, nil
}

// Close releases the device context and any attached frames pool.
func (h *HWContext) Close() {
	if h.handle != 0 {
		h.handle.Delete()
		h.handle = 0
	}
	if h.framesCtx != nil {
		C.av_buffer_unref(&h.framesCtx)
	}
	if h.deviceCtx != nil {
		C.av_buffer_unref(&h.deviceCtx)
	}
}

// Config returns the device configuration HWContext was built with
// (possibly adjusted by AutoBestDevice's fallback).
func (h *HWContext) Config() HWDeviceConfig { return h.cfg }

// BindFrames allocates a frames pool sized (width, height) for the
// configured hardware/software format pair with an initial pool of 20
// surfaces, ready to attach to a codec
// context via CodecContext.AttachHW.
func (h *HWContext) BindFrames(width, height int) error {
	ref := C.av_hwframe_ctx_alloc(h.deviceCtx)
	if ref == nil {
		return NewTranscodeError("hwframe ctx alloc failed", nil)
	}
	framesCtx := (*C.AVHWFramesContext)(unsafe.Pointer(ref.data))
	framesCtx.format = C.enum_AVPixelFormat(h.cfg.HWFormat)
	framesCtx.sw_format = C.enum_AVPixelFormat(h.cfg.SWFormat)
	framesCtx.width = C.int(width)
	framesCtx.height = C.int(height)
	framesCtx.initial_pool_size = 20

	if ret := C.av_hwframe_ctx_init(ref); ret < 0 {
		C.av_buffer_unref(&ref)
		return newBackendError("hwframe ctx init", int32(ret))
	}
	h.framesCtx = ref
	return nil
}

// attachGetFormat installs the get_format callback on ctx so the codec
// negotiates the configured hardware pixel format, and stores a cgo.Handle
// to h as the context's opaque pointer so the trampoline (frame_hw.go) can
// recover h. Cgo cannot pass a Go closure as a C function pointer, hence
// the trampoline + handle indirection.
func (h *HWContext) attachGetFormat(ctx *C.AVCodecContext) {
	h.handle = cgo.NewHandle(h)
	ctx.opaque = unsafe.Pointer(&h.handle)
	C.reel_install_get_format(ctx)
	if h.framesCtx != nil {
		ctx.hw_frames_ctx = C.av_buffer_ref(h.framesCtx)
	}
	ctx.hw_device_ctx = C.av_buffer_ref(h.deviceCtx)
}

// chooseFormat scans the backend's offered pixel-format list for the
// configured hardware format, returning PixFmtNone if absent. This backs
// the AVCodecContext.get_format callback.
func (h *HWContext) chooseFormat(offered []PixelFormat) PixelFormat {
	for _, f := range offered {
		if f == h.cfg.HWFormat {
			return f
		}
	}
	return PixFmtNone
}

// Download transfers a hardware-resident frame to a freshly allocated CPU
// frame using the context's software pixel format, copying generic
// properties (pts, pict_type, time_base). Errors with
// ErrInvalidFrameFormat if src is not hardware-resident.
func (h *HWContext) Download(src *RawFrame) (*RawFrame, error) {
	if !src.IsHardwareResident() {
		return nil, fmt.Errorf("hwcontext download: %w", ErrInvalidFrameFormat)
	}
	dst := NewRawFrame()
	dst.SetFormat(h.cfg.SWFormat)
	if ret := C.av_hwframe_transfer_data(dst.ptr, src.ptr, 0); ret < 0 {
		dst.Close()
		return nil, newBackendError("hwframe transfer data (download)", int32(ret))
	}
	C.av_frame_copy_props(dst.ptr, src.ptr)
	dst.timeBase = src.timeBase
	return dst, nil
}

// Upload transfers a CPU frame in the context's software pixel format to a
// freshly allocated hardware-resident frame from the bound pool. Errors
// with ErrInvalidFrameFormat if src's format does not match the
// configured software format.
func (h *HWContext) Upload(src *RawFrame) (*RawFrame, error) {
	if src.Format() != h.cfg.SWFormat {
		return nil, fmt.Errorf("hwcontext upload: %w", ErrInvalidFrameFormat)
	}
	dst := NewRawFrame()
	if ret := C.av_hwframe_get_buffer(h.framesCtx, dst.ptr, 0); ret < 0 {
		dst.Close()
		return nil, newBackendError("hwframe get buffer", int32(ret))
	}
	if ret := C.av_hwframe_transfer_data(dst.ptr, src.ptr, 0); ret < 0 {
		dst.Close()
		return nil, newBackendError("hwframe transfer data (upload)", int32(ret))
	}
	C.av_frame_copy_props(dst.ptr, src.ptr)
	dst.timeBase = src.timeBase
	return dst, nil
}

// IsHWFrame reports whether frame is hardware-resident under this
// context's configuration: a non-nil plane-0 buffer reference AND a
// format equal to the configured hardware format.
func (h *HWContext) IsHWFrame(frame *RawFrame) bool {
	return frame.IsHardwareResident() && frame.Format() == h.cfg.HWFormat
}
