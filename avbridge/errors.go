package avbridge

import (
	"errors"
	"fmt"
)

// Error variables represent the backend-independent failure taxonomy shared
// by every pipeline component. Use errors.Is() to check for specific error
// conditions in application error-handling logic.
var (
	// ErrReadExhausted indicates the demuxer hit end-of-stream after the
	// configured number of consecutive retry attempts.
	ErrReadExhausted = errors.New("read exhausted")

	// ErrDecodeExhausted indicates the decoder has been fully drained and
	// reached the Flushed state.
	ErrDecodeExhausted = errors.New("decode exhausted")

	// ErrWriteRetryLimitReached indicates the writer failed repeatedly to
	// commit a packet to the underlying muxer.
	ErrWriteRetryLimitReached = errors.New("write retry limit reached")

	// ErrInvalidFrameFormat indicates a frame's width, height, or pixel
	// format does not match what the operation expected.
	ErrInvalidFrameFormat = errors.New("invalid frame format")

	// ErrInvalidPixelFormat indicates a pixel format conversion failed or
	// the requested format is unrecognized by the backend.
	ErrInvalidPixelFormat = errors.New("invalid pixel format")

	// ErrInvalidExtraData indicates a codec parameters extradata blob is
	// corrupted or fails backend validation.
	ErrInvalidExtraData = errors.New("invalid extradata")

	// ErrInvalidCodecParameters indicates a codec parameters struct fails
	// backend validation.
	ErrInvalidCodecParameters = errors.New("invalid codec parameters")

	// ErrInvalidResizeParameters indicates a resize strategy produced zero
	// output dimensions.
	ErrInvalidResizeParameters = errors.New("invalid resize parameters")

	// ErrUnsupportedCodecParameterSets indicates the codec lacks an
	// exposable SPS/PPS (or equivalent) parameter set.
	ErrUnsupportedCodecParameterSets = errors.New("unsupported codec parameter sets")

	// ErrUninitializedCodec indicates an operation was attempted on a
	// codec context that has not been opened.
	ErrUninitializedCodec = errors.New("uninitialized codec")

	// ErrUnsupportedCodecHWDeviceType indicates the requested hardware
	// device type is not available on this system.
	ErrUnsupportedCodecHWDeviceType = errors.New("unsupported codec hw device type")

	// ErrUnsupported indicates the backend rejected an operation as not
	// implemented for the given demuxer/muxer/codec (e.g. a seek flag a
	// container does not honor).
	ErrUnsupported = errors.New("unsupported by backend")
)

// TranscodeError represents a higher-level pipeline assertion failure that
// is not directly attributable to a single backend call.
type TranscodeError struct {
	Msg   string
	Cause error
}

func (e *TranscodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcode error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("transcode error: %s", e.Msg)
}

func (e *TranscodeError) Unwrap() error { return e.Cause }

// NewTranscodeError builds a TranscodeError, optionally wrapping a cause.
func NewTranscodeError(msg string, cause error) *TranscodeError {
	return &TranscodeError{Msg: msg, Cause: cause}
}

// BackendError wraps any unmapped negative return from the backend. Code is
// the raw backend error code (as returned by e.g. av_strerror's input);
// Op names the call that produced it.
type BackendError struct {
	Code int32
	Op   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: backend error (code %d): %s", e.Op, e.Code, backendErrString(e.Code))
}

// newBackendError maps a negative backend return code to either a named
// sentinel (when the code corresponds to one of the backend's well-known
// signals) or a generic *BackendError carrying the raw code.
func newBackendError(op string, code int32) error {
	switch code {
	case averrorEAGAIN:
		// EAGAIN becomes the internal errEAGAIN signal; the decode/encode
		// loops in the media package test for it with IsAgain and treat
		// it as "not ready, loop" rather than as a failure.
		return fmt.Errorf("%s: %w", op, errEAGAIN)
	case averrorEOF:
		return fmt.Errorf("%s: %w", op, errBackendEOF)
	case averrorInvalidData:
		return fmt.Errorf("%s: %w", op, ErrInvalidCodecParameters)
	case averrorStreamNotFound:
		return fmt.Errorf("%s: %w", op, ErrUnsupportedCodecParameterSets)
	default:
		return &BackendError{Code: code, Op: op}
	}
}

// errEAGAIN and errBackendEOF are internal signals consumed by the
// Feeding/Draining/Flushed state machines in the media package; they are
// not part of the public error taxonomy because the drain protocol
// treats them as state transitions, not failures.
var (
	errEAGAIN     = errors.New("backend: not ready (EAGAIN)")
	errBackendEOF = errors.New("backend: end of stream")
)

// IsAgain reports whether err is the backend's "send again" / EAGAIN signal.
func IsAgain(err error) bool { return errors.Is(err, errEAGAIN) }

// IsEOF reports whether err is the backend's end-of-stream / flushed signal.
func IsEOF(err error) bool { return errors.Is(err, errBackendEOF) }

func backendErrString(code int32) string {
	buf := make([]byte, 256)
	if averrorString(code, buf) {
		// Trim the trailing NUL-padding the backend leaves in the buffer.
		for i, b := range buf {
			if b == 0 {
				return string(buf[:i])
			}
		}
		return string(buf)
	}
	return "unknown error"
}
