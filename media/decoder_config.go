package media

import (
	"github.com/reelcore/reel/avbridge"
)

// decoderConfig holds DecoderSplit configuration parameters. Unexported
// and managed by functional options.
type decoderConfig struct {
	hwDevice     *avbridge.HWDeviceConfig
	resize       *ResizeStrategy
	threadCount  int
	threadKind   avbridge.ThreadKind
	codecOptions avbridge.Options
}

// DecoderOption configures a DecoderSplit at construction.
type DecoderOption func(*decoderConfig)

// WithHardwareDevice requests hardware-accelerated decode via cfg.
func WithHardwareDevice(cfg avbridge.HWDeviceConfig) DecoderOption {
	return func(c *decoderConfig) { c.hwDevice = &cfg }
}

// WithResize requests output-dimension computation via strategy.
func WithResize(strategy ResizeStrategy) DecoderOption {
	return func(c *decoderConfig) { c.resize = &strategy }
}

// WithThreading configures the decoder codec context's threading model
// before it is opened.
func WithThreading(count int, kind avbridge.ThreadKind) DecoderOption {
	return func(c *decoderConfig) {
		c.threadCount = count
		c.threadKind = kind
	}
}

// WithCodecOptions passes opts to the backend's open_codec call.
func WithCodecOptions(opts avbridge.Options) DecoderOption {
	return func(c *decoderConfig) { c.codecOptions = opts }
}
