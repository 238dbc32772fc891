package media

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/reelcore/reel/avbridge"
)

// encodeDrainLimit bounds the finish-protocol drain loop.
const encodeDrainLimit = 100

// defaultKeyframeInterval is preset_h264_yuv420p's default.
const defaultKeyframeInterval = 12

// defaultBitrate is preset_h264_yuv420p's nominal bitrate, in bits/second.
const defaultBitrate = 1_000_000

// nominalFramerate is the framerate every encoder preset nominally
// negotiates; actual pacing is driven by caller-
// supplied PTS values, not this field.
var nominalFramerate = avbridge.Rational{Num: 30, Den: 1}

// EncoderSettings configures an Encoder's codec, independent of the
// Writer it is attached to.
type EncoderSettings struct {
	Width, Height    int
	PixFmt           avbridge.PixelFormat
	BitrateBPS       int64
	KeyframeInterval int
	Options          avbridge.Options
}

// PresetH264YUV420P builds the default H.264/YUV420P settings: 1 Mbps
// nominal bitrate, 12-frame keyframe interval, libx264 "medium" preset,
// plus zero-latency tuning when realtime is true.
func PresetH264YUV420P(w, h int, realtime bool) EncoderSettings {
	opts := avbridge.PresetH264()
	if realtime {
		opts = avbridge.PresetH264Realtime()
	}
	return EncoderSettings{
		Width: w, Height: h,
		PixFmt:           avbridge.PixFmtYUV420P,
		BitrateBPS:       defaultBitrate,
		KeyframeInterval: defaultKeyframeInterval,
		Options:          opts,
	}
}

// PresetH264Custom builds H.264 settings with an explicit pixel format and
// options bag, keeping the default bitrate and keyframe interval.
func PresetH264Custom(w, h int, pixFmt avbridge.PixelFormat, options avbridge.Options) EncoderSettings {
	return EncoderSettings{
		Width: w, Height: h,
		PixFmt:           pixFmt,
		BitrateBPS:       defaultBitrate,
		KeyframeInterval: defaultKeyframeInterval,
		Options:          options,
	}
}

// muxerHolder is satisfied by FileWriter, BufWriter, and
// PacketizedBufWriter: the subset of the Writer contract an Encoder drives
// directly.
type muxerHolder interface {
	Muxer() *avbridge.Muxer
	HasGlobalHeader() bool
	NewStream() (*avbridge.MuxStream, error)
}

// EncoderBuilder constructs an Encoder attached to a writer.
type EncoderBuilder struct {
	Settings    EncoderSettings
	Interleaved bool
	InputWidth  int
	InputHeight int

	threadCount   int
	threadKind    avbridge.ThreadKind
	writeHeaderNow bool
}

// EncoderOption configures an EncoderBuilder before Build.
type EncoderOption func(*EncoderBuilder)

// NewEncoderBuilder applies options on top of settings, mirroring the
// teacher's functional-options construction style.
func NewEncoderBuilder(settings EncoderSettings, options ...EncoderOption) EncoderBuilder {
	b := EncoderBuilder{Settings: settings}
	for _, o := range options {
		o(&b)
	}
	return b
}

// WithKeyframeInterval overrides the settings' keyframe interval.
func WithKeyframeInterval(n int) EncoderOption {
	return func(b *EncoderBuilder) { b.Settings.KeyframeInterval = n }
}

// WithRealtime layers zero-latency tuning onto the encoder's options.
func WithRealtime() EncoderOption {
	return func(b *EncoderBuilder) { b.Settings.Options = b.Settings.Options.Merge(avbridge.PresetH264Realtime()) }
}

// WithInterleavedWrites configures the Encoder to write drained packets via
// the muxer's interleaving queue instead of plain writes.
func WithInterleavedWrites() EncoderOption {
	return func(b *EncoderBuilder) { b.Interleaved = true }
}

// WithEncoderThreading configures the encoder codec context's threading
// model before it is opened.
func WithEncoderThreading(count int, kind avbridge.ThreadKind) EncoderOption {
	return func(b *EncoderBuilder) {
		b.threadCount = count
		b.threadKind = kind
	}
}

// WithInputDimensions records the pre-scale RGB24 frame dimensions, when
// they differ from the encoder's output dimensions.
func WithInputDimensions(w, h int) EncoderOption {
	return func(b *EncoderBuilder) {
		b.InputWidth = w
		b.InputHeight = h
	}
}

// WriteHeaderNow opts out of the default lazy write_header-on-first-
// EncodeRaw timing, writing the container
// header as part of Build instead. Needed by fragmented-MP4 callers whose
// header options must be fixed at muxer-allocation time.
func WriteHeaderNow() EncoderOption {
	return func(b *EncoderBuilder) { b.writeHeaderNow = true }
}

// Build negotiates GLOBAL_HEADER, creates the writer's output stream,
// opens an H.264 encoder with the given settings, and constructs the
// RGB24→pix_fmt scaler.
func (b EncoderBuilder) Build(writer muxerHolder) (*Encoder, error) {
	codec, err := avbridge.FindEncoderH264()
	if err != nil {
		return nil, err
	}
	if writer.HasGlobalHeader() {
		codec.SetGlobalHeader(true)
	}
	codec.SetDimensions(b.Settings.Width, b.Settings.Height)
	codec.SetPixFmt(b.Settings.PixFmt)
	codec.SetBitrate(b.Settings.BitrateBPS)
	codec.SetFramerate(nominalFramerate)
	codec.SetTimeBase(avbridge.Rational{Num: 1, Den: avbridge.AVTimeBase})
	if b.threadCount > 0 {
		codec.SetThreading(b.threadCount, b.threadKind)
	}

	if err := codec.Open(b.Settings.Options); err != nil {
		codec.Close()
		return nil, err
	}

	inW, inH := b.InputWidth, b.InputHeight
	if inW == 0 || inH == 0 {
		inW, inH = b.Settings.Width, b.Settings.Height
	}
	scaler, err := avbridge.NewScaler(inW, inH, avbridge.PixFmtRGB24, b.Settings.Width, b.Settings.Height, b.Settings.PixFmt)
	if err != nil {
		codec.Close()
		return nil, err
	}

	stream, err := writer.NewStream()
	if err != nil {
		scaler.Close()
		codec.Close()
		return nil, err
	}

	params, err := codec.ExtractCodecParameters()
	if err != nil {
		scaler.Close()
		codec.Close()
		return nil, err
	}
	if err := stream.SetCodecParameters(params); err != nil {
		params.Close()
		scaler.Close()
		codec.Close()
		return nil, err
	}
	params.Close()
	stream.SetTimeBase(codec.TimeBase())

	enc := &Encoder{
		writer:           writer,
		codec:            codec,
		scaler:           scaler,
		stream:           stream,
		id:               uuid.NewString(),
		keyframeInterval: b.Settings.KeyframeInterval,
		interleaved:      b.Interleaved,
	}

	if b.writeHeaderNow {
		if err := writer.Muxer().WriteHeader(avbridge.NewOptions()); err != nil {
			scaler.Close()
			codec.Close()
			return nil, err
		}
		enc.headerWritten = true
	}

	return enc, nil
}

// Encoder drives an opened H.264 codec context and a Scaler, writing
// encoded packets to its Writer's muxer. It owns its codec context and
// Scaler.
type Encoder struct {
	writer muxerHolder
	codec  *avbridge.CodecContext
	scaler *avbridge.Scaler
	stream *avbridge.MuxStream
	id     string

	keyframeInterval int
	interleaved      bool
	frameCount       int64
	headerWritten    bool
	finished         bool
}

// PipelineID returns a unique identifier for this Encoder instance, stable
// for its lifetime.
func (e *Encoder) PipelineID() string { return e.id }

// Encode converts an HWC RGB24 byte array at sourceTimestamp into the
// encoder's pixel format and encodes it.
func (e *Encoder) Encode(rgb []byte, w, h int, sourceTimestamp avbridge.Time) error {
	sw, sh, _ := e.scaler.SrcDims()
	if w != sw || h != sh || len(rgb) != w*h*3 {
		return fmt.Errorf("encode: %w", avbridge.ErrInvalidFrameFormat)
	}
	frame := avbridge.NewRawFrame()
	frame.SetDimensions(w, h)
	frame.SetFormat(avbridge.PixFmtRGB24)
	if err := frame.AllocBuffer(); err != nil {
		frame.Close()
		return err
	}
	if err := frame.FillRGB24(rgb); err != nil {
		frame.Close()
		return err
	}
	aligned := sourceTimestamp.AlignedWith(e.codec.TimeBase())
	if v, ok := aligned.IntoValue(); ok {
		frame.SetPTS(v)
	}
	frame.SetTimeBase(e.codec.TimeBase())

	return e.EncodeRaw(frame)
}

// EncodeRaw scales frame into the encoder's configured pixel format,
// forces a keyframe every keyframe_interval frames, sends it to the
// codec, and drains/writes any resulting packets. frame is consumed
// (closed) regardless of outcome.
func (e *Encoder) EncodeRaw(frame *avbridge.RawFrame) error {
	defer frame.Close()

	sw, sh, sf := e.scaler.SrcDims()
	if frame.Width() != sw || frame.Height() != sh || frame.Format() != sf {
		return fmt.Errorf("encode raw: %w", avbridge.ErrInvalidFrameFormat)
	}

	if !e.headerWritten {
		if err := e.writer.Muxer().WriteHeader(avbridge.NewOptions()); err != nil {
			return err
		}
		e.headerWritten = true
	}

	scaled, err := e.scaler.Scale(frame)
	if err != nil {
		return err
	}
	defer scaled.Close()

	if e.keyframeInterval > 0 && e.frameCount%int64(e.keyframeInterval) == 0 {
		scaled.SetPictType(avbridge.PictureTypeI)
	}
	e.frameCount++

	// EAGAIN from SendFrame means scaled was not consumed: drain pending
	// packets and retry the same frame, rather than dropping it.
	for {
		sendErr := e.codec.SendFrame(scaled)
		if sendErr == nil {
			break
		}
		if !avbridge.IsAgain(sendErr) {
			return sendErr
		}
		if err := e.drainAndWrite(); err != nil {
			return err
		}
	}

	return e.drainAndWrite()
}

// drainAndWrite pulls every currently-available encoded packet, rescales
// its timestamps into the output stream's time base, and writes it.
func (e *Encoder) drainAndWrite() error {
	for {
		pkt, err := e.codec.ReceivePacket()
		if err != nil {
			if avbridge.IsAgain(err) || avbridge.IsEOF(err) {
				return nil
			}
			return err
		}
		if err := e.writeOut(pkt); err != nil {
			return err
		}
	}
}

func (e *Encoder) writeOut(pkt *avbridge.Packet) error {
	defer pkt.Close()
	pkt.RescaleTS(e.codec.TimeBase(), e.stream.TimeBase())
	pkt.SetStreamIndex(e.stream.Index())
	pkt.SetPosition(-1)
	m := e.writer.Muxer()
	if e.interleaved {
		return m.WriteInterleaved(pkt)
	}
	return m.Write(pkt)
}

// Finish is a no-op if the header was never written; otherwise it sends
// EOF to the codec, drains up to encodeDrainLimit packets writing each,
// then writes the container trailer. Idempotent.
func (e *Encoder) Finish() error {
	if e.finished {
		return nil
	}
	e.finished = true
	if !e.headerWritten {
		return nil
	}

	_ = e.codec.SendFrame(nil)
	for i := 0; i < encodeDrainLimit; i++ {
		pkt, err := e.codec.ReceivePacket()
		if err != nil {
			break
		}
		if werr := e.writeOut(pkt); werr != nil {
			return werr
		}
	}
	return e.writer.Muxer().WriteTrailer()
}

// Close runs Finish, swallowing any error, then releases the codec
// context and scaler.
func (e *Encoder) Close() {
	_ = e.Finish()
	e.scaler.Close()
	e.codec.Close()
}
