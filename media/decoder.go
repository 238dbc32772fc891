package media

import (
	"fmt"

	"github.com/reelcore/reel/avbridge"
)

// decodeDrainLimit bounds the destructor drain loop.
const decodeDrainLimit = 100

// DecoderSplit feeds packets from a Reader into a decoder codec context,
// drives the Feeding/Draining/Flushed state machine, and
// rescales emitted frame timestamps. It owns its codec context and
// optional HWContext.
type DecoderSplit struct {
	reader      *Reader
	streamIndex int
	codec       *avbridge.CodecContext
	hw          *avbridge.HWContext
	streamBase  avbridge.Rational

	outW, outH int
	resizer    *avbridge.Scaler

	draining bool
	closed   bool
}

// NewDecoderSplit looks up the stream's codec parameters, opens a
// matching decoder, applies options, and constructs a decoder for
// reader's stream streamIndex.
func NewDecoderSplit(reader *Reader, streamIndex int, options ...DecoderOption) (*DecoderSplit, error) {
	var cfg decoderConfig
	for _, o := range options {
		o(&cfg)
	}

	info, err := reader.StreamInfo(streamIndex)
	if err != nil {
		return nil, err
	}
	defer info.CodecParameters.Close()

	codec, err := avbridge.FindDecoder(info.CodecParameters.CodecID())
	if err != nil {
		return nil, err
	}
	if err := codec.ApplyCodecParameters(info.CodecParameters); err != nil {
		codec.Close()
		return nil, err
	}
	codec.SetTimeBase(info.TimeBase)
	if cfg.threadCount > 0 {
		codec.SetThreading(cfg.threadCount, cfg.threadKind)
	}

	d := &DecoderSplit{
		reader:      reader,
		streamIndex: streamIndex,
		codec:       codec,
		streamBase:  info.TimeBase,
	}

	if cfg.hwDevice != nil {
		hw, err := avbridge.AutoBestDevice(*cfg.hwDevice)
		if err != nil {
			codec.Close()
			return nil, err
		}
		if err := hw.BindFrames(codec.Width(), codec.Height()); err != nil {
			hw.Close()
			codec.Close()
			return nil, err
		}
		codec.AttachHW(hw)
		d.hw = hw
	}

	if err := codec.Open(cfg.codecOptions); err != nil {
		if d.hw != nil {
			d.hw.Close()
		}
		codec.Close()
		return nil, err
	}

	d.outW, d.outH = codec.Width(), codec.Height()
	if cfg.resize != nil {
		w, h, err := cfg.resize.apply(codec.Width(), codec.Height())
		if err != nil {
			d.Close()
			return nil, err
		}
		d.outW, d.outH = w, h
	}

	return d, nil
}

// TimeBase returns the decoder codec context's time base.
func (d *DecoderSplit) TimeBase() avbridge.Rational { return d.codec.TimeBase() }

// OutputDimensions returns the dimensions a caller-constructed Scaler
// should target: the resize strategy's result, or the stream's native
// dimensions if no strategy was configured.
func (d *DecoderSplit) OutputDimensions() (int, int) { return d.outW, d.outH }

// Flush discards all pending internal buffers without signaling EOF and
// returns to Feeding. Must be called
// immediately after any seek on the owning Reader.
func (d *DecoderSplit) Flush() {
	d.codec.FlushBuffers()
	d.draining = false
}

// postProcess downloads hardware frames to system memory when needed,
// then reinterprets PTS as the originating packet's DTS.
func (d *DecoderSplit) postProcess(frame *avbridge.RawFrame) (avbridge.Time, *avbridge.RawFrame, error) {
	out := frame
	if d.hw != nil && d.hw.IsHWFrame(frame) {
		downloaded, err := d.hw.Download(frame)
		frame.Close()
		if err != nil {
			return avbridge.Time{}, nil, err
		}
		out = downloaded
	}
	pktDTS := out.PktDTS()
	out.SetPTS(pktDTS)
	return avbridge.NewTime(pktDTS, d.codec.TimeBase()), out, nil
}

// sendPacketRetrying feeds pkt to the codec. EAGAIN from SendPacket means
// the packet was not consumed: pending output must be drained before the
// same packet can be resent, per the decode cycle's "not ready, loop"
// contract (avbridge/errors.go). Returns a frame if one became available
// while retrying, so the caller doesn't need to call ReceiveFrame again
// for it.
func (d *DecoderSplit) sendPacketRetrying(pkt *avbridge.Packet) (*avbridge.RawFrame, error) {
	for {
		sendErr := d.codec.SendPacket(pkt)
		if sendErr == nil {
			return nil, nil
		}
		if !avbridge.IsAgain(sendErr) {
			return nil, sendErr
		}
		frame, err := d.codec.ReceiveFrame()
		if err == nil {
			return frame, nil
		}
		if !avbridge.IsAgain(err) {
			return nil, err
		}
	}
}

// Decode runs one iteration of the decode cycle, returning the next frame in display order. Returns
// avbridge.ErrDecodeExhausted once the decoder has been fully drained; the
// decoder resets to Feeding first, so it is immediately reusable after a
// subsequent Flush/seek.
func (d *DecoderSplit) Decode() (avbridge.Time, *avbridge.RawFrame, error) {
	for {
		if !d.draining {
			pkt, err := d.reader.Read(d.streamIndex)
			if err != nil {
				d.draining = true
				if serr := d.codec.SendPacket(nil); serr != nil && !avbridge.IsEOF(serr) && !avbridge.IsAgain(serr) {
					return avbridge.Time{}, nil, serr
				}
				continue
			}
			pkt.RescaleTS(pkt.TimeBase(), d.codec.TimeBase())
			drained, err := d.sendPacketRetrying(pkt)
			pkt.Close()
			if err != nil {
				return avbridge.Time{}, nil, err
			}
			if drained != nil {
				return d.postProcess(drained)
			}

			frame, err := d.codec.ReceiveFrame()
			if err == nil {
				return d.postProcess(frame)
			}
			if avbridge.IsAgain(err) {
				continue
			}
			return avbridge.Time{}, nil, err
		}

		frame, err := d.codec.ReceiveFrame()
		if err == nil {
			return d.postProcess(frame)
		}
		if avbridge.IsEOF(err) {
			d.Flush()
			return avbridge.Time{}, nil, fmt.Errorf("decode: %w", avbridge.ErrDecodeExhausted)
		}
		if !avbridge.IsAgain(err) {
			return avbridge.Time{}, nil, err
		}
		// EAGAIN while draining should not occur (EOF has been sent and no
		// new input is being fed); rather than loop forever on a backend
		// quirk, treat it as exhausted.
		d.Flush()
		return avbridge.Time{}, nil, fmt.Errorf("decode: %w", avbridge.ErrDecodeExhausted)
	}
}

// Close sends EOF and drains up to decodeDrainLimit times to free
// backend-owned buffers, ignoring errors, then releases the codec context
// and HWContext. Safe to call more
// than once.
func (d *DecoderSplit) Close() {
	if d.closed {
		return
	}
	d.closed = true
	_ = d.codec.SendPacket(nil)
	for i := 0; i < decodeDrainLimit; i++ {
		frame, err := d.codec.ReceiveFrame()
		if err != nil {
			break
		}
		frame.Close()
	}
	if d.resizer != nil {
		d.resizer.Close()
	}
	if d.hw != nil {
		d.hw.Close()
	}
	d.codec.Close()
}
