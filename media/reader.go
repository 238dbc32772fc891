package media

import (
	"github.com/google/uuid"
	"github.com/reelcore/reel/avbridge"
)

// StreamInfo templates a decoder or encoder from a Reader's stream.
type StreamInfo = avbridge.StreamInfo

// Reader opens a source Location, demuxes packets, and serves seek
// requests. It owns its demuxer; Packets it emits outlive it.
type Reader struct {
	demux *avbridge.Demuxer
	// id identifies this pipeline instance for correlating log lines
	// (the zerolog pipeline_id field at the cmd/reel boundary); reel
	// itself never logs.
	id string
}

// Open opens loc with opts and scans it for stream info.
func Open(loc avbridge.Location, opts avbridge.Options) (*Reader, error) {
	d, err := avbridge.OpenInput(loc, opts)
	if err != nil {
		return nil, err
	}
	return &Reader{demux: d, id: uuid.NewString()}, nil
}

// PipelineID returns a unique identifier for this Reader instance, stable
// for its lifetime.
func (r *Reader) PipelineID() string { return r.id }

// Close closes the underlying demuxer input.
func (r *Reader) Close() { r.demux.Close() }

// BestVideoStreamIndex delegates to the backend's "find best stream"
// heuristic.
func (r *Reader) BestVideoStreamIndex() (int, error) {
	return r.demux.BestVideoStreamIndex()
}

// StreamInfo returns stream i's time base and an independently owned clone
// of its codec parameters, safe to retain past Close. The caller must
// call the returned StreamInfo.CodecParameters.Close when done with it.
func (r *Reader) StreamInfo(i int) (StreamInfo, error) {
	return r.demux.StreamInfo(i)
}

// Read demuxes the next packet belonging to streamIndex.
func (r *Reader) Read(streamIndex int) (*avbridge.Packet, error) {
	return r.demux.Read(streamIndex)
}

// Seek seeks to tsMs milliseconds with a ±1 second leeway window. Every
// successful seek invalidates decoder-internal buffers; callers holding a
// DecoderSplit over this Reader must call its Flush method immediately
// afterward.
func (r *Reader) Seek(tsMs int64) error {
	return r.demux.Seek(tsMs)
}

// SeekToFrame seeks by frame number on streamIndex. May return
// avbridge.ErrUnsupported depending on the demuxer.
func (r *Reader) SeekToFrame(streamIndex int, frameNumber int64) error {
	return r.demux.SeekToFrame(streamIndex, frameNumber)
}

// SeekToStart seeks to the beginning of the stream.
func (r *Reader) SeekToStart() error {
	return r.demux.SeekToStart()
}

// SeekAny seeks streamIndex to the nearest frame of any type, not just a
// keyframe. As with Seek, the owning DecoderSplit must
// be flushed immediately afterward.
func (r *Reader) SeekAny(streamIndex int, ts avbridge.Time) error {
	return r.demux.SeekAny(streamIndex, ts)
}
