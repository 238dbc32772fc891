package media

import (
	"fmt"

	"github.com/pion/rtp"
	"github.com/reelcore/reel/avbridge"
)

// defaultPacketizedChunkSize is PacketizedBufWriter's default RTP payload
// size in bytes.
const defaultPacketizedChunkSize = 1024

// writerCore holds the muxer plumbing shared by every Writer flavor: the
// Unwritten → HeaderWritten → TrailerWritten state machine
// lives entirely in avbridge.Muxer; this just forwards stream setup.
type writerCore struct {
	muxer *avbridge.Muxer
}

// NewStream creates an output stream (forwards to the underlying muxer).
func (w *writerCore) NewStream() (*avbridge.MuxStream, error) { return w.muxer.NewStream() }

// HasGlobalHeader reports whether the container format requires codecs to
// emit global headers.
func (w *writerCore) HasGlobalHeader() bool { return w.muxer.HasGlobalHeader() }

// Muxer returns the underlying avbridge.Muxer, the shape an Encoder drives
// directly.
func (w *writerCore) Muxer() *avbridge.Muxer { return w.muxer }

// FileWriter writes a container to a filesystem path or URL using the
// backend's own file I/O.
type FileWriter struct {
	writerCore
}

// NewFileWriter allocates an output context for loc (format inferred from
// its extension, or explicit if formatName is non-empty) and opens file
// I/O.
func NewFileWriter(formatName string, loc avbridge.Location) (*FileWriter, error) {
	m, err := avbridge.AllocOutputContext(formatName, loc)
	if err != nil {
		return nil, err
	}
	if err := m.OpenFileIO(loc); err != nil {
		m.Close()
		return nil, err
	}
	return &FileWriter{writerCore{muxer: m}}, nil
}

// WriteHeader writes the container header.
func (w *FileWriter) WriteHeader(opts avbridge.Options) error { return w.muxer.WriteHeader(opts) }

// Write writes pkt without interleaving.
func (w *FileWriter) Write(pkt *avbridge.Packet) error { return w.muxer.Write(pkt) }

// WriteInterleaved writes pkt through the backend's interleaving queue.
func (w *FileWriter) WriteInterleaved(pkt *avbridge.Packet) error {
	return w.muxer.WriteInterleaved(pkt)
}

// WriteTrailer writes the container trailer.
func (w *FileWriter) WriteTrailer() error { return w.muxer.WriteTrailer() }

// Close releases the writer's muxer, auto-running the trailer first if it
// is still pending.
func (w *FileWriter) Close() { w.muxer.Close() }

// bufSink accumulates every chunk the custom AVIOContext write callback
// hands it until drained.
type bufSink struct {
	pending []byte
}

func (s *bufSink) writeChunk(b []byte) { s.pending = append(s.pending, b...) }

func (s *bufSink) drain() []byte {
	out := s.pending
	s.pending = nil
	return out
}

// BufWriter writes a container into memory, returning the bytes produced
// by each operation instead of committing them to a file.
type BufWriter struct {
	writerCore
	sink *bufSink
}

// NewBufWriter allocates an output context for formatName writing into an
// in-memory sink via a custom AVIOContext.
func NewBufWriter(formatName string) (*BufWriter, error) {
	m, err := avbridge.AllocOutputContext(formatName, avbridge.NewLocation(""))
	if err != nil {
		return nil, err
	}
	sink := &bufSink{}
	if err := m.OpenCustomIO(sink); err != nil {
		m.Close()
		return nil, err
	}
	return &BufWriter{writerCore{muxer: m}, sink}, nil
}

// WriteHeader writes the container header, returning the bytes emitted.
func (w *BufWriter) WriteHeader(opts avbridge.Options) ([]byte, error) {
	if err := w.muxer.WriteHeader(opts); err != nil {
		return nil, err
	}
	return w.sink.drain(), nil
}

// Write writes pkt without interleaving, returning the bytes emitted.
func (w *BufWriter) Write(pkt *avbridge.Packet) ([]byte, error) {
	if err := w.muxer.Write(pkt); err != nil {
		return nil, err
	}
	return w.sink.drain(), nil
}

// WriteInterleaved writes pkt through the backend's interleaving queue,
// returning the bytes emitted (may be empty if the backend buffered pkt
// internally pending reordering).
func (w *BufWriter) WriteInterleaved(pkt *avbridge.Packet) ([]byte, error) {
	if err := w.muxer.WriteInterleaved(pkt); err != nil {
		return nil, err
	}
	return w.sink.drain(), nil
}

// WriteTrailer writes the container trailer, returning the bytes emitted.
func (w *BufWriter) WriteTrailer() ([]byte, error) {
	if err := w.muxer.WriteTrailer(); err != nil {
		return nil, err
	}
	return w.sink.drain(), nil
}

// Drain returns and clears every byte accumulated by the custom I/O
// callback since the last Drain call. Used when an Encoder drives this
// writer's Muxer directly rather than through BufWriter's own
// WriteHeader/Write/WriteInterleaved/WriteTrailer methods.
func (w *BufWriter) Drain() []byte { return w.sink.drain() }

// Close releases the writer's muxer.
func (w *BufWriter) Close() { w.muxer.Close() }

// PacketizedBufWriter writes a container into memory like BufWriter, but
// fragments each operation's output into chunkSize-bounded, RTP-packaged
// pieces suitable for direct transport.
type PacketizedBufWriter struct {
	writerCore
	sink      *bufSink
	chunkSize int
	ssrc      uint32
	seq       uint16
	timestamp uint32
	payloadPT uint8
}

// NewPacketizedBufWriter allocates an output context for formatName (by
// convention "rtp") with the default 1024-byte chunk size.
func NewPacketizedBufWriter(formatName string, ssrc uint32, payloadType uint8) (*PacketizedBufWriter, error) {
	m, err := avbridge.AllocOutputContext(formatName, avbridge.NewLocation(""))
	if err != nil {
		return nil, err
	}
	sink := &bufSink{}
	if err := m.OpenCustomIO(sink); err != nil {
		m.Close()
		return nil, err
	}
	return &PacketizedBufWriter{
		writerCore: writerCore{muxer: m},
		sink:       sink,
		chunkSize:  defaultPacketizedChunkSize,
		ssrc:       ssrc,
		payloadPT:  payloadType,
	}, nil
}

// SetChunkSize overrides the default 1024-byte per-packet payload bound.
func (w *PacketizedBufWriter) SetChunkSize(n int) {
	if n > 0 {
		w.chunkSize = n
	}
}

func (w *PacketizedBufWriter) packetize(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out [][]byte
	for off := 0; off < len(data); off += w.chunkSize {
		end := off + w.chunkSize
		if end > len(data) {
			end = len(data)
		}
		last := end == len(data)
		pkt := &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         last,
				PayloadType:    w.payloadPT,
				SequenceNumber: w.seq,
				Timestamp:      w.timestamp,
				SSRC:           w.ssrc,
			},
			Payload: data[off:end],
		}
		w.seq++
		raw, err := pkt.Marshal()
		if err != nil {
			return nil, fmt.Errorf("packetize: %w", err)
		}
		out = append(out, raw)
	}
	w.timestamp += uint32(len(data))
	return out, nil
}

// WriteHeader writes the container header, returning the RTP-packaged
// fragments of its output.
func (w *PacketizedBufWriter) WriteHeader(opts avbridge.Options) ([][]byte, error) {
	if err := w.muxer.WriteHeader(opts); err != nil {
		return nil, err
	}
	return w.packetize(w.sink.drain())
}

// Write writes pkt without interleaving, returning the RTP-packaged
// fragments of its output.
func (w *PacketizedBufWriter) Write(pkt *avbridge.Packet) ([][]byte, error) {
	if err := w.muxer.Write(pkt); err != nil {
		return nil, err
	}
	return w.packetize(w.sink.drain())
}

// WriteInterleaved writes pkt through the backend's interleaving queue,
// returning the RTP-packaged fragments of its output.
func (w *PacketizedBufWriter) WriteInterleaved(pkt *avbridge.Packet) ([][]byte, error) {
	if err := w.muxer.WriteInterleaved(pkt); err != nil {
		return nil, err
	}
	return w.packetize(w.sink.drain())
}

// WriteTrailer writes the container trailer, returning the RTP-packaged
// fragments of its output.
func (w *PacketizedBufWriter) WriteTrailer() ([][]byte, error) {
	if err := w.muxer.WriteTrailer(); err != nil {
		return nil, err
	}
	return w.packetize(w.sink.drain())
}

// Drain fragments and RTP-packages every byte accumulated by the custom
// I/O callback since the last Drain call. Used when an Encoder drives this
// writer's Muxer directly rather than through PacketizedBufWriter's own
// WriteHeader/Write/WriteInterleaved/WriteTrailer methods.
func (w *PacketizedBufWriter) Drain() ([][]byte, error) { return w.packetize(w.sink.drain()) }

// Close releases the writer's muxer.
func (w *PacketizedBufWriter) Close() { w.muxer.Close() }
