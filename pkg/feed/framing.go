package feed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// LengthPrefixSize is the size of the frame length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize bounds a single snapshot frame. Snapshots are
	// tiny; anything near this size is a corrupt stream.
	DefaultMaxMessageSize = 4096
)

// Framing errors.
var (
	ErrMessageTooLarge = errors.New("message exceeds maximum size")
	ErrMessageEmpty    = errors.New("message is empty")
	ErrFrameTruncated  = errors.New("frame truncated")
)

// FrameWriter writes length-prefixed frames. Safe for concurrent use.
type FrameWriter struct {
	w       io.Writer
	maxSize int
	mu      sync.Mutex
}

// NewFrameWriter creates a writer with DefaultMaxMessageSize.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return NewFrameWriterWithMaxSize(w, DefaultMaxMessageSize)
}

// NewFrameWriterWithMaxSize creates a writer with a custom size limit.
func NewFrameWriterWithMaxSize(w io.Writer, maxSize int) *FrameWriter {
	return &FrameWriter{w: w, maxSize: maxSize}
}

// WriteFrame writes data as a single frame.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > fw.maxSize {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxSize)
	}

	// One write per frame so concurrent writers never interleave.
	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, err := fw.w.Write(buf)
	return err
}

// FrameReader reads length-prefixed frames. Not safe for concurrent use.
type FrameReader struct {
	r       io.Reader
	maxSize int
	lenBuf  [LengthPrefixSize]byte
}

// NewFrameReader creates a reader with DefaultMaxMessageSize.
func NewFrameReader(r io.Reader) *FrameReader {
	return NewFrameReaderWithMaxSize(r, DefaultMaxMessageSize)
}

// NewFrameReaderWithMaxSize creates a reader with a custom size limit.
func NewFrameReaderWithMaxSize(r io.Reader, maxSize int) *FrameReader {
	return &FrameReader{r: r, maxSize: maxSize}
}

// ReadFrame reads the next frame. It returns io.EOF on a clean end of
// stream and ErrFrameTruncated when the stream ends mid-frame.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lenBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, err
	}

	n := binary.BigEndian.Uint32(fr.lenBuf[:])
	if n == 0 {
		return nil, ErrMessageEmpty
	}
	if int(n) > fr.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, n, fr.maxSize)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(fr.r, data); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrFrameTruncated
		}
		return nil, err
	}
	return data, nil
}
