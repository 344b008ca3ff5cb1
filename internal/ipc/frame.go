// Package ipc carries the Task and Result channels across the process boundary.
//
// Every message is a 4-byte big-endian length prefix followed by a msgpack body.
// The server writes models.Job frames to the worker's stdin; the worker writes
// Envelope frames to its stdout.
package ipc

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sharma-sourabh3435/imagegen/internal/models"
)

// MaxFrameSize bounds a single frame. A 1024x1024 RGBA PNG is well below it.
const MaxFrameSize = 64 << 20

var (
	// ErrFrameTooLarge is returned for a length prefix above MaxFrameSize
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	// ErrWrite marks a frame the underlying stream refused
	ErrWrite = errors.New("failed to write frame")
)

// Envelope kinds written by the worker
const (
	KindResult = "result"
	KindState  = "state"
)

// Envelope wraps everything the worker reports back to the supervisor
type Envelope struct {
	Kind   string             `msgpack:"kind"`
	Result *models.Result     `msgpack:"result,omitempty"`
	State  models.WorkerState `msgpack:"state,omitempty"`
}

// ResultEnvelope wraps a job result
func ResultEnvelope(r models.Result) Envelope {
	return Envelope{Kind: KindResult, Result: &r}
}

// StateEnvelope wraps a lifecycle notification
func StateEnvelope(s models.WorkerState) Envelope {
	return Envelope{Kind: KindState, State: s}
}

// Encoder writes frames. It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEncoder creates an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode marshals v and writes it as one frame
func (e *Encoder) Encode(v interface{}) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if len(body) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	// prefix and body go out in a single write so concurrent frames never interleave
	buf := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(body)))
	copy(buf[4:], body)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Decoder reads frames written by an Encoder
type Decoder struct {
	r         *bufio.Reader
	lengthBuf [4]byte
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next frame into v. A stream closed between frames yields io.EOF.
func (d *Decoder) Decode(v interface{}) error {
	if _, err := io.ReadFull(d.r, d.lengthBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("failed to read length prefix: %w", err)
	}

	n := binary.BigEndian.Uint32(d.lengthBuf[:])
	if n > MaxFrameSize {
		return ErrFrameTooLarge
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(d.r, body); err != nil {
		return fmt.Errorf("failed to read frame body (expected %d bytes): %w", n, err)
	}
	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal frame: %w", err)
	}
	return nil
}
