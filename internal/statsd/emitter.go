package statsd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	// DefaultMaxPacketSize keeps a datagram under a typical 1500 byte MTU
	// once IP and UDP headers are added.
	DefaultMaxPacketSize = 1386

	DefaultFlushDelay = 100 * time.Millisecond
)

// ErrInvalidLine is returned by Add for empty lines and lines containing a newline.
var ErrInvalidLine = errors.New("statsd: invalid metric line")

// Totals counts what an Emitter has written so far.
type Totals struct {
	Packets int64
	Bytes   int64
}

// Emitter batches metric lines into newline separated datagrams that stay
// within a maximum packet size.
//
// An Emitter is not safe for concurrent use. Each reporting goroutine must
// own its own instance.
type Emitter struct {
	w             io.Writer
	closer        io.Closer
	maxPacketSize int
	flushDelay    time.Duration
	onFlush       func(size int)

	buf    strings.Builder
	totals Totals
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithMaxPacketSize sets the datagram size budget in bytes.
// Values below 1 are ignored.
func WithMaxPacketSize(size int) Option {
	return func(e *Emitter) {
		if size > 0 {
			e.maxPacketSize = size
		}
	}
}

// WithFlushDelay sets the pause taken after every datagram.
func WithFlushDelay(d time.Duration) Option {
	return func(e *Emitter) {
		if d >= 0 {
			e.flushDelay = d
		}
	}
}

// WithFlushHook registers fn to be called with the size of every datagram
// written successfully.
func WithFlushHook(fn func(size int)) Option {
	return func(e *Emitter) {
		e.onFlush = fn
	}
}

// NewEmitter returns an Emitter writing one datagram per Write call to w.
// The caller keeps ownership of w.
func NewEmitter(w io.Writer, opts ...Option) *Emitter {
	e := &Emitter{
		w:             w,
		maxPacketSize: DefaultMaxPacketSize,
		flushDelay:    DefaultFlushDelay,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Dial opens a UDP socket to addr (host:port) and returns an Emitter that
// owns it. Close releases the socket.
func Dial(addr string, opts ...Option) (*Emitter, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial statsd %s: %w", addr, err)
	}

	e := NewEmitter(conn, opts...)
	e.closer = conn

	return e, nil
}

// MaxPacketSize returns the configured datagram budget.
func (e *Emitter) MaxPacketSize() int {
	return e.maxPacketSize
}

// Pending returns the number of bytes waiting to be flushed.
func (e *Emitter) Pending() int {
	return e.buf.Len()
}

// Totals returns the number of datagrams and bytes written so far.
func (e *Emitter) Totals() Totals {
	return e.totals
}

// Add appends line to the pending buffer. When the line would push the
// buffer past the packet budget the buffer is flushed first and the line
// starts a new one. A single line larger than the budget is sent on its own.
func (e *Emitter) Add(ctx context.Context, line string) error {
	if line == "" || strings.Contains(line, "\n") {
		return fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}

	if e.buf.Len() == 0 {
		e.buf.WriteString(line)
		return nil
	}

	if e.buf.Len()+1+len(line) > e.maxPacketSize {
		if err := e.Flush(ctx); err != nil {
			return err
		}
		e.buf.WriteString(line)
		return nil
	}

	e.buf.WriteByte('\n')
	e.buf.WriteString(line)

	return nil
}

// Flush writes the pending buffer as one datagram and then pauses for the
// flush delay to limit the send rate. An empty buffer is a no-op.
// The buffer is reset even when the write fails; there is no retry.
func (e *Emitter) Flush(ctx context.Context) error {
	if e.buf.Len() == 0 {
		return nil
	}

	payload := e.buf.String()
	e.buf.Reset()

	n, err := io.WriteString(e.w, payload)
	if err != nil {
		return fmt.Errorf("send statsd packet: %w", err)
	}

	e.totals.Packets++
	e.totals.Bytes += int64(n)
	if e.onFlush != nil {
		e.onFlush(n)
	}

	e.pause(ctx)

	return nil
}

// Reset drops the pending buffer without sending it.
func (e *Emitter) Reset() {
	e.buf.Reset()
}

// Close flushes anything still pending and closes the socket if the
// Emitter owns one.
func (e *Emitter) Close() error {
	err := e.Flush(context.Background())
	if e.closer != nil {
		err = multierr.Append(err, e.closer.Close())
	}

	return err
}

func (e *Emitter) pause(ctx context.Context) {
	if e.flushDelay <= 0 {
		return
	}

	timer := time.NewTimer(e.flushDelay)
	defer timer.Stop()

	// A cancelled context only cuts the pause short; the packet is already out.
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
