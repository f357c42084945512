// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/safeconn"
)

// FramedConn runs a [*Codec] on top of a stream connection.
//
// This type owns the underlying connection and the codec. The caller is
// responsible for calling Close() when done.
//
// Receive and Send may be interleaved but must not be called concurrently
// with themselves. Between two calls to Receive, use [*FramedConn.Codec] to
// tell the codec what to expect next.
//
// All fields are safe to modify after construction but before first use.
//
// Construct via [*FramedConnFunc].
type FramedConn struct {
	// ErrClassifier classifies errors for structured logging.
	ErrClassifier ErrClassifier

	// Logger is the SLogger to use.
	Logger SLogger

	// SpanID is attached to every log event emitted by this connection.
	SpanID string

	// TimeNow is the function to get the current time.
	TimeNow func() time.Time

	closeonce sync.Once
	codec     *Codec
	conn      net.Conn
	eof       bool
	laddr     string
	protocol  string
	raddr     string
	rbuf      bytes.Buffer
	scratch   []byte
	wbuf      bytes.Buffer
}

// Codec returns the codec, for configuring what to expect next.
func (c *FramedConn) Codec() *Codec {
	return c.codec
}

// Conn returns the underlying net.Conn.
func (c *FramedConn) Conn() net.Conn {
	return c.conn
}

// Close releases the codec resources and closes the underlying connection.
//
// Subsequent calls return [net.ErrClosed].
func (c *FramedConn) Close() (err error) {
	err = net.ErrClosed
	c.closeonce.Do(func() {
		err = errors.Join(c.codec.Close(), c.conn.Close())
	})
	return
}

// Receive returns the next [Input], reading from the connection as needed.
//
// When the peer closes the connection between two frames, Receive returns
// [io.EOF]. When it does so in the middle of a frame or of a binary transfer,
// the error wraps both [ErrIO] and [io.ErrUnexpectedEOF]. Decoding errors are
// returned unchanged and leave the stream out of sync.
//
// The context deadline, if any, bounds the I/O, and cancelling the context
// interrupts it.
func (c *FramedConn) Receive(ctx context.Context) (Input, error) {
	t0 := c.TimeNow()
	deadline, _ := ctx.Deadline()
	c.Logger.Info(
		"receiveStart",
		slog.Time("deadline", deadline),
		slog.String("localAddr", c.laddr),
		slog.String("mode", c.codec.Mode().String()),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t", t0),
	)

	stop := c.watch(ctx)
	in, err := c.receive()
	stop()
	err = contextError(ctx, err)

	c.Logger.Info(
		"receiveDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", c.ErrClassifier.Classify(err)),
		slog.String("inputKind", inputKind(in)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t0", t0),
		slog.Time("t", c.TimeNow()),
	)
	return in, err
}

func (c *FramedConn) receive() (Input, error) {
	for {
		in, err := c.codec.Decode(&c.rbuf)
		if err != nil || in != nil {
			return in, err
		}
		if c.eof {
			if c.rbuf.Len() > 0 || !c.codec.idle() {
				return nil, newIOError(io.ErrUnexpectedEOF)
			}
			return nil, io.EOF
		}
		if err := c.fill(); err != nil {
			return nil, err
		}
	}
}

// fill performs a single read and appends the result to the read buffer.
func (c *FramedConn) fill() error {
	t0 := c.TimeNow()
	c.Logger.Debug(
		"readStart",
		slog.Int("ioBufferSize", len(c.scratch)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t", t0),
	)

	count, err := c.conn.Read(c.scratch)

	c.Logger.Debug(
		"readDone",
		slog.Int("ioBytesCount", count),
		slog.Any("err", err),
		slog.String("errClass", c.ErrClassifier.Classify(err)),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t0", t0),
		slog.Time("t", c.TimeNow()),
	)

	c.rbuf.Write(c.scratch[:count])
	switch {
	case errors.Is(err, io.EOF):
		c.eof = true
		return nil
	case err != nil:
		return newIOError(err)
	default:
		return nil
	}
}

// Send encodes v using [*Codec.Encode] and writes it to the connection.
//
// The context deadline, if any, bounds the I/O, and cancelling the context
// interrupts it.
func (c *FramedConn) Send(ctx context.Context, v any) error {
	c.wbuf.Reset()
	if err := c.codec.Encode(v, &c.wbuf); err != nil {
		return err
	}

	t0 := c.TimeNow()
	deadline, _ := ctx.Deadline()
	c.Logger.Info(
		"sendStart",
		slog.Time("deadline", deadline),
		slog.Int("ioBufferSize", c.wbuf.Len()),
		slog.String("localAddr", c.laddr),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t", t0),
	)

	stop := c.watch(ctx)
	count, err := c.conn.Write(c.wbuf.Bytes())
	stop()
	if err != nil {
		err = contextError(ctx, newIOError(err))
	}

	c.Logger.Info(
		"sendDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", c.ErrClassifier.Classify(err)),
		slog.Int("ioBytesCount", count),
		slog.String("localAddr", c.laddr),
		slog.String("outputKind", fmt.Sprintf("%T", v)),
		slog.String("protocol", c.protocol),
		slog.String("remoteAddr", c.raddr),
		slog.String("spanID", c.SpanID),
		slog.Time("t0", t0),
		slog.Time("t", c.TimeNow()),
	)
	return err
}

// watch binds the I/O deadline to ctx until the returned function is called.
//
// A context deadline becomes the connection deadline, and cancellation
// moves the deadline to the past, which makes in-flight I/O fail.
func (c *FramedConn) watch(ctx context.Context) func() {
	if ctx.Done() == nil {
		return func() {}
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		c.conn.SetDeadline(time.Time{})
	}
}

// contextError prefers the context error when the context caused err.
func contextError(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	// the conn deadline may fire before the context timer does
	if _, ok := ctx.Deadline(); ok && errors.Is(err, os.ErrDeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

// FramedConnFunc wraps a net.Conn into a [*FramedConn].
//
// This is a [Func] that can be composed into pipelines.
//
// All fields are safe to modify after construction but before first use.
// Fields must not be mutated concurrently with calls to [Call].
type FramedConnFunc struct {
	// Config is the configuration used to build the [*Codec] of each connection.
	//
	// Set by [NewFramedConnFunc] to the user-provided config.
	Config *Config

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewFramedConnFunc] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use (configurable for testing or custom logging).
	//
	// Set by [NewFramedConnFunc] to the user-provided logger.
	Logger SLogger

	// NewSpanID returns the span ID of each new connection.
	//
	// Set by [NewFramedConnFunc] to [NewSpanID].
	NewSpanID func() string

	// TimeNow is the function to get the current time (configurable for testing).
	//
	// Set by [NewFramedConnFunc] from [Config.TimeNow].
	TimeNow func() time.Time
}

// NewFramedConnFunc returns a new [*FramedConnFunc].
//
// The cfg argument contains the common configuration for tgcodec operations.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewFramedConnFunc(cfg *Config, logger SLogger) *FramedConnFunc {
	runtimex.Assert(cfg != nil)
	return &FramedConnFunc{
		Config:        cfg,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		NewSpanID:     NewSpanID,
		TimeNow:       cfg.TimeNow,
	}
}

var _ Func[net.Conn, *FramedConn] = &FramedConnFunc{}

// Call wraps the net.Conn into a FramedConn, which takes ownership of it.
func (op *FramedConnFunc) Call(ctx context.Context, conn net.Conn) (*FramedConn, error) {
	size := op.Config.ReadBufferSize
	if size <= 0 {
		size = DefaultReadBufferSize
	}
	return &FramedConn{
		ErrClassifier: op.ErrClassifier,
		Logger:        op.Logger,
		SpanID:        op.NewSpanID(),
		TimeNow:       op.TimeNow,
		codec:         NewCodec(op.Config, op.Logger),
		conn:          conn,
		laddr:         safeconn.LocalAddr(conn),
		protocol:      safeconn.Network(conn),
		raddr:         safeconn.RemoteAddr(conn),
		scratch:       make([]byte, size),
	}, nil
}
