// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/bassosimone/runtimex"
	"golang.org/x/sync/errgroup"
)

// Sink is the destination of a binary transfer requested with
// [*Codec.ExpectWriter] or [*Codec.ExpectFile].
//
// The codec owns the sink from configuration time onwards: it calls Write
// as bytes arrive and Close exactly once, either after the last byte or
// when the transfer is abandoned through [*Codec.Close] or a new
// configuration call.
type Sink interface {
	Write(data []byte) (int, error)
	Close() error
}

// WriterSink adapts w to the [Sink] interface.
//
// If w already implements [io.Closer], closing the sink closes w; otherwise
// Close does nothing.
func WriterSink(w io.Writer) Sink {
	if sink, ok := w.(Sink); ok {
		return sink
	}
	return nopCloserSink{w}
}

type nopCloserSink struct {
	io.Writer
}

func (nopCloserSink) Close() error {
	return nil
}

// CreateFile creates or truncates the file at path and returns it as a [Sink].
//
// This is the default [Config.OpenFile].
func CreateFile(path string) (Sink, error) {
	filep, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return filep, nil
}

// AsyncFileOpener returns a [Config.OpenFile] value that creates the file
// like [CreateFile] and wraps it using [NewAsyncSink] with the given depth.
func AsyncFileOpener(depth int) func(path string) (Sink, error) {
	return func(path string) (Sink, error) {
		sink, err := CreateFile(path)
		if err != nil {
			return nil, err
		}
		return NewAsyncSink(sink, depth), nil
	}
}

// NewAsyncSink returns a [Sink] that hands each write to a background
// goroutine writing into sink, so that a slow destination does not stall
// the goroutine calling [*Codec.Decode].
//
// At most depth writes are queued; Write blocks when the queue is full.
// Write copies its argument. Once a write to sink fails, subsequent calls to
// Write fail with that error. Close waits for the queued writes, closes
// sink and returns the first error encountered.
//
// The depth must be positive.
func NewAsyncSink(sink Sink, depth int) Sink {
	runtimex.Assert(depth > 0)
	group, ctx := errgroup.WithContext(context.Background())
	as := &asyncSink{
		ctx:   ctx,
		group: group,
		queue: make(chan []byte, depth),
		sink:  sink,
	}
	group.Go(as.loop)
	return as
}

type asyncSink struct {
	closeErr  error
	closeonce sync.Once
	closed    bool
	ctx       context.Context
	group     *errgroup.Group
	queue     chan []byte
	sink      Sink
}

func (as *asyncSink) loop() error {
	for data := range as.queue {
		if _, err := as.sink.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// Write implements [Sink].
func (as *asyncSink) Write(data []byte) (int, error) {
	if as.closed {
		return 0, os.ErrClosed
	}
	if as.ctx.Err() != nil {
		return 0, as.group.Wait()
	}
	select {
	case as.queue <- bytes.Clone(data):
		return len(data), nil
	case <-as.ctx.Done():
		return 0, as.group.Wait()
	}
}

// Close implements [Sink].
func (as *asyncSink) Close() error {
	as.closeonce.Do(func() {
		as.closed = true
		close(as.queue)
		as.closeErr = errors.Join(as.group.Wait(), as.sink.Close())
	})
	return as.closeErr
}
