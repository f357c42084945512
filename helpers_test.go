// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
	"github.com/stretchr/testify/require"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// recordMessages returns the messages of the given records, in order.
func recordMessages(records []slog.Record) []string {
	var out []string
	for _, record := range records {
		out = append(out, record.Message)
	}
	return out
}

// recordAttr returns the value of the attribute named key in record.
func recordAttr(record slog.Record, key string) (slog.Value, bool) {
	var (
		found bool
		value slog.Value
	)
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			value, found = attr.Value, true
			return false
		}
		return true
	})
	return value, found
}

// newMinimalConn returns a [*netstub.FuncConn] with only LocalAddrFunc and
// RemoteAddrFunc set. This is the minimum needed for code that calls
// [safeconn.LocalAddr], [safeconn.RemoteAddr], and [safeconn.Network]
// during construction.
func newMinimalConn() *netstub.FuncConn {
	return &netstub.FuncConn{
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}

// newTestCodec returns a [*Codec] using the default config and a discarding logger.
func newTestCodec() *Codec {
	return NewCodec(NewConfig(), DefaultSLogger())
}

// decodeAll feeds data to codec in pieces of at most step bytes and collects
// every non-nil [Input] until the data is exhausted. Between frames, the
// optional next function configures the codec based on what was decoded.
func decodeAll(t *testing.T, codec *Codec, data []byte, step int, next func(Input)) []Input {
	t.Helper()
	var (
		buf bytes.Buffer
		out []Input
	)
	for len(data) > 0 || buf.Len() > 0 {
		if len(data) > 0 {
			n := min(step, len(data))
			buf.Write(data[:n])
			data = data[n:]
		}
		for {
			in, err := codec.Decode(&buf)
			require.NoError(t, err)
			if in == nil {
				break
			}
			out = append(out, in)
			if next != nil {
				next(in)
			}
		}
		if len(data) == 0 {
			break
		}
	}
	return out
}

// recordingSink is a [Sink] that records writes and closes.
type recordingSink struct {
	buf      bytes.Buffer
	closeErr error
	closed   int
	writeErr error
}

var _ Sink = &recordingSink{}

func (s *recordingSink) Write(data []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.buf.Write(data)
}

func (s *recordingSink) Close() error {
	s.closed++
	return s.closeErr
}
