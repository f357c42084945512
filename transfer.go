// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
)

// transfer holds the state of the binary transfer selected by the mode.
//
// Which fields are meaningful depends on the mode:
//
//   - remain: all binary modes
//   - frozen: [ModeBytes]
//   - buf: [ModeBytesMut]
//   - sink: [ModeFile] and [ModeWriter]
//   - path: [ModeFile]
type transfer struct {
	buf    []byte
	frozen strings.Builder
	path   string
	remain int
	sink   Sink
}

// decodeBinary moves up to remain bytes from buf to the destination of the
// current mode and returns the mode's value once remain drops to zero.
func (c *Codec) decodeBinary(buf *bytes.Buffer) (Input, error) {
	if buf.Len() == 0 {
		return nil, nil
	}
	data := buf.Next(min(c.xfer.remain, buf.Len()))
	c.xfer.remain -= len(data)

	switch c.mode {
	case ModeChunks:
		chunk := Chunk{Data: bytes.Clone(data), Remain: c.xfer.remain}
		if c.xfer.remain == 0 {
			c.finish(nil)
		}
		return chunk, nil

	case ModeBytes:
		c.xfer.frozen.Write(data)

	case ModeBytesMut:
		c.xfer.buf = append(c.xfer.buf, data...)

	case ModeFile, ModeWriter:
		if c.xfer.sink == nil {
			return nil, fmt.Errorf("%w: no sink for mode %s", ErrBadState, c.mode)
		}
		if _, err := c.xfer.sink.Write(data); err != nil {
			return nil, newIOError(err)
		}

	case ModeSkip:
		// nothing

	default:
		return nil, fmt.Errorf("%w: %s is not a binary mode", ErrBadState, c.mode)
	}

	if c.xfer.remain > 0 {
		return nil, nil
	}
	return c.complete()
}

// complete builds the value of a finished transfer and reverts to [ModeTelegram].
func (c *Codec) complete() (Input, error) {
	var out Input
	var err error
	switch c.mode {
	case ModeBytes:
		out = Bytes(c.xfer.frozen.String())

	case ModeBytesMut:
		out = BytesMut(c.xfer.buf)
		c.xfer.buf = nil

	case ModeFile:
		path := c.xfer.path
		err = c.release()
		if path == "" && err == nil {
			err = fmt.Errorf("%w: missing pathname", ErrBadState)
		}
		out = FilePath(path)

	case ModeWriter:
		err = c.release()
		out = WriteDone{}

	case ModeSkip:
		out = SkipDone{}
	}
	c.finish(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// finish reverts to [ModeTelegram] at the end of a transfer.
func (c *Codec) finish(err error) {
	c.Logger.Debug(
		"codecTransferDone",
		slog.Any("err", err),
		slog.String("errClass", c.ErrClassifier.Classify(err)),
		slog.String("mode", c.mode.String()),
	)
	c.xfer = transfer{}
	c.mode = ModeTelegram
}
