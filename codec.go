// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/bassosimone/runtimex"
)

// Codec decodes and encodes the telegram protocol.
//
// Decoding is incremental: the caller appends the bytes it receives to a
// [*bytes.Buffer] and calls [*Codec.Decode] until it returns an [Input];
// Decode consumes what it uses and leaves the rest in the buffer. The codec
// initially expects telegrams. After a telegram announces a payload, call one
// of the Expect methods, or [*Codec.Skip], before the next Decode. Each of
// these modes reverts to [ModeTelegram] once its value has been returned.
//
// A Codec belongs to a single connection and is not safe for concurrent use.
// After Decode returns an error other than a sink failure, the stream is out of
// sync and the caller should drop the connection. Call [*Codec.Close] to
// release any file or [Sink] held by an unfinished transfer.
//
// All fields are safe to modify after construction but before first use.
//
// Construct via [NewCodec].
type Codec struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewCodec] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewCodec] to the user-provided logger.
	Logger SLogger

	// OpenFile opens the destination of [*Codec.ExpectFile].
	//
	// Set by [NewCodec] from [Config.OpenFile].
	OpenFile func(path string) (Sink, error)

	kvlines KVLines
	mode    Mode
	params  Params
	scanner lineScanner
	tg      Telegram
	xfer    transfer
}

// NewCodec returns a new [*Codec] expecting a telegram.
//
// The cfg argument contains the common configuration for tgcodec operations;
// the maximum line length comes from [Config.MaxLineLength].
//
// The logger argument is the [SLogger] to use for structured logging.
func NewCodec(cfg *Config, logger SLogger) *Codec {
	runtimex.Assert(cfg != nil)
	return &Codec{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		OpenFile:      cfg.OpenFile,
		mode:          ModeTelegram,
		scanner:       lineScanner{max: cfg.MaxLineLength},
	}
}

// MaxLineLength returns the maximum line length, excluding the LF.
func (c *Codec) MaxLineLength() int {
	return c.scanner.max
}

// Mode returns what the next call to [*Codec.Decode] expects.
func (c *Codec) Mode() Mode {
	return c.mode
}

// ExpectParams makes the next frame decode as a [*Params].
func (c *Codec) ExpectParams() {
	c.configure(ModeParams, 0)
}

// ExpectKVLines makes the next frame decode as a [*KVLines].
func (c *Codec) ExpectKVLines() {
	c.configure(ModeKVLines, 0)
}

// ExpectChunks makes the next size bytes decode as a sequence of [Chunk]
// values, each holding whatever bytes are available. The chunk with zero
// Remain is the last one.
func (c *Codec) ExpectChunks(size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	c.configure(ModeChunks, size)
	return nil
}

// ExpectBytes makes the next size bytes decode as a single [Bytes] value.
//
// The memory for the whole buffer is reserved immediately.
func (c *Codec) ExpectBytes(size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	c.configure(ModeBytes, size)
	c.xfer.frozen.Grow(size)
	return nil
}

// ExpectBytesMut makes the next size bytes decode as a single [BytesMut] value.
//
// The memory for the whole buffer is reserved immediately.
func (c *Codec) ExpectBytesMut(size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	c.configure(ModeBytesMut, size)
	c.xfer.buf = make([]byte, 0, size)
	return nil
}

// ExpectFile stores the next size bytes into the file at path and then
// returns a [FilePath] holding path.
//
// The file is opened right away using the OpenFile field, and a failure
// to open it is returned as an [ErrIO] error with no change of mode.
func (c *Codec) ExpectFile(path string, size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	sink, err := c.OpenFile(path)
	if err != nil {
		return newIOError(err)
	}
	c.configure(ModeFile, size)
	c.xfer.path = path
	c.xfer.sink = sink
	return nil
}

// ExpectWriter writes the next size bytes to sink and then returns [WriteDone].
//
// On success, the codec takes ownership of sink and closes it after the
// last write. On failure, the caller retains ownership.
func (c *Codec) ExpectWriter(sink Sink, size int) error {
	runtimex.Assert(sink != nil)
	if err := checkSize(size); err != nil {
		return err
	}
	c.configure(ModeWriter, size)
	c.xfer.sink = sink
	return nil
}

// Skip discards the next size bytes and then returns [SkipDone].
func (c *Codec) Skip(size int) error {
	if err := checkSize(size); err != nil {
		return err
	}
	c.configure(ModeSkip, size)
	return nil
}

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: the size must be positive, got %d", ErrInvalidSize, size)
	}
	return nil
}

// configure switches to mode, abandoning any unfinished transfer.
func (c *Codec) configure(mode Mode, size int) {
	if err := c.release(); err != nil {
		c.Logger.Debug(
			"codecReleaseDone",
			slog.Any("err", err),
			slog.String("errClass", c.ErrClassifier.Classify(err)),
			slog.String("mode", c.mode.String()),
		)
	}
	c.scanner.reset()
	c.mode = mode
	c.xfer.remain = size
	c.Logger.Debug(
		"codecExpect",
		slog.String("mode", mode.String()),
		slog.Int("size", size),
	)
}

// Close releases the file or [Sink] held by an unfinished transfer, if
// any, and reverts to [ModeTelegram]. A failure to close is an [ErrIO] error.
//
// Close is idempotent.
func (c *Codec) Close() error {
	err := c.release()
	c.scanner.reset()
	c.mode = ModeTelegram
	return err
}

// release drops the transfer state, closing its sink.
func (c *Codec) release() error {
	sink := c.xfer.sink
	c.xfer = transfer{}
	if sink == nil {
		return nil
	}
	if err := sink.Close(); err != nil {
		return newIOError(err)
	}
	return nil
}

// idle returns whether no frame or transfer is in progress.
func (c *Codec) idle() bool {
	return c.mode == ModeTelegram && !c.tg.HasTopic() && c.tg.Len() == 0 && c.scanner.cursor == 0
}

// Decode decodes the next [Input] from the front of buf.
//
// It returns (nil, nil) when buf does not yet contain enough bytes; append
// more bytes to buf and call Decode again. On success, the consumed bytes
// are removed from buf and the remaining ones are left for the next call.
func (c *Codec) Decode(buf *bytes.Buffer) (Input, error) {
	switch {
	case c.mode == ModeTelegram:
		return c.decodeTelegram(buf)
	case c.mode == ModeParams:
		return c.decodeParams(buf)
	case c.mode == ModeKVLines:
		return c.decodeKVLines(buf)
	case c.mode.isBinary():
		return c.decodeBinary(buf)
	default:
		return nil, fmt.Errorf("%w: unknown mode %s", ErrBadState, c.mode)
	}
}

// decodeTelegram reads lines until the empty line. The first line is the
// topic and the following ones are parameters.
func (c *Codec) decodeTelegram(buf *bytes.Buffer) (Input, error) {
	for {
		line, ok, err := c.scanner.nextLine(buf)
		if err != nil || !ok {
			return nil, err
		}
		if line == "" {
			c.logFrameDone(ModeTelegram)
			return c.tg.take(), nil
		}
		if !c.tg.HasTopic() {
			if err := c.tg.SetTopic(line); err != nil {
				return nil, err
			}
			continue
		}
		// TODO(bassosimone): lines without a space are silently dropped here
		// and in decodeParams and decodeKVLines; decide whether to reject them.
		if key, value, found := splitKeyValue(line); found {
			if err := c.tg.AddStr(key, value); err != nil {
				return nil, err
			}
		}
	}
}

func (c *Codec) decodeParams(buf *bytes.Buffer) (Input, error) {
	for {
		line, ok, err := c.scanner.nextLine(buf)
		if err != nil || !ok {
			return nil, err
		}
		if line == "" {
			c.mode = ModeTelegram
			c.logFrameDone(ModeParams)
			return c.params.take(), nil
		}
		if key, value, found := splitKeyValue(line); found {
			if err := c.params.AddStr(key, value); err != nil {
				return nil, err
			}
		}
	}
}

func (c *Codec) decodeKVLines(buf *bytes.Buffer) (Input, error) {
	for {
		line, ok, err := c.scanner.nextLine(buf)
		if err != nil || !ok {
			return nil, err
		}
		if line == "" {
			c.mode = ModeTelegram
			c.logFrameDone(ModeKVLines)
			return c.kvlines.take(), nil
		}
		if key, value, found := splitKeyValue(line); found {
			c.kvlines.Append(key, value)
		}
	}
}

func (c *Codec) logFrameDone(mode Mode) {
	c.Logger.Debug("codecFrameDone", slog.String("mode", mode.String()))
}
