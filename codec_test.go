// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A telegram announcing a payload followed by the payload itself.
func TestCodecTelegramThenBytesMut(t *testing.T) {
	codec := newTestCodec()
	buf := bytes.NewBufferString("hello\nlen 4\n\n1234")

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	tg, ok := in.(*Telegram)
	require.True(t, ok)
	assert.Equal(t, "hello", tg.Topic())
	size, err := tg.GetUint("len")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), size)

	require.NoError(t, codec.ExpectBytesMut(int(size)))
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, BytesMut("1234"), in)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, ModeTelegram, codec.Mode())
}

// A params frame decodes to unique keys and the mode reverts afterwards.
func TestCodecParams(t *testing.T) {
	codec := newTestCodec()
	codec.ExpectParams()
	assert.Equal(t, ModeParams, codec.Mode())

	in, err := codec.Decode(bytes.NewBufferString("foo bar\nmoo cow\n\n"))

	require.NoError(t, err)
	params, ok := in.(*Params)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"foo": "bar", "moo": "cow"}, params.Map())
	assert.Equal(t, ModeTelegram, codec.Mode())
}

// A kvlines frame keeps duplicate keys in order.
func TestCodecKVLines(t *testing.T) {
	codec := newTestCodec()
	codec.ExpectKVLines()

	in, err := codec.Decode(bytes.NewBufferString("a 1\na 2\n\n"))

	require.NoError(t, err)
	kvlines, ok := in.(*KVLines)
	require.True(t, ok)
	assert.Equal(t, []KeyValue{{"a", "1"}, {"a", "2"}}, kvlines.Lines())
	assert.Equal(t, ModeTelegram, codec.Mode())
}

// Zero and negative sizes are rejected without changing the mode.
func TestCodecInvalidSize(t *testing.T) {
	sink := &recordingSink{}
	configure := map[string]func(*Codec, int) error{
		"chunks":   (*Codec).ExpectChunks,
		"bytes":    (*Codec).ExpectBytes,
		"bytesmut": (*Codec).ExpectBytesMut,
		"skip":     (*Codec).Skip,
		"file": func(c *Codec, size int) error {
			return c.ExpectFile(filepath.Join(t.TempDir(), "x"), size)
		},
		"writer": func(c *Codec, size int) error {
			return c.ExpectWriter(sink, size)
		},
	}
	for name, fx := range configure {
		for _, size := range []int{0, -1} {
			t.Run(name, func(t *testing.T) {
				codec := newTestCodec()
				codec.ExpectParams()

				err := fx(codec, size)

				require.ErrorIs(t, err, ErrInvalidSize)
				assert.Equal(t, ModeParams, codec.Mode())
			})
		}
	}
	assert.Equal(t, 0, sink.closed)
}

// Splitting the input at any point yields the same values.
func TestCodecResumable(t *testing.T) {
	data := []byte("hello\nlen 4\n\n1234next\r\nk v\n\nraw\nsize 3\n\nabc")
	for step := 1; step <= len(data); step++ {
		codec := newTestCodec()
		out := decodeAll(t, codec, data, step, func(in Input) {
			if tg, ok := in.(*Telegram); ok {
				if size, err := tg.GetUint("len"); err == nil {
					require.NoError(t, codec.ExpectBytes(int(size)))
				}
				if size, err := tg.GetUint("size"); err == nil {
					require.NoError(t, codec.ExpectBytesMut(int(size)))
				}
			}
		})

		require.Len(t, out, 5, "step %d", step)
		assert.Equal(t, "hello:{len=4}", out[0].(*Telegram).String())
		assert.Equal(t, Bytes("1234"), out[1])
		assert.Equal(t, "next:{k=v}", out[2].(*Telegram).String())
		assert.Equal(t, "raw:{size=3}", out[3].(*Telegram).String())
		assert.Equal(t, BytesMut("abc"), out[4])
	}
}

func TestCodecMaxLineLength(t *testing.T) {
	newCodec := func() *Codec {
		cfg := NewConfig()
		cfg.MaxLineLength = 4
		return NewCodec(cfg, DefaultSLogger())
	}

	t.Run("within limit", func(t *testing.T) {
		codec := newCodec()
		assert.Equal(t, 4, codec.MaxLineLength())
		in, err := codec.Decode(bytes.NewBufferString("hell\nk v\n\n"))
		require.NoError(t, err)
		assert.Equal(t, "hell", in.(*Telegram).Topic())
	})

	t.Run("complete line above limit", func(t *testing.T) {
		_, err := newCodec().Decode(bytes.NewBufferString("hello\n\n"))
		require.ErrorIs(t, err, ErrBadFormat)
	})

	t.Run("partial line above limit", func(t *testing.T) {
		codec := newCodec()
		buf := bytes.NewBufferString("hel")
		in, err := codec.Decode(buf)
		require.NoError(t, err)
		require.Nil(t, in)

		buf.WriteString("lo")
		_, err = codec.Decode(buf)
		require.ErrorIs(t, err, ErrBadFormat)
	})

	t.Run("binary payloads are not lines", func(t *testing.T) {
		codec := newCodec()
		require.NoError(t, codec.ExpectBytes(10))
		in, err := codec.Decode(bytes.NewBufferString("0123456789"))
		require.NoError(t, err)
		assert.Equal(t, Bytes("0123456789"), in)
	})
}

func TestCodecBadInput(t *testing.T) {
	cases := []struct {
		name  string
		input []byte
	}{
		{"invalid UTF-8 topic", []byte{'h', 0xc3, '\n', '\n'}},
		{"invalid UTF-8 value", []byte("hello\nk \xff\n\n")},
		{"invalid topic", []byte("1hello\n\n")},
		{"invalid key", []byte("hello\nk\x01 v\n\n")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestCodec().Decode(bytes.NewBuffer(tc.input))
			require.ErrorIs(t, err, ErrBadFormat)
		})
	}
}

// Lines without a space carry no parameter and are ignored.
func TestCodecLineWithoutSpace(t *testing.T) {
	in, err := newTestCodec().Decode(bytes.NewBufferString("hello\nnospace\nk v\n\n"))

	require.NoError(t, err)
	assert.Equal(t, "hello:{k=v}", in.(*Telegram).String())
}

// An empty line alone yields a telegram without topic.
func TestCodecEmptyFrame(t *testing.T) {
	in, err := newTestCodec().Decode(bytes.NewBufferString("\n"))

	require.NoError(t, err)
	tg := in.(*Telegram)
	assert.False(t, tg.HasTopic())
	assert.Equal(t, 0, tg.NumParams())
}

// Decoded values do not alias the codec accumulators.
func TestCodecFramesAreIndependent(t *testing.T) {
	codec := newTestCodec()
	buf := bytes.NewBufferString("one\na 1\n\ntwo\nb 2\n\n")

	first, err := codec.Decode(buf)
	require.NoError(t, err)
	second, err := codec.Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, "one:{a=1}", first.(*Telegram).String())
	assert.Equal(t, "two:{b=2}", second.(*Telegram).String())
}

// The chunks of a transfer add up to its size and the excess stays in the buffer.
func TestCodecChunks(t *testing.T) {
	codec := newTestCodec()
	require.NoError(t, codec.ExpectChunks(10))
	buf := &bytes.Buffer{}

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Nil(t, in)

	buf.WriteString("12345")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Chunk{Data: []byte("12345"), Remain: 5}, in)
	assert.Equal(t, ModeChunks, codec.Mode())

	buf.WriteString("67890abc")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Chunk{Data: []byte("67890"), Remain: 0}, in)
	assert.Equal(t, ModeTelegram, codec.Mode())
	assert.Equal(t, "abc", buf.String())
}

func TestCodecBytes(t *testing.T) {
	codec := newTestCodec()
	require.NoError(t, codec.ExpectBytes(3))
	buf := bytes.NewBufferString("ab")

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Nil(t, in)

	buf.WriteString("cdef")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, Bytes("abc"), in)
	assert.Equal(t, "def", buf.String())
	assert.Equal(t, ModeTelegram, codec.Mode())
}

func TestCodecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	codec := newTestCodec()
	require.NoError(t, codec.ExpectFile(path, 5))
	buf := bytes.NewBufferString("hel")

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Nil(t, in)

	buf.WriteString("lo!")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, FilePath(path), in)
	assert.Equal(t, "!", buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

// A file that cannot be opened fails immediately without changing the mode.
func TestCodecFileOpenError(t *testing.T) {
	codec := newTestCodec()

	err := codec.ExpectFile(filepath.Join(t.TempDir(), "missing", "payload.bin"), 5)

	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, ModeTelegram, codec.Mode())
}

// A file transfer without pathname is an internal inconsistency.
func TestCodecFileMissingPath(t *testing.T) {
	sink := &recordingSink{}
	codec := newTestCodec()
	codec.OpenFile = func(path string) (Sink, error) {
		return sink, nil
	}
	require.NoError(t, codec.ExpectFile("", 2))

	_, err := codec.Decode(bytes.NewBufferString("ab"))

	require.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, ModeTelegram, codec.Mode())
}

func TestCodecWriter(t *testing.T) {
	sink := &recordingSink{}
	codec := newTestCodec()
	require.NoError(t, codec.ExpectWriter(sink, 4))
	buf := bytes.NewBufferString("ab")

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Nil(t, in)
	assert.Equal(t, 0, sink.closed)

	buf.WriteString("cdhello\n")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, WriteDone{}, in)
	assert.Equal(t, "abcd", sink.buf.String())
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, "hello\n", buf.String())
}

func TestCodecWriterErrors(t *testing.T) {
	t.Run("write", func(t *testing.T) {
		wantErr := errors.New("disk full")
		sink := &recordingSink{writeErr: wantErr}
		codec := newTestCodec()
		require.NoError(t, codec.ExpectWriter(sink, 4))

		_, err := codec.Decode(bytes.NewBufferString("abcd"))

		require.ErrorIs(t, err, ErrIO)
		require.ErrorIs(t, err, wantErr)
		require.NoError(t, codec.Close())
		assert.Equal(t, 1, sink.closed)
	})

	t.Run("close", func(t *testing.T) {
		wantErr := errors.New("flush failed")
		sink := &recordingSink{closeErr: wantErr}
		codec := newTestCodec()
		require.NoError(t, codec.ExpectWriter(sink, 4))

		_, err := codec.Decode(bytes.NewBufferString("abcd"))

		require.ErrorIs(t, err, ErrIO)
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, ModeTelegram, codec.Mode())
	})
}

func TestCodecSkip(t *testing.T) {
	codec := newTestCodec()
	require.NoError(t, codec.Skip(3))
	buf := bytes.NewBufferString("xyzhello\n\n")

	in, err := codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, SkipDone{}, in)

	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", in.(*Telegram).Topic())
}

// Close releases an unfinished transfer and is idempotent.
func TestCodecClose(t *testing.T) {
	sink := &recordingSink{}
	codec := newTestCodec()
	require.NoError(t, codec.ExpectWriter(sink, 10))
	_, err := codec.Decode(bytes.NewBufferString("abc"))
	require.NoError(t, err)

	require.NoError(t, codec.Close())
	require.NoError(t, codec.Close())

	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, ModeTelegram, codec.Mode())
}

// Configuring a new mode abandons the previous transfer.
func TestCodecReconfigureReleasesSink(t *testing.T) {
	sink := &recordingSink{closeErr: errors.New("ignored")}
	codec := newTestCodec()
	require.NoError(t, codec.ExpectWriter(sink, 10))

	require.NoError(t, codec.ExpectBytes(2))

	assert.Equal(t, 1, sink.closed)
	in, err := codec.Decode(bytes.NewBufferString("ab"))
	require.NoError(t, err)
	assert.Equal(t, Bytes("ab"), in)
}

// A corrupted mode is reported rather than decoded.
func TestCodecUnknownMode(t *testing.T) {
	codec := newTestCodec()
	codec.mode = Mode(99)

	_, err := codec.Decode(bytes.NewBufferString("abc"))

	require.ErrorIs(t, err, ErrBadState)
	assert.Equal(t, "unknown", codec.mode.String())
}

// Encoding does not disturb a frame being decoded.
func TestCodecEncodeWhileDecoding(t *testing.T) {
	codec := newTestCodec()
	buf := bytes.NewBufferString("hello\nfoo ")
	in, err := codec.Decode(buf)
	require.NoError(t, err)
	require.Nil(t, in)

	tg, err := NewTelegramTopic("reply")
	require.NoError(t, err)
	out := &bytes.Buffer{}
	require.NoError(t, codec.Encode(tg, out))

	buf.WriteString("bar\n\n")
	in, err = codec.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello:{foo=bar}", in.(*Telegram).String())
	assert.Equal(t, "reply\n\n", out.String())
}

func TestCodecLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	codec := NewCodec(NewConfig(), logger)
	buf := bytes.NewBufferString("hi\n\nab")

	_, err := codec.Decode(buf)
	require.NoError(t, err)
	require.NoError(t, codec.ExpectBytes(2))
	_, err = codec.Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"codecFrameDone", "codecExpect", "codecTransferDone"}, recordMessages(*records))
	mode, found := recordAttr((*records)[1], "mode")
	require.True(t, found)
	assert.Equal(t, "bytes", mode.String())
	size, found := recordAttr((*records)[1], "size")
	require.True(t, found)
	assert.Equal(t, int64(2), size.Int64())
}

func TestInputKind(t *testing.T) {
	cases := map[string]Input{
		"telegram":  NewTelegram(),
		"params":    NewParams(),
		"kvlines":   NewKVLines(),
		"chunk":     Chunk{},
		"bytes":     Bytes(""),
		"bytesmut":  BytesMut(nil),
		"file":      FilePath(""),
		"writeDone": WriteDone{},
		"skipDone":  SkipDone{},
		"":          nil,
	}
	for want, in := range cases {
		assert.Equal(t, want, inputKind(in))
	}
}
