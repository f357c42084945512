// SPDX-License-Identifier: GPL-3.0-or-later

// Package tgcodec implements a streaming codec for a line-oriented key/value
// protocol whose messages are called telegrams.
//
// # Wire Format
//
// A telegram is a topic line followed by zero or more "key value" lines and
// terminated by an empty line:
//
//	hello
//	len 4
//
//	1234
//
// Lines end with LF; a CR before the LF is dropped. A line is split at its
// first space: the key comes before it and the value, possibly empty, after
// it. A telegram may announce a payload, such as the four bytes above, and the
// application tells the codec how to decode it before the next call to
// [*Codec.Decode].
//
// # Decoding
//
// A [*Codec] is a resumable state machine. The caller appends received bytes
// to a [*bytes.Buffer] and calls Decode, which either returns an [Input] or
// (nil, nil) to ask for more bytes. Lines may be split at arbitrary points.
//
// The codec starts in [ModeTelegram]. These methods select what comes next:
//
//   - [*Codec.ExpectParams]: a [*Params] frame (lines without topic)
//   - [*Codec.ExpectKVLines]: a [*KVLines] frame (ordered, duplicates allowed)
//   - [*Codec.ExpectChunks]: a stream of [Chunk] values
//   - [*Codec.ExpectBytes]: a single [Bytes] value
//   - [*Codec.ExpectBytesMut]: a single [BytesMut] value
//   - [*Codec.ExpectFile]: a file on disk, then a [FilePath]
//   - [*Codec.ExpectWriter]: a [Sink], then [WriteDone]
//   - [*Codec.Skip]: discarded bytes, then [SkipDone]
//
// Every mode reverts to [ModeTelegram] after delivering its value.
//
// # Encoding
//
// [*Codec.Encode] writes a [*Telegram], [*Params], map[string]string,
// [*KVLines] or raw bytes. The value types also provide EncodedLen, Encode
// and Serialize methods.
//
// # Connections
//
// [FramedConn] runs the codec over a [net.Conn], reading until a value is
// complete. Construct it with [NewFramedConnFunc], which implements [Func].
//
// # Observability
//
// Structured logging goes through [SLogger] (compatible with [log/slog]) and
// is disabled by default. Errors are classified with [ErrClassifier]; the
// default classifier maps the sentinel errors of this package, such as
// [ErrBadFormat], to short labels and delegates the rest to errclass.
//
// [FramedConn] emits receiveStart/receiveDone and sendStart/sendDone at
// [slog.LevelInfo] and readStart/readDone at [slog.LevelDebug], each carrying
// localAddr, remoteAddr, protocol, spanID and t, with *Done events adding t0,
// err and errClass. The codec itself emits codecExpect, codecFrameDone and
// codecTransferDone at [slog.LevelDebug].
package tgcodec
