// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
)

// Encode appends the wire representation of v to buf.
//
// The supported types are [*Telegram], [*Params], map[string]string,
// [*KVLines], []byte, [Bytes] and [BytesMut]. Any other type fails with
// [ErrSerialize]. Encoding never touches the decode state, so it is safe
// to interleave Encode and [*Codec.Decode] calls.
func (c *Codec) Encode(v any, buf *bytes.Buffer) error {
	switch value := v.(type) {
	case *Telegram:
		return c.EncodeTelegram(value, buf)
	case *Params:
		return c.EncodeParams(value, buf)
	case map[string]string:
		return c.EncodeMap(value, buf)
	case *KVLines:
		return c.EncodeKVLines(value, buf)
	case []byte:
		return c.EncodeBytes(value, buf)
	case BytesMut:
		return c.EncodeBytes(value, buf)
	case Bytes:
		return c.EncodeBytesValue(value, buf)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrSerialize, v)
	}
}

// EncodeTelegram appends tg to buf. It fails with [ErrSerialize] when the
// topic is not set.
func (c *Codec) EncodeTelegram(tg *Telegram, buf *bytes.Buffer) error {
	return tg.Encode(buf)
}

// EncodeParams appends params to buf.
func (c *Codec) EncodeParams(params *Params, buf *bytes.Buffer) error {
	params.Encode(buf)
	return nil
}

// EncodeMap appends m to buf using the same layout as [*Params].
//
// Keys are written in sorted order and are not validated.
func (c *Codec) EncodeMap(m map[string]string, buf *bytes.Buffer) error {
	writeMap(buf, m)
	return nil
}

// EncodeKVLines appends kvlines to buf.
func (c *Codec) EncodeKVLines(kvlines *KVLines, buf *bytes.Buffer) error {
	kvlines.Encode(buf)
	return nil
}

// EncodeBytes appends the raw bytes in data to buf.
func (c *Codec) EncodeBytes(data []byte, buf *bytes.Buffer) error {
	buf.Grow(len(data))
	buf.Write(data)
	return nil
}

// EncodeBytesValue appends the raw bytes in data to buf.
func (c *Codec) EncodeBytesValue(data Bytes, buf *bytes.Buffer) error {
	buf.Grow(len(data))
	buf.WriteString(string(data))
	return nil
}

// mapEncodedLen returns the number of bytes written by writeMap.
func mapEncodedLen(m map[string]string) int {
	size := 1
	for key, value := range m {
		size += len(key) + 1 + len(value) + 1
	}
	return size
}

// writeMap writes one line per entry, sorted by key, and the empty line
// terminating the frame.
func writeMap(buf *bytes.Buffer, m map[string]string) {
	buf.Grow(mapEncodedLen(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		writeLine(buf, key, m[key])
	}
	buf.WriteByte('\n')
}

func writeLine(buf *bytes.Buffer, key, value string) {
	buf.WriteString(key)
	buf.WriteByte(' ')
	buf.WriteString(value)
	buf.WriteByte('\n')
}
