// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"slices"
	"strings"
)

// KeyValue is one entry of a [KVLines].
type KeyValue struct {
	Key   string
	Value string
}

// KVLines is an ordered list of key/value pairs.
//
// Unlike [Params], keys are neither validated nor deduplicated, and the
// insertion order is preserved on the wire.
//
// The zero value is an empty, ready to use KVLines.
type KVLines struct {
	lines []KeyValue
}

var _ Input = &KVLines{}

// NewKVLines returns an empty [*KVLines].
func NewKVLines() *KVLines {
	return &KVLines{}
}

// NewKVLinesFromPairs returns a [*KVLines] holding a copy of pairs.
func NewKVLinesFromPairs(pairs []KeyValue) *KVLines {
	return &KVLines{lines: slices.Clone(pairs)}
}

// Append adds a key/value pair at the end of the list.
func (kv *KVLines) Append(key, value string) {
	kv.lines = append(kv.lines, KeyValue{Key: key, Value: value})
}

// Lines returns the key/value pairs in insertion order.
func (kv *KVLines) Lines() []KeyValue {
	return kv.lines
}

// Len returns the number of pairs.
func (kv *KVLines) Len() int {
	return len(kv.lines)
}

// Clear removes all the pairs.
func (kv *KVLines) Clear() {
	kv.lines = kv.lines[:0]
}

// EncodedLen returns the number of bytes written by [*KVLines.Encode].
func (kv *KVLines) EncodedLen() int {
	size := 1
	for _, entry := range kv.lines {
		size += len(entry.Key) + 1 + len(entry.Value) + 1
	}
	return size
}

// Encode appends the wire representation of kv to buf.
func (kv *KVLines) Encode(buf *bytes.Buffer) {
	buf.Grow(kv.EncodedLen())
	for _, entry := range kv.lines {
		writeLine(buf, entry.Key, entry.Value)
	}
	buf.WriteByte('\n')
}

// Serialize returns the wire representation of kv.
func (kv *KVLines) Serialize() []byte {
	buf := &bytes.Buffer{}
	kv.Encode(buf)
	return buf.Bytes()
}

// String returns a representation like {k1=v1,k1=v2} in insertion order.
func (kv *KVLines) String() string {
	entries := make([]string, 0, len(kv.lines))
	for _, entry := range kv.lines {
		entries = append(entries, entry.Key+"="+entry.Value)
	}
	return "{" + strings.Join(entries, ",") + "}"
}

// take returns the accumulated pairs and leaves kv empty.
func (kv *KVLines) take() *KVLines {
	out := &KVLines{lines: kv.lines}
	kv.lines = nil
	return out
}

func (*KVLines) isInput() {}
