// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

// Input is a value returned by [*Codec.Decode].
//
// The concrete type tells what has been decoded:
//
//   - [*Telegram]: a complete telegram frame
//   - [*Params]: a complete unique-key parameters frame
//   - [*KVLines]: a complete ordered key/value frame
//   - [Chunk]: a piece of a chunked binary transfer
//   - [Bytes]: a complete immutable binary buffer
//   - [BytesMut]: a complete mutable binary buffer
//   - [FilePath]: a binary transfer has been stored into a file
//   - [WriteDone]: a binary transfer has been written to a [Sink]
//   - [SkipDone]: a binary transfer has been discarded
//
// Use a type switch to dispatch on the concrete type.
type Input interface {
	isInput()
}

// Chunk is a piece of a binary transfer configured with [*Codec.ExpectChunks].
type Chunk struct {
	// Data contains the bytes received so far. The caller owns it.
	Data []byte

	// Remain is the number of bytes still expected after Data.
	// Zero marks the last chunk.
	Remain int
}

// Bytes is a complete immutable buffer requested with [*Codec.ExpectBytes].
type Bytes string

// BytesMut is a complete mutable buffer requested with [*Codec.ExpectBytesMut].
type BytesMut []byte

// FilePath is the path of the file written by a transfer requested with
// [*Codec.ExpectFile].
type FilePath string

// WriteDone marks the completion of a transfer requested with [*Codec.ExpectWriter].
type WriteDone struct{}

// SkipDone marks the completion of a transfer requested with [*Codec.Skip].
type SkipDone struct{}

func (Chunk) isInput()     {}
func (Bytes) isInput()     {}
func (BytesMut) isInput()  {}
func (FilePath) isInput()  {}
func (WriteDone) isInput() {}
func (SkipDone) isInput()  {}

// inputKind returns a short name for the concrete type of in, used in logs.
func inputKind(in Input) string {
	switch in.(type) {
	case *Telegram:
		return "telegram"
	case *Params:
		return "params"
	case *KVLines:
		return "kvlines"
	case Chunk:
		return "chunk"
	case Bytes:
		return "bytes"
	case BytesMut:
		return "bytesmut"
	case FilePath:
		return "file"
	case WriteDone:
		return "writeDone"
	case SkipDone:
		return "skipDone"
	default:
		return ""
	}
}

// Mode is the kind of input the [*Codec] expects next.
type Mode int

const (
	// ModeTelegram is the initial and default mode.
	ModeTelegram Mode = iota
	ModeParams
	ModeKVLines
	ModeChunks
	ModeBytes
	ModeBytesMut
	ModeFile
	ModeWriter
	ModeSkip
)

var modeNames = [...]string{
	ModeTelegram: "telegram",
	ModeParams:   "params",
	ModeKVLines:  "kvlines",
	ModeChunks:   "chunks",
	ModeBytes:    "bytes",
	ModeBytesMut: "bytesmut",
	ModeFile:     "file",
	ModeWriter:   "writer",
	ModeSkip:     "skip",
}

// String implements [fmt.Stringer].
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// isBinary returns whether m consumes raw bytes rather than lines.
func (m Mode) isBinary() bool {
	return m >= ModeChunks && m <= ModeSkip
}
