// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"math"
	"time"
)

// DefaultReadBufferSize is the default [Config.ReadBufferSize].
const DefaultReadBufferSize = 4096

// Config holds common configuration for tgcodec operations.
//
// Pass this to constructor functions to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// MaxLineLength is the longest line, excluding the terminating LF,
	// that a [*Codec] accepts.
	//
	// Set by [NewConfig] to [math.MaxInt], which means unbounded.
	MaxLineLength int

	// OpenFile opens the destination used by [*Codec.ExpectFile].
	//
	// Set by [NewConfig] to [CreateFile]. Use [AsyncFileOpener] to move
	// file writes off the decode path.
	OpenFile func(path string) (Sink, error)

	// ReadBufferSize is the size of the buffer a [*FramedConn] reads into.
	//
	// Set by [NewConfig] to [DefaultReadBufferSize].
	ReadBufferSize int

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier:  DefaultErrClassifier,
		MaxLineLength:  math.MaxInt,
		OpenFile:       CreateFile,
		ReadBufferSize: DefaultReadBufferSize,
		TimeNow:        time.Now,
	}
}
