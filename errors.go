// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound indicates that a lookup on a completed value missed.
	//
	// This is an application-level condition, not a stream fault.
	ErrKeyNotFound = errors.New("tgcodec: key not found")

	// ErrBadFormat indicates malformed input: invalid UTF-8, an invalid
	// topic or key character, or a line exceeding the maximum length.
	ErrBadFormat = errors.New("tgcodec: bad format")

	// ErrSerialize indicates that a value cannot be serialized.
	ErrSerialize = errors.New("tgcodec: unable to serialize")

	// ErrIO wraps an error returned by the transport or by a sink.
	ErrIO = errors.New("tgcodec: I/O error")

	// ErrBadState indicates that an internal invariant was violated.
	ErrBadState = errors.New("tgcodec: unexpected state")

	// ErrInvalidSize indicates a zero or negative transfer size.
	ErrInvalidSize = errors.New("tgcodec: invalid size")
)

// newBadFormatError returns an [ErrBadFormat] carrying the given reason.
func newBadFormatError(reason string) error {
	return fmt.Errorf("%w: %s", ErrBadFormat, reason)
}

// newIOError wraps err so that both [ErrIO] and err match [errors.Is].
func newIOError(err error) error {
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// newKeyNotFoundError returns an [ErrKeyNotFound] naming the key.
func newKeyNotFoundError(key string) error {
	return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}
