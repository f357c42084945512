// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"errors"
	"io"

	"github.com/bassosimone/errclass"
)

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "EBADFORMAT",
// "ECONNRESET") that end up in the errClass field of structured logs.
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	cfg.ErrClassifier = ErrClassifierFunc(errclass.New)
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// Labels returned by [DefaultErrClassifier] for codec errors.
const (
	EBADFORMAT     = "EBADFORMAT"
	EBADSTATE      = "EBADSTATE"
	EINVALIDSIZE   = "EINVALIDSIZE"
	EKEYNOTFOUND   = "EKEYNOTFOUND"
	ESERIALIZE     = "ESERIALIZE"
	EUNEXPECTEDEOF = "EUNEXPECTEDEOF"
)

// DefaultErrClassifier labels the codec sentinel errors and delegates
// everything else to [errclass.New].
//
// A nil error maps to the empty string.
var DefaultErrClassifier = ErrClassifierFunc(classifyError)

func classifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadFormat):
		return EBADFORMAT
	case errors.Is(err, ErrBadState):
		return EBADSTATE
	case errors.Is(err, ErrInvalidSize):
		return EINVALIDSIZE
	case errors.Is(err, ErrKeyNotFound):
		return EKEYNOTFOUND
	case errors.Is(err, ErrSerialize):
		return ESERIALIZE
	case errors.Is(err, io.ErrUnexpectedEOF):
		return EUNEXPECTEDEOF
	default:
		return errclass.New(err)
	}
}
