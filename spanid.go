// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// Each [*FramedConn] gets its own span ID, which is attached to every log
// event it emits so that events from one connection can be correlated.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
