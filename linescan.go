// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"math"
	"strings"
	"unicode/utf8"
)

// lineScanner finds LF-terminated lines in a buffer that grows between calls.
//
// The cursor records how much of the pending bytes has already been searched
// without finding a LF, so that a partial line is scanned only once no
// matter how many reads it takes to complete it.
type lineScanner struct {
	cursor int
	max    int
}

// scan returns the length, LF included, of the first line in data, or -1
// when more data is needed.
//
// The search window is data[cursor:min(max+1, len(data))], so a line whose
// content is longer than max fails with [ErrBadFormat] as soon as more than
// max bytes are pending without a LF.
func (s *lineScanner) scan(data []byte) (int, error) {
	readTo := len(data)
	if s.max < math.MaxInt && s.max+1 < readTo {
		readTo = s.max + 1
	}
	if s.cursor > readTo {
		// the pending bytes shrank behind our back, rescan
		s.cursor = 0
	}
	if idx := bytes.IndexByte(data[s.cursor:readTo], '\n'); idx >= 0 {
		size := s.cursor + idx + 1
		s.cursor = 0
		return size, nil
	}
	if len(data) > s.max {
		return -1, newBadFormatError("exceeded maximum line length")
	}
	s.cursor = readTo
	return -1, nil
}

// reset forgets the scanned prefix.
func (s *lineScanner) reset() {
	s.cursor = 0
}

// nextLine consumes the next line from buf and returns it without the
// trailing LF or CRLF. The boolean is false when more data is needed.
func (s *lineScanner) nextLine(buf *bytes.Buffer) (string, bool, error) {
	size, err := s.scan(buf.Bytes())
	if err != nil || size < 0 {
		return "", false, err
	}
	line := buf.Next(size)
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if !utf8.Valid(line) {
		return "", false, newBadFormatError("unable to decode input as UTF-8")
	}
	return string(line), true, nil
}

// splitKeyValue splits line at the first space. The boolean is false when
// the line contains no space.
func splitKeyValue(line string) (key, value string, found bool) {
	return strings.Cut(line, " ")
}
