// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"unicode"
	"unicode/utf8"
)

// ValidateTopic checks that topic is a valid telegram topic.
//
// A topic starts with a letter and continues with letters, numbers,
// underscores or dashes. The function returns an [ErrBadFormat] error
// telling apart an empty topic, an invalid leading character, and an
// invalid character elsewhere.
func ValidateTopic(topic string) error {
	lead, size := utf8.DecodeRuneInString(topic)
	if size == 0 {
		return newBadFormatError("empty or broken topic")
	}
	if !unicode.IsLetter(lead) {
		return newBadFormatError("invalid leading topic character")
	}
	for _, r := range topic[size:] {
		if !isTopicRune(r) {
			return newBadFormatError("invalid topic character")
		}
	}
	return nil
}

func isTopicRune(r rune) bool {
	return isAlphanumeric(r) || r == '_' || r == '-'
}

// ValidateKey checks that key is a valid parameter key.
//
// A key is non-empty and each character is either a letter, a number,
// or ASCII punctuation.
func ValidateKey(key string) error {
	if key == "" {
		return newBadFormatError("empty or broken key")
	}
	for _, r := range key {
		if !isKeyRune(r) {
			return newBadFormatError("invalid key character")
		}
	}
	return nil
}

func isKeyRune(r rune) bool {
	return isAlphanumeric(r) || isASCIIPunct(r)
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isASCIIPunct matches the 32 printable ASCII characters that are neither
// letters, digits nor space. Go splits them between the P and S classes.
func isASCIIPunct(r rune) bool {
	return r <= unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r))
}
