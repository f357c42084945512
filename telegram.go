// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"fmt"
)

// Telegram is a topic plus a set of key/value parameters.
//
// A telegram without a topic cannot be serialized. All the [Params]
// accessors are available directly on the telegram.
//
// The zero value is a telegram with no topic and no parameters.
type Telegram struct {
	Params

	topic string
}

var _ Input = &Telegram{}

// NewTelegram returns a [*Telegram] with no topic.
//
// Call [*Telegram.SetTopic] before serializing it.
func NewTelegram() *Telegram {
	return &Telegram{}
}

// NewTelegramTopic returns a [*Telegram] with the given topic.
//
// It fails with [ErrBadFormat] if the topic is invalid.
func NewTelegramTopic(topic string) (*Telegram, error) {
	tg := &Telegram{}
	if err := tg.SetTopic(topic); err != nil {
		return nil, err
	}
	return tg, nil
}

// SetTopic validates topic with [ValidateTopic] and replaces the current one.
func (tg *Telegram) SetTopic(topic string) error {
	if err := ValidateTopic(topic); err != nil {
		return err
	}
	tg.topic = topic
	return nil
}

// Topic returns the topic, or the empty string if it is not set.
func (tg *Telegram) Topic() string {
	return tg.topic
}

// HasTopic returns whether the topic has been set.
func (tg *Telegram) HasTopic() bool {
	return tg.topic != ""
}

// NumParams returns the number of parameters.
func (tg *Telegram) NumParams() int {
	return tg.Params.Len()
}

// Clear removes the topic and all the parameters.
func (tg *Telegram) Clear() {
	tg.topic = ""
	tg.Params.Clear()
}

// EncodedLen returns the number of bytes written by [*Telegram.Encode].
//
// An unset topic contributes nothing.
func (tg *Telegram) EncodedLen() int {
	size := tg.Params.EncodedLen()
	if tg.HasTopic() {
		size += len(tg.topic) + 1
	}
	return size
}

// Encode appends the wire representation of tg to buf.
//
// It fails with [ErrSerialize] if the topic is not set, in which case
// nothing is written.
func (tg *Telegram) Encode(buf *bytes.Buffer) error {
	if !tg.HasTopic() {
		return fmt.Errorf("%w: missing telegram topic", ErrSerialize)
	}
	buf.Grow(tg.EncodedLen())
	buf.WriteString(tg.topic)
	buf.WriteByte('\n')
	tg.Params.Encode(buf)
	return nil
}

// Serialize returns the wire representation of tg.
func (tg *Telegram) Serialize() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := tg.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns a representation like topic:{k1=v1,k2=v2}.
func (tg *Telegram) String() string {
	topic := tg.topic
	if !tg.HasTopic() {
		topic = "<None>"
	}
	return topic + ":" + tg.Params.String()
}

// take returns the accumulated telegram and leaves tg empty.
func (tg *Telegram) take() *Telegram {
	out := &Telegram{Params: Params{m: tg.m}, topic: tg.topic}
	tg.m = nil
	tg.topic = ""
	return out
}
