// SPDX-License-Identifier: GPL-3.0-or-later

package tgcodec

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Params is a set of key/value parameters with unique keys.
//
// Keys are checked with [ValidateKey]; adding an existing key silently
// overwrites its value. Values are arbitrary strings, and the getters offer
// conventions for common layouts such as integers, booleans and
// comma-separated lists.
//
// The zero value is an empty, ready to use Params.
type Params struct {
	m map[string]string
}

var _ Input = &Params{}

// NewParams returns an empty [*Params].
func NewParams() *Params {
	return &Params{}
}

// NewParamsFromMap returns a [*Params] holding a copy of m.
//
// It fails with [ErrBadFormat] if any key is invalid.
func NewParamsFromMap(m map[string]string) (*Params, error) {
	p := &Params{m: make(map[string]string, len(m))}
	for k, v := range m {
		if err := p.AddStr(k, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AddParam adds a parameter whose value is formatted with [fmt.Sprint].
func (p *Params) AddParam(key string, value any) error {
	return p.AddStr(key, fmt.Sprint(value))
}

// AddStr adds a string parameter.
func (p *Params) AddStr(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if p.m == nil {
		p.m = make(map[string]string)
	}
	p.m[key] = value
	return nil
}

// AddStrs adds a parameter whose value is the comma-separated
// concatenation of values.
func (p *Params) AddStrs(key string, values []string) error {
	return p.AddStr(key, strings.Join(values, ","))
}

// AddBool adds a boolean parameter.
//
// Do not rely on the exact string stored; read it back using [*Params.GetBool].
func (p *Params) AddBool(key string, value bool) error {
	if value {
		return p.AddStr(key, "True")
	}
	return p.AddStr(key, "False")
}

// Has returns whether key exists.
func (p *Params) Has(key string) bool {
	_, found := p.m[key]
	return found
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.m)
}

// Clear removes all the parameters.
func (p *Params) Clear() {
	clear(p.m)
}

// Map returns a copy of the parameters as a map.
func (p *Params) Map() map[string]string {
	if p.m == nil {
		return map[string]string{}
	}
	return maps.Clone(p.m)
}

// Keys returns the parameter keys in sorted order.
func (p *Params) Keys() []string {
	return slices.Sorted(maps.Keys(p.m))
}

// Get returns the value of key or an [ErrKeyNotFound] error.
func (p *Params) Get(key string) (string, error) {
	value, found := p.m[key]
	if !found {
		return "", newKeyNotFoundError(key)
	}
	return value, nil
}

// GetStr returns the value of key and whether it exists.
func (p *Params) GetStr(key string) (string, bool) {
	value, found := p.m[key]
	return value, found
}

// GetStrDef returns the value of key or def if key does not exist.
func (p *Params) GetStrDef(key, def string) string {
	if value, found := p.m[key]; found {
		return value
	}
	return def
}

// GetInt parses the value of key as a base-10 signed integer.
//
// A missing key is [ErrKeyNotFound]; an unparsable value is [ErrBadFormat].
func (p *Params) GetInt(key string) (int64, error) {
	value, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	return parseInt(key, value)
}

// GetIntDef is like [*Params.GetInt] but returns def if key does not exist.
func (p *Params) GetIntDef(key string, def int64) (int64, error) {
	value, found := p.m[key]
	if !found {
		return def, nil
	}
	return parseInt(key, value)
}

// GetUint parses the value of key as a base-10 unsigned integer.
//
// A missing key is [ErrKeyNotFound]; an unparsable value is [ErrBadFormat].
func (p *Params) GetUint(key string) (uint64, error) {
	value, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	return parseUint(key, value)
}

// GetUintDef is like [*Params.GetUint] but returns def if key does not exist.
func (p *Params) GetUintDef(key string, def uint64) (uint64, error) {
	value, found := p.m[key]
	if !found {
		return def, nil
	}
	return parseUint(key, value)
}

func parseInt(key, value string) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, newBadFormatError(fmt.Sprintf("unable to parse numeric value from parameter %q", key))
	}
	return v, nil
}

func parseUint(key, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, newBadFormatError(fmt.Sprintf("unable to parse numeric value from parameter %q", key))
	}
	return v, nil
}

// GetBool interprets the value of key as a boolean.
//
// The accepted values, case-insensitive, are y, yes, t, true and 1 for
// true and n, no, f, false and 0 for false. Anything else is [ErrBadFormat].
func (p *Params) GetBool(key string) (bool, error) {
	value, err := p.Get(key)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(value) {
	case "y", "yes", "t", "true", "1":
		return true, nil
	case "n", "no", "f", "false", "0":
		return false, nil
	default:
		return false, newBadFormatError(fmt.Sprintf("unrecognized boolean value in parameter %q", key))
	}
}

// GetBoolDef is like [*Params.GetBool] but returns def if key does not exist.
func (p *Params) GetBoolDef(key string, def bool) (bool, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.GetBool(key)
}

// GetStrSlice splits the value of key at commas and returns the non-empty
// entries in order. A missing key yields an empty slice.
func (p *Params) GetStrSlice(key string) []string {
	out := []string{}
	for entry := range strings.SplitSeq(p.m[key], ",") {
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

// GetStrSet is like [*Params.GetStrSlice] but returns the unique entries.
func (p *Params) GetStrSet(key string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, entry := range p.GetStrSlice(key) {
		out[entry] = struct{}{}
	}
	return out
}

// EncodedLen returns the number of bytes written by [*Params.Encode].
func (p *Params) EncodedLen() int {
	return mapEncodedLen(p.m)
}

// Encode appends the wire representation of p to buf.
func (p *Params) Encode(buf *bytes.Buffer) {
	writeMap(buf, p.m)
}

// Serialize returns the wire representation of p.
func (p *Params) Serialize() []byte {
	buf := &bytes.Buffer{}
	p.Encode(buf)
	return buf.Bytes()
}

// String returns a representation like {k1=v1,k2=v2} with sorted keys.
func (p *Params) String() string {
	entries := make([]string, 0, len(p.m))
	for _, key := range p.Keys() {
		entries = append(entries, key+"="+p.m[key])
	}
	return "{" + strings.Join(entries, ",") + "}"
}

// take returns the accumulated parameters and leaves p empty.
func (p *Params) take() *Params {
	out := &Params{m: p.m}
	p.m = nil
	return out
}

func (*Params) isInput() {}
