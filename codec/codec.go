// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec turns outgoing payloads into request bodies and query
// strings.
//
// The wire encoding of domain objects is not this package's business:
// it is delegated to an Encoder supplied by the caller, which reduces
// a domain value to a plain JSON-compatible value (maps, slices,
// strings, numbers, booleans, nil). This package owns the glue that
// follows: JSON body serialization, application/x-www-form-urlencoded
// body building, query-string building, and coercion of raw binary
// bodies.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// Options carries encoding context through an Encoder.
type Options struct {
	// Version is the API version of the request being encoded, or zero
	// if the request is unversioned.
	Version int
}

// An Encoder reduces a domain value to a plain JSON-compatible value:
// map[string]any, []any, string, float64/int, bool, or nil.
//
// Returning nil means the value encodes to nothing. For a JSON body
// this produces the JSON literal null; for form bodies and query
// strings it is rejected or omitted respectively.
//
// Implementations of Encoder must be safe for concurrent use by
// multiple goroutines.
type Encoder interface {
	Encode(v any, o Options) (any, error)
}

// The EncoderFunc type is an adapter to allow the use of ordinary
// functions as encoders.
type EncoderFunc func(v any, o Options) (any, error)

// Encode calls f(v, o).
func (f EncoderFunc) Encode(v any, o Options) (any, error) {
	return f(v, o)
}

// Identity is an Encoder that passes the value through unchanged. It
// is the encoder used when a request does not configure one, and is
// suitable whenever payloads are already plain JSON-compatible values.
var Identity Encoder = EncoderFunc(func(v any, _ Options) (any, error) {
	return v, nil
})

// Binary is a raw request body which bypasses encoding entirely:
// multipart payloads, file uploads, and other pre-serialized content.
// The content type is left to the caller's headers.
type Binary []byte

const badBinaryTypeMsg = "httpcall/codec: invalid type (for a binary body use " +
	"nil, string, []byte, io.Reader or io.ReadCloser)"

// BinaryBytes converts a generic body parameter to a Binary body.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. If body is an io.Reader, it is read to
// the end and buffered. If body is an io.ReadCloser, it is closed
// after buffering. Any other type results in an error.
func BinaryBytes(body any) (Binary, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return Binary(x), nil
	case []byte:
		return Binary(x), nil
	case Binary:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BinaryBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBinaryTypeMsg)
	}
}

// JSONBody encodes v through enc and serializes the result as JSON.
func JSONBody(enc Encoder, v any, o Options) ([]byte, error) {
	ev, err := enc.Encode(v, o)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// FormBody encodes v through enc and serializes the result as
// application/x-www-form-urlencoded key=value pairs joined by "&".
// Keys whose value is nil are omitted. An encoder result that is not a
// non-nil map is an error: a null body is not valid for this mode.
func FormBody(enc Encoder, v any, o Options) ([]byte, error) {
	ev, err := enc.Encode(v, o)
	if err != nil {
		return nil, err
	}
	m, err := toMap(ev)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("httpcall/codec: form body did not encode to a map")
	}
	return []byte(strings.Join(pairs(m), "&")), nil
}

// Query encodes v through enc and builds a query string of key=value
// pairs. Keys whose value is nil are omitted. If at least one pair
// remains, the result is prefixed with "?"; otherwise it is empty.
// A nil encoder result yields an empty query string.
func Query(enc Encoder, v any, o Options) (string, error) {
	ev, err := enc.Encode(v, o)
	if err != nil {
		return "", err
	}
	if ev == nil {
		return "", nil
	}
	m, err := toMap(ev)
	if err != nil {
		return "", err
	}
	ps := pairs(m)
	if len(ps) == 0 {
		return "", nil
	}
	return "?" + strings.Join(ps, "&"), nil
}

func toMap(ev any) (map[string]any, error) {
	switch m := ev.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	case map[string]string:
		m2 := make(map[string]any, len(m))
		for k, v := range m {
			m2[k] = v
		}
		return m2, nil
	case url.Values:
		m2 := make(map[string]any, len(m))
		for k := range m {
			m2[k] = m.Get(k)
		}
		return m2, nil
	default:
		return nil, fmt.Errorf("httpcall/codec: value of type %T did not encode to a map", ev)
	}
}

// pairs builds percent-encoded key=value pairs in sorted key order,
// omitting nil-valued keys. Sorting makes the output deterministic.
func pairs(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ps := make([]string, len(keys))
	for i, k := range keys {
		ps[i] = url.QueryEscape(k) + "=" + url.QueryEscape(stringify(m[k]))
	}
	return ps
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
