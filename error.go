// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gonova/httpcall/codec"
)

// A Decoder decodes the JSON body of a successful response into the
// value wrapped by the Result.
//
// A Decoder error ends the request without retry: it represents a
// contract violation between client and server, not a transient
// condition.
type Decoder interface {
	Decode(raw json.RawMessage, o codec.Options) (any, error)
}

// The DecoderFunc type is an adapter to allow the use of ordinary
// functions as decoders.
type DecoderFunc func(raw json.RawMessage, o codec.Options) (any, error)

// Decode calls f(raw, o).
func (f DecoderFunc) Decode(raw json.RawMessage, o codec.Options) (any, error) {
	return f(raw, o)
}

// An ErrorDecoder decodes the JSON body of a non-2xx response into a
// structured error value. The first return value is the decoded error
// to surface to the caller (or to the decoded-error retry hooks); the
// second reports a decode failure, which the engine classifies as a
// server error.
type ErrorDecoder interface {
	DecodeError(raw json.RawMessage, o codec.Options) (error, error)
}

// The ErrorDecoderFunc type is an adapter to allow the use of ordinary
// functions as error decoders.
type ErrorDecoderFunc func(raw json.RawMessage, o codec.Options) (error, error)

// DecodeError calls f(raw, o).
func (f ErrorDecoderFunc) DecodeError(raw json.RawMessage, o codec.Options) (error, error) {
	return f(raw, o)
}

// An APIError is the structured error produced by DefaultErrorDecoder
// from a non-2xx JSON response body.
type APIError struct {
	// Code is the machine-readable error code reported by the server.
	Code string `json:"code"`
	// Message is the human-readable description, if any.
	Message string `json:"message"`
	// Raw is the complete JSON error body the server returned.
	Raw json.RawMessage `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("httpcall: API error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("httpcall: API error %s", e.Code)
}

// DefaultErrorDecoder decodes a JSON error body into an *APIError. It
// is the error decoder used when a request does not configure one.
var DefaultErrorDecoder ErrorDecoder = ErrorDecoderFunc(func(raw json.RawMessage, _ codec.Options) (error, error) {
	apiErr := &APIError{Raw: append(json.RawMessage(nil), raw...)}
	if err := json.Unmarshal(raw, apiErr); err != nil {
		return nil, err
	}
	return apiErr, nil
})

// A JSONError carries a non-2xx JSON body through undecoded, as parsed
// JSON. It is produced by RawErrorDecoder.
type JSONError struct {
	Value any
}

// Error implements the error interface.
func (e *JSONError) Error() string {
	return fmt.Sprintf("httpcall: API error: %v", e.Value)
}

// RawErrorDecoder passes the parsed JSON error body through as a
// *JSONError instead of decoding it into a structured error. Configure
// it on requests whose error bodies have no fixed shape.
var RawErrorDecoder ErrorDecoder = ErrorDecoderFunc(func(raw json.RawMessage, _ codec.Options) (error, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &JSONError{Value: v}, nil
})

// A ServerError is a server-side contract violation: a non-2xx
// response without a JSON body, a JSON error body the error decoder
// could not decode, or a 2xx response whose body was malformed or
// missing where a decodable body was expected.
type ServerError struct {
	// StatusCode is the HTTP status code of the offending response.
	StatusCode int
	// Body is the raw response body.
	Body []byte
	// Err is the underlying parse or decode failure, when there is
	// one.
	Err error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("httpcall: server error (status %d): %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("httpcall: server error (status %d)", e.StatusCode)
}

// Unwrap returns the underlying cause, which may be nil.
func (e *ServerError) Unwrap() error {
	return e.Err
}

// urlErrorWrap tags a terminal network-level failure with the method
// and URL in the same manner as the Go standard HTTP client.
func urlErrorWrap(method, u string, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
