// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
)

// A Category is the failure category of a request attempt that did not
// complete, as reported by Categorize.
type Category int

const (
	// Network indicates a transport-level failure which is neither a
	// timeout nor a caller abort: connection refused, connection
	// reset, DNS failure, TLS failure, and the like.
	Network Category = iota
	// Timeout indicates the attempt did not complete within its
	// deadline. The server may be going through a temporary period of
	// slowness, or a future attempt may succeed with a longer timeout.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true, or wraps
	// context.DeadlineExceeded.
	Timeout
	// Aborted indicates the caller cancelled the attempt. It is
	// distinct from Timeout and Network so that retry hooks can tell
	// deliberate cancellation apart from true failure.
	//
	// Categorize returns Aborted if the error or any of its wrapped
	// causes is context.Canceled.
	Aborted
)

var categoryNames = []string{
	"network error",
	"timeout",
	"aborted",
}

// String returns a short human-readable name for the category.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[int(c)]
	}
	return fmt.Sprintf("transport.Category(%d)", int(c))
}

// An Error is a categorized transport-level failure. Every non-nil
// error returned from Adapter.RoundTrip wraps an Error, and any custom
// RoundTripper must follow the same convention so the request engine
// can classify the outcome.
type Error struct {
	// Category is the failure category.
	Category Category
	// Method is the HTTP method of the failed attempt.
	Method string
	// URL is the target URL of the failed attempt.
	URL string
	// Err is the underlying cause. It may be nil for synthetic errors,
	// for example the abort error generated by cancelling a request
	// that has no attempt in flight.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("httpcall: %s %s: %s", e.Method, e.URL, e.Category)
	}
	return fmt.Sprintf("httpcall: %s %s: %s: %s", e.Method, e.URL, e.Category, e.Err)
}

// Unwrap returns the underlying cause, which may be nil.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error represents an attempt timeout.
// It allows Error to satisfy the timeout-reporting convention used by
// net.Error and url.Error.
func (e *Error) Timeout() bool {
	return e.Category == Timeout
}

// Categorize returns the failure category of the given attempt error.
//
// In assessing the failure, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Caller aborts take
// precedence over timeouts so that cancelling a request mid-attempt is
// never mistaken for a slow server.
func Categorize(err error) Category {
	if errors.Is(err, context.Canceled) {
		return Aborted
	}

	var hasTimeout interface{ Timeout() bool }
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	return Network
}

// Abort returns a synthetic Aborted error for the given method and
// URL. The request engine uses it when a request is cancelled while no
// attempt is in flight.
func Abort(method, url string) *Error {
	return &Error{Category: Aborted, Method: method, URL: url}
}
