// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the Go
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A Request describes one HTTP request attempt. The engine constructs
// a fresh Request for every attempt, so a RoundTripper may treat it as
// owned for the duration of the call.
type Request struct {
	// Method is the HTTP method. It must be non-empty.
	Method string
	// URL is the fully-constructed target URL, including any version
	// segment and query string.
	URL string
	// Header contains the request header fields to send.
	Header http.Header
	// Body is the pre-buffered request body. A nil or empty body means
	// no request body is sent.
	Body []byte
	// Timeout bounds the whole attempt: connection, request, and
	// reading the complete response body. Zero means no attempt
	// timeout.
	Timeout time.Duration
}

// A Response is the fully-buffered result of one successful HTTP
// exchange. Successful means the exchange completed; the status code
// may still indicate an application- or server-level failure.
type Response struct {
	// StatusCode is the HTTP response status code.
	StatusCode int
	// Header contains the response header fields.
	Header http.Header
	// Body is the complete response body. It may have zero length.
	Body []byte
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// IsSuccess reports whether the response status code is in [200, 300).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// A RoundTripper executes a single HTTP request attempt.
//
// RoundTrip returns a non-nil Response if the exchange completed,
// regardless of status code. Any failure to complete the exchange is
// reported as a non-nil error which wraps a categorized *Error. The
// attempt must honor cancellation of ctx, reporting it as an Aborted
// error; cancellation of ctx is the cooperative abort mechanism used
// by Request.Cancel.
//
// Implementations of RoundTripper must be safe for concurrent use by
// multiple goroutines.
type RoundTripper interface {
	RoundTrip(ctx context.Context, r *Request) (*Response, error)
}

// Default is the transport used when none is configured. It is an
// Adapter over http.DefaultClient.
var Default RoundTripper = &Adapter{}

// An Adapter is a RoundTripper implemented on top of an HTTPDoer. Its
// zero value is a valid configuration which uses http.DefaultClient.
//
// The HTTPDoer typically has internal state (cached TCP connections)
// so Adapter instances should be reused instead of created as needed.
// Adapter is safe for concurrent use by multiple goroutines.
type Adapter struct {
	// HTTPDoer specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If HTTPDoer is nil, http.DefaultClient from the standard
	// net/http package is used.
	HTTPDoer HTTPDoer
}

// RoundTrip sends one HTTP request and buffers the complete response.
//
// The attempt timeout, if any, is applied by deriving a deadline
// context from ctx, so it covers the full exchange including the body
// read. Failures are categorized per Categorize and returned as a
// tagged *Error.
func (a *Adapter) RoundTrip(ctx context.Context, r *Request) (*Response, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	hr, err := http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	if err != nil {
		return nil, &Error{Category: Network, Method: r.Method, URL: r.URL, Err: err}
	}
	for k, vs := range r.Header {
		hr.Header[k] = vs
	}
	if len(r.Body) > 0 {
		hr.Body = io.NopCloser(bytes.NewReader(r.Body))
		hr.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(r.Body)), nil
		}
		hr.ContentLength = int64(len(r.Body))
	}

	hresp, err := a.doer().Do(hr)
	if err != nil {
		return nil, &Error{Category: Categorize(err), Method: r.Method, URL: r.URL, Err: err}
	}
	defer func() {
		_ = hresp.Body.Close()
	}()

	body, err := io.ReadAll(hresp.Body)
	if err != nil {
		return nil, &Error{Category: Categorize(err), Method: r.Method, URL: r.URL, Err: err}
	}

	return &Response{
		StatusCode: hresp.StatusCode,
		Header:     hresp.Header,
		Body:       body,
	}, nil
}

func (a *Adapter) doer() HTTPDoer {
	if a.HTTPDoer == nil {
		return http.DefaultClient
	}

	return a.HTTPDoer
}
