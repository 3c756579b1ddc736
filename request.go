// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gonova/httpcall/codec"
	"github.com/gonova/httpcall/timeout"
	"github.com/gonova/httpcall/transport"
)

// A Request is one logical HTTP call, together with the retry, timeout,
// and cancellation state that governs its execution. Its zero value
// plus a Host and Path is a valid GET request with retries enabled.
//
// A Request is mutable until it reaches a terminal state: middleware
// may adjust headers or flags between attempts, and the stored Timeout
// escalates after attempt timeouts. Exactly one transport operation is
// outstanding per Request at any instant; retries are strictly
// sequential re-executions of the whole pipeline.
//
// The exported configuration fields must not be mutated concurrently
// with Start, except through the flag setters and Cancel, which are
// safe to call from any goroutine.
type Request struct {
	// Host is the scheme and authority of the target, for example
	// "https://api.example.com". Typically set by a Server.
	Host string
	// Path is the request path, beginning with "/".
	Path string
	// Method is the HTTP method. An empty string means GET.
	Method string
	// Version is the API version. When positive, the URL gains a
	// "/v<Version>" segment between host and path, and the value is
	// passed to the codec and decoders.
	Version int
	// Header contains the request header fields to send. A nil map is
	// treated as empty.
	Header http.Header
	// Query is the optional query payload. It is run through Codec and
	// appended to the URL as a query string; nil-valued keys are
	// omitted.
	Query any
	// Body is the optional body payload: nil for no body, codec.Binary
	// for a raw multipart/binary body sent unchanged, or any value the
	// Codec can reduce to a JSON-compatible value.
	Body any
	// Codec reduces Query and Body to plain JSON-compatible values. If
	// nil, codec.Identity is used.
	Codec codec.Encoder
	// Decoder decodes a successful JSON response body into the Result
	// value. If nil, the raw parsed JSON is returned.
	Decoder Decoder
	// ErrorDecoder decodes a non-2xx JSON response body into a
	// structured error. If nil, DefaultErrorDecoder is used. Set
	// RawErrorDecoder to pass the parsed JSON through undecoded.
	ErrorDecoder ErrorDecoder
	// Timeout is the explicit per-attempt timeout. Zero selects the
	// TimeoutPolicy's method default. The stored value escalates after
	// an attempt timeout and never decreases across automatic retries.
	Timeout time.Duration
	// TimeoutPolicy computes the effective attempt timeout. If nil,
	// timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// Transport performs the HTTP exchanges. If nil, transport.Default
	// is used.
	Transport transport.RoundTripper
	// Middleware is the request's own middleware list, consulted after
	// process-wide middleware for every hook. A Server appends its
	// default middleware to this list when it builds the request.
	Middleware []Middleware
	// Logger receives debug-level lifecycle logging and warnings about
	// failing hooks. If nil, the request logs nothing.
	Logger *slog.Logger

	mu              sync.Mutex
	retryDisabled   bool
	allowErrorRetry bool
	cancelled       bool
	didFailNetwork  bool
	abort           context.CancelFunc
	bag             *Bag
	attempts        int
	data            context.Context
}

// ShouldRetry reports whether the master retry flag is enabled. It is
// true for a fresh request and forced false, permanently, by Cancel.
func (r *Request) ShouldRetry() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.retryDisabled && !r.cancelled
}

// SetShouldRetry sets the master retry flag. It has no effect on a
// cancelled request.
func (r *Request) SetShouldRetry(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.retryDisabled = !ok
}

// AllowErrorRetry reports whether retries on decoded application
// errors are permitted even while the master retry flag is off. It is
// false for a fresh request and forced false, permanently, by Cancel.
func (r *Request) AllowErrorRetry() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allowErrorRetry && !r.cancelled
}

// SetAllowErrorRetry sets the error-retry flag. It has no effect on a
// cancelled request.
func (r *Request) SetAllowErrorRetry(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.allowErrorRetry = ok
}

// Cancelled reports whether Cancel has been called.
func (r *Request) Cancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// FailedNetwork reports whether the request has already failed
// terminally with a network-level error and notified its middleware.
func (r *Request) FailedNetwork() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.didFailNetwork
}

// Attempt is the zero-based number of the current attempt: zero on the
// initial attempt, one on the first retry, and so on.
func (r *Request) Attempt() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// Cancel terminates the request. It forces the retry flags off
// permanently and aborts the in-flight transport operation if one
// exists. If no transport operation is outstanding, for example while
// a middleware hook is stalled on its own timer, Cancel synchronously
// fires the fatal network notification path instead so waiting callers
// are not left hanging. Cancel is idempotent and never panics.
func (r *Request) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.retryDisabled = true
	r.allowErrorRetry = false
	abort := r.abort
	r.mu.Unlock()
	if abort != nil {
		abort()
		return
	}
	_ = r.failNetwork(context.Background(), r.chain(), transport.Abort(r.method(), r.Host+r.Path))
}

// Register associates the request with owner's Bag, creating the Bag
// if needed, and returns it. The request is removed from the Bag when
// it reaches any terminal state.
func (r *Request) Register(owner any) *Bag {
	b := BagFor(owner)
	b.AddRequest(r)
	return b
}

// SetValue stores an arbitrary data value on the request, keyed the
// same way as context.WithValue: the key must be comparable and should
// not be a built-in type. Middleware uses this to carry per-request
// state between its own hooks.
func (r *Request) SetValue(key, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := r.data
	if ctx == nil {
		ctx = context.Background()
	}
	r.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with key via SetValue, or
// nil if there is none.
func (r *Request) Value(key any) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil
	}
	return r.data.Value(key)
}

func (r *Request) method() string {
	if r.Method == "" {
		return "GET"
	}
	return r.Method
}

func (r *Request) header() http.Header {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	return r.Header
}

func (r *Request) encoder() codec.Encoder {
	if r.Codec == nil {
		return codec.Identity
	}
	return r.Codec
}

func (r *Request) errorDecoder() ErrorDecoder {
	if r.ErrorDecoder == nil {
		return DefaultErrorDecoder
	}
	return r.ErrorDecoder
}

func (r *Request) timeoutPolicy() timeout.Policy {
	if r.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}
	return r.TimeoutPolicy
}

func (r *Request) transport() transport.RoundTripper {
	if r.Transport == nil {
		return transport.Default
	}
	return r.Transport
}

func (r *Request) bumpAttempt() {
	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()
}

func (r *Request) setAbort(cancel context.CancelFunc) {
	r.mu.Lock()
	r.abort = cancel
	r.mu.Unlock()
}

// deregister removes the request from its Bag, if any. Idempotent.
func (r *Request) deregister() {
	r.mu.Lock()
	b := r.bag
	r.bag = nil
	r.mu.Unlock()
	if b != nil {
		b.RemoveRequest(r)
	}
}

func (r *Request) logDebug(ctx context.Context, msg string, args ...any) {
	if r.Logger != nil {
		r.Logger.Log(ctx, slog.LevelDebug, msg, args...)
	}
}

func (r *Request) logWarn(ctx context.Context, msg string, args ...any) {
	if r.Logger != nil {
		r.Logger.Log(ctx, slog.LevelWarn, msg, args...)
	}
}
