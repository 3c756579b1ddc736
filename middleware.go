// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"sync"

	"github.com/gonova/httpcall/transport"
)

// A Middleware is a set of hooks consulted at defined extension points
// of the request lifecycle. Every hook is optional: embed Base to get
// no-op implementations and override only the hooks of interest.
//
// Hooks run sequentially, never in parallel, so an earlier hook's side
// effects are visible to later hooks in the same poll. A hook may
// mutate the Request it is handed, including its retry flags; the
// engine re-checks the flags after every hook.
//
// Implementations must be safe for concurrent use by multiple
// goroutines, since one Middleware instance may be shared by many
// requests.
type Middleware interface {
	// BeforeRequest runs before every attempt, prior to encoding. It
	// may mutate the request, for example to inject an auth header.
	// A non-nil error fails the Start call immediately, without
	// retries and without the fatal network notification.
	BeforeRequest(ctx context.Context, r *Request) error

	// RetryNetError decides whether to retry after a transport-level
	// failure (network error, timeout, or abort). It is only polled
	// while retries are enabled and the request has not already failed
	// fatally.
	RetryNetError(ctx context.Context, r *Request, terr *transport.Error) (bool, error)

	// RetryDecodedError decides whether to retry after a non-2xx
	// response whose body decoded into a structured error. It is
	// polled while either the master retry flag or the error-retry
	// flag is set, which lets auth-refresh style middleware act even
	// when general retries are off.
	RetryDecodedError(ctx context.Context, r *Request, derr error) (bool, error)

	// RetryServerError decides whether to retry after a server-side
	// contract violation: a non-JSON error body, an undecodable error
	// body, or a malformed or missing success body.
	RetryServerError(ctx context.Context, r *Request, resp *transport.Response, cause error) (bool, error)

	// FatalNetError is a notification that the request is failing
	// terminally with a network-level error. It fires at most once per
	// request.
	FatalNetError(ctx context.Context, r *Request, terr *transport.Error)

	// OnResponse is a notification that an HTTP response was received,
	// before classification. Its return value, if any, is ignored.
	OnResponse(ctx context.Context, r *Request, resp *transport.Response)
}

// Base is a Middleware whose every hook is a no-op. Embed it to
// implement only the hooks a middleware cares about.
type Base struct{}

// BeforeRequest implements Middleware.
func (Base) BeforeRequest(context.Context, *Request) error { return nil }

// RetryNetError implements Middleware. It has no opinion.
func (Base) RetryNetError(context.Context, *Request, *transport.Error) (bool, error) {
	return false, nil
}

// RetryDecodedError implements Middleware. It has no opinion.
func (Base) RetryDecodedError(context.Context, *Request, error) (bool, error) {
	return false, nil
}

// RetryServerError implements Middleware. It has no opinion.
func (Base) RetryServerError(context.Context, *Request, *transport.Response, error) (bool, error) {
	return false, nil
}

// FatalNetError implements Middleware.
func (Base) FatalNetError(context.Context, *Request, *transport.Error) {}

// OnResponse implements Middleware.
func (Base) OnResponse(context.Context, *Request, *transport.Response) {}

var (
	globalMu         sync.RWMutex
	globalMiddleware []Middleware
)

// Use registers a process-wide middleware. For every hook, process-wide
// middleware is consulted before any request-specific middleware, in
// registration order.
//
// Use may be called concurrently with in-flight requests; a request
// snapshots the process-wide list when it polls the chain.
func Use(m Middleware) {
	if m == nil {
		panic("httpcall: nil middleware")
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMiddleware = append(globalMiddleware, m)
}

// chain returns the full middleware chain for the request: a snapshot
// of the process-wide list followed by the request's own list.
func (r *Request) chain() []Middleware {
	globalMu.RLock()
	n := len(globalMiddleware)
	c := make([]Middleware, n, n+len(r.Middleware))
	copy(c, globalMiddleware)
	globalMu.RUnlock()
	return append(c, r.Middleware...)
}

// poll asks every middleware in the chain the same retry question and
// ORs the answers. The gate is re-checked after each hook so that a
// hook which concurrently disables retries or a cancellation arriving
// mid-poll cuts the poll short. A hook error counts as a false vote
// and does not stop the poll. The final verdict is true only if some
// consulted hook answered true and the gate still holds.
func (r *Request) poll(ctx context.Context, chain []Middleware, gate func() bool, ask func(Middleware) (bool, error)) bool {
	verdict := false
	for _, m := range chain {
		if !gate() {
			break
		}
		ok, err := ask(m)
		if err != nil {
			r.logWarn(ctx, "retry hook failed", "error", err)
			continue
		}
		verdict = verdict || ok
	}
	return verdict && gate()
}
