// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"time"

	"github.com/gonova/httpcall"
	"github.com/gonova/httpcall/transport"
)

// Middleware is an httpcall.Middleware answering the network-error and
// server-error retry hooks from a Decider, sleeping per a Waiter
// before approving a retry. Decoded application errors are left to
// other middleware.
//
// A Middleware may be shared by any number of requests and servers.
type Middleware struct {
	httpcall.Base
	decider Decider
	waiter  Waiter
}

// New constructs a retry Middleware from a Decider and a Waiter. A nil
// decider selects DefaultDecider; a nil waiter selects DefaultWaiter.
func New(d Decider, w Waiter) *Middleware {
	if d == nil {
		d = DefaultDecider
	}
	if w == nil {
		w = DefaultWaiter
	}
	return &Middleware{decider: d, waiter: w}
}

// RetryNetError implements httpcall.Middleware.
func (m *Middleware) RetryNetError(ctx context.Context, r *httpcall.Request, terr *transport.Error) (bool, error) {
	if !m.decider.Decide(r, nil, terr) {
		return false, nil
	}
	return m.sleep(ctx, r)
}

// RetryServerError implements httpcall.Middleware.
func (m *Middleware) RetryServerError(ctx context.Context, r *httpcall.Request, resp *transport.Response, cause error) (bool, error) {
	if !m.decider.Decide(r, resp, cause) {
		return false, nil
	}
	return m.sleep(ctx, r)
}

// sleep waits out the backoff period. A cancellation arriving during
// the wait withdraws the retry approval.
func (m *Middleware) sleep(ctx context.Context, r *httpcall.Request) (bool, error) {
	wait := m.waiter.Wait(r.Attempt())
	if wait <= 0 {
		return true, nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
