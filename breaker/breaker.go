// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package breaker provides a circuit-breaker middleware for httpcall
// built on github.com/sony/gobreaker.
//
// While the breaker is open, the middleware fails requests before any
// attempt is made, protecting both the caller and a struggling remote
// service from retry storms. Attempt outcomes are fed back into the
// breaker: any completed response below 500 counts as a success,
// everything else as a failure.
package breaker

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/gonova/httpcall"
	"github.com/gonova/httpcall/transport"
)

type doneKey struct{}

// Middleware is an httpcall.Middleware guarding requests with a
// circuit breaker. One Middleware holds one breaker, so it should be
// shared by all requests targeting the same remote service.
type Middleware struct {
	httpcall.Base
	cb *gobreaker.TwoStepCircuitBreaker
}

// New constructs a Middleware around a breaker with the given
// settings. An empty Name is replaced with "httpcall".
func New(st gobreaker.Settings) *Middleware {
	if st.Name == "" {
		st.Name = "httpcall"
	}
	return &Middleware{cb: gobreaker.NewTwoStepCircuitBreaker(st)}
}

// BeforeRequest implements httpcall.Middleware. It fails the request
// without an attempt while the breaker is open.
func (m *Middleware) BeforeRequest(_ context.Context, r *httpcall.Request) error {
	done, err := m.cb.Allow()
	if err != nil {
		return fmt.Errorf("httpcall/breaker: %w", err)
	}
	r.SetValue(doneKey{}, done)
	return nil
}

// OnResponse implements httpcall.Middleware. A completed response
// below 500 settles the attempt as a success.
func (m *Middleware) OnResponse(_ context.Context, r *httpcall.Request, resp *transport.Response) {
	m.settle(r, resp.StatusCode < 500)
}

// RetryNetError implements httpcall.Middleware. It settles the failed
// attempt and casts no retry vote.
func (m *Middleware) RetryNetError(_ context.Context, r *httpcall.Request, _ *transport.Error) (bool, error) {
	m.settle(r, false)
	return false, nil
}

// FatalNetError implements httpcall.Middleware. It settles the failed
// attempt in case no retry poll ran.
func (m *Middleware) FatalNetError(_ context.Context, r *httpcall.Request, _ *transport.Error) {
	m.settle(r, false)
}

// settle reports the pending attempt's outcome to the breaker exactly
// once.
func (m *Middleware) settle(r *httpcall.Request, success bool) {
	if done, ok := r.Value(doneKey{}).(func(bool)); ok && done != nil {
		done(success)
		r.SetValue(doneKey{}, nil)
	}
}
