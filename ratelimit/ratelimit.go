// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit provides a client-side throttling middleware for
// httpcall built on golang.org/x/time/rate.
//
// The middleware blocks in the before-request hook until the limiter
// grants a token, so retried attempts are throttled exactly like first
// attempts.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/gonova/httpcall"
)

// Middleware is an httpcall.Middleware which paces requests through a
// shared rate limiter.
type Middleware struct {
	httpcall.Base
	limiter *rate.Limiter
}

// New constructs a Middleware around the given limiter. Share one
// Middleware across every request that should count against the same
// budget.
func New(l *rate.Limiter) *Middleware {
	if l == nil {
		panic("httpcall/ratelimit: nil limiter")
	}
	return &Middleware{limiter: l}
}

// NewLimit constructs a Middleware with a fresh limiter allowing r
// requests per second with the given burst.
func NewLimit(r rate.Limit, burst int) *Middleware {
	return New(rate.NewLimiter(r, burst))
}

// BeforeRequest implements httpcall.Middleware. It blocks until the
// limiter grants a token or ctx is done.
func (m *Middleware) BeforeRequest(ctx context.Context, _ *httpcall.Request) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("httpcall/ratelimit: %w", err)
	}
	return nil
}
