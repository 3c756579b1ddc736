// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides a standard retry middleware for httpcall with
// a composable decision-maker and backoff calculator.
//
// The httpcall engine delegates every retry decision to its middleware
// chain; this package supplies the common policy most callers want
// without writing a middleware by hand. A Decider decides whether
// another attempt is worthwhile, a Waiter decides how long to sleep
// before it, and Middleware wires the two into the network-error and
// server-error retry hooks:
//
//	decider := retry.Times(3).And(retry.StatusCode(502, 503).Or(retry.AnyErr))
//	waiter := retry.NewExpWaiter(100*time.Millisecond, 2*time.Second, time.Now())
//	mw := retry.New(decider, waiter)
//
//	srv := httpcall.NewServer(host, httpcall.WithMiddleware(mw))
//
// Decoded application errors are deliberately not handled here: whether
// a structured API error is worth retrying is application policy.
package retry
