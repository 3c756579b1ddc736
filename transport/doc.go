// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport performs a single HTTP exchange on behalf of the
// httpcall request engine.
//
// The package's central abstraction is the RoundTripper interface,
// which executes exactly one attempt: given a method, URL, headers,
// pre-buffered body, and per-attempt timeout, it either produces a
// fully-buffered Response or a tagged *Error whose Category separates
// the three failure outcomes the engine cares about: timeout, caller
// abort, and every other network-level failure.
//
// Adapter is the standard implementation. It delegates the actual HTTP
// mechanics to an HTTPDoer, typically the Go standard http.Client, and
// layers attempt timeouts, body buffering, and outcome categorization
// on top.
package transport
