// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout computes per-attempt timeouts for httpcall requests.
// A generic interface for timeout policies is provided, Policy, along
// with the default policy used by the request engine and the
// escalation rule applied after an attempt times out.
//
// The default policy gives GET requests a short deadline and every
// other method a deliberately long one, floors large binary uploads at
// a higher minimum, and always honors an explicit caller-set timeout.
// Escalation only ever ratchets a stored timeout upward, never down.
package timeout
