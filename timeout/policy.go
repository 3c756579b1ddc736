// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"
)

const (
	// DefaultGet is the attempt timeout for GET requests which do not
	// set an explicit timeout.
	DefaultGet = 10 * time.Second
	// DefaultWrite is the attempt timeout for non-GET requests which
	// do not set an explicit timeout. It is intentionally long:
	// writes may be expensive server-side and are not safely
	// abandoned early.
	DefaultWrite = 15 * DefaultGet
	// EscalationFloor is the minimum attempt timeout after a previous
	// attempt of the same request has timed out.
	EscalationFloor = 30 * time.Second
	// BinaryFloor is the minimum attempt timeout for requests whose
	// raw binary body exceeds BinaryThreshold.
	BinaryFloor = 60 * time.Second
	// BinaryThreshold is the raw binary body size, in bytes, above
	// which BinaryFloor applies.
	BinaryThreshold = int64(1) << 30
)

// A State is the observable shape of a request from which the next
// attempt timeout is computed.
type State struct {
	// Method is the HTTP method of the request.
	Method string
	// Explicit is the timeout currently stored on the request. It is
	// zero if the caller never set one and no escalation has happened
	// yet.
	Explicit time.Duration
	// BinaryBytes is the size of the request's raw binary body, or
	// zero if the body is absent or not binary.
	BinaryBytes int64
}

// A Policy computes the timeout to set on the next request attempt.
//
// Implementations of Policy must be safe for concurrent use by
// multiple goroutines.
type Policy interface {
	Timeout(s State) time.Duration
}

// The PolicyFunc type is an adapter to allow the use of ordinary
// functions as timeout policies.
type PolicyFunc func(s State) time.Duration

// Timeout calls f(s).
func (f PolicyFunc) Timeout(s State) time.Duration {
	return f(s)
}

// DefaultPolicy is the timeout policy used when a request does not
// configure one. An explicit timeout stored on the request always
// wins; otherwise GET requests get DefaultGet and all other methods
// get DefaultWrite. Requests carrying a raw binary body larger than
// BinaryThreshold are floored at BinaryFloor either way.
var DefaultPolicy Policy = PolicyFunc(func(s State) time.Duration {
	d := s.Explicit
	if d <= 0 {
		if s.Method == "GET" {
			d = DefaultGet
		} else {
			d = DefaultWrite
		}
	}
	if s.BinaryBytes > BinaryThreshold && d < BinaryFloor {
		d = BinaryFloor
	}
	return d
})

// Fixed constructs a timeout policy that ignores the request state and
// always returns the value d.
func Fixed(d time.Duration) Policy {
	return PolicyFunc(func(State) time.Duration {
		return d
	})
}

// Escalated returns the timeout to store on a request after one of its
// attempts timed out. The result is never below EscalationFloor and
// never below the current stored timeout: deadlines only ratchet
// upward across automatic retries.
func Escalated(current time.Duration) time.Duration {
	if current < EscalationFloor {
		return EscalationFloor
	}
	return current
}
