// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"github.com/gonova/httpcall"
	"github.com/gonova/httpcall/transport"
)

// A Decider decides if a retry should be done.
//
// The resp parameter is the offending HTTP response when the decision
// concerns a server error, and nil when it concerns a network-level
// failure. The err parameter is the triggering error in both cases.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
//
// Use the built-in constructors Times and StatusCode and the built-in
// deciders AnyErr and TimeoutErr, or implement your own. Use
// DeciderFunc to convert an ordinary function into a Decider and to
// compose deciders logically with DeciderFunc.And and DeciderFunc.Or.
type Decider interface {
	Decide(r *httpcall.Request, resp *transport.Response, err error) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as retry deciders. It implements the Decider interface and
// provides the logical composition methods And and Or.
//
// Every DeciderFunc must be safe for concurrent use by multiple
// goroutines.
type DeciderFunc func(r *httpcall.Request, resp *transport.Response, err error) bool

// Decide returns true if a retry should be done, and false otherwise.
func (f DeciderFunc) Decide(r *httpcall.Request, resp *transport.Response, err error) bool {
	return f(r, resp, err)
}

// And composes two retry deciders into a new decider which returns
// true if both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(r *httpcall.Request, resp *transport.Response, err error) bool {
		return f(r, resp, err) && g(r, resp, err)
	}
}

// Or composes two retry deciders into a new decider which returns
// true if either of the two sub-deciders returns true, but false if
// they both return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(r *httpcall.Request, resp *transport.Response, err error) bool {
		return f(r, resp, err) || g(r, resp, err)
	}
}

// DefaultTimes is the number of times DefaultDecider will retry.
const DefaultTimes = 5

// AnyErr is a decider that indicates a retry whenever a triggering
// error is present. Since the middleware's hooks only fire on failure,
// AnyErr effectively approves every network-level failure; compose it
// with Times to bound the attempts.
var AnyErr DeciderFunc = func(_ *httpcall.Request, resp *transport.Response, err error) bool {
	return resp == nil && err != nil
}

// TimeoutErr is a decider that indicates a retry if the failure was an
// attempt timeout.
var TimeoutErr DeciderFunc = func(_ *httpcall.Request, resp *transport.Response, err error) bool {
	return resp == nil && transport.Categorize(err) == transport.Timeout
}

// DefaultDecider is a general-purpose retry decider suitable for
// common use cases. It allows up to DefaultTimes retries, and retries
// on any network-level failure or on a server error whose response
// carries one of the status codes 429 (Too Many Requests), 502 (Bad
// Gateway), 503 (Service Unavailable), or 504 (Gateway Timeout).
var DefaultDecider = Times(DefaultTimes).And(AnyErr.Or(StatusCode(429, 502, 503, 504)))

// Times constructs a retry decider which allows up to n retries. The
// returned decider returns true while the request's attempt number is
// less than n, and false otherwise.
func Times(n int) DeciderFunc {
	return func(r *httpcall.Request, _ *transport.Response, _ error) bool {
		return r.Attempt() < n
	}
}

// StatusCode constructs a retry decider allowing retries based on the
// HTTP response status code. If the decision concerns a response whose
// status code is contained in ss, the decider returns true; otherwise
// it returns false.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(_ *httpcall.Request, resp *transport.Response, _ error) bool {
		if resp == nil {
			return false
		}
		for _, s := range ss2 {
			if resp.StatusCode == s {
				return true
			}
		}
		return false
	}
}
