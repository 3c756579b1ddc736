// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package httpcall provides a client-side HTTP request engine with
middleware-driven retries, timeout escalation, cancellation, and
response classification.

The central type is Request: one logical HTTP call. Starting a Request
drives it through a fixed pipeline - before-request hooks, body and
query encoding, one transport attempt, response classification - and
every retry decision along the way is delegated to a chain of
Middleware hooks. The engine itself never decides to retry; it only
enforces the master retry flags and runs the chain.

	srv := httpcall.NewServer("https://api.example.com",
		httpcall.WithMiddleware(retry.New(nil, nil)))
	res, err := srv.Request(ctx, func(r *httpcall.Request) {
		r.Method = "POST"
		r.Path = "/users"
		r.Version = 2
		r.Body = map[string]any{"name": "kim"}
	})

A Request may be associated with an owner through a Bag, which allows
every in-flight request belonging to that owner to be cancelled in one
call:

	r.Register(owner)
	...
	httpcall.CancelAll(owner)

Middleware implements whichever hooks it cares about by embedding Base
and overriding:

	type authRefresh struct {
		httpcall.Base
	}

	func (authRefresh) RetryDecodedError(ctx context.Context, r *httpcall.Request, derr error) (bool, error) {
		var apiErr *httpcall.APIError
		if errors.As(derr, &apiErr) && apiErr.Code == "invalid_token" {
			// refresh credentials, then retry the whole request
			return true, nil
		}
		return false, nil
	}

Middleware registered with Use applies to every request in the process;
middleware on a Server applies to requests it builds; middleware on a
Request applies to that request alone. For every hook the chain runs in
that order: process-wide, then request-specific, then server defaults.

Subpackages supply ready-made middleware: retry (attempt budgets and
backoff), breaker (circuit breaking), ratelimit (client-side
throttling), and requestid (correlation headers). The transport, codec,
and timeout subpackages hold the pluggable seams the engine is built
on.
*/
package httpcall
