// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gonova/httpcall/codec"
	"github.com/gonova/httpcall/timeout"
	"github.com/gonova/httpcall/transport"
)

// errRestart signals that a retry hook approved re-running the whole
// pipeline. It never escapes Start.
var errRestart = errors.New("httpcall: restart")

// Start executes the request and blocks until it reaches a terminal
// state: a Result on success, or an error.
//
// Each attempt runs the full pipeline: every middleware's
// BeforeRequest hook in order, body and query encoding, URL
// construction, one transport exchange, then classification of the
// outcome. When a retry hook approves a retry, the pipeline restarts
// from the hooks; attempts are strictly sequential and the total retry
// count is bounded only by middleware policy.
//
// The ctx governs the whole execution including retries and backoff
// waits inside hooks. Cancelling ctx surfaces as a network-level
// failure; cancelling the request itself via Cancel additionally
// disables all retries permanently.
func (r *Request) Start(ctx context.Context) (*Result, error) {
	for {
		res, err := r.execute(ctx)
		if err == errRestart {
			if cerr := ctx.Err(); cerr != nil {
				terr := &transport.Error{
					Category: transport.Categorize(cerr),
					Method:   r.method(),
					URL:      r.Host + r.Path,
					Err:      cerr,
				}
				return nil, r.failNetwork(ctx, r.chain(), terr)
			}
			r.bumpAttempt()
			r.logDebug(ctx, "retrying request",
				"method", r.method(), "path", r.Path, "attempt", r.Attempt())
			continue
		}
		return res, err
	}
}

// execute runs one attempt of the pipeline. It returns errRestart when
// an approved retry should re-run the pipeline.
func (r *Request) execute(ctx context.Context) (*Result, error) {
	chain := r.chain()

	// Hooks may set headers, so the map must exist before they run.
	r.header()

	for _, m := range chain {
		if err := m.BeforeRequest(ctx, r); err != nil {
			r.deregister()
			return nil, err
		}
	}

	o := codec.Options{Version: r.Version}

	var body []byte
	var binaryBytes int64
	switch b := r.Body.(type) {
	case nil:
	case codec.Binary:
		// Raw multipart/binary payload: passed through unchanged,
		// content type left to the caller's headers.
		body = b
		binaryBytes = int64(len(b))
	default:
		var err error
		if strings.Contains(r.header().Get("Content-Type"), "application/x-www-form-urlencoded") {
			body, err = codec.FormBody(r.encoder(), r.Body, o)
		} else {
			r.header().Set("Content-Type", "application/json;charset=utf-8")
			body, err = codec.JSONBody(r.encoder(), r.Body, o)
		}
		if err != nil {
			r.deregister()
			return nil, err
		}
	}

	var query string
	if r.Query != nil {
		var err error
		query, err = codec.Query(r.encoder(), r.Query, o)
		if err != nil {
			r.deregister()
			return nil, err
		}
	}

	u := r.Host
	if r.Version > 0 {
		u += "/v" + strconv.Itoa(r.Version)
	}
	u += r.Path + query

	d := r.timeoutPolicy().Timeout(timeout.State{
		Method:      r.method(),
		Explicit:    r.Timeout,
		BinaryBytes: binaryBytes,
	})

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return nil, r.failNetwork(ctx, chain, transport.Abort(r.method(), u))
	}
	r.abort = cancel
	r.mu.Unlock()

	r.logDebug(ctx, "sending request",
		"method", r.method(), "url", u, "timeout", d, "attempt", r.Attempt())

	resp, err := r.transport().RoundTrip(attemptCtx, &transport.Request{
		Method:  r.method(),
		URL:     u,
		Header:  r.header(),
		Body:    body,
		Timeout: d,
	})

	r.setAbort(nil)

	if err != nil {
		return nil, r.transportFailure(ctx, chain, u, err)
	}

	for _, m := range chain {
		m.OnResponse(ctx, r, resp)
	}

	return r.classify(ctx, chain, resp)
}

// transportFailure handles a failed exchange: timeout escalation, the
// network-error retry poll, and the fatal notification path.
func (r *Request) transportFailure(ctx context.Context, chain []Middleware, u string, err error) error {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		terr = &transport.Error{Category: transport.Categorize(err), Method: r.method(), URL: u, Err: err}
	}

	if terr.Category == transport.Timeout {
		r.Timeout = timeout.Escalated(r.Timeout)
	}

	if r.canRetryNet() {
		ok := r.poll(ctx, chain, r.canRetryNet, func(m Middleware) (bool, error) {
			return m.RetryNetError(ctx, r, terr)
		})
		if ok {
			return errRestart
		}
	}

	return r.failNetwork(ctx, chain, terr)
}

// failNetwork ends the request with a network-level error. The fatal
// middleware notification fires at most once per request regardless of
// how many times this path is reached.
func (r *Request) failNetwork(ctx context.Context, chain []Middleware, terr *transport.Error) error {
	r.mu.Lock()
	notified := r.didFailNetwork
	r.didFailNetwork = true
	r.mu.Unlock()

	if !notified {
		for _, m := range chain {
			m.FatalNetError(ctx, r, terr)
		}
	}
	r.deregister()
	return urlErrorWrap(terr.Method, terr.URL, terr)
}

// classify sorts a completed HTTP exchange into one of the terminal or
// retryable outcomes: success, decodable application error, or server
// error.
func (r *Request) classify(ctx context.Context, chain []Middleware, resp *transport.Response) (*Result, error) {
	o := codec.Options{Version: r.Version}

	if !resp.IsSuccess() {
		if !resp.IsJSON() {
			return nil, r.serverFailure(ctx, chain, resp,
				fmt.Errorf("httpcall: status %d with non-JSON body", resp.StatusCode))
		}
		var parsed any
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, r.serverFailure(ctx, chain, resp,
				fmt.Errorf("httpcall: malformed JSON error body: %w", err))
		}
		derr, err := r.errorDecoder().DecodeError(resp.Body, o)
		if err != nil {
			return nil, r.serverFailure(ctx, chain, resp,
				fmt.Errorf("httpcall: undecodable error body: %w", err))
		}
		if r.canRetryDecoded() {
			ok := r.poll(ctx, chain, r.canRetryDecoded, func(m Middleware) (bool, error) {
				return m.RetryDecodedError(ctx, r, derr)
			})
			if ok {
				return nil, errRestart
			}
		}
		r.deregister()
		return nil, derr
	}

	if resp.IsJSON() {
		var parsed any
		if err := json.Unmarshal(resp.Body, &parsed); err != nil {
			return nil, r.serverFailure(ctx, chain, resp,
				fmt.Errorf("httpcall: malformed JSON response body: %w", err))
		}
		if r.Decoder != nil {
			v, err := r.Decoder.Decode(resp.Body, o)
			if err != nil {
				// Contract violation between client and server, not a
				// transient condition: propagated without retry.
				r.deregister()
				return nil, err
			}
			r.deregister()
			return &Result{Value: v, StatusCode: resp.StatusCode, Header: resp.Header}, nil
		}
		r.deregister()
		return &Result{Value: parsed, StatusCode: resp.StatusCode, Header: resp.Header}, nil
	}

	if r.Decoder != nil {
		return nil, r.serverFailure(ctx, chain, resp,
			errors.New("httpcall: expected a decodable body"))
	}
	r.deregister()
	return &Result{Value: resp.Body, StatusCode: resp.StatusCode, Header: resp.Header}, nil
}

// serverFailure handles the merged server-error class: the retry poll
// on the dedicated hook, then the terminal *ServerError.
func (r *Request) serverFailure(ctx context.Context, chain []Middleware, resp *transport.Response, cause error) error {
	if r.canRetryServer() {
		ok := r.poll(ctx, chain, r.canRetryServer, func(m Middleware) (bool, error) {
			return m.RetryServerError(ctx, r, resp, cause)
		})
		if ok {
			return errRestart
		}
	}
	r.deregister()
	return &ServerError{StatusCode: resp.StatusCode, Body: resp.Body, Err: cause}
}

func (r *Request) canRetryNet() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.retryDisabled && !r.cancelled && !r.didFailNetwork
}

func (r *Request) canRetryDecoded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return (!r.retryDisabled || r.allowErrorRetry) && !r.cancelled && !r.didFailNetwork
}

func (r *Request) canRetryServer() bool {
	return r.canRetryNet()
}
