// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"net/http"
	"sync"

	"github.com/gonova/httpcall/transport"
)

// stubTransport is a scripted RoundTripper for state machine tests. It
// records every attempt it receives.
type stubTransport struct {
	mu       sync.Mutex
	attempts []*transport.Request
	fn       func(ctx context.Context, tr *transport.Request) (*transport.Response, error)
}

func (s *stubTransport) RoundTrip(ctx context.Context, tr *transport.Request) (*transport.Response, error) {
	s.mu.Lock()
	s.attempts = append(s.attempts, tr)
	s.mu.Unlock()
	return s.fn(ctx, tr)
}

func (s *stubTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

func (s *stubTransport) attempt(i int) *transport.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[i]
}

func jsonResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json;charset=utf-8"}},
		Body:       []byte(body),
	}
}

func textResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       []byte(body),
	}
}

func netError(method, url string) *transport.Error {
	return &transport.Error{Category: transport.Network, Method: method, URL: url}
}

func timeoutError(method, url string) *transport.Error {
	return &transport.Error{Category: transport.Timeout, Method: method, URL: url}
}

// testMW is a Middleware whose hooks delegate to optional function
// fields, recording nothing on its own.
type testMW struct {
	Base
	before  func(ctx context.Context, r *Request) error
	net     func(ctx context.Context, r *Request, terr *transport.Error) (bool, error)
	decoded func(ctx context.Context, r *Request, derr error) (bool, error)
	server  func(ctx context.Context, r *Request, resp *transport.Response, cause error) (bool, error)
	fatal   func(ctx context.Context, r *Request, terr *transport.Error)
	onResp  func(ctx context.Context, r *Request, resp *transport.Response)
}

func (m *testMW) BeforeRequest(ctx context.Context, r *Request) error {
	if m.before != nil {
		return m.before(ctx, r)
	}
	return nil
}

func (m *testMW) RetryNetError(ctx context.Context, r *Request, terr *transport.Error) (bool, error) {
	if m.net != nil {
		return m.net(ctx, r, terr)
	}
	return false, nil
}

func (m *testMW) RetryDecodedError(ctx context.Context, r *Request, derr error) (bool, error) {
	if m.decoded != nil {
		return m.decoded(ctx, r, derr)
	}
	return false, nil
}

func (m *testMW) RetryServerError(ctx context.Context, r *Request, resp *transport.Response, cause error) (bool, error) {
	if m.server != nil {
		return m.server(ctx, r, resp, cause)
	}
	return false, nil
}

func (m *testMW) FatalNetError(ctx context.Context, r *Request, terr *transport.Error) {
	if m.fatal != nil {
		m.fatal(ctx, r, terr)
	}
}

func (m *testMW) OnResponse(ctx context.Context, r *Request, resp *transport.Response) {
	if m.onResp != nil {
		m.onResp(ctx, r, resp)
	}
}

// fatalCounter counts fatal network notifications.
type fatalCounter struct {
	Base
	mu    sync.Mutex
	count int
}

func (m *fatalCounter) FatalNetError(context.Context, *Request, *transport.Error) {
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
}

func (m *fatalCounter) fatals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func resetGlobalMiddleware() {
	globalMu.Lock()
	globalMiddleware = nil
	globalMu.Unlock()
}
