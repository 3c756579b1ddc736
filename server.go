// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gonova/httpcall/timeout"
	"github.com/gonova/httpcall/transport"
)

// A Server is a factory binding a base host and a default middleware
// set to the requests it builds. It holds no per-request state and
// does not track in-flight requests; use a Bag for that.
//
// A Server is safe for concurrent use by multiple goroutines.
type Server struct {
	// Host is the scheme and authority bound to built requests, for
	// example "https://api.example.com".
	Host string
	// Middleware is the default middleware list. It is appended after
	// any request-specific middleware already present on a built
	// request.
	Middleware []Middleware
	// Transport, TimeoutPolicy, and Logger are inherited by built
	// requests which do not set their own.
	Transport     transport.RoundTripper
	TimeoutPolicy timeout.Policy
	Logger        *slog.Logger
}

// An Option configures a Server constructed by NewServer.
type Option func(*Server)

// WithMiddleware appends default middleware to the Server.
func WithMiddleware(ms ...Middleware) Option {
	return func(s *Server) {
		s.Middleware = append(s.Middleware, ms...)
	}
}

// WithTransport sets the transport inherited by built requests.
func WithTransport(t transport.RoundTripper) Option {
	return func(s *Server) {
		s.Transport = t
	}
}

// WithTimeoutPolicy sets the timeout policy inherited by built
// requests.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(s *Server) {
		s.TimeoutPolicy = p
	}
}

// WithLogger sets the logger inherited by built requests.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// NewServer constructs a Server bound to host.
func NewServer(host string, opts ...Option) *Server {
	s := &Server{Host: host}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build constructs a Request bound to the Server's host and passes it
// to init for configuration. The Server's default middleware is
// appended after any middleware init added, and its transport, timeout
// policy, and logger fill in whatever init left unset.
func (s *Server) Build(init func(r *Request)) *Request {
	r := &Request{
		Host:   s.Host,
		Header: make(http.Header),
	}
	if init != nil {
		init(r)
	}
	r.Middleware = append(r.Middleware, s.Middleware...)
	if r.Transport == nil {
		r.Transport = s.Transport
	}
	if r.TimeoutPolicy == nil {
		r.TimeoutPolicy = s.TimeoutPolicy
	}
	if r.Logger == nil {
		r.Logger = s.Logger
	}
	return r
}

// Request builds a request via Build and starts it.
func (s *Server) Request(ctx context.Context, init func(r *Request)) (*Result, error) {
	return s.Build(init).Start(ctx)
}

// Get issues a GET for path using the Server's defaults.
func (s *Server) Get(ctx context.Context, path string) (*Result, error) {
	return s.Request(ctx, func(r *Request) {
		r.Method = "GET"
		r.Path = path
	})
}

// Post issues a POST to path with the given body payload using the
// Server's defaults. The body follows the same rules as Request.Body.
func (s *Server) Post(ctx context.Context, path string, body any) (*Result, error) {
	return s.Request(ctx, func(r *Request) {
		r.Method = "POST"
		r.Path = path
		r.Body = body
	})
}
