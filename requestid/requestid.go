// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package requestid provides a correlation-ID middleware for httpcall.
//
// The middleware injects a fresh UUID into a request header before the
// first attempt. Retried attempts keep the original ID, so all
// attempts of one logical request correlate server-side.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/gonova/httpcall"
)

// DefaultHeader is the header used when none is configured.
const DefaultHeader = "X-Request-ID"

// Middleware is an httpcall.Middleware which sets a correlation-ID
// header on outgoing requests that do not already carry one.
type Middleware struct {
	httpcall.Base
	header string
}

// New constructs a Middleware using DefaultHeader.
func New() *Middleware {
	return NewHeader(DefaultHeader)
}

// NewHeader constructs a Middleware using the given header name.
func NewHeader(header string) *Middleware {
	if header == "" {
		panic("httpcall/requestid: empty header name")
	}
	return &Middleware{header: header}
}

// BeforeRequest implements httpcall.Middleware.
func (m *Middleware) BeforeRequest(_ context.Context, r *httpcall.Request) error {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.Header.Get(m.header) == "" {
		r.Header.Set(m.header, uuid.NewString())
	}
	return nil
}
