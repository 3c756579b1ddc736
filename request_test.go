// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonova/httpcall/transport"
)

func TestRetryFlags(t *testing.T) {
	r := &Request{}
	assert.True(t, r.ShouldRetry())
	assert.False(t, r.AllowErrorRetry())

	r.SetShouldRetry(false)
	assert.False(t, r.ShouldRetry())
	r.SetShouldRetry(true)
	assert.True(t, r.ShouldRetry())

	r.SetAllowErrorRetry(true)
	assert.True(t, r.AllowErrorRetry())
}

func TestCancelForcesFlagsPermanently(t *testing.T) {
	r := &Request{}
	r.SetAllowErrorRetry(true)
	r.Cancel()

	assert.True(t, r.Cancelled())
	assert.False(t, r.ShouldRetry())
	assert.False(t, r.AllowErrorRetry())

	// Flag setters lose against cancellation.
	r.SetShouldRetry(true)
	r.SetAllowErrorRetry(true)
	assert.False(t, r.ShouldRetry())
	assert.False(t, r.AllowErrorRetry())
}

func TestCancelIdempotent(t *testing.T) {
	fatals := &fatalCounter{}
	r := &Request{Host: "h", Path: "/p", Middleware: []Middleware{fatals}}

	r.Cancel()
	r.Cancel()

	assert.Equal(t, 1, fatals.fatals())
	assert.True(t, r.FailedNetwork())
}

func TestCancelWithoutInFlightFiresSynchronously(t *testing.T) {
	var got *transport.Error
	mw := &testMW{fatal: func(_ context.Context, _ *Request, terr *transport.Error) {
		got = terr
	}}
	r := &Request{Host: "h", Path: "/p", Middleware: []Middleware{mw}}

	r.Cancel()

	require.NotNil(t, got)
	assert.Equal(t, transport.Aborted, got.Category)
}

func TestCancelAbortsInFlightTransport(t *testing.T) {
	started := make(chan struct{})
	st := &stubTransport{fn: func(ctx context.Context, tr *transport.Request) (*transport.Response, error) {
		close(started)
		<-ctx.Done()
		return nil, &transport.Error{
			Category: transport.Categorize(ctx.Err()),
			Method:   tr.Method,
			URL:      tr.URL,
			Err:      ctx.Err(),
		}
	}}
	fatals := &fatalCounter{}
	r := &Request{Host: "h", Path: "/p", Transport: st, Middleware: []Middleware{fatals}}

	done := make(chan error, 1)
	go func() {
		_, err := r.Start(context.Background())
		done <- err
	}()

	<-started
	r.Cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.Aborted, terr.Category)
	case <-time.After(5 * time.Second):
		t.Fatal("request did not terminate after cancel")
	}
	assert.Equal(t, 1, fatals.fatals())

	// A second cancel after termination stays silent.
	r.Cancel()
	assert.Equal(t, 1, fatals.fatals())
}

func TestCancelledRequestFailsBeforeTransport(t *testing.T) {
	st := &stubTransport{fn: func(ctx context.Context, tr *transport.Request) (*transport.Response, error) {
		return jsonResponse(200, `{}`), nil
	}}
	r := &Request{Host: "h", Path: "/p", Transport: st}
	r.Cancel()

	_, err := r.Start(context.Background())
	require.Error(t, err)
	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, transport.Aborted, terr.Category)
	assert.Equal(t, 0, st.count())
}

type valueKey struct{}

func TestValueRoundTrip(t *testing.T) {
	r := &Request{}
	assert.Nil(t, r.Value(valueKey{}))
	r.SetValue(valueKey{}, 42)
	assert.Equal(t, 42, r.Value(valueKey{}))
	r.SetValue(valueKey{}, nil)
	assert.Nil(t, r.Value(valueKey{}))
}

func TestAttemptCounter(t *testing.T) {
	st := &stubTransport{fn: func(ctx context.Context, tr *transport.Request) (*transport.Response, error) {
		return nil, netError(tr.Method, tr.URL)
	}}
	polls := 0
	var seen []int
	mw := &testMW{net: func(_ context.Context, r *Request, _ *transport.Error) (bool, error) {
		seen = append(seen, r.Attempt())
		polls++
		return polls < 3, nil
	}}
	r := &Request{Host: "h", Path: "/p", Transport: st, Middleware: []Middleware{mw}}
	assert.Equal(t, 0, r.Attempt())
	_, err := r.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, 2, r.Attempt())
}

func TestMethodDefaultsToGet(t *testing.T) {
	st := &stubTransport{fn: func(ctx context.Context, tr *transport.Request) (*transport.Response, error) {
		return jsonResponse(200, `{}`), nil
	}}
	r := &Request{Host: "h", Path: "/p", Transport: st}
	_, err := r.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GET", st.attempt(0).Method)
}

func TestErrorTypes(t *testing.T) {
	t.Run("APIError", func(t *testing.T) {
		e := &APIError{Code: "not_found", Message: "gone"}
		assert.Contains(t, e.Error(), "not_found")
		assert.Contains(t, e.Error(), "gone")
		assert.Contains(t, (&APIError{Code: "x"}).Error(), "x")
	})
	t.Run("ServerError", func(t *testing.T) {
		cause := errors.New("bad JSON")
		e := &ServerError{StatusCode: 500, Body: []byte("x"), Err: cause}
		assert.Contains(t, e.Error(), "500")
		assert.Same(t, cause, errors.Unwrap(e))
		assert.Contains(t, (&ServerError{StatusCode: 502}).Error(), "502")
	})
	t.Run("JSONError", func(t *testing.T) {
		e := &JSONError{Value: map[string]any{"k": "v"}}
		assert.Contains(t, e.Error(), "API error")
	})
}
