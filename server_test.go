// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonova/httpcall/codec"
	"github.com/gonova/httpcall/timeout"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestServerEndToEnd(t *testing.T) {
	h := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/v2/users":
			switch req.URL.Query().Get("id") {
			case "5":
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":5,"name":"kim"}`))
			default:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"not_found","message":"no such user"}`))
			}
		case "/echo":
			body, _ := io.ReadAll(req.Body)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"content_type": req.Header.Get("Content-Type"),
				"body":         string(body),
			})
		default:
			http.NotFound(w, req)
		}
	}))
	defer h.Close()

	s := NewServer(h.URL)

	t.Run("get with version query and decoder", func(t *testing.T) {
		res, err := s.Request(context.Background(), func(r *Request) {
			r.Path = "/users"
			r.Version = 2
			r.Query = map[string]any{"id": 5}
			r.Decoder = DecoderFunc(func(raw json.RawMessage, _ codec.Options) (any, error) {
				var u user
				if err := json.Unmarshal(raw, &u); err != nil {
					return nil, err
				}
				return &u, nil
			})
		})
		require.NoError(t, err)
		require.IsType(t, &user{}, res.Value)
		assert.Equal(t, &user{ID: 5, Name: "kim"}, res.Value)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("decoded error", func(t *testing.T) {
		_, err := s.Request(context.Background(), func(r *Request) {
			r.Path = "/users"
			r.Version = 2
			r.Query = map[string]any{"id": 9}
		})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "not_found", apiErr.Code)
		assert.Equal(t, "no such user", apiErr.Message)
	})

	t.Run("post form echo", func(t *testing.T) {
		res, err := s.Request(context.Background(), func(r *Request) {
			r.Method = "POST"
			r.Path = "/echo"
			r.Header = http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}}
			r.Body = map[string]any{"b": 2, "a": "one"}
		})
		require.NoError(t, err)
		echo, ok := res.Value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "application/x-www-form-urlencoded", echo["content_type"])
		assert.Equal(t, "a=one&b=2", echo["body"])
	})

	t.Run("post JSON default", func(t *testing.T) {
		res, err := s.Post(context.Background(), "/echo", map[string]any{"k": "v"})
		require.NoError(t, err)
		echo, ok := res.Value.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "application/json;charset=utf-8", echo["content_type"])
		assert.JSONEq(t, `{"k":"v"}`, echo["body"].(string))
	})

	t.Run("get shorthand", func(t *testing.T) {
		// The unversioned path hits the handler's plain-text 404, which
		// classifies as a server error rather than a decoded one.
		_, err := s.Get(context.Background(), "/users")
		var serr *ServerError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	})
}

func TestServerBuildDefaults(t *testing.T) {
	st := &stubTransport{}
	pol := timeout.Fixed(5 * timeout.DefaultGet)
	log := slog.Default()
	serverMW := &testMW{}
	s := NewServer("https://api.example.com",
		WithMiddleware(serverMW),
		WithTransport(st),
		WithTimeoutPolicy(pol),
		WithLogger(log),
	)

	requestMW := &testMW{}
	r := s.Build(func(r *Request) {
		r.Path = "/p"
		r.Middleware = []Middleware{requestMW}
	})

	assert.Equal(t, "https://api.example.com", r.Host)
	require.Len(t, r.Middleware, 2)
	assert.Same(t, requestMW, r.Middleware[0], "request middleware precedes server defaults")
	assert.Same(t, serverMW, r.Middleware[1])
	assert.Same(t, st, r.Transport)
	assert.Same(t, log, r.Logger)
	assert.NotNil(t, r.TimeoutPolicy)

	// A built request keeps its own choices over the Server's.
	own := &stubTransport{}
	r2 := s.Build(func(r *Request) { r.Transport = own })
	assert.Same(t, own, r2.Transport)
}

func TestServerBuildNilInit(t *testing.T) {
	s := NewServer("https://api.example.com")
	r := s.Build(nil)
	require.NotNil(t, r)
	assert.Equal(t, "https://api.example.com", r.Host)
	assert.NotNil(t, r.Header)
}
