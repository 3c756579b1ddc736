// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package requestid

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonova/httpcall"
)

func TestSetsIDWhenAbsent(t *testing.T) {
	m := New()
	r := &httpcall.Request{}
	require.NoError(t, m.BeforeRequest(context.Background(), r))
	id := r.Header.Get(DefaultHeader)
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestKeepsExistingID(t *testing.T) {
	m := New()
	r := &httpcall.Request{Header: http.Header{}}
	r.Header.Set(DefaultHeader, "fixed-id")
	require.NoError(t, m.BeforeRequest(context.Background(), r))
	assert.Equal(t, "fixed-id", r.Header.Get(DefaultHeader))
}

func TestIDStableAcrossAttempts(t *testing.T) {
	m := New()
	r := &httpcall.Request{}
	require.NoError(t, m.BeforeRequest(context.Background(), r))
	first := r.Header.Get(DefaultHeader)
	require.NoError(t, m.BeforeRequest(context.Background(), r))
	assert.Equal(t, first, r.Header.Get(DefaultHeader))
}

func TestCustomHeader(t *testing.T) {
	m := NewHeader("X-Correlation-ID")
	r := &httpcall.Request{}
	require.NoError(t, m.BeforeRequest(context.Background(), r))
	assert.NotEmpty(t, r.Header.Get("X-Correlation-ID"))
	assert.Empty(t, r.Header.Get(DefaultHeader))
}

func TestNewHeaderEmptyPanics(t *testing.T) {
	assert.Panics(t, func() { NewHeader("") })
}
