package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	started  bool
	shutdown bool
}

func (s *fakeServer) Start() { s.started = true }

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdown = true
	return nil
}

func TestStartServingShutsDownOnConnectFailure(t *testing.T) {
	srv := &fakeServer{}
	gatewayErr := errors.New("invalid token")

	err := startServing(t.Context(), srv, func(context.Context) error { return gatewayErr })
	require.ErrorIs(t, err, gatewayErr)
	assert.True(t, srv.started)
	assert.True(t, srv.shutdown)
}

func TestStartServingKeepsServerOnConnect(t *testing.T) {
	srv := &fakeServer{}

	require.NoError(t, startServing(t.Context(), srv, func(context.Context) error { return nil }))
	assert.True(t, srv.started)
	assert.False(t, srv.shutdown)
}
