package node

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/node/infra/rpcnode"
	"github.com/mmrrnn/universe/internal/config"
	"github.com/mmrrnn/universe/internal/health"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/monolith"
)

type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

func newTestMonolith() monolith.Application {
	log := logger.NewNop()
	return monolith.New(&config.Config{}, log, health.NewServer(0, "test", log))
}

func TestCloseOnShutdown_ClosesOnMonolithClose(t *testing.T) {
	mono := newTestMonolith()
	closer := &countingCloser{}

	closeOnShutdown(mono, "node.client", closer)
	require.NoError(t, mono.Close(context.Background()))
	assert.Equal(t, 1, closer.closed)
}

func TestCloseOnShutdown_SurfacesCloseError(t *testing.T) {
	mono := newTestMonolith()
	closer := &countingCloser{err: errors.New("connection reset")}

	closeOnShutdown(mono, "node.client", closer)
	assert.Error(t, mono.Close(context.Background()))
}

func TestCloseOnShutdown_IgnoresValuesWithoutClose(t *testing.T) {
	mono := newTestMonolith()

	closeOnShutdown(mono, "node.client", struct{}{})
	assert.NoError(t, mono.Close(context.Background()))
}

func TestRPCClientIsClosedOnShutdown(t *testing.T) {
	client, err := rpcnode.New(rpcnode.DefaultConfig("http://127.0.0.1:18142"), logger.NewNop())
	require.NoError(t, err)

	var v any = client
	_, ok := v.(io.Closer)
	assert.True(t, ok)

	mono := newTestMonolith()
	closeOnShutdown(mono, "node.client", client)
	assert.NoError(t, mono.Close(context.Background()))
}
