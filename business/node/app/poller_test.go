package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/logger"
	"github.com/mmrrnn/universe/internal/watch"
)

func TestStatusPoller_Forward(t *testing.T) {
	client := &fakeNodeClient{peers: []domain.Peer{
		{PublicKey: "pk1", Addresses: []string{"/ip4/1.2.3.4/tcp/18189"}},
		{PublicKey: "pk2"},
	}}
	svc := newTestService(t, client, nil)
	emitter := &recordingEmitter{}
	poller := NewStatusPoller(svc, watch.New(domain.BaseNodeStatus{}), emitter, 0, logger.NewNop())

	ctx := context.Background()
	poller.Forward(ctx, domain.BaseNodeStatus{BlockHeight: 10})
	poller.Forward(ctx, domain.BaseNodeStatus{BlockHeight: 10})
	poller.Forward(ctx, domain.BaseNodeStatus{BlockHeight: 11})

	assert.Len(t, emitter.statuses, 3)
	assert.Equal(t, []uint64{10, 11}, emitter.heights)
	require.Len(t, emitter.peers, 2)
	assert.Equal(t, []string{"/ip4/1.2.3.4/tcp/18189", "pk2"}, emitter.peers[0])
}

func TestStatusPoller_RunEndsWhenBroadcastCloses(t *testing.T) {
	svc := newTestService(t, &fakeNodeClient{}, nil)
	broadcast := watch.New(domain.BaseNodeStatus{})
	poller := NewStatusPoller(svc, broadcast, &recordingEmitter{}, 0, logger.NewNop())

	done := make(chan struct{})
	go func() {
		poller.Run(context.Background())
		close(done)
	}()
	broadcast.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after close")
	}
}
