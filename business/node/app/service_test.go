package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

func newTestService(t *testing.T, client NodeClient, oracle BlockScanOracle) *NodeAdapterService {
	t.Helper()
	svc, err := NewNodeAdapterService(ServiceConfig{
		RequiredSyncPeers: 3,
		SyncInterval:      5 * time.Millisecond,
	}, client, oracle, logger.NewNop())
	require.NoError(t, err)
	return svc
}

func syncedState(height uint64) *domain.NetworkState {
	return &domain.NetworkState{
		Metadata:                 &domain.ChainMetadata{BestBlockHeight: height, Timestamp: 1700000000},
		InitialSyncAchieved:      true,
		Reward:                   10_000_000,
		Sha3xEstimatedHashRate:   11,
		RandomXEstimatedHashRate: 22,
		NumConnections:           8,
	}
}

func TestGetNetworkState(t *testing.T) {
	svc := newTestService(t, &fakeNodeClient{state: syncedState(1234)}, nil)

	status, err := svc.GetNetworkState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.BaseNodeStatus{
		ShaNetworkHashrate:     11,
		RandomXNetworkHashrate: 22,
		BlockReward:            10_000_000,
		BlockHeight:            1234,
		BlockTime:              1700000000,
		IsSynced:               true,
		NumConnections:         8,
	}, status)
}

func TestGetNetworkState_MissingMetadata(t *testing.T) {
	svc := newTestService(t, &fakeNodeClient{state: &domain.NetworkState{NumConnections: 3}}, nil)

	_, err := svc.GetNetworkState(context.Background())
	assert.Equal(t, apperror.CodeNodeRPCError, apperror.GetCode(err))
}

func TestWaitSynced_ReportsProgressUntilSynced(t *testing.T) {
	client := &fakeNodeClient{
		tips: []domain.TipInfo{{}, {}, {InitialSyncAchieved: true}},
		progress: []domain.SyncProgress{
			{Phase: domain.SyncPhaseStartup, InitialConnectedPeers: 1},
			{Phase: domain.SyncPhaseHeader, LocalHeight: 50, TipHeight: 200},
			{Phase: domain.SyncPhaseBlock, LocalHeight: 200, TipHeight: 200},
		},
	}
	svc := newTestService(t, client, nil)

	startup, header, block := &recordingSink{}, &recordingSink{}, &recordingSink{}
	err := svc.WaitSynced(context.Background(), SyncSinks{Startup: startup, Header: header, Block: block})
	require.NoError(t, err)

	require.Equal(t, 1, startup.count())
	assert.InDelta(t, 1.0/3.0, startup.updates[0].pct, 1e-9)
	assert.Equal(t, "3", startup.updates[0].params["required_peers"])

	require.Equal(t, 1, header.count())
	assert.Equal(t, 0.25, header.updates[0].pct)
	assert.Equal(t, "0", header.updates[0].params["local_block_height"])

	assert.Equal(t, 0, block.count(), "synced tip stops before reporting the block phase")
}

func TestWaitSynced_NilSinkSkipped(t *testing.T) {
	client := &fakeNodeClient{
		tips:     []domain.TipInfo{{}, {InitialSyncAchieved: true}},
		progress: []domain.SyncProgress{{Phase: domain.SyncPhaseHeader, LocalHeight: 1, TipHeight: 2}},
	}
	svc := newTestService(t, client, nil)

	require.NoError(t, svc.WaitSynced(context.Background(), SyncSinks{}))
}

func TestWaitSynced_StopsOnCancel(t *testing.T) {
	client := &fakeNodeClient{
		tips:     []domain.TipInfo{{}},
		progress: []domain.SyncProgress{{Phase: domain.SyncPhaseBlock, LocalHeight: 1, TipHeight: 10}},
	}
	svc := newTestService(t, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	sink := &recordingSink{}

	done := make(chan error, 1)
	go func() {
		done <- svc.WaitSynced(ctx, SyncSinks{Block: sink})
	}()

	require.Eventually(t, func() bool { return sink.count() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitSynced did not return after cancel")
	}
}

func TestCheckIfIsOrphanChain(t *testing.T) {
	scanBlocks := map[uint64]string{950: "aa", 900: "bb", 800: "cc"}

	tests := []struct {
		name        string
		synced      bool
		localBlocks map[uint64]string
		want        bool
		oracleCalls bool
	}{
		{
			name:        "not synced short circuits",
			synced:      false,
			localBlocks: map[uint64]string{},
			want:        false,
			oracleCalls: false,
		},
		{
			name:        "all hashes match",
			synced:      true,
			localBlocks: map[uint64]string{950: "aa", 900: "bb", 800: "cc"},
			want:        false,
			oracleCalls: true,
		},
		{
			name:        "one mismatch",
			synced:      true,
			localBlocks: map[uint64]string{950: "aa", 900: "ff", 800: "cc"},
			want:        true,
			oracleCalls: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := syncedState(1000)
			state.InitialSyncAchieved = tt.synced
			client := &fakeNodeClient{state: state, blocks: tt.localBlocks}
			oracle := &fakeOracle{tip: 1000, blocks: scanBlocks}
			svc := newTestService(t, client, oracle)

			got, err := svc.CheckIfIsOrphanChain(context.Background(), true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.oracleCalls, oracle.calls > 0)
		})
	}
}

func TestCheckIfIsOrphanChain_SaturatingHeights(t *testing.T) {
	client := &fakeNodeClient{state: syncedState(120), blocks: map[uint64]string{70: "a", 20: "b", 0: "g"}}
	oracle := &fakeOracle{tip: 120, blocks: map[uint64]string{70: "a", 20: "b", 0: "g"}}
	svc := newTestService(t, client, oracle)

	orphaned, err := svc.CheckIfIsOrphanChain(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, orphaned)
	assert.Equal(t, []uint64{70, 20, 0}, client.requestedHeights)
}

func TestCheckIfIsOrphanChain_NoOracle(t *testing.T) {
	svc := newTestService(t, &fakeNodeClient{state: syncedState(1000)}, nil)

	_, err := svc.CheckIfIsOrphanChain(context.Background(), false)
	assert.Equal(t, apperror.CodeBlockScanError, apperror.GetCode(err))
}
