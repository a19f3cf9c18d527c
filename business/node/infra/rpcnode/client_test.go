package rpcnode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/apperror"
	"github.com/mmrrnn/universe/internal/logger"
)

type baseNodeService struct {
	noMetadata bool
	failBlocks bool
}

func (s *baseNodeService) GetNetworkState() (*networkState, error) {
	res := &networkState{
		InitialSyncAchieved:      true,
		Reward:                   14_000_000,
		Sha3xEstimatedHashRate:   900,
		RandomXEstimatedHashRate: 1_000_000,
		NumConnections:           7,
	}
	if !s.noMetadata {
		res.Metadata = &chainMetadata{BestBlockHeight: 4242, Timestamp: 1700000000}
	}
	return res, nil
}

func (s *baseNodeService) GetBlocks(heights []uint64) ([]historicalBlock, error) {
	if s.failBlocks {
		return nil, errors.New("database busy")
	}
	out := make([]historicalBlock, 0, len(heights))
	for _, h := range heights {
		out = append(out, historicalBlock{Block: &block{Header: &blockHeader{
			Height: h,
			Hash:   hexutil.Bytes{0xde, 0xad, byte(h)},
		}}})
	}
	return out, nil
}

func (s *baseNodeService) Identify() (*identity, error) {
	return &identity{
		PublicKey:       hexutil.Bytes{0x01, 0x02},
		PublicAddresses: []string{"/ip4/10.0.0.1/tcp/18189"},
	}, nil
}

func (s *baseNodeService) ListConnectedPeers() (map[string][]peer, error) {
	return map[string][]peer{
		"connected_peers": {{PublicKey: hexutil.Bytes{0xab}, Addresses: []string{"/ip4/1.1.1.1/tcp/1"}}},
	}, nil
}

func (s *baseNodeService) GetTipInfo() (*tipInfo, error) {
	return &tipInfo{InitialSyncAchieved: false, Metadata: &chainMetadata{BestBlockHeight: 10}}, nil
}

func (s *baseNodeService) GetSyncProgress() (*syncProgress, error) {
	return &syncProgress{State: syncStateHeader, LocalHeight: 50, TipHeight: 200}, nil
}

func newInProcClient(t *testing.T, svc *baseNodeService) *Client {
	t.Helper()
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName(namespace, svc))
	t.Cleanup(srv.Stop)

	c, err := NewWithRPC(rpc.DialInProc(srv), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_GetNetworkState(t *testing.T) {
	c := newInProcClient(t, &baseNodeService{})

	state, err := c.GetNetworkState(context.Background())
	require.NoError(t, err)

	require.NotNil(t, state.Metadata)
	assert.Equal(t, uint64(4242), state.Metadata.BestBlockHeight)
	assert.Equal(t, uint64(1_000_000), state.RandomXEstimatedHashRate)
	assert.Equal(t, uint64(7), state.NumConnections)
	assert.True(t, state.InitialSyncAchieved)
}

func TestClient_GetNetworkState_NoMetadata(t *testing.T) {
	c := newInProcClient(t, &baseNodeService{noMetadata: true})

	state, err := c.GetNetworkState(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state.Metadata)
}

func TestClient_GetBlocks(t *testing.T) {
	c := newInProcClient(t, &baseNodeService{})

	blocks, err := c.GetBlocks(context.Background(), []uint64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []domain.BlockRef{
		{Height: 1, Hash: "dead01"},
		{Height: 2, Hash: "dead02"},
	}, blocks)
}

func TestClient_RemoteErrorIsRPCError(t *testing.T) {
	c := newInProcClient(t, &baseNodeService{failBlocks: true})

	_, err := c.GetBlocks(context.Background(), []uint64{1})
	assert.Equal(t, apperror.CodeNodeRPCError, apperror.GetCode(err))
}

func TestClient_IdentityPeersAndSync(t *testing.T) {
	c := newInProcClient(t, &baseNodeService{})
	ctx := context.Background()

	id, err := c.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0102", id.PublicKey)

	peers, err := c.ListConnectedPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "ab", peers[0].PublicKey)

	tip, err := c.GetTipInfo(ctx)
	require.NoError(t, err)
	assert.False(t, tip.InitialSyncAchieved)

	progress, err := c.GetSyncProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncPhaseHeader, progress.Phase)
	assert.Equal(t, 0.25, progress.Percentage(3))
}

func TestClient_UnreachableNodeIsNotStarted(t *testing.T) {
	c, err := New(Config{Address: "http://127.0.0.1:1", DialTimeout: time.Second}, logger.NewNop())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err = c.GetNetworkState(ctx)
	assert.Equal(t, apperror.CodeNodeNotStarted, apperror.GetCode(err))
}

func TestSyncProgressPhase(t *testing.T) {
	tests := map[int]domain.SyncPhase{
		syncStateStartup:        domain.SyncPhaseStartup,
		syncStateHeaderStarting: domain.SyncPhaseUnknown,
		syncStateHeader:         domain.SyncPhaseHeader,
		syncStateBlockStarting:  domain.SyncPhaseUnknown,
		syncStateBlock:          domain.SyncPhaseBlock,
		syncStateDone:           domain.SyncPhaseUnknown,
	}
	for state, want := range tests {
		if got := (syncProgress{State: state}).phase(); got != want {
			t.Errorf("state %d: got %v, want %v", state, got, want)
		}
	}
}
