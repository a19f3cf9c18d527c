package app

import (
	"context"
	"errors"
	"sync"

	"github.com/mmrrnn/universe/business/node/domain"
)

type fakeNodeClient struct {
	mu sync.Mutex

	state    *domain.NetworkState
	stateErr error
	block    bool // GetNetworkState waits for ctx

	blocks   map[uint64]string
	identity *domain.NodeIdentity
	idErr    error
	peers    []domain.Peer

	// tips and progress are consumed one per call; the last entry repeats
	tips     []domain.TipInfo
	progress []domain.SyncProgress
	tipCalls int

	requestedHeights []uint64
}

func (f *fakeNodeClient) GetNetworkState(ctx context.Context) (*domain.NetworkState, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	return f.state, nil
}

func (f *fakeNodeClient) GetBlocks(_ context.Context, heights []uint64) ([]domain.BlockRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestedHeights = append([]uint64(nil), heights...)

	var out []domain.BlockRef
	for _, h := range heights {
		if hash, ok := f.blocks[h]; ok {
			out = append(out, domain.BlockRef{Height: h, Hash: hash})
		}
	}
	return out, nil
}

func (f *fakeNodeClient) Identify(context.Context) (*domain.NodeIdentity, error) {
	if f.idErr != nil {
		return nil, f.idErr
	}
	return f.identity, nil
}

func (f *fakeNodeClient) ListConnectedPeers(context.Context) ([]domain.Peer, error) {
	return f.peers, nil
}

func (f *fakeNodeClient) GetTipInfo(context.Context) (*domain.TipInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.tipCalls
	if i >= len(f.tips) {
		i = len(f.tips) - 1
	}
	f.tipCalls++
	tip := f.tips[i]
	return &tip, nil
}

func (f *fakeNodeClient) GetSyncProgress(context.Context) (*domain.SyncProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.tipCalls - 1
	if i >= len(f.progress) {
		i = len(f.progress) - 1
	}
	p := f.progress[i]
	return &p, nil
}

type fakeOracle struct {
	tip    uint64
	blocks map[uint64]string
	calls  int
}

func (o *fakeOracle) BestBlockHeight(context.Context) (uint64, error) {
	o.calls++
	return o.tip, nil
}

func (o *fakeOracle) BlockAt(_ context.Context, height uint64) (domain.BlockRef, error) {
	o.calls++
	hash, ok := o.blocks[height]
	if !ok {
		return domain.BlockRef{}, errors.New("unknown height")
	}
	return domain.BlockRef{Height: height, Hash: hash}, nil
}

type recordedUpdate struct {
	params map[string]string
	pct    float64
}

type recordingSink struct {
	mu      sync.Mutex
	updates []recordedUpdate
}

func (s *recordingSink) SendUpdate(_ context.Context, params map[string]string, pct float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, recordedUpdate{params: params, pct: pct})
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

type recordingEmitter struct {
	statuses []domain.BaseNodeStatus
	heights  []uint64
	peers    [][]string
}

func (e *recordingEmitter) EmitBaseNodeUpdate(_ context.Context, s domain.BaseNodeStatus) {
	e.statuses = append(e.statuses, s)
}

func (e *recordingEmitter) EmitNewBlockHeight(_ context.Context, h uint64) {
	e.heights = append(e.heights, h)
}

func (e *recordingEmitter) EmitConnectedPeersUpdate(_ context.Context, p []string) {
	e.peers = append(e.peers, p)
}
