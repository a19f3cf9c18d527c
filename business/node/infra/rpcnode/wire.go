package rpcnode

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mmrrnn/universe/business/node/domain"
)

// Sync states as numbered by the node.
const (
	syncStateStartup        = 0
	syncStateHeaderStarting = 1
	syncStateHeader         = 2
	syncStateBlockStarting  = 3
	syncStateBlock          = 4
	syncStateDone           = 5
)

type chainMetadata struct {
	BestBlockHeight uint64 `json:"best_block_height"`
	Timestamp       uint64 `json:"timestamp"`
}

func (m *chainMetadata) toDomain() *domain.ChainMetadata {
	if m == nil {
		return nil
	}
	return &domain.ChainMetadata{BestBlockHeight: m.BestBlockHeight, Timestamp: m.Timestamp}
}

type networkState struct {
	Metadata                 *chainMetadata `json:"metadata"`
	InitialSyncAchieved      bool           `json:"initial_sync_achieved"`
	Reward                   uint64         `json:"reward"`
	Sha3xEstimatedHashRate   uint64         `json:"sha3x_estimated_hash_rate"`
	RandomXEstimatedHashRate uint64         `json:"randomx_estimated_hash_rate"`
	NumConnections           uint64         `json:"num_connections"`
}

type blockHeader struct {
	Height uint64        `json:"height"`
	Hash   hexutil.Bytes `json:"hash"`
}

type block struct {
	Header *blockHeader `json:"header"`
}

type historicalBlock struct {
	Block *block `json:"block"`
}

type identity struct {
	PublicKey       hexutil.Bytes `json:"public_key"`
	PublicAddresses []string      `json:"public_addresses"`
}

type peer struct {
	PublicKey hexutil.Bytes `json:"public_key"`
	NodeID    hexutil.Bytes `json:"node_id"`
	Addresses []string      `json:"addresses"`
}

func (p peer) toDomain() domain.Peer {
	return domain.Peer{
		PublicKey: common.Bytes2Hex(p.PublicKey),
		NodeID:    common.Bytes2Hex(p.NodeID),
		Addresses: p.Addresses,
	}
}

type tipInfo struct {
	Metadata            *chainMetadata `json:"metadata"`
	InitialSyncAchieved bool           `json:"initial_sync_achieved"`
}

type syncProgress struct {
	State                 int    `json:"state"`
	InitialConnectedPeers uint64 `json:"initial_connected_peers"`
	LocalHeight           uint64 `json:"local_height"`
	TipHeight             uint64 `json:"tip_height"`
}

func (p syncProgress) phase() domain.SyncPhase {
	switch p.State {
	case syncStateStartup:
		return domain.SyncPhaseStartup
	case syncStateHeader:
		return domain.SyncPhaseHeader
	case syncStateBlock:
		return domain.SyncPhaseBlock
	default:
		// starting and done states carry no progress
		return domain.SyncPhaseUnknown
	}
}
