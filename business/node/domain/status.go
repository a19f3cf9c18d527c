// Package domain contains the core domain types for the base node context.
package domain

import "strings"

// NodeType says where the base node runs.
type NodeType string

const (
	NodeTypeLocal  NodeType = "local"
	NodeTypeRemote NodeType = "remote"
)

// ParseNodeType maps a config value to a NodeType, defaulting to local.
func ParseNodeType(s string) NodeType {
	if strings.EqualFold(s, string(NodeTypeRemote)) {
		return NodeTypeRemote
	}
	return NodeTypeLocal
}

// BaseNodeStatus is a snapshot of the node's view of the network.
// The zero value is the not-synced default used before the first query.
type BaseNodeStatus struct {
	ShaNetworkHashrate     uint64 `json:"sha_network_hashrate"`
	RandomXNetworkHashrate uint64 `json:"randomx_network_hashrate"`
	BlockReward            uint64 `json:"block_reward"` // micro minotari
	BlockHeight            uint64 `json:"block_height"`
	BlockTime              uint64 `json:"block_time"` // unix seconds
	IsSynced               bool   `json:"is_synced"`
	NumConnections         uint64 `json:"num_connections"`
}

// ChainMetadata is the chain tip part of a network state response.
type ChainMetadata struct {
	BestBlockHeight uint64
	Timestamp       uint64
}

// NetworkState is the node's raw answer to a network state query.
// Metadata is nil when the node has not produced it yet.
type NetworkState struct {
	Metadata                 *ChainMetadata
	InitialSyncAchieved      bool
	Reward                   uint64
	Sha3xEstimatedHashRate   uint64
	RandomXEstimatedHashRate uint64
	NumConnections           uint64
}

// TipInfo is the node's tip summary.
type TipInfo struct {
	Metadata            *ChainMetadata
	InitialSyncAchieved bool
}

// NodeIdentity identifies the node on the network.
type NodeIdentity struct {
	PublicKey       string   `json:"public_key"` // hex
	PublicAddresses []string `json:"public_addresses"`
}

// Peer is a connected network peer.
type Peer struct {
	PublicKey string   `json:"public_key"`
	NodeID    string   `json:"node_id"`
	Addresses []string `json:"addresses"`
}

// BlockRef is a block height with its hash in lowercase hex.
type BlockRef struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
}
