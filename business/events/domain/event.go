// Package domain contains the outbound frontend event types.
package domain

// EventType names an outbound event.
type EventType string

const (
	WalletAddressUpdate  EventType = "WalletAddressUpdate"
	BaseNodeUpdate       EventType = "BaseNodeUpdate"
	GpuDevicesUpdate     EventType = "GpuDevicesUpdate"
	CpuMiningUpdate      EventType = "CpuMiningUpdate"
	GpuMiningUpdate      EventType = "GpuMiningUpdate"
	ConnectedPeersUpdate EventType = "ConnectedPeersUpdate"
	NewBlockHeight       EventType = "NewBlockHeight"
)

// ChannelName is the channel all frontend events are published on.
const ChannelName = "frontend_event"

// Event is the envelope every outbound event is wrapped in.
type Event struct {
	EventType EventType `json:"event_type"`
	Payload   any       `json:"payload"`
}

// WalletAddressPayload carries the wallet address in both encodings.
type WalletAddressPayload struct {
	Base58 string `json:"tari_address_base58"`
	Emoji  string `json:"tari_address_emoji"`
}

// WalletBalance is the wallet balance in micro minotari.
type WalletBalance struct {
	AvailableBalance       uint64 `json:"available_balance"`
	TimelockedBalance      uint64 `json:"timelocked_balance"`
	PendingIncomingBalance uint64 `json:"pending_incoming_balance"`
	PendingOutgoingBalance uint64 `json:"pending_outgoing_balance"`
}

// TransactionInfo describes a wallet transaction.
type TransactionInfo struct {
	TxID        uint64 `json:"tx_id"`
	Direction   int32  `json:"direction"`
	Status      int32  `json:"status"`
	Amount      uint64 `json:"amount"`
	IsCancelled bool   `json:"is_cancelled"`
	Timestamp   uint64 `json:"timestamp"`
	Message     string `json:"message"`
}

// NewBlockHeightPayload announces a new chain tip. CoinbaseTransaction is
// null unless the block paid this wallet.
type NewBlockHeightPayload struct {
	BlockHeight         uint64           `json:"block_height"`
	CoinbaseTransaction *TransactionInfo `json:"coinbase_transaction"`
	Balance             WalletBalance    `json:"balance"`
}
