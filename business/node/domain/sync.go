package domain

import "strconv"

// SyncPhase is the stage of the node's initial sync.
type SyncPhase int

const (
	SyncPhaseUnknown SyncPhase = iota
	SyncPhaseStartup
	SyncPhaseHeader
	SyncPhaseBlock
)

func (p SyncPhase) String() string {
	switch p {
	case SyncPhaseStartup:
		return "startup"
	case SyncPhaseHeader:
		return "header"
	case SyncPhaseBlock:
		return "block"
	default:
		return "unknown"
	}
}

// SyncProgress is one reading of the node's sync progress.
type SyncProgress struct {
	Phase                 SyncPhase
	InitialConnectedPeers uint64
	LocalHeight           uint64
	TipHeight             uint64
}

// Percentage returns progress in [0,1] terms for the phase. Zero
// denominators yield 0.
func (p SyncProgress) Percentage(requiredPeers uint32) float64 {
	switch p.Phase {
	case SyncPhaseStartup:
		if requiredPeers == 0 {
			return 0
		}
		return float64(p.InitialConnectedPeers) / float64(requiredPeers)
	case SyncPhaseHeader, SyncPhaseBlock:
		if p.TipHeight == 0 {
			return 0
		}
		return float64(p.LocalHeight) / float64(p.TipHeight)
	default:
		return 0
	}
}

// Params returns the progress parameters reported for the phase.
func (p SyncProgress) Params(requiredPeers uint32) map[string]string {
	local := strconv.FormatUint(p.LocalHeight, 10)
	tip := strconv.FormatUint(p.TipHeight, 10)

	switch p.Phase {
	case SyncPhaseStartup:
		return map[string]string{
			"initial_connected_peers": strconv.FormatUint(p.InitialConnectedPeers, 10),
			"required_peers":          strconv.FormatUint(uint64(requiredPeers), 10),
		}
	case SyncPhaseHeader:
		return map[string]string{
			"local_header_height": local,
			"tip_header_height":   tip,
			"local_block_height":  "0",
			"tip_block_height":    tip,
			"local_height":        local,
			"tip_height":          tip,
		}
	case SyncPhaseBlock:
		return map[string]string{
			"local_header_height": local,
			"tip_header_height":   tip,
			"local_block_height":  local,
			"tip_block_height":    tip,
			"local_height":        local,
			"tip_height":          tip,
		}
	default:
		return nil
	}
}
