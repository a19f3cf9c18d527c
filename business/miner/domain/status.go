// Package domain contains the core domain types for the CPU mining context.
package domain

// BlocksPerDay is the expected number of RandomX blocks per day.
const BlocksPerDay int64 = 350

// CPUMinerConnectionStatus reports whether the miner reached its pool.
type CPUMinerConnectionStatus struct {
	IsConnected bool `json:"is_connected"`
}

// CPUMinerStatus is a point-in-time view of the CPU miner.
type CPUMinerStatus struct {
	IsMining          bool                     `json:"is_mining"`
	HashRate          float64                  `json:"hash_rate"`
	CPUUsage          uint32                   `json:"cpu_usage"`
	CPUBrand          string                   `json:"cpu_brand"`
	EstimatedEarnings uint64                   `json:"estimated_earnings"` // micro minotari per day
	Connection        CPUMinerConnectionStatus `json:"connection"`
}

// IdleStatus is the snapshot reported while no miner is running.
func IdleStatus(cpuUsage uint32, cpuBrand string) CPUMinerStatus {
	return CPUMinerStatus{
		CPUUsage: cpuUsage,
		CPUBrand: cpuBrand,
	}
}

// GPUMinerStatus is the GPU miner snapshot forwarded to the frontend.
type GPUMinerStatus struct {
	IsMining          bool   `json:"is_mining"`
	HashRate          uint64 `json:"hash_rate"`
	EstimatedEarnings uint64 `json:"estimated_earnings"`
	IsAvailable       bool   `json:"is_available"`
}

// Summary is the subset of the miner API summary used for status.
type Summary struct {
	// Total holds the hash rate over the miner's averaging windows,
	// shortest first. Entries are nil until the window has data.
	Total            []*float64
	ConnectionUptime uint64
}

// CurrentHashRate returns the shortest-window hash rate and whether it
// was reported.
func (s Summary) CurrentHashRate() (float64, bool) {
	if len(s.Total) == 0 || s.Total[0] == nil {
		return 0, false
	}
	return *s.Total[0], true
}

// StatusFromSummary combines a miner summary with CPU usage and network figures.
func StatusFromSummary(s Summary, cpuUsage uint32, cpuBrand string, networkHashrate, blockReward uint64, blocksPerDay int64) CPUMinerStatus {
	hashRate, ok := s.CurrentHashRate()
	return CPUMinerStatus{
		IsMining:          ok && hashRate > 0,
		HashRate:          hashRate,
		CPUUsage:          cpuUsage,
		CPUBrand:          cpuBrand,
		EstimatedEarnings: EstimateEarnings(blockReward, hashRate, networkHashrate, blocksPerDay),
		Connection:        CPUMinerConnectionStatus{IsConnected: s.ConnectionUptime > 0},
	}
}
