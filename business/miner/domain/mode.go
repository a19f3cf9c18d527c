package domain

import "strings"

// MiningMode controls how much of the CPU the miner may use.
type MiningMode string

const (
	MiningModeEco       MiningMode = "eco"
	MiningModeLudicrous MiningMode = "ludicrous"
)

// ParseMiningMode maps a config value to a MiningMode, defaulting to eco.
func ParseMiningMode(s string) MiningMode {
	if strings.EqualFold(s, string(MiningModeLudicrous)) {
		return MiningModeLudicrous
	}
	return MiningModeEco
}

// MaxCPUPercentage is the thread hint passed to the miner.
func (m MiningMode) MaxCPUPercentage() int {
	if m == MiningModeLudicrous {
		return 100
	}
	return 30
}
