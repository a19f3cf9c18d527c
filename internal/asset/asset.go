// Package asset formats coin amounts held in their smallest unit.
package asset

// Asset describes a coin and the decimals of its smallest unit.
type Asset struct {
	symbol   string
	decimals uint8
}

// XTM is the Tari coin. Raw amounts are micro minotari.
var XTM = NewAsset("XTM", 6)

// NewAsset creates a new Asset with the given parameters.
func NewAsset(symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	return &Asset{symbol: symbol, decimals: decimals}
}

// Symbol returns the ticker symbol.
func (a *Asset) Symbol() string {
	return a.symbol
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

func (a *Asset) String() string {
	return a.symbol
}
