package asset

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	ErrNilAsset       = errors.New("asset: nil asset")
	ErrNegativeAmount = errors.New("asset: negative amount")
)

// Amount is an immutable quantity of an asset in its smallest unit.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates an Amount from a raw value in the smallest unit.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil || raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return Amount{raw: new(big.Int).Set(raw), asset: asset}
}

// NewAmountFromUint64 creates an Amount from a uint64 raw value.
func NewAmountFromUint64(asset *Asset, raw uint64) Amount {
	return NewAmount(asset, new(big.Int).SetUint64(raw))
}

// Raw returns a copy of the raw value.
func (a Amount) Raw() *big.Int {
	return new(big.Int).Set(a.raw)
}

func (a Amount) Asset() *Asset {
	return a.asset
}

func (a Amount) IsZero() bool {
	return a.raw.Sign() == 0
}

// ToDecimal converts the amount to whole coins for display.
func (a Amount) ToDecimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.decimals))
}

// String returns e.g. "1.5 XTM".
func (a Amount) String() string {
	return a.ToDecimal().String() + " " + a.asset.symbol
}

// StringFixed rounds to places decimals, e.g. "1.50 XTM".
func (a Amount) StringFixed(places int32) string {
	return a.ToDecimal().StringFixed(places) + " " + a.asset.symbol
}
