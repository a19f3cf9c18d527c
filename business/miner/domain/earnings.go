package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// EstimateEarnings returns the expected daily reward in micro minotari for
// a miner contributing hashRate to a network of networkHashrate:
// floor(reward * hashRate/networkHashrate * blocksPerDay), never more than
// reward * blocksPerDay. A zero network hash rate yields zero.
func EstimateEarnings(blockReward uint64, hashRate float64, networkHashrate uint64, blocksPerDay int64) uint64 {
	if networkHashrate == 0 || hashRate <= 0 || blocksPerDay <= 0 {
		return 0
	}

	reward := fromUint64(blockReward)
	perDay := decimal.NewFromInt(blocksPerDay)
	share := decimal.NewFromFloat(hashRate).Div(fromUint64(networkHashrate))

	estimate := reward.Mul(share).Mul(perDay).Floor()
	if ceiling := reward.Mul(perDay); estimate.GreaterThan(ceiling) {
		estimate = ceiling
	}
	return estimate.BigInt().Uint64()
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
