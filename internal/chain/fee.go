package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

// Fee 交易手续费 gasUsed * effectiveGasPrice，单位 ether；节点没有返回 gas 价格时为 0
func Fee(r *types.Receipt) decimal.Decimal {
	if r == nil || r.EffectiveGasPrice == nil {
		return decimal.Zero
	}
	wei := new(big.Int).Mul(r.EffectiveGasPrice, new(big.Int).SetUint64(r.GasUsed))
	return decimal.NewFromBigInt(wei, -18)
}
