package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
)

func TestFee(t *testing.T) {
	r := &types.Receipt{GasUsed: 21000, EffectiveGasPrice: big.NewInt(20_000_000_000)}
	assert.Equal(t, "0.00042", Fee(r).String())

	r = &types.Receipt{GasUsed: 50000, EffectiveGasPrice: big.NewInt(1)}
	assert.Equal(t, "0.00000000000005", Fee(r).String())

	assert.True(t, Fee(&types.Receipt{GasUsed: 21000}).IsZero())
	assert.True(t, Fee(nil).IsZero())
}
