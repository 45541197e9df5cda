package chain

import (
	"context"
	"time"

	"doi-frontend/log"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReceiptReader is the subset of Ledger WaitMined needs.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitMined 轮询交易回执直到上链；没有超时，只能通过 ctx 取消
func WaitMined(ctx context.Context, b ReceiptReader, txHash common.Hash, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		receipt, err := b.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil && receipt != nil:
			return receipt, nil
		case err == nil, errors.Is(err, ethereum.NotFound):
			log.Logger.Debug("transaction not yet mined", zap.Stringer("tx", txHash))
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "wait for %s", txHash.Hex())
		case <-ticker.C:
		}
	}
}
