package contract

import (
	"context"
	"math/big"
	"time"

	"doi-frontend/internal/chain"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

var (
	ErrNotDeployed = errors.New("contract is not deployed on the active network")
	ErrReverted    = errors.New("transaction reverted")
)

const defaultReceiptPoll = 500 * time.Millisecond

// Binding pairs the contract ABI with its address on the active network.
// A Binding without an address is valid; every call on it fails with
// ErrNotDeployed before reaching the node.
type Binding struct {
	abi         abi.ABI
	address     common.Address
	deployed    bool
	backend     chain.Ledger
	receiptPoll time.Duration
}

type Option func(*Binding)

// WithReceiptPoll sets how often RegisterObject polls for its receipt.
func WithReceiptPoll(d time.Duration) Option {
	return func(b *Binding) {
		if d > 0 {
			b.receiptPoll = d
		}
	}
}

// Bind resolves the address for networkID and returns the binding.
func (a *Artifact) Bind(networkID *big.Int, backend chain.Ledger, opts ...Option) *Binding {
	addr, ok := a.Resolve(networkID)
	b := &Binding{
		abi:         a.ABI,
		address:     addr,
		deployed:    ok,
		backend:     backend,
		receiptPoll: defaultReceiptPoll,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Address returns the resolved contract address.
func (b *Binding) Address() (common.Address, bool) {
	return b.address, b.deployed
}

func (b *Binding) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	if !b.deployed {
		return nil, ErrNotDeployed
	}
	input, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	to := b.address
	out, err := b.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	res, err := b.abi.Unpack(method, out)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	if len(res) == 0 {
		return nil, errors.Errorf("%s returned nothing", method)
	}
	return res, nil
}

// ObjectCount calls getObjectCount().
func (b *Binding) ObjectCount(ctx context.Context) (*big.Int, error) {
	res, err := b.call(ctx, MethodGetObjectCount)
	if err != nil {
		return nil, err
	}
	count, ok := res[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("getObjectCount returned %T", res[0])
	}
	return count, nil
}

// GetObject calls getObject(id). Out-of-range ids revert in the contract
// and come back as a call error.
func (b *Binding) GetObject(ctx context.Context, id *big.Int) (string, error) {
	res, err := b.call(ctx, MethodGetObject, id)
	if err != nil {
		return "", err
	}
	data, ok := res[0].(string)
	if !ok {
		return "", errors.Errorf("getObject returned %T", res[0])
	}
	return data, nil
}

// RegisterObject sends registerObject(data) from sender and blocks until the
// transaction is mined. A mined transaction with a failed status yields
// ErrReverted along with the receipt.
func (b *Binding) RegisterObject(ctx context.Context, sender common.Address, data string) (*types.Receipt, error) {
	if !b.deployed {
		return nil, ErrNotDeployed
	}
	input, err := b.abi.Pack(MethodRegisterObject, data)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", MethodRegisterObject)
	}
	to := b.address
	hash, err := b.backend.SendTransaction(ctx, ethereum.CallMsg{From: sender, To: &to, Data: input})
	if err != nil {
		return nil, errors.Wrapf(err, "send %s", MethodRegisterObject)
	}
	receipt, err := chain.WaitMined(ctx, b.backend, hash, b.receiptPoll)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrReverted, "tx %s", hash.Hex())
	}
	return receipt, nil
}
