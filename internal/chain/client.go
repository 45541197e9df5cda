package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Ledger is the set of node calls the front-end depends on.
type Ledger interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	NetworkID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	// SendTransaction submits msg for signing by the node (eth_sendTransaction).
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Dialer opens a Ledger connection.
type Dialer func(ctx context.Context) (Ledger, error)

// Client talks JSON-RPC to a node holding unlocked accounts (ganache, geth --dev).
type Client struct {
	url string
	rpc *rpc.Client
	eth *ethclient.Client
}

// Dial 建立到节点的连接。http 连接是惰性的，节点不可达要到第一次调用才会暴露
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return &Client{url: url, rpc: c, eth: ethclient.NewClient(c)}, nil
}

// DialerFor returns a Dialer bound to url.
func DialerFor(url string) Dialer {
	return func(ctx context.Context) (Ledger, error) {
		return Dial(ctx, url)
	}
}

func (c *Client) URL() string { return c.url }

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "eth_accounts")
	}
	return accounts, nil
}

func (c *Client) NetworkID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.NetworkID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "net_version")
	}
	return id, nil
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, errors.Wrap(err, "eth_call")
	}
	return out, nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

// SendTransaction estimates gas when msg.Gas is zero, then hands the
// transaction to the node for signing.
func (c *Client) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	gas := msg.Gas
	if gas == 0 {
		estimated, err := c.eth.EstimateGas(ctx, msg)
		if err != nil {
			return common.Hash{}, errors.Wrap(err, "eth_estimateGas")
		}
		gas = estimated
	}
	args := sendTxArgs{
		From: msg.From,
		To:   msg.To,
		Gas:  (*hexutil.Uint64)(&gas),
		Data: msg.Data,
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(msg.Value)
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, errors.Wrap(err, "eth_sendTransaction")
	}
	return hash, nil
}

// TransactionReceipt returns ethereum.NotFound (unwrapped) while the
// transaction is pending.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	r, err := c.eth.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "eth_getTransactionReceipt")
	}
	return r, nil
}
