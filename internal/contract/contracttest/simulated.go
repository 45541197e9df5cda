// Package contracttest provides an in-process ledger that behaves like a node
// with DigitalObjectIdentifier deployed, for tests that must not depend on a
// running node.
package contracttest

import (
	"context"
	"math/big"
	"sync"

	"doi-frontend/contracts"
	"doi-frontend/internal/contract"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// NetworkID is the ganache default network id the bundled artifact is deployed on.
var NetworkID = big.NewInt(5777)

var DefaultAccounts = []common.Address{
	common.HexToAddress("0x627306090abaB3A6e1400e9345bC60c78a8BEf57"),
	common.HexToAddress("0xf17f52151EbEF6C7334FAD080c5704D77216b732"),
}

// GasPrice is the effective gas price of every simulated receipt, 20 gwei.
const GasPrice = 20_000_000_000

// ErrInvalidObjectID mirrors the contract's revert reason for bad ids.
var ErrInvalidObjectID = errors.New("execution reverted: Invalid object ID")

// Bundled parses the artifact shipped in the contracts package.
func Bundled() *contract.Artifact {
	a, err := contract.ParseArtifact(contracts.Bundled())
	if err != nil {
		panic(err)
	}
	return a
}

// Simulated implements chain.Ledger on top of an in-memory object list.
type Simulated struct {
	mu sync.Mutex

	artifact  *contract.Artifact
	address   common.Address
	accounts  []common.Address
	networkID *big.Int

	objects  []string
	receipts map[common.Hash]*types.Receipt
	pending  map[common.Hash]int
	block    int64
	calls    map[string]int

	// Pending is how many receipt polls report NotFound before a new
	// transaction is mined.
	Pending int
	// Failure injection.
	AccountsErr error
	NetworkErr  error
	CallErr     error
	SendErr     error
	Revert      bool
}

// New returns a ledger with the bundled artifact deployed on NetworkID.
func New() *Simulated {
	a := Bundled()
	addr, _ := a.Resolve(NetworkID)
	return &Simulated{
		artifact:  a,
		address:   addr,
		accounts:  append([]common.Address(nil), DefaultAccounts...),
		networkID: new(big.Int).Set(NetworkID),
		receipts:  map[common.Hash]*types.Receipt{},
		pending:   map[common.Hash]int{},
		calls:     map[string]int{},
	}
}

// Artifact returns the artifact the simulated contract was deployed from.
func (s *Simulated) Artifact() *contract.Artifact { return s.artifact }

// SetAccounts replaces the account list returned by eth_accounts.
func (s *Simulated) SetAccounts(accs []common.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = accs
}

// SetNetworkID changes the network id the node reports.
func (s *Simulated) SetNetworkID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networkID = big.NewInt(id)
}

// Seed registers objects directly, as if earlier sessions had sent them.
func (s *Simulated) Seed(data ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, data...)
}

// Objects returns a copy of the stored objects.
func (s *Simulated) Objects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.objects...)
}

// Calls returns how many times method was invoked; "" counts all methods.
func (s *Simulated) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method != "" {
		return s.calls[method]
	}
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Simulated) record(method string) {
	s.calls[method]++
}

func (s *Simulated) Accounts(ctx context.Context) ([]common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_accounts")
	if s.AccountsErr != nil {
		return nil, s.AccountsErr
	}
	return append([]common.Address(nil), s.accounts...), nil
}

func (s *Simulated) NetworkID(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("net_version")
	if s.NetworkErr != nil {
		return nil, s.NetworkErr
	}
	return new(big.Int).Set(s.networkID), nil
}

func (s *Simulated) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_call")
	if s.CallErr != nil {
		return nil, s.CallErr
	}
	// no code at the target: the node returns empty output
	if msg.To == nil || *msg.To != s.address {
		return nil, nil
	}
	method, args, err := s.decode(msg.Data)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case contract.MethodGetObjectCount, "objectCount":
		return method.Outputs.Pack(big.NewInt(int64(len(s.objects))))
	case contract.MethodGetObject:
		id := args[0].(*big.Int)
		if id.Sign() <= 0 || id.Cmp(big.NewInt(int64(len(s.objects)))) > 0 {
			return nil, ErrInvalidObjectID
		}
		return method.Outputs.Pack(s.objects[id.Int64()-1])
	case contract.MethodRegisterObject:
		return method.Outputs.Pack(big.NewInt(int64(len(s.objects) + 1)))
	}
	return nil, errors.Errorf("unsupported method %s", method.Name)
}

func (s *Simulated) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_sendTransaction")
	if s.SendErr != nil {
		return common.Hash{}, s.SendErr
	}
	if !s.known(msg.From) {
		return common.Hash{}, errors.Errorf("sender account %s not recognized", msg.From.Hex())
	}
	if msg.To == nil || *msg.To != s.address {
		return common.Hash{}, errors.New("transaction target has no code")
	}
	method, args, err := s.decode(msg.Data)
	if err != nil {
		return common.Hash{}, err
	}
	if method.Name != contract.MethodRegisterObject {
		return common.Hash{}, errors.Errorf("unsupported transaction %s", method.Name)
	}

	s.block++
	hash := crypto.Keccak256Hash(msg.From.Bytes(), msg.Data, big.NewInt(s.block).Bytes())
	receipt := &types.Receipt{
		TxHash:            hash,
		BlockNumber:       big.NewInt(s.block),
		GasUsed:           21000,
		EffectiveGasPrice: big.NewInt(GasPrice),
		Status:            types.ReceiptStatusSuccessful,
	}
	if s.Revert {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		s.objects = append(s.objects, args[0].(string))
	}
	s.receipts[hash] = receipt
	s.pending[hash] = s.Pending
	return hash, nil
}

func (s *Simulated) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("eth_getTransactionReceipt")
	r, ok := s.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	if s.pending[txHash] > 0 {
		s.pending[txHash]--
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (s *Simulated) known(addr common.Address) bool {
	for _, a := range s.accounts {
		if a == addr {
			return true
		}
	}
	return false
}

func (s *Simulated) decode(data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("calldata too short")
	}
	method, err := s.artifact.ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return method, args, nil
}
