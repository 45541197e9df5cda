package chain

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAccount  = common.HexToAddress("0x627306090abaB3A6e1400e9345bC60c78a8BEf57")
	testContract = common.HexToAddress("0x345cA3e014Aaf5dcA488057592ee47305D9B3e10")
	testTxHash   = common.HexToHash("0x01")
)

type ethService struct {
	sent []sendTxArgs
}

func (s *ethService) Accounts() []common.Address {
	return []common.Address{testAccount}
}

func (s *ethService) EstimateGas(args map[string]interface{}, block *rpc.BlockNumberOrHash) hexutil.Uint64 {
	return 21000
}

func (s *ethService) SendTransaction(args sendTxArgs) common.Hash {
	s.sent = append(s.sent, args)
	return testTxHash
}

func (s *ethService) GetTransactionReceipt(hash common.Hash) map[string]interface{} {
	return nil
}

type netService struct{}

func (netService) Version() string { return "5777" }

func newTestNode(t *testing.T) (*Client, *ethService) {
	eth := &ethService{}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", eth))
	require.NoError(t, srv.RegisterName("net", netService{}))
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})

	c, err := Dial(context.Background(), httpSrv.URL)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c, eth
}

func TestClientAccountsAndNetwork(t *testing.T) {
	c, _ := newTestNode(t)
	ctx := context.Background()

	accs, err := c.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{testAccount}, accs)

	id, err := c.NetworkID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5777), id.Int64())
}

func TestClientSendTransactionEstimatesGas(t *testing.T) {
	c, eth := newTestNode(t)

	to := testContract
	hash, err := c.SendTransaction(context.Background(), ethereum.CallMsg{
		From: testAccount,
		To:   &to,
		Data: []byte{0xde, 0xad},
	})
	require.NoError(t, err)
	assert.Equal(t, testTxHash, hash)

	require.Len(t, eth.sent, 1)
	sent := eth.sent[0]
	assert.Equal(t, testAccount, sent.From)
	assert.Equal(t, &to, sent.To)
	require.NotNil(t, sent.Gas)
	assert.Equal(t, uint64(21000), uint64(*sent.Gas))
	assert.Equal(t, hexutil.Bytes{0xde, 0xad}, sent.Data)
}

func TestClientPendingReceipt(t *testing.T) {
	c, _ := newTestNode(t)

	_, err := c.TransactionReceipt(context.Background(), testTxHash)
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestClientUnreachableNode(t *testing.T) {
	c, err := Dial(context.Background(), "http://127.0.0.1:1")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Accounts(context.Background())
	assert.Error(t, err)
}
