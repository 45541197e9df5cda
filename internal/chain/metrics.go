package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times every node round trip.
type Metrics struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doi",
			Subsystem: "ledger",
			Name:      "calls_total",
			Help:      "Node JSON-RPC calls by method and result.",
		}, []string{"method", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doi",
			Subsystem: "ledger",
			Name:      "call_duration_seconds",
			Help:      "Node JSON-RPC call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg != nil {
		reg.MustRegister(m.Calls, m.Duration)
	}
	return m
}

func (m *Metrics) observe(method string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ethereum.NotFound):
		result = "pending"
	case err != nil:
		result = "error"
	}
	m.Calls.WithLabelValues(method, result).Inc()
	m.Duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

type instrumented struct {
	next Ledger
	m    *Metrics
}

// Instrument wraps l so that each call is recorded in m.
func Instrument(l Ledger, m *Metrics) Ledger {
	return &instrumented{next: l, m: m}
}

func (i *instrumented) Accounts(ctx context.Context) (accs []common.Address, err error) {
	defer func(start time.Time) { i.m.observe("eth_accounts", start, err) }(time.Now())
	return i.next.Accounts(ctx)
}

func (i *instrumented) NetworkID(ctx context.Context) (id *big.Int, err error) {
	defer func(start time.Time) { i.m.observe("net_version", start, err) }(time.Now())
	return i.next.NetworkID(ctx)
}

func (i *instrumented) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) (out []byte, err error) {
	defer func(start time.Time) { i.m.observe("eth_call", start, err) }(time.Now())
	return i.next.CallContract(ctx, msg, blockNumber)
}

func (i *instrumented) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (hash common.Hash, err error) {
	defer func(start time.Time) { i.m.observe("eth_sendTransaction", start, err) }(time.Now())
	return i.next.SendTransaction(ctx, msg)
}

func (i *instrumented) TransactionReceipt(ctx context.Context, txHash common.Hash) (r *types.Receipt, err error) {
	defer func(start time.Time) { i.m.observe("eth_getTransactionReceipt", start, err) }(time.Now())
	return i.next.TransactionReceipt(ctx, txHash)
}
