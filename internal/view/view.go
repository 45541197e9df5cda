package view

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"doi-frontend/internal/chain"
	"doi-frontend/internal/contract"
	"doi-frontend/internal/repo"
	"doi-frontend/log"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNotReady        = errors.New("ledger client is not ready")
	ErrNoAccounts      = errors.New("node returned no accounts")
	ErrUnknownSigner   = errors.New("configured signer is not an account of the node")
	ErrInvalidObjectID = errors.New("object id must be a positive integer")
)

type Options struct {
	// Signer selects the sender of registerObject. Nil picks the first account.
	Signer *common.Address
	// VerboseErrors appends the cause to failure status lines.
	VerboseErrors bool
	// StrictBinding reports calls made before a successful Init on the
	// status line instead of ignoring them.
	StrictBinding bool
	ReceiptPoll   time.Duration
	// Journal, when set, receives every successful registration.
	Journal repo.Journal
}

// View is the ledger client behind the page. It owns the connection, the
// contract binding and the State; state only changes through Init, the
// input setters and the two operations.
type View struct {
	dial     chain.Dialer
	artifact *contract.Artifact
	opts     Options

	initOnce sync.Once
	initErr  error

	mu      sync.Mutex
	state   State
	ledger  chain.Ledger
	binding *contract.Binding
	signer  common.Address

	subs map[*subscriber]struct{}
}

func New(dial chain.Dialer, artifact *contract.Artifact, opts Options) *View {
	return &View{
		dial:     dial,
		artifact: artifact,
		opts:     opts,
		state:    State{Phase: PhaseLoading, Status: StatusLoading},
		subs:     map[*subscriber]struct{}{},
	}
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// subscriber buffers states for one receiver. When the buffer is full the
// oldest state is dropped, so the newest state always gets through.
type subscriber struct {
	queue chan State
}

const subscriberQueue = 16

func (sub *subscriber) offer(s State) {
	for {
		select {
		case sub.queue <- s:
			return
		default:
		}
		select {
		case <-sub.queue:
		default:
		}
	}
}

// Subscribe delivers new States to ch in version order. A receiver that
// falls behind misses intermediate states but never blocks the view.
func (v *View) Subscribe(ch chan<- State) event.Subscription {
	sub := &subscriber{queue: make(chan State, subscriberQueue)}
	v.mu.Lock()
	v.subs[sub] = struct{}{}
	v.mu.Unlock()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer func() {
			v.mu.Lock()
			delete(v.subs, sub)
			v.mu.Unlock()
		}()
		for {
			select {
			case s := <-sub.queue:
				select {
				case ch <- s:
				case <-quit:
					return nil
				}
			case <-quit:
				return nil
			}
		}
	})
}

// Ledger returns the connection once Init has succeeded.
func (v *View) Ledger() chain.Ledger {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledger
}

// Contract returns the binding once Init has succeeded.
func (v *View) Contract() *contract.Binding {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.binding
}

func (v *View) update(fn func(s *State)) State {
	v.mu.Lock()
	fn(&v.state)
	v.state.Version++
	s := v.state
	for sub := range v.subs {
		sub.offer(s)
	}
	v.mu.Unlock()
	return s
}

func (v *View) failure(status string, err error) string {
	if v.opts.VerboseErrors && err != nil {
		return fmt.Sprintf("%s (%v)", status, err)
	}
	return status
}

// Init connects, picks the signer, binds the contract and loads the object
// count. It runs once; later calls return the first result.
func (v *View) Init(ctx context.Context) error {
	v.initOnce.Do(func() {
		v.initErr = v.bootstrap(ctx)
		if v.initErr != nil {
			log.Logger.Error("initialize ledger client", zap.Error(v.initErr))
			v.update(func(s *State) {
				s.Phase = PhaseFailed
				s.Status = v.failure(StatusInitFailed, v.initErr)
			})
		}
	})
	return v.initErr
}

func (v *View) bootstrap(ctx context.Context) error {
	ledger, err := v.dial(ctx)
	if err != nil {
		return errors.Wrap(err, "connect")
	}

	accounts, err := ledger.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return ErrNoAccounts
	}
	signer, err := v.selectSigner(accounts)
	if err != nil {
		return err
	}

	networkID, err := ledger.NetworkID(ctx)
	if err != nil {
		return err
	}
	binding := v.artifact.Bind(networkID, ledger, contract.WithReceiptPoll(v.opts.ReceiptPoll))
	addr, deployed := binding.Address()

	// without a deployment the view still becomes ready with the init failure
	// status; each operation then fails on its own with contract.ErrNotDeployed
	status := ""
	var n uint64
	if deployed {
		count, err := binding.ObjectCount(ctx)
		if err != nil {
			return errors.Wrap(err, "initial object count")
		}
		if n, err = toUint64(count); err != nil {
			return err
		}
	} else {
		log.Logger.Warn("no deployment for network", zap.String("network", networkID.String()))
		status = v.failure(StatusInitFailed, contract.ErrNotDeployed)
	}

	v.update(func(s *State) {
		v.ledger = ledger
		v.binding = binding
		v.signer = signer

		s.Phase = PhaseReady
		s.Status = status
		s.Count = n
		s.Signer = signer.Hex()
		s.NetworkID = networkID.String()
		if deployed {
			s.Contract = addr.Hex()
		}
	})
	log.Logger.Info("ledger client ready",
		zap.String("signer", signer.Hex()),
		zap.String("network", networkID.String()),
		zap.Uint64("count", n))
	return nil
}

func (v *View) selectSigner(accounts []common.Address) (common.Address, error) {
	if v.opts.Signer == nil {
		return accounts[0], nil
	}
	for _, a := range accounts {
		if a == *v.opts.Signer {
			return a, nil
		}
	}
	return common.Address{}, errors.Wrap(ErrUnknownSigner, v.opts.Signer.Hex())
}

// acquire returns the binding and signer, or ErrNotReady before a successful Init.
func (v *View) acquire() (*contract.Binding, common.Address, error) {
	v.mu.Lock()
	ready := v.state.Phase == PhaseReady
	b, signer := v.binding, v.signer
	v.mu.Unlock()

	if !ready {
		if v.opts.StrictBinding {
			v.update(func(s *State) { s.Status = StatusNotConfigured })
		}
		return nil, common.Address{}, ErrNotReady
	}
	return b, signer, nil
}

// SetPayload stores the text the user typed for registration.
func (v *View) SetPayload(text string) {
	v.update(func(s *State) { s.Payload = text })
}

// SetObjectID stores the id input if raw is a positive integer and reports
// whether it was accepted. Rejected input leaves the previous value.
func (v *View) SetObjectID(raw string) bool {
	id, err := ParseObjectID(raw)
	if err != nil {
		return false
	}
	v.update(func(s *State) { s.ObjectID = id })
	return true
}

// ParseObjectID accepts decimal integers ≥ 1.
func ParseObjectID(raw string) (uint64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidObjectID
	}
	return uint64(n), nil
}

// SubmitRecord registers payload from the active signer and returns the id
// the contract assigned to it (the object count after the transaction).
func (v *View) SubmitRecord(ctx context.Context, payload string) (uint64, error) {
	binding, signer, err := v.acquire()
	if err != nil {
		return 0, err
	}
	v.update(func(s *State) {
		s.Payload = payload
		s.Status = StatusRegistering
	})

	id, receipt, err := v.register(ctx, binding, signer, payload)
	if err != nil {
		log.Logger.Error("register object", zap.Error(err))
		v.update(func(s *State) { s.Status = v.failure(StatusRegisterFailed, err) })
		return 0, err
	}

	st := v.update(func(s *State) {
		s.Count = id
		s.LastID = id
		s.ObjectID = id
		s.Payload = ""
		s.Status = fmt.Sprintf(StatusRegistered, id)
	})
	log.Logger.Info("object registered",
		zap.Uint64("id", id),
		zap.Stringer("tx", receipt.TxHash),
		zap.Uint64("gas", receipt.GasUsed),
		zap.Stringer("fee", chain.Fee(receipt)))

	v.journal(ctx, newRegistration(id, payload, signer, st.NetworkID, receipt))
	return id, nil
}

func (v *View) register(ctx context.Context, binding *contract.Binding, signer common.Address, payload string) (uint64, *types.Receipt, error) {
	receipt, err := binding.RegisterObject(ctx, signer, payload)
	if err != nil {
		return 0, nil, err
	}
	count, err := binding.ObjectCount(ctx)
	if err != nil {
		return 0, nil, errors.Wrap(err, "object count after register")
	}
	id, err := toUint64(count)
	if err != nil {
		return 0, nil, err
	}
	return id, receipt, nil
}

func newRegistration(id uint64, payload string, signer common.Address, networkID string, receipt *types.Receipt) repo.Registration {
	r := repo.Registration{
		ID:        id,
		Payload:   payload,
		TxHash:    receipt.TxHash.Hex(),
		Sender:    signer.Hex(),
		NetworkID: networkID,
		Fee:       chain.Fee(receipt).String(),
		CreatedAt: time.Now(),
	}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return r
}

func (v *View) journal(ctx context.Context, r repo.Registration) {
	if v.opts.Journal == nil {
		return
	}
	if err := v.opts.Journal.Save(ctx, r); err != nil {
		log.Logger.Warn("journal registration", zap.Uint64("id", r.ID), zap.Error(err))
	}
}

// Recent lists journaled registrations, newest first. Without a journal it
// returns nothing.
func (v *View) Recent(ctx context.Context, limit int) ([]repo.Registration, error) {
	if v.opts.Journal == nil {
		return nil, nil
	}
	return v.opts.Journal.Recent(ctx, limit)
}

// FetchRecord reads object id. Transport errors and unknown ids produce the
// same status line.
func (v *View) FetchRecord(ctx context.Context, id uint64) (string, error) {
	if id == 0 {
		return "", ErrInvalidObjectID
	}
	binding, _, err := v.acquire()
	if err != nil {
		return "", err
	}
	v.update(func(s *State) {
		s.ObjectID = id
		s.Status = StatusRetrieving
	})

	data, err := binding.GetObject(ctx, new(big.Int).SetUint64(id))
	if err != nil {
		log.Logger.Error("retrieve object", zap.Uint64("id", id), zap.Error(err))
		v.update(func(s *State) {
			s.Status = v.failure(StatusRetrieveFailed, err)
			s.Retrieved = ""
		})
		return "", err
	}

	v.update(func(s *State) {
		s.Retrieved = data
		s.Status = StatusRetrieved
	})
	return data, nil
}

func toUint64(n *big.Int) (uint64, error) {
	if n == nil || n.Sign() < 0 || !n.IsUint64() {
		return 0, errors.Errorf("object count %v out of range", n)
	}
	return n.Uint64(), nil
}
