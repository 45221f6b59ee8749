package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
	"github.com/sigweihq/pulsewallet/pkg/connection"
	"github.com/sigweihq/pulsewallet/pkg/storage"
	"github.com/sigweihq/pulsewallet/pkg/wallets"
)

const eventStateChanged adapter.Event = "stateChanged"

// Config holds everything a Manager needs. Nothing is read from the environment.
type Config struct {
	// Endpoint is the RPC URL used when Connection is nil
	Endpoint   string
	Commitment rpc.CommitmentType
	Connection connection.Connection

	// AutoConnect reconnects the persisted wallet when Start is called
	AutoConnect bool
	// OnError receives every WalletError raised by the active adapter or the Manager
	OnError func(*adapter.WalletError)

	StorageKey string
	// Storage is the durable backend; nil disables persistence
	Storage storage.Backend

	// Namespace is where wallet providers are injected; nil means none exists
	Namespace adapter.Namespace
	// Registry builds the available adapters; nil uses wallets.DefaultRegistry
	Registry *wallets.Registry
	// Adapters overrides Registry when set
	Adapters []adapter.WalletAdapter

	Logger *slog.Logger
}

// Manager owns the wallet session. It is the only writer of State.
type Manager struct {
	conn     connection.Connection
	storage  *storage.WalletStorage
	adapters []adapter.WalletAdapter
	onError  func(*adapter.WalletError)
	auto     bool
	logger   *slog.Logger
	changes  *adapter.Topic[State]

	mu           sync.Mutex
	active       adapter.WalletAdapter
	state        State
	detach       []func()
	lastReported *adapter.WalletError
	closed       bool

	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager builds the connection, storage helper and adapters. It performs
// no provider or network calls.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn := cfg.Connection
	if conn == nil {
		conn = connection.New(cfg.Endpoint, cfg.Commitment, logger)
	}

	adapters := cfg.Adapters
	if adapters == nil {
		registry := cfg.Registry
		if registry == nil {
			registry = wallets.DefaultRegistry()
		}
		adapters = registry.Build(cfg.Namespace, logger)
	}

	return &Manager{
		conn:     conn,
		storage:  storage.NewWalletStorage(cfg.Storage, cfg.StorageKey, logger),
		adapters: adapters,
		onError:  cfg.OnError,
		auto:     cfg.AutoConnect,
		logger:   logger,
		changes:  adapter.NewTopic[State](eventStateChanged, logger),
	}
}

// Connection returns the shared RPC connection
func (m *Manager) Connection() connection.Connection {
	return m.conn
}

// Adapters returns every available adapter
func (m *Manager) Adapters() []adapter.WalletAdapter {
	out := make([]adapter.WalletAdapter, len(m.adapters))
	copy(out, m.adapters)
	return out
}

// Adapter returns the adapter for name
func (m *Manager) Adapter(name adapter.WalletName) (adapter.WalletAdapter, bool) {
	for _, a := range m.adapters {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Wallet returns the active adapter, or nil
func (m *Manager) Wallet() adapter.WalletAdapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// State returns a copy of the current state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe calls fn with a snapshot after every state change
func (m *Manager) Subscribe(fn func(State)) func() {
	return m.changes.On(fn)
}

// Select makes name the active wallet and persists the choice. It does not connect.
func (m *Manager) Select(name adapter.WalletName) error {
	next, ok := m.Adapter(name)
	if !ok {
		return adapter.NewWalletError(fmt.Sprintf("wallet %s is not available", name), adapter.ErrNotInstalled)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errClosed()
	}

	var previous []func()
	if m.active != next {
		previous = m.detach
		m.active = next
		m.detach = m.attach(next)
	}
	m.state = mirror(next)
	snapshot := m.state.clone()
	m.mu.Unlock()

	for _, off := range previous {
		off()
	}

	m.logger.Info("wallet selected", "wallet", name, "readyState", snapshot.ReadyState)
	m.storage.SetSelectedWallet(string(name))
	m.changes.Emit(snapshot)
	return nil
}

// Connect connects the active wallet. It does nothing when no wallet is
// selected or a connection is already open or in progress.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	a := m.active
	if m.closed || a == nil || m.state.Connected || m.state.Connecting {
		m.mu.Unlock()
		return nil
	}
	m.lastReported = nil
	m.state.Connecting = true
	snapshot := m.state.clone()
	m.mu.Unlock()
	m.changes.Emit(snapshot)

	err := a.Connect(ctx)

	m.update(a, func(s *State) {
		s.Connecting = false
		if pk := a.PublicKey(); err == nil && a.Connected() && pk != nil {
			s.PublicKey = pk
			s.Connected = true
		} else if err != nil {
			s.PublicKey = nil
			s.Connected = false
		}
	})

	if err != nil {
		walletErr := asWalletError(err, adapter.ErrConnectionFailed, "failed to connect")
		m.reportReturned(walletErr)
		return walletErr
	}

	m.storage.SetSelectedWallet(string(a.Name()))
	return nil
}

// Disconnect ends the active session and forgets the persisted selection.
// It does nothing when no wallet is selected or no session is open. A session
// whose account is locked still counts as open.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	a := m.active
	if a == nil || (!m.state.Connected && !a.SessionOpen()) || m.state.Disconnecting {
		m.mu.Unlock()
		return nil
	}
	m.lastReported = nil
	m.state.Disconnecting = true
	snapshot := m.state.clone()
	m.mu.Unlock()
	m.changes.Emit(snapshot)

	err := a.Disconnect(ctx)

	m.update(a, func(s *State) {
		s.Disconnecting = false
		if err == nil {
			s.PublicKey = nil
			s.Connected = false
		}
	})

	if err != nil {
		walletErr := asWalletError(err, adapter.ErrDisconnectionFailed, "failed to disconnect")
		m.reportReturned(walletErr)
		return walletErr
	}

	m.storage.ClearSelectedWallet()
	return nil
}

// SignTransaction signs tx with the active wallet
func (m *Manager) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	a, err := m.selected()
	if err != nil {
		return nil, err
	}
	signed, err := a.SignTransaction(ctx, tx)
	if err != nil {
		return nil, asWalletError(err, adapter.ErrSigningFailed, "failed to sign transaction")
	}
	return signed, nil
}

// SignAllTransactions signs txs with the active wallet
func (m *Manager) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	a, err := m.selected()
	if err != nil {
		return nil, err
	}
	signed, err := a.SignAllTransactions(ctx, txs)
	if err != nil {
		return nil, asWalletError(err, adapter.ErrSigningFailed, "failed to sign transactions")
	}
	return signed, nil
}

// SignMessage signs an arbitrary message with the active wallet
func (m *Manager) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	a, err := m.selected()
	if err != nil {
		return nil, err
	}
	signature, err := a.SignMessage(ctx, message)
	if err != nil {
		return nil, asWalletError(err, adapter.ErrSigningFailed, "failed to sign message")
	}
	return signature, nil
}

// SendTransaction signs tx, submits it and waits for confirmation at the
// connection's commitment. A zero recent blockhash is filled in first.
// Every failure is a TRANSACTION_FAILED WalletError; nothing is retried.
// When only confirmation fails the signature is returned with the error.
func (m *Manager) SendTransaction(ctx context.Context, tx *solana.Transaction, opts connection.SendOptions) (solana.Signature, error) {
	m.mu.Lock()
	a := m.active
	ready := a != nil && m.state.Connected && m.state.PublicKey != nil
	m.mu.Unlock()
	if !ready {
		return solana.Signature{}, adapter.NewWalletError("wallet is not connected", adapter.ErrConnectionFailed)
	}
	if tx == nil {
		return solana.Signature{}, adapter.NewWalletError("transaction is nil", adapter.ErrTransactionFailed)
	}

	prepared := *tx
	if prepared.Message.RecentBlockhash.IsZero() {
		hash, err := m.conn.GetLatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, adapter.WrapWalletError(err, adapter.ErrTransactionFailed, "failed to prepare transaction")
		}
		prepared.Message.RecentBlockhash = hash
	}

	signed, err := a.SignTransaction(ctx, &prepared)
	if err != nil {
		return solana.Signature{}, adapter.WrapWalletError(err, adapter.ErrTransactionFailed, "failed to sign transaction")
	}

	raw, err := encodeTransaction(signed)
	if err != nil {
		return solana.Signature{}, adapter.WrapWalletError(err, adapter.ErrTransactionFailed, "failed to serialize transaction")
	}

	sig, err := m.conn.SendRawTransaction(ctx, raw, opts)
	if err != nil {
		return solana.Signature{}, adapter.WrapWalletError(err, adapter.ErrTransactionFailed, "failed to submit transaction")
	}

	if err := m.conn.ConfirmTransaction(ctx, sig); err != nil {
		return sig, adapter.WrapWalletError(err, adapter.ErrTransactionFailed, "transaction was not confirmed")
	}

	m.logger.Info("transaction confirmed", "wallet", a.Name(), "signature", sig.String())
	return sig, nil
}

// Start runs auto-connect. Only the first call on a Manager does anything.
// Failures are logged and clear the persisted selection; they are never returned.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		if !m.auto {
			return
		}
		name, ok := m.storage.GetSelectedWallet()
		if !ok {
			return
		}

		logger := m.logger.With("wallet", name)
		if err := m.Select(adapter.WalletName(name)); err != nil {
			logger.Warn("auto-connect skipped", "error", err)
			m.storage.ClearSelectedWallet()
			return
		}
		if err := m.Connect(ctx); err != nil {
			logger.Warn("auto-connect failed", "error", err)
			m.storage.ClearSelectedWallet()
			return
		}
		logger.Info("auto-connected", "publicKey", m.State().Address())
	})
}

// Close detaches from the active adapter and destroys every adapter.
// Later calls do nothing.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		detach := m.detach
		m.detach = nil
		m.mu.Unlock()

		for _, off := range detach {
			off()
		}
		for _, a := range m.adapters {
			a.Destroy()
		}
		m.changes.Clear()
	})
}

// attach subscribes to a's events. Handlers ignore a once it is no longer active.
func (m *Manager) attach(a adapter.WalletAdapter) []func() {
	return []func(){
		a.OnConnect(func(pk solana.PublicKey) {
			m.update(a, func(s *State) {
				s.PublicKey = &pk
				s.Connected = true
			})
		}),
		a.OnDisconnect(func() {
			m.update(a, func(s *State) {
				s.PublicKey = nil
				s.Connected = false
			})
		}),
		a.OnAccountChanged(func(pk *solana.PublicKey) {
			m.update(a, func(s *State) {
				s.PublicKey = pk
				s.Connected = pk != nil && a.Connected()
			})
		}),
		a.OnError(func(err *adapter.WalletError) {
			if m.isActive(a) {
				m.report(err)
			}
		}),
	}
}

// update applies fn to the state if a is still the active adapter, then notifies subscribers
func (m *Manager) update(a adapter.WalletAdapter, fn func(*State)) {
	m.mu.Lock()
	if m.active != a {
		m.mu.Unlock()
		return
	}
	fn(&m.state)
	if m.state.Connected && m.state.PublicKey == nil {
		m.state.Connected = false
	}
	snapshot := m.state.clone()
	m.mu.Unlock()

	m.changes.Emit(snapshot)
}

func (m *Manager) isActive(a adapter.WalletAdapter) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active == a
}

func (m *Manager) selected() (adapter.WalletAdapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, adapter.NewWalletError("no wallet selected", adapter.ErrConnectionFailed)
	}
	return m.active, nil
}

// report forwards an adapter error event to OnError and remembers it, so the
// same error returned by the operation in flight is not delivered twice
func (m *Manager) report(err *adapter.WalletError) {
	m.mu.Lock()
	m.lastReported = err
	m.mu.Unlock()

	m.deliver(err)
}

// reportReturned forwards the error an operation returned unless the adapter
// already emitted it during that operation. It ends the operation's window.
func (m *Manager) reportReturned(err *adapter.WalletError) {
	m.mu.Lock()
	seen := m.lastReported == err
	m.lastReported = nil
	m.mu.Unlock()

	if !seen {
		m.deliver(err)
	}
}

func (m *Manager) deliver(err *adapter.WalletError) {
	m.logger.Debug("wallet error", "code", err.Code, "error", err)
	if m.onError != nil {
		m.onError(err)
	}
}

func mirror(a adapter.WalletAdapter) State {
	pk := a.PublicKey()
	return State{
		Wallet:     a.Name(),
		ReadyState: a.ReadyState(),
		PublicKey:  pk,
		Connected:  a.Connected() && pk != nil,
		Connecting: a.Connecting(),
	}
}

func asWalletError(err error, code adapter.ErrorCode, message string) *adapter.WalletError {
	var walletErr *adapter.WalletError
	if errors.As(err, &walletErr) {
		return walletErr
	}
	return adapter.WrapWalletError(err, code, message)
}

func errClosed() *adapter.WalletError {
	return adapter.NewWalletError("wallet manager is closed", adapter.ErrUnknown)
}

func encodeTransaction(tx *solana.Transaction) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := tx.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
