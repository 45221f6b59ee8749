package adapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// WalletName identifies a supported wallet brand
type WalletName string

const (
	Phantom  WalletName = "Phantom"
	Solflare WalletName = "Solflare"
)

// ReadyState describes whether a wallet provider is available in the host namespace
type ReadyState string

const (
	ReadyStateInstalled   ReadyState = "Installed"
	ReadyStateNotDetected ReadyState = "NotDetected"
	ReadyStateLoading     ReadyState = "Loading"
	ReadyStateUnsupported ReadyState = "Unsupported"
)

// Metadata is the static description of a wallet brand
type Metadata struct {
	Name        WalletName `json:"name"`
	URL         string     `json:"url"`
	Icon        string     `json:"icon"`
	Description string     `json:"description"`
	DownloadURL string     `json:"downloadUrl"`
}

// WalletAdapter is the contract every concrete wallet satisfies
type WalletAdapter interface {
	Name() WalletName
	Metadata() Metadata

	// PublicKey returns nil when no account is known
	PublicKey() *solana.PublicKey
	// Connected implies PublicKey() != nil
	Connected() bool
	// SessionOpen stays true while a locked wallet hides its account
	SessionOpen() bool
	Connecting() bool
	ReadyState() ReadyState

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// Event registration; each returns an unsubscribe function
	OnConnect(fn func(solana.PublicKey)) func()
	OnDisconnect(fn func()) func()
	OnAccountChanged(fn func(*solana.PublicKey)) func()
	OnError(fn func(*WalletError)) func()

	// Destroy releases native listeners; safe to call more than once
	Destroy()
}

// BaseAdapter holds the state and events shared by all concrete adapters.
// Concrete adapters embed it and implement the provider-specific operations.
type BaseAdapter struct {
	name     WalletName
	metadata Metadata
	events   *Events
	logger   *slog.Logger

	mu        sync.RWMutex
	publicKey *solana.PublicKey
	connected bool
	// session stays open while the provider is connected, including while
	// the account is locked and connected is false
	session    bool
	connecting bool
	readyState ReadyState
}

// NewBaseAdapter creates a base adapter in the initial Loading state
func NewBaseAdapter(metadata Metadata, logger *slog.Logger) *BaseAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("wallet", metadata.Name)
	return &BaseAdapter{
		name:       metadata.Name,
		metadata:   metadata,
		events:     NewEvents(logger),
		logger:     logger,
		readyState: ReadyStateLoading,
	}
}

func (b *BaseAdapter) Name() WalletName {
	return b.name
}

func (b *BaseAdapter) Metadata() Metadata {
	return b.metadata
}

func (b *BaseAdapter) PublicKey() *solana.PublicKey {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyKey(b.publicKey)
}

func (b *BaseAdapter) Connected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// SessionOpen reports whether the provider session is open, even if no
// account is currently visible
func (b *BaseAdapter) SessionOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session
}

func (b *BaseAdapter) Connecting() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connecting
}

func (b *BaseAdapter) ReadyState() ReadyState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readyState
}

// UpdateReadyState sets the ready state and reports whether it changed
func (b *BaseAdapter) UpdateReadyState(state ReadyState) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.readyState == state {
		return false
	}
	b.readyState = state
	return true
}

func (b *BaseAdapter) OnConnect(fn func(solana.PublicKey)) func() {
	return b.events.Connect.On(fn)
}

func (b *BaseAdapter) OnDisconnect(fn func()) func() {
	return b.events.Disconnect.On(func(struct{}) { fn() })
}

func (b *BaseAdapter) OnAccountChanged(fn func(*solana.PublicKey)) func() {
	return b.events.AccountChanged.On(fn)
}

func (b *BaseAdapter) OnError(fn func(*WalletError)) func() {
	return b.events.Error.On(fn)
}

// Events exposes the adapter topics to embedding adapters
func (b *BaseAdapter) Events() *Events {
	return b.events
}

// Logger returns the adapter-scoped logger
func (b *BaseAdapter) Logger() *slog.Logger {
	return b.logger
}

// beginConnect claims the connecting flag; false means a connect is already
// in flight or a session is open
func (b *BaseAdapter) beginConnect() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected || b.session || b.connecting {
		return false
	}
	b.connecting = true
	return true
}

// finishConnect releases the connecting flag
func (b *BaseAdapter) finishConnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connecting = false
}

// markConnected records a connected account and reports whether this was a transition
func (b *BaseAdapter) markConnected(key solana.PublicKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := !b.connected || b.publicKey == nil || !b.publicKey.Equals(key)
	b.publicKey = &key
	b.connected = true
	b.session = true
	return changed
}

// markDisconnected closes the session and reports whether one was open
func (b *BaseAdapter) markDisconnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	wasOpen := b.connected || b.session
	b.publicKey = nil
	b.connected = false
	b.session = false
	return wasOpen
}

// setAccount replaces the visible account without touching the session.
// connected follows the key so it always implies a known public key, and
// comes back when an account reappears on an open session.
func (b *BaseAdapter) setAccount(key *solana.PublicKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publicKey = copyKey(key)
	b.connected = key != nil && b.session
}

func (b *BaseAdapter) emitError(err *WalletError) {
	b.logger.Debug("wallet adapter error", "code", err.Code, "error", err)
	b.events.Error.Emit(err)
}

func copyKey(key *solana.PublicKey) *solana.PublicKey {
	if key == nil {
		return nil
	}
	k := *key
	return &k
}
