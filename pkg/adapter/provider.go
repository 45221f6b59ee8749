package adapter

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// NativeEvent is an event emitted by an injected wallet provider
type NativeEvent string

const (
	NativeConnect        NativeEvent = "connect"
	NativeDisconnect     NativeEvent = "disconnect"
	NativeAccountChanged NativeEvent = "accountChanged"
)

// NativeHandler receives provider events. The key is nil for disconnect
// and for an accountChanged that hides the current account.
type NativeHandler func(key *solana.PublicKey)

// ListenerID identifies a registration made with Provider.On
type ListenerID uint64

// ConnectOptions are passed through to the provider's native connect
type ConnectOptions struct {
	// OnlyIfTrusted asks the provider to connect without prompting,
	// failing if the user has not approved this origin before
	OnlyIfTrusted bool
}

// Provider is the object a wallet extension injects into the host namespace
type Provider interface {
	Connect(ctx context.Context, opts ConnectOptions) (solana.PublicKey, error)
	Disconnect(ctx context.Context) error
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
	SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	On(event NativeEvent, handler NativeHandler) ListenerID
	Off(event NativeEvent, id ListenerID)
}

// Namespace is the host's global object where providers are injected.
// A nil Namespace means the environment has no such object.
type Namespace interface {
	Lookup(path string) (Provider, bool)
}

// Locator finds a brand's provider in a namespace
type Locator func(ns Namespace) (Provider, bool)

// Window is an in-memory Namespace that providers can be injected into
type Window struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewWindow creates an empty namespace
func NewWindow() *Window {
	return &Window{providers: make(map[string]Provider)}
}

// Inject places a provider at path, replacing any existing one
func (w *Window) Inject(path string, provider Provider) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.providers[path] = provider
}

// Remove deletes the provider at path
func (w *Window) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.providers, path)
}

// Lookup implements Namespace
func (w *Window) Lookup(path string) (Provider, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.providers[path]
	return p, ok && p != nil
}
