package adapter

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// InjectedConfig describes a wallet whose provider is injected into a Namespace
type InjectedConfig struct {
	Metadata  Metadata
	Locator   Locator
	Namespace Namespace
	Logger    *slog.Logger
}

// InjectedAdapter implements WalletAdapter on top of an injected Provider.
// Phantom and Solflare differ only in metadata and locator.
type InjectedAdapter struct {
	*BaseAdapter

	provider Provider

	listenersMu sync.Mutex
	unregister  []func()

	// signMu serializes sign requests against the provider
	signMu sync.Mutex
}

// Verify InjectedAdapter implements interface
var _ WalletAdapter = (*InjectedAdapter)(nil)

// NewInjectedAdapter creates the adapter and runs provider detection
func NewInjectedAdapter(cfg InjectedConfig) *InjectedAdapter {
	a := &InjectedAdapter{
		BaseAdapter: NewBaseAdapter(cfg.Metadata, cfg.Logger),
	}
	a.detect(cfg.Namespace, cfg.Locator)
	return a
}

func (a *InjectedAdapter) detect(ns Namespace, locate Locator) {
	if ns == nil {
		a.UpdateReadyState(ReadyStateUnsupported)
		return
	}

	var provider Provider
	var found bool
	if locate != nil {
		provider, found = locate(ns)
	}
	if !found || provider == nil {
		a.UpdateReadyState(ReadyStateNotDetected)
		return
	}

	a.provider = provider
	a.UpdateReadyState(ReadyStateInstalled)
	a.listen(NativeConnect, a.handleNativeConnect)
	a.listen(NativeDisconnect, a.handleNativeDisconnect)
	a.listen(NativeAccountChanged, a.handleNativeAccountChanged)
}

func (a *InjectedAdapter) listen(event NativeEvent, handler NativeHandler) {
	id := a.provider.On(event, handler)
	provider := a.provider

	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.unregister = append(a.unregister, func() {
		provider.Off(event, id)
	})
}

// Provider returns the detected native provider, or nil
func (a *InjectedAdapter) Provider() Provider {
	return a.provider
}

// Connect asks the provider for an account. It is a no-op while a connect is
// in flight or a session is open, including one whose account is locked.
func (a *InjectedAdapter) Connect(ctx context.Context) error {
	if a.Connected() || a.SessionOpen() || a.Connecting() {
		return nil
	}
	if a.provider == nil {
		err := NewWalletError(string(a.Name())+" wallet is not installed", ErrNotInstalled)
		a.emitError(err)
		return err
	}
	if !a.beginConnect() {
		return nil
	}
	defer a.finishConnect()

	key, err := a.provider.Connect(ctx, ConnectOptions{})
	if err != nil {
		a.markDisconnected()
		walletErr := FromProviderError(err, ErrConnectionFailed, "failed to connect to "+string(a.Name()))
		a.emitError(walletErr)
		return walletErr
	}

	if a.markConnected(key) {
		a.Logger().Debug("wallet connected", "publicKey", key.String())
		a.events.Connect.Emit(key)
	}
	return nil
}

// Disconnect ends the provider session. Local state is only cleared once the
// provider confirms.
func (a *InjectedAdapter) Disconnect(ctx context.Context) error {
	if !a.SessionOpen() || a.provider == nil {
		return nil
	}

	if err := a.provider.Disconnect(ctx); err != nil {
		walletErr := FromProviderError(err, ErrDisconnectionFailed, "failed to disconnect from "+string(a.Name()))
		a.emitError(walletErr)
		return walletErr
	}

	if a.markDisconnected() {
		a.Logger().Debug("wallet disconnected")
		a.events.Disconnect.Emit(struct{}{})
	}
	return nil
}

func (a *InjectedAdapter) requireSession() *WalletError {
	if !a.Connected() || a.provider == nil {
		return NewWalletError(string(a.Name())+" wallet is not connected", ErrConnectionFailed)
	}
	return nil
}

// SignTransaction asks the provider to sign tx
func (a *InjectedAdapter) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}

	a.signMu.Lock()
	defer a.signMu.Unlock()

	signed, err := a.provider.SignTransaction(ctx, tx)
	if err != nil {
		walletErr := FromProviderError(err, ErrSigningFailed, "failed to sign transaction")
		a.emitError(walletErr)
		return nil, walletErr
	}
	return signed, nil
}

// SignAllTransactions asks the provider to sign a batch in one prompt
func (a *InjectedAdapter) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}

	a.signMu.Lock()
	defer a.signMu.Unlock()

	signed, err := a.provider.SignAllTransactions(ctx, txs)
	if err != nil {
		walletErr := FromProviderError(err, ErrSigningFailed, "failed to sign transactions")
		a.emitError(walletErr)
		return nil, walletErr
	}
	return signed, nil
}

// SignMessage asks the provider to sign an arbitrary message
func (a *InjectedAdapter) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := a.requireSession(); err != nil {
		return nil, err
	}

	a.signMu.Lock()
	defer a.signMu.Unlock()

	signature, err := a.provider.SignMessage(ctx, message)
	if err != nil {
		walletErr := FromProviderError(err, ErrSigningFailed, "failed to sign message")
		a.emitError(walletErr)
		return nil, walletErr
	}
	return signature, nil
}

func (a *InjectedAdapter) handleNativeConnect(key *solana.PublicKey) {
	if key == nil {
		return
	}
	if a.markConnected(*key) {
		a.events.Connect.Emit(*key)
	}
}

func (a *InjectedAdapter) handleNativeDisconnect(*solana.PublicKey) {
	if a.markDisconnected() {
		a.events.Disconnect.Emit(struct{}{})
	}
}

func (a *InjectedAdapter) handleNativeAccountChanged(key *solana.PublicKey) {
	a.setAccount(key)
	a.events.AccountChanged.Emit(copyKey(key))
}

// Destroy removes every native listener. Later calls do nothing.
func (a *InjectedAdapter) Destroy() {
	a.listenersMu.Lock()
	unregister := a.unregister
	a.unregister = nil
	a.listenersMu.Unlock()

	for _, off := range unregister {
		off()
	}
}
