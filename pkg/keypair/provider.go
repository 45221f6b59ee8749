package keypair

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

// UnauthorizedCode is returned when a request needs a connected, unlocked account
const UnauthorizedCode = 4100

// ErrRejected is returned by an Approver to decline a request
var ErrRejected = errors.New("keypair: request rejected")

// RequestKind names the operation an Approver is asked to confirm
type RequestKind string

const (
	RequestConnect             RequestKind = "connect"
	RequestSignTransaction     RequestKind = "signTransaction"
	RequestSignAllTransactions RequestKind = "signAllTransactions"
	RequestSignMessage         RequestKind = "signMessage"
)

// Request describes a pending confirmation prompt
type Request struct {
	Kind         RequestKind
	PublicKey    solana.PublicKey
	Transactions int
	Message      []byte
}

// Approver plays the role of the extension's confirmation popup
type Approver func(ctx context.Context, req Request) error

// AutoApprove accepts every request
func AutoApprove(context.Context, Request) error { return nil }

// Config configures a keypair Provider
type Config struct {
	Key      solana.PrivateKey
	Approver Approver
	// Brand makes the provider answer IsPhantom or IsSolflare, so it is also
	// found at the wallet's legacy injection path
	Brand  adapter.WalletName
	Logger *slog.Logger
}

// Provider is a local keypair that behaves like an injected wallet extension
type Provider struct {
	approve Approver
	brand   adapter.WalletName
	logger  *slog.Logger

	mu        sync.Mutex
	key       solana.PrivateKey
	locked    bool
	connected bool
	trusted   bool

	listenersMu sync.Mutex
	nextID      adapter.ListenerID
	listeners   map[adapter.NativeEvent]map[adapter.ListenerID]adapter.NativeHandler
}

// Verify Provider implements interface
var _ adapter.Provider = (*Provider)(nil)

// New creates a provider; a nil Approver approves everything
func New(cfg Config) *Provider {
	approve := cfg.Approver
	if approve == nil {
		approve = AutoApprove
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		approve:   approve,
		brand:     cfg.Brand,
		logger:    logger,
		key:       cfg.Key,
		listeners: make(map[adapter.NativeEvent]map[adapter.ListenerID]adapter.NativeHandler),
	}
}

func (p *Provider) IsPhantom() bool {
	return p.brand == adapter.Phantom
}

func (p *Provider) IsSolflare() bool {
	return p.brand == adapter.Solflare
}

// PublicKey returns the active account, or nil while locked
func (p *Provider) PublicKey() *solana.PublicKey {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locked || p.key == nil {
		return nil
	}
	pk := p.key.PublicKey()
	return &pk
}

// IsConnected reports whether a dapp session is open
func (p *Provider) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Connect implements adapter.Provider
func (p *Provider) Connect(ctx context.Context, opts adapter.ConnectOptions) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}

	p.mu.Lock()
	if p.locked || p.key == nil {
		p.mu.Unlock()
		return solana.PublicKey{}, unauthorized("wallet is locked")
	}
	pk := p.key.PublicKey()
	trusted := p.trusted
	p.mu.Unlock()

	if opts.OnlyIfTrusted && !trusted {
		return solana.PublicKey{}, adapter.ErrProviderRejected
	}
	if !trusted {
		if err := p.ask(ctx, Request{Kind: RequestConnect, PublicKey: pk}); err != nil {
			return solana.PublicKey{}, err
		}
	}

	p.mu.Lock()
	p.connected = true
	p.trusted = true
	p.mu.Unlock()

	p.logger.Debug("keypair provider connected", "publicKey", pk.String())
	p.emit(adapter.NativeConnect, &pk)
	return pk, nil
}

// Disconnect implements adapter.Provider
func (p *Provider) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	wasConnected := p.connected
	p.connected = false
	p.mu.Unlock()

	if wasConnected {
		p.emit(adapter.NativeDisconnect, nil)
	}
	return nil
}

// Revoke simulates the user removing this site's permission from inside the
// extension: the session ends and the next connect prompts again
func (p *Provider) Revoke() {
	p.mu.Lock()
	wasConnected := p.connected
	p.connected = false
	p.trusted = false
	p.mu.Unlock()

	if wasConnected {
		p.emit(adapter.NativeDisconnect, nil)
	}
}

// SwitchAccount replaces the active key and unlocks the wallet
func (p *Provider) SwitchAccount(key solana.PrivateKey) {
	pk := key.PublicKey()

	p.mu.Lock()
	p.key = key
	p.locked = false
	connected := p.connected
	p.mu.Unlock()

	if connected {
		p.emit(adapter.NativeAccountChanged, &pk)
	}
}

// LockAccount hides the active account until SwitchAccount is called
func (p *Provider) LockAccount() {
	p.mu.Lock()
	p.locked = true
	connected := p.connected
	p.mu.Unlock()

	if connected {
		p.emit(adapter.NativeAccountChanged, nil)
	}
}

// SignTransaction implements adapter.Provider. The input is left untouched.
func (p *Provider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	key, err := p.session()
	if err != nil {
		return nil, err
	}
	if err := p.ask(ctx, Request{Kind: RequestSignTransaction, PublicKey: key.PublicKey(), Transactions: 1}); err != nil {
		return nil, err
	}
	return signTransaction(key, tx)
}

// SignAllTransactions implements adapter.Provider with a single prompt
func (p *Provider) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	key, err := p.session()
	if err != nil {
		return nil, err
	}
	if err := p.ask(ctx, Request{Kind: RequestSignAllTransactions, PublicKey: key.PublicKey(), Transactions: len(txs)}); err != nil {
		return nil, err
	}

	signed := make([]*solana.Transaction, 0, len(txs))
	for i, tx := range txs {
		out, err := signTransaction(key, tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		signed = append(signed, out)
	}
	return signed, nil
}

// SignMessage implements adapter.Provider
func (p *Provider) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	key, err := p.session()
	if err != nil {
		return nil, err
	}
	if err := p.ask(ctx, Request{Kind: RequestSignMessage, PublicKey: key.PublicKey(), Message: message}); err != nil {
		return nil, err
	}

	sig, err := key.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}
	return sig[:], nil
}

// On implements adapter.Provider
func (p *Provider) On(event adapter.NativeEvent, handler adapter.NativeHandler) adapter.ListenerID {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()

	p.nextID++
	if p.listeners[event] == nil {
		p.listeners[event] = make(map[adapter.ListenerID]adapter.NativeHandler)
	}
	p.listeners[event][p.nextID] = handler
	return p.nextID
}

// Off implements adapter.Provider
func (p *Provider) Off(event adapter.NativeEvent, id adapter.ListenerID) {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	delete(p.listeners[event], id)
}

// ListenerCount returns the number of handlers registered for event
func (p *Provider) ListenerCount(event adapter.NativeEvent) int {
	p.listenersMu.Lock()
	defer p.listenersMu.Unlock()
	return len(p.listeners[event])
}

func (p *Provider) emit(event adapter.NativeEvent, key *solana.PublicKey) {
	p.listenersMu.Lock()
	handlers := make([]adapter.NativeHandler, 0, len(p.listeners[event]))
	for _, h := range p.listeners[event] {
		handlers = append(handlers, h)
	}
	p.listenersMu.Unlock()

	for _, h := range handlers {
		var payload *solana.PublicKey
		if key != nil {
			k := *key
			payload = &k
		}
		h(payload)
	}
}

// session returns the signing key of an open, unlocked session
func (p *Provider) session() (solana.PrivateKey, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil, unauthorized("dapp is not connected")
	}
	if p.locked || p.key == nil {
		return nil, unauthorized("wallet is locked")
	}
	return p.key, nil
}

func (p *Provider) ask(ctx context.Context, req Request) error {
	if err := p.approve(ctx, req); err != nil {
		if errors.Is(err, ErrRejected) {
			p.logger.Debug("keypair request rejected", "kind", req.Kind)
			return adapter.ErrProviderRejected
		}
		return fmt.Errorf("approval for %s failed: %w", req.Kind, err)
	}
	return nil
}

func unauthorized(message string) *adapter.ProviderError {
	return &adapter.ProviderError{Code: UnauthorizedCode, Message: message}
}

// signTransaction signs a copy of tx, placing the signature in the slot of
// key among the message's required signers
func signTransaction(key solana.PrivateKey, tx *solana.Transaction) (*solana.Transaction, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}

	pk := key.PublicKey()
	position := -1
	for i := 0; i < int(tx.Message.Header.NumRequiredSignatures) && i < len(tx.Message.AccountKeys); i++ {
		if tx.Message.AccountKeys[i].Equals(pk) {
			position = i
			break
		}
	}
	if position == -1 {
		return nil, fmt.Errorf("%s is not a required signer of this transaction", pk)
	}

	clone, err := cloneTransaction(tx)
	if err != nil {
		return nil, err
	}

	if _, err := clone.PartialSign(func(signer solana.PublicKey) *solana.PrivateKey {
		if signer.Equals(pk) {
			return &key
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return clone, nil
}

func cloneTransaction(tx *solana.Transaction) (*solana.Transaction, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	clone, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to copy transaction: %w", err)
	}
	return clone, nil
}
