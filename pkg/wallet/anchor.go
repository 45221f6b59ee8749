package wallet

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

// AnchorWallet is the minimal signer view used by Anchor-style program clients
type AnchorWallet struct {
	publicKey solana.PublicKey
	adapter   adapter.WalletAdapter
}

func (w *AnchorWallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

func (w *AnchorWallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	return w.adapter.SignTransaction(ctx, tx)
}

func (w *AnchorWallet) SignAllTransactions(ctx context.Context, txs []*solana.Transaction) ([]*solana.Transaction, error) {
	return w.adapter.SignAllTransactions(ctx, txs)
}

// AnchorWallet projects the current session into a signer view. It returns
// nil unless a wallet is selected, connected and has a known public key.
func (m *Manager) AnchorWallet() *AnchorWallet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil || !m.state.Connected || m.state.PublicKey == nil {
		return nil
	}
	return &AnchorWallet{
		publicKey: *m.state.PublicKey,
		adapter:   m.active,
	}
}
