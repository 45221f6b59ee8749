package wallet

import (
	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

// State is the Manager-owned snapshot of the wallet session
type State struct {
	// Wallet is the selected wallet, empty when nothing is selected
	Wallet        adapter.WalletName
	ReadyState    adapter.ReadyState
	PublicKey     *solana.PublicKey
	Connected     bool
	Connecting    bool
	Disconnecting bool
}

// Selected reports whether a wallet is selected
func (s State) Selected() bool {
	return s.Wallet != ""
}

// Address returns the base58 public key, or an empty string
func (s State) Address() string {
	if s.PublicKey == nil {
		return ""
	}
	return s.PublicKey.String()
}

func (s State) clone() State {
	if s.PublicKey != nil {
		pk := *s.PublicKey
		s.PublicKey = &pk
	}
	return s
}
