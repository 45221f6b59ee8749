// Package hooks exposes the wallet session to code running inside a
// wallet.Manager scope. Every accessor panics outside that scope.
package hooks

import (
	"context"

	"github.com/sigweihq/pulsewallet/pkg/connection"
	"github.com/sigweihq/pulsewallet/pkg/wallet"
)

func mustManager(ctx context.Context, hook string) *wallet.Manager {
	m, ok := wallet.FromContext(ctx)
	if !ok {
		panic("hooks: " + hook + " must be called within a wallet.Manager scope (see wallet.NewContext)")
	}
	return m
}

// UseWallet returns the current wallet state
func UseWallet(ctx context.Context) wallet.State {
	return mustManager(ctx, "UseWallet").State()
}

// UseManager returns the Manager owning the scope
func UseManager(ctx context.Context) *wallet.Manager {
	return mustManager(ctx, "UseManager")
}

// UseConnection returns the shared RPC connection
func UseConnection(ctx context.Context) connection.Connection {
	return mustManager(ctx, "UseConnection").Connection()
}

// UseAnchorWallet returns a signer view, or nil when no wallet is connected
func UseAnchorWallet(ctx context.Context) *wallet.AnchorWallet {
	return mustManager(ctx, "UseAnchorWallet").AnchorWallet()
}
