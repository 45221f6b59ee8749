package wallets

import (
	"log/slog"

	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

const (
	SolflarePath       = "solflare"
	SolflareMobilePath = "SolflareApp"
)

// SolflareMetadata describes the Solflare browser extension
var SolflareMetadata = adapter.Metadata{
	Name:        adapter.Solflare,
	URL:         "https://solflare.com",
	Icon:        "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNTAiIGhlaWdodD0iNTAiIHZpZXdCb3g9IjAgMCA1MCA1MCIgZmlsbD0ibm9uZSIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iNTAiIGhlaWdodD0iNTAiIHJ4PSIxMiIgZmlsbD0iI0ZGRUYwMCIvPjwvc3ZnPg==",
	Description: "Non-custodial Solana wallet with staking and NFT support",
	DownloadURL: "https://solflare.com/download",
}

type solflareFlagged interface {
	IsSolflare() bool
}

// LocateSolflare finds the Solflare extension, or the in-app browser provider
func LocateSolflare(ns adapter.Namespace) (adapter.Provider, bool) {
	if p, ok := ns.Lookup(SolflarePath); ok {
		return p, true
	}
	if p, ok := ns.Lookup(SolflareMobilePath); ok {
		if flagged, ok := p.(solflareFlagged); ok && flagged.IsSolflare() {
			return p, true
		}
	}
	return nil, false
}

// NewSolflareAdapter creates a Solflare adapter and detects its provider in ns
func NewSolflareAdapter(ns adapter.Namespace, logger *slog.Logger) *adapter.InjectedAdapter {
	return adapter.NewInjectedAdapter(adapter.InjectedConfig{
		Metadata:  SolflareMetadata,
		Locator:   LocateSolflare,
		Namespace: ns,
		Logger:    logger,
	})
}
