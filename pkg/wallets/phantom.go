package wallets

import (
	"log/slog"

	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

const (
	PhantomPath       = "phantom.solana"
	PhantomLegacyPath = "solana"
)

// PhantomMetadata describes the Phantom browser extension
var PhantomMetadata = adapter.Metadata{
	Name:        adapter.Phantom,
	URL:         "https://phantom.app",
	Icon:        "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iMTA4IiBoZWlnaHQ9IjEwOCIgdmlld0JveD0iMCAwIDEwOCAxMDgiIGZpbGw9Im5vbmUiIHhtbG5zPSJodHRwOi8vd3d3LnczLm9yZy8yMDAwL3N2ZyI+PHJlY3Qgd2lkdGg9IjEwOCIgaGVpZ2h0PSIxMDgiIHJ4PSIyNiIgZmlsbD0iI0FCOUZGMiIvPjwvc3ZnPg==",
	Description: "A friendly crypto wallet built for Solana",
	DownloadURL: "https://phantom.app/download",
}

// phantomFlagged is implemented by providers that identify themselves as Phantom
type phantomFlagged interface {
	IsPhantom() bool
}

// LocatePhantom finds Phantom under its namespaced path, falling back to the
// legacy global when that provider identifies itself as Phantom
func LocatePhantom(ns adapter.Namespace) (adapter.Provider, bool) {
	if p, ok := ns.Lookup(PhantomPath); ok {
		return p, true
	}
	if p, ok := ns.Lookup(PhantomLegacyPath); ok {
		if flagged, ok := p.(phantomFlagged); ok && flagged.IsPhantom() {
			return p, true
		}
	}
	return nil, false
}

// NewPhantomAdapter creates a Phantom adapter and detects its provider in ns
func NewPhantomAdapter(ns adapter.Namespace, logger *slog.Logger) *adapter.InjectedAdapter {
	return adapter.NewInjectedAdapter(adapter.InjectedConfig{
		Metadata:  PhantomMetadata,
		Locator:   LocatePhantom,
		Namespace: ns,
		Logger:    logger,
	})
}
