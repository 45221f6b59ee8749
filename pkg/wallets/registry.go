package wallets

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/sigweihq/pulsewallet/pkg/adapter"
)

// Factory creates a wallet adapter bound to a namespace
type Factory func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter

// Registry maps wallet names to adapter factories
type Registry struct {
	factories map[adapter.WalletName]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[adapter.WalletName]Factory),
	}
}

// DefaultRegistry returns a registry with every supported wallet
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(adapter.Phantom, func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter {
		return NewPhantomAdapter(ns, logger)
	})
	r.Register(adapter.Solflare, func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter {
		return NewSolflareAdapter(ns, logger)
	})
	return r
}

// Register registers a factory for name
// If a factory already exists for the name, it will be replaced (idempotent)
func (r *Registry) Register(name adapter.WalletName, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves the factory for name
func (r *Registry) Get(name adapter.WalletName) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("no adapter registered for wallet: %s", name)
	}
	return factory, nil
}

// GetSupportedWallets returns all registered wallet names in sorted order
func (r *Registry) GetSupportedWallets() []adapter.WalletName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]adapter.WalletName, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsSupported checks if a wallet is registered
func (r *Registry) IsSupported(name adapter.WalletName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Unregister removes a wallet (useful for testing)
func (r *Registry) Unregister(name adapter.WalletName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Build instantiates one adapter per registered wallet, in name order
func (r *Registry) Build(ns adapter.Namespace, logger *slog.Logger) []adapter.WalletAdapter {
	names := r.GetSupportedWallets()

	adapters := make([]adapter.WalletAdapter, 0, len(names))
	for _, name := range names {
		factory, err := r.Get(name)
		if err != nil {
			continue
		}
		adapters = append(adapters, factory(ns, logger))
	}
	return adapters
}

// InjectionPath returns the namespace path a wallet's provider is expected at
func InjectionPath(name adapter.WalletName) (string, error) {
	switch name {
	case adapter.Phantom:
		return PhantomPath, nil
	case adapter.Solflare:
		return SolflarePath, nil
	default:
		return "", fmt.Errorf("unsupported wallet: %s", name)
	}
}
