package wallets

import (
	"log/slog"
	"testing"

	"github.com/sigweihq/pulsewallet/pkg/adapter"
	"github.com/sigweihq/pulsewallet/pkg/adapter/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flaggedProvider struct {
	*mocks.Provider
	phantom  bool
	solflare bool
}

func (p *flaggedProvider) IsPhantom() bool  { return p.phantom }
func (p *flaggedProvider) IsSolflare() bool { return p.solflare }

func TestLocatePhantom(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		provider adapter.Provider
		found    bool
	}{
		{
			name:     "namespaced provider",
			path:     PhantomPath,
			provider: &mocks.Provider{},
			found:    true,
		},
		{
			name:     "legacy global flagged as phantom",
			path:     PhantomLegacyPath,
			provider: &flaggedProvider{Provider: &mocks.Provider{}, phantom: true},
			found:    true,
		},
		{
			name:     "legacy global from another wallet",
			path:     PhantomLegacyPath,
			provider: &flaggedProvider{Provider: &mocks.Provider{}, phantom: false},
			found:    false,
		},
		{
			name:     "unflagged legacy global",
			path:     PhantomLegacyPath,
			provider: &mocks.Provider{},
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := adapter.NewWindow()
			window.Inject(tt.path, tt.provider)

			p, found := LocatePhantom(window)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Same(t, tt.provider, p)
			}
		})
	}
}

func TestLocateSolflare(t *testing.T) {
	window := adapter.NewWindow()
	_, found := LocateSolflare(window)
	assert.False(t, found)

	mobile := &flaggedProvider{Provider: &mocks.Provider{}, solflare: true}
	window.Inject(SolflareMobilePath, mobile)
	p, found := LocateSolflare(window)
	require.True(t, found)
	assert.Same(t, mobile, p)

	extension := &mocks.Provider{}
	window.Inject(SolflarePath, extension)
	p, found = LocateSolflare(window)
	require.True(t, found)
	assert.Same(t, extension, p, "extension wins over the in-app provider")
}

func TestAdaptersWithoutNamespace(t *testing.T) {
	phantom := NewPhantomAdapter(nil, nil)
	solflare := NewSolflareAdapter(nil, nil)

	assert.Equal(t, adapter.Phantom, phantom.Name())
	assert.Equal(t, adapter.Solflare, solflare.Name())
	assert.Equal(t, adapter.ReadyStateUnsupported, phantom.ReadyState())
	assert.Equal(t, adapter.ReadyStateUnsupported, solflare.ReadyState())
	assert.Equal(t, "https://phantom.app/download", phantom.Metadata().DownloadURL)
}

func TestRegistryIdempotent(t *testing.T) {
	registry := NewRegistry()

	calls := 0
	first := func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter { return nil }
	second := func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter {
		calls++
		return NewPhantomAdapter(ns, logger)
	}

	registry.Register(adapter.Phantom, first)
	registry.Register(adapter.Phantom, second)

	factory, err := registry.Get(adapter.Phantom)
	require.NoError(t, err)
	factory(nil, nil)
	assert.Equal(t, 1, calls, "second factory should have replaced the first")
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	registry := NewRegistry()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			registry.Register(adapter.Solflare, func(ns adapter.Namespace, logger *slog.Logger) adapter.WalletAdapter {
				return NewSolflareAdapter(ns, logger)
			})
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	assert.True(t, registry.IsSupported(adapter.Solflare))
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, []adapter.WalletName{adapter.Phantom, adapter.Solflare}, registry.GetSupportedWallets())

	built := registry.Build(adapter.NewWindow(), nil)
	require.Len(t, built, 2)
	assert.Equal(t, adapter.Phantom, built[0].Name())
	assert.Equal(t, adapter.Solflare, built[1].Name())
	for _, a := range built {
		assert.Equal(t, adapter.ReadyStateNotDetected, a.ReadyState())
	}

	_, err := registry.Get("Backpack")
	assert.Error(t, err)
}

func TestRegistryUnregister(t *testing.T) {
	registry := DefaultRegistry()
	registry.Unregister(adapter.Solflare)

	assert.False(t, registry.IsSupported(adapter.Solflare))
	assert.Len(t, registry.Build(nil, nil), 1)
}

func TestInjectionPath(t *testing.T) {
	path, err := InjectionPath(adapter.Phantom)
	require.NoError(t, err)
	assert.Equal(t, PhantomPath, path)

	path, err = InjectionPath(adapter.Solflare)
	require.NoError(t, err)
	assert.Equal(t, SolflarePath, path)

	_, err = InjectionPath("Backpack")
	assert.Error(t, err)
}
