package adapter

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseAdapterInitialState(t *testing.T) {
	base := NewBaseAdapter(Metadata{Name: Phantom}, nil)

	assert.Equal(t, Phantom, base.Name())
	assert.Nil(t, base.PublicKey())
	assert.False(t, base.Connected())
	assert.False(t, base.Connecting())
	assert.Equal(t, ReadyStateLoading, base.ReadyState())
}

func TestUpdateReadyStateIdempotent(t *testing.T) {
	base := NewBaseAdapter(Metadata{Name: Solflare}, nil)

	assert.True(t, base.UpdateReadyState(ReadyStateInstalled))
	assert.False(t, base.UpdateReadyState(ReadyStateInstalled))
	assert.Equal(t, ReadyStateInstalled, base.ReadyState())
}

func TestBaseAdapterTransitions(t *testing.T) {
	base := NewBaseAdapter(Metadata{Name: Phantom}, nil)
	key := solana.NewWallet().PublicKey()

	require.True(t, base.beginConnect())
	assert.False(t, base.beginConnect(), "second connect attempt must be refused while connecting")
	assert.True(t, base.Connecting())

	assert.True(t, base.markConnected(key))
	assert.False(t, base.markConnected(key), "same key is not a transition")
	base.finishConnect()

	assert.True(t, base.Connected())
	require.NotNil(t, base.PublicKey())
	assert.Equal(t, key, *base.PublicKey())
	assert.False(t, base.beginConnect(), "connect is refused while connected")

	base.setAccount(nil)
	assert.Nil(t, base.PublicKey())
	assert.False(t, base.Connected(), "connected must imply a known key")
	assert.True(t, base.SessionOpen())
	assert.False(t, base.beginConnect(), "connect is refused while the session is open")

	base.setAccount(&key)
	assert.True(t, base.Connected())

	assert.True(t, base.markDisconnected())
	assert.False(t, base.SessionOpen())
	assert.False(t, base.markDisconnected(), "already closed")

	base.setAccount(&key)
	assert.False(t, base.Connected(), "no session, no connection")
}

func TestPublicKeyIsCopied(t *testing.T) {
	base := NewBaseAdapter(Metadata{Name: Phantom}, nil)
	key := solana.NewWallet().PublicKey()
	base.markConnected(key)

	got := base.PublicKey()
	got[0] ^= 0xff
	assert.Equal(t, key, *base.PublicKey())
}

func TestWindowLookup(t *testing.T) {
	window := NewWindow()

	_, ok := window.Lookup("phantom.solana")
	assert.False(t, ok)

	window.Inject("phantom.solana", nil)
	_, ok = window.Lookup("phantom.solana")
	assert.False(t, ok, "nil providers are not detected")

	window.Remove("phantom.solana")
	_, ok = window.Lookup("phantom.solana")
	assert.False(t, ok)
}
