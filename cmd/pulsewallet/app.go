package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
	"github.com/sigweihq/pulsewallet/pkg/connection"
	"github.com/sigweihq/pulsewallet/pkg/keypair"
	"github.com/sigweihq/pulsewallet/pkg/session"
	"github.com/sigweihq/pulsewallet/pkg/storage"
	"github.com/sigweihq/pulsewallet/pkg/wallet"
	"github.com/sigweihq/pulsewallet/pkg/wallets"
)

const sessionStorageKey = "pulse-session"

// app is the wallet stack for a single CLI invocation
type app struct {
	logger   *slog.Logger
	conn     *connection.RPCConnection
	backend  storage.Backend
	provider *keypair.Provider
	manager  *wallet.Manager
	closers  []func() error
}

func newApp(o *options, in io.Reader, out io.Writer) (*app, error) {
	logger := o.logger()

	key, err := keypair.LoadFile(o.Keypair)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		// The provider stays locked; connect reports it like a locked extension.
		logger.Warn("no keypair found, run keygen first", "path", o.Keypair)
	default:
		return nil, err
	}

	a := &app{logger: logger}

	backend, closer, err := openBackend(o)
	if err != nil {
		return nil, err
	}
	a.backend = backend
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	approver := keypair.AutoApprove
	if !o.Yes {
		approver = promptApprover(in, out)
	}
	a.provider = keypair.New(keypair.Config{
		Key:      key,
		Approver: approver,
		Brand:    adapter.WalletName(o.Wallet),
		Logger:   logger,
	})

	path, err := wallets.InjectionPath(adapter.WalletName(o.Wallet))
	if err != nil {
		a.close()
		return nil, err
	}
	window := adapter.NewWindow()
	window.Inject(path, a.provider)

	a.conn = connection.New(connection.ResolveEndpoint(o.endpoint()), o.commitment(), logger)
	a.manager = wallet.NewManager(wallet.Config{
		Connection:  a.conn,
		AutoConnect: true,
		StorageKey:  o.StorageKey,
		Storage:     backend,
		Namespace:   window,
		Logger:      logger,
		OnError: func(err *adapter.WalletError) {
			logger.Debug("wallet error", "code", err.Code, "error", err)
		},
	})
	a.closers = append(a.closers, func() error {
		a.manager.Close()
		return nil
	})
	return a, nil
}

func openBackend(o *options) (storage.Backend, func() error, error) {
	switch o.Backend {
	case backendLevelDB:
		db, err := storage.NewLevelDBBackend(filepath.Join(o.DataDir, "state.db"))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		fb, err := storage.NewFileBackend(filepath.Join(o.DataDir, "state"))
		if err != nil {
			return nil, nil, err
		}
		return fb, nil, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to close", "error", err)
		}
	}
}

// ensureConnected restores the persisted wallet, or selects and connects the
// configured one when nothing is connected after auto-connect.
func (a *app) ensureConnected(ctx context.Context, name adapter.WalletName) (wallet.State, error) {
	a.manager.Start(ctx)

	state := a.manager.State()
	if state.Connected && state.Wallet == name {
		return state, nil
	}
	if err := a.manager.Select(name); err != nil {
		return state, err
	}
	if err := a.manager.Connect(ctx); err != nil {
		return a.manager.State(), err
	}

	state = a.manager.State()
	if !state.Connected || state.PublicKey == nil {
		return state, fmt.Errorf("%s did not connect", name)
	}
	return state, nil
}

// forgetWallet clears the persisted selection without starting auto-connect.
// Provider sessions do not outlive a CLI invocation, so there is nothing else
// to close.
func (a *app) forgetWallet(storageKey string) (string, bool) {
	ws := storage.NewWalletStorage(a.backend, storageKey, a.logger)
	name, ok := ws.GetSelectedWallet()
	if !ok {
		return "", false
	}
	ws.ClearSelectedWallet()
	return name, true
}

// sessionClient builds a backend client for baseURL, which must be configured
func (a *app) sessionClient(baseURL string) (*session.Client, error) {
	if baseURL == "" {
		return nil, errors.New("no Pulse backend configured: pass --session-url or set PULSE_SESSION_URL")
	}
	return session.New(baseURL, nil, a.logger)
}

func (a *app) loadTokens() (session.TokenPair, bool) {
	var pair session.TokenPair
	raw, err := a.backend.Get(sessionStorageKey)
	if err != nil {
		return pair, false
	}
	if err := json.Unmarshal(raw, &pair); err != nil || pair.AccessToken == "" {
		return pair, false
	}
	return pair, true
}

func (a *app) saveTokens(client *session.Client) error {
	raw, err := json.Marshal(session.TokenPair{
		AccessToken:  client.GetAccessToken(),
		RefreshToken: client.GetRefreshToken(),
	})
	if err != nil {
		return err
	}
	return a.backend.Put(sessionStorageKey, raw)
}

// promptApprover asks on out and reads y/yes from in, standing in for the
// extension's confirmation popup.
func promptApprover(in io.Reader, out io.Writer) keypair.Approver {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, req keypair.Request) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\nApprove? [y/N] ", describeRequest(req))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return keypair.ErrRejected
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return nil
		default:
			return keypair.ErrRejected
		}
	}
}

func describeRequest(req keypair.Request) string {
	switch req.Kind {
	case keypair.RequestConnect:
		return fmt.Sprintf("Connect account %s", req.PublicKey)
	case keypair.RequestSignMessage:
		return fmt.Sprintf("Sign message with %s:\n  %q", req.PublicKey, req.Message)
	case keypair.RequestSignAllTransactions:
		return fmt.Sprintf("Sign %d transactions with %s", req.Transactions, req.PublicKey)
	default:
		return fmt.Sprintf("Sign a transaction with %s", req.PublicKey)
	}
}

func shortKey(pk solana.PublicKey) string {
	s := pk.String()
	if len(s) <= 8 {
		return s
	}
	return s[:4] + ".." + s[len(s)-4:]
}
