package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
	"github.com/sigweihq/pulsewallet/pkg/connection"
	"github.com/sigweihq/pulsewallet/pkg/constants"
	"github.com/sigweihq/pulsewallet/pkg/keypair"
	"github.com/sigweihq/pulsewallet/pkg/session"
	"github.com/sigweihq/pulsewallet/pkg/storage"
	"github.com/sigweihq/pulsewallet/pkg/txbuilder"
)

// run builds the wallet stack, hands it to fn and tears it down again
func run(fn func(ctx context.Context, a *app) error) error {
	if err := opts.validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp(&opts, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

type statusCommand struct{}

func (c *statusCommand) Execute([]string) error {
	return run(func(ctx context.Context, a *app) error {
		selected, ok := storage.NewWalletStorage(a.backend, opts.StorageKey, a.logger).GetSelectedWallet()
		if !ok {
			selected = "(none)"
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "endpoint\t%s\n", a.conn.Endpoint())
		fmt.Fprintf(w, "healthy\t%t\n", a.conn.IsHealthy(ctx))
		fmt.Fprintf(w, "selected wallet\t%s\n", selected)
		if pk := a.provider.PublicKey(); pk != nil {
			fmt.Fprintf(w, "keypair\t%s\n", pk)
		} else {
			fmt.Fprintf(w, "keypair\t(missing) %s\n", opts.Keypair)
		}
		for _, wa := range a.manager.Adapters() {
			fmt.Fprintf(w, "%s\t%s\n", wa.Name(), wa.ReadyState())
		}
		return w.Flush()
	})
}

type connectCommand struct{}

func (c *connectCommand) Execute([]string) error {
	return run(func(ctx context.Context, a *app) error {
		state, err := a.ensureConnected(ctx, adapter.WalletName(opts.Wallet))
		if err != nil {
			return err
		}
		fmt.Printf("connected %s as %s\n", state.Wallet, state.Address())
		return nil
	})
}

type disconnectCommand struct{}

func (c *disconnectCommand) Execute([]string) error {
	return run(func(_ context.Context, a *app) error {
		name, ok := a.forgetWallet(opts.StorageKey)
		if !ok {
			fmt.Println("no wallet selected")
			return nil
		}
		fmt.Printf("forgot %s, it will not reconnect automatically\n", name)
		return nil
	})
}

type signMessageCommand struct {
	Args struct {
		Message []string `positional-arg-name:"message" required:"yes"`
	} `positional-args:"yes"`
}

func (c *signMessageCommand) Execute([]string) error {
	return run(func(ctx context.Context, a *app) error {
		if _, err := a.ensureConnected(ctx, adapter.WalletName(opts.Wallet)); err != nil {
			return err
		}

		signature, err := a.manager.SignMessage(ctx, []byte(strings.Join(c.Args.Message, " ")))
		if err != nil {
			return err
		}
		fmt.Println(base58.Encode(signature))
		return nil
	})
}

type tipCommand struct {
	To            string `long:"to" required:"true" description:"Recipient address"`
	Amount        string `long:"amount" required:"true" description:"Amount in whole units, e.g. 0.05"`
	Asset         string `long:"asset" default:"sol" choice:"sol" choice:"usdc" description:"Asset to tip"`
	ComputePrice  uint64 `long:"cu-price" description:"Compute unit price in microlamports"`
	SkipPreflight bool   `long:"skip-preflight" description:"Skip the preflight simulation"`
}

func (c *tipCommand) Execute([]string) error {
	to, err := solana.PublicKeyFromBase58(c.To)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	decimals := txbuilder.SOLDecimals
	if c.Asset == "usdc" {
		decimals = constants.USDCDecimals
	}
	amount, err := txbuilder.ParseAmount(c.Amount, decimals)
	if err != nil {
		return err
	}

	return run(func(ctx context.Context, a *app) error {
		state, err := a.ensureConnected(ctx, adapter.WalletName(opts.Wallet))
		if err != nil {
			return err
		}

		tip := txbuilder.Tip{
			From:             *state.PublicKey,
			To:               to,
			Amount:           amount,
			ComputeUnitPrice: c.ComputePrice,
		}
		var tx *solana.Transaction
		if c.Asset == "usdc" {
			tx, err = txbuilder.BuildUSDCTip(ctx, a.conn, opts.Network, tip)
		} else {
			tx, err = txbuilder.BuildSOLTip(ctx, a.conn, tip)
		}
		if err != nil {
			return err
		}

		sig, err := a.manager.SendTransaction(ctx, tx, connection.SendOptions{SkipPreflight: c.SkipPreflight})
		if !sig.IsZero() {
			fmt.Println(sig)
		}
		if err != nil {
			return err
		}
		a.logger.Info("tip confirmed", "to", shortKey(to), "amount", c.Amount, "asset", c.Asset)
		return nil
	})
}

type keygenCommand struct {
	Out   string `long:"out" description:"Where to write the keypair (default: --keypair)"`
	Force bool   `long:"force" description:"Overwrite an existing keypair file"`
}

func (c *keygenCommand) Execute([]string) error {
	if err := opts.validate(); err != nil {
		return err
	}
	out := c.Out
	if out == "" {
		out = opts.Keypair
	}
	out = expandHome(out)

	if _, err := os.Stat(out); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, pass --force to overwrite", out)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	key, err := keypair.Generate()
	if err != nil {
		return err
	}
	if err := keypair.SaveFile(out, key); err != nil {
		return err
	}
	fmt.Printf("wrote %s\npublic key: %s\n", out, key.PublicKey())
	return nil
}

type loginCommand struct{}

func (c *loginCommand) Execute([]string) error {
	return run(func(ctx context.Context, a *app) error {
		state, err := a.ensureConnected(ctx, adapter.WalletName(opts.Wallet))
		if err != nil {
			return err
		}

		client, err := a.sessionClient(opts.SessionURL)
		if err != nil {
			return err
		}
		resp, err := client.SignIn(ctx, a.manager, *state.PublicKey)
		if err != nil {
			return err
		}
		if err := a.saveTokens(client); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		if resp.User != nil {
			fmt.Printf("signed in as user %d (%s)\n", resp.User.ID, resp.User.WalletAddress)
		}
		return nil
	})
}

type tipsCommand struct {
	Limit  int `long:"limit" default:"20" description:"Page size (1-100)"`
	Offset int `long:"offset" description:"Page offset"`
}

func (c *tipsCommand) Execute([]string) error {
	return run(func(ctx context.Context, a *app) error {
		client, err := a.sessionClient(opts.SessionURL)
		if err != nil {
			return err
		}
		pair, ok := a.loadTokens()
		if !ok {
			return session.ErrNotAuthenticated
		}
		client.SetTokens(pair.AccessToken, pair.RefreshToken)

		history, err := client.TipsWithAutoRefresh(ctx, &session.TipParams{
			Network: opts.Network,
			Limit:   c.Limit,
			Offset:  c.Offset,
		})
		if err != nil {
			return err
		}
		if client.GetAccessToken() != pair.AccessToken {
			if err := a.saveTokens(client); err != nil {
				a.logger.Warn("failed to store refreshed session", "error", err)
			}
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tASSET\tAMOUNT\tRECIPIENT\tSTATUS\tSIGNATURE")
		for _, t := range history.Tips {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				t.CreatedAt.Format("2006-01-02 15:04"), t.Asset, t.Amount, t.Recipient, t.Status, t.Signature)
		}
		fmt.Fprintf(w, "%d of %d\n", len(history.Tips), history.Total)
		return w.Flush()
	})
}
