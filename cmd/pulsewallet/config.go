package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/pulsewallet/pkg/adapter"
	"github.com/sigweihq/pulsewallet/pkg/constants"
	"github.com/sigweihq/pulsewallet/pkg/wallets"
)

const (
	backendFile    = "file"
	backendLevelDB = "leveldb"
)

type options struct {
	Network    string `long:"network" env:"PULSE_NETWORK" default:"solana-devnet" description:"Network name (solana, solana-devnet, solana-testnet, localnet)"`
	RPC        string `long:"rpc" env:"PULSE_RPC_URL" description:"RPC endpoint, overrides the network's official endpoint"`
	Commitment string `long:"commitment" env:"PULSE_COMMITMENT" default:"confirmed" choice:"processed" choice:"confirmed" choice:"finalized" description:"Commitment used for blockhashes and confirmation"`
	Wallet     string `long:"wallet" env:"PULSE_WALLET" default:"Phantom" description:"Wallet the local keypair is injected as"`
	Keypair    string `long:"keypair" env:"PULSE_KEYPAIR" description:"Keypair file (default: <datadir>/id.json)"`
	DataDir    string `long:"datadir" env:"PULSE_DATA_DIR" description:"Directory holding wallet state (default: ~/.pulsewallet)"`
	Backend    string `long:"backend" env:"PULSE_STORAGE" default:"file" choice:"file" choice:"leveldb" description:"Storage backend for the selected wallet"`
	StorageKey string `long:"storage-key" env:"PULSE_STORAGE_KEY" description:"Key the selected wallet is stored under"`
	SessionURL string `long:"session-url" env:"PULSE_SESSION_URL" description:"Pulse backend URL, required by login and tips"`
	Yes        bool   `short:"y" long:"yes" description:"Approve wallet prompts without asking"`
	LogLevel   string `long:"loglevel" env:"PULSE_LOG_LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Logging level"`

	Status     statusCommand     `command:"status" description:"Show the persisted wallet and its connection state"`
	Connect    connectCommand    `command:"connect" description:"Select the wallet and connect it"`
	Disconnect disconnectCommand `command:"disconnect" description:"Forget the selected wallet so it is not reconnected"`
	SignMsg    signMessageCommand `command:"sign-message" description:"Sign a message with the connected wallet"`
	Tip        tipCommand        `command:"tip" description:"Send a SOL or USDC tip"`
	Keygen     keygenCommand     `command:"keygen" description:"Generate a new keypair file"`
	Login      loginCommand      `command:"login" description:"Sign in to the Pulse backend with the wallet"`
	Tips       tipsCommand       `command:"tips" description:"List tips sent by the signed-in wallet"`
}

var opts options

func (o *options) validate() error {
	if o.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		o.DataDir = filepath.Join(home, ".pulsewallet")
	}
	o.DataDir = expandHome(o.DataDir)

	if o.Keypair == "" {
		o.Keypair = filepath.Join(o.DataDir, "id.json")
	}
	o.Keypair = expandHome(o.Keypair)

	if o.RPC == "" {
		if _, ok := constants.OfficialRPCEndpoints[o.Network]; !ok {
			return fmt.Errorf("unknown network %q: pass --rpc", o.Network)
		}
	}
	if !wallets.DefaultRegistry().IsSupported(adapter.WalletName(o.Wallet)) {
		return fmt.Errorf("unsupported wallet %q", o.Wallet)
	}
	return nil
}

func (o *options) endpoint() string {
	if o.RPC != "" {
		return o.RPC
	}
	return o.Network
}

func (o *options) commitment() rpc.CommitmentType {
	return rpc.CommitmentType(o.Commitment)
}

func (o *options) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(o.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
