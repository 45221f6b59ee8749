package constants

import "time"

const (
	ConfirmPollInterval   = 500 * time.Millisecond // delay between getSignatureStatuses polls
	HealthCheckTimeout    = 3 * time.Second        // timeout for getHealth calls
	SessionTimeout        = 30 * time.Second       // timeout for Pulse backend requests
	TLSHandshakeTimeout   = 10 * time.Second       // timeout for TLS handshake
	ResponseHeaderTimeout = 20 * time.Second       // timeout for response header
	ExpectContinueTimeout = 1 * time.Second        // timeout for expect continue
	MaxResponseBodySize   = 10 * 1024 * 1024       // maximum response body size in bytes (10MB)
)

const (
	// DefaultStorageKey is the key the last selected wallet is persisted under
	DefaultStorageKey = "pulse-wallet-adapter"

	// UserRejectedCode is the provider error code for a request the user declined
	UserRejectedCode = 4001
)

const (
	USDCDecimals = 6

	DefaultComputeUnitLimit = 200_000
	DefaultComputeUnitPrice = 10_000 // microlamports per compute unit
)

// Network Types
const (
	NetworkSolana        = "solana"
	NetworkSolanaDevnet  = "solana-devnet"
	NetworkSolanaTestnet = "solana-testnet"
	NetworkLocalnet      = "localnet"
)

const (
	USDCAddressSolana       = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDCAddressSolanaDevnet = "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"
)

var NetworkToUSDCAddress = map[string]string{
	NetworkSolana:       USDCAddressSolana,
	NetworkSolanaDevnet: USDCAddressSolanaDevnet,
}

var OfficialRPCEndpoints = map[string][]string{
	NetworkSolana:        {"https://api.mainnet-beta.solana.com"},
	NetworkSolanaDevnet:  {"https://api.devnet.solana.com"},
	NetworkSolanaTestnet: {"https://api.testnet.solana.com"},
	NetworkLocalnet:      {"http://127.0.0.1:8899"},
}
