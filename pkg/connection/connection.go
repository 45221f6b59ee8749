package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sigweihq/pulsewallet/pkg/constants"
)

// Connection is the shared handle to a Solana RPC endpoint
type Connection interface {
	Endpoint() string
	Commitment() rpc.CommitmentType

	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (solana.Signature, error)
	// ConfirmTransaction blocks until sig reaches the connection commitment.
	// It has no timeout of its own; bound it with ctx.
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
	IsHealthy(ctx context.Context) bool
}

// SendOptions control how a signed transaction is submitted
type SendOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
	MaxRetries          *uint
}

// TransactionError reports a transaction that landed but failed on chain
type TransactionError struct {
	Signature solana.Signature
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

// RPCConnection implements Connection on top of the solana-go JSON-RPC client
type RPCConnection struct {
	endpoint     string
	commitment   rpc.CommitmentType
	client       *rpc.Client
	logger       *slog.Logger
	pollInterval time.Duration
}

// Verify RPCConnection implements interface
var _ Connection = (*RPCConnection)(nil)

// New creates a connection to endpoint. An empty commitment means confirmed,
// as does any level other than processed, confirmed or finalized.
func New(endpoint string, commitment rpc.CommitmentType, logger *slog.Logger) *RPCConnection {
	if logger == nil {
		logger = slog.Default()
	}
	if rank(string(commitment)) == 0 {
		if commitment != "" {
			logger.Warn("unsupported commitment, using confirmed", "commitment", commitment)
		}
		commitment = rpc.CommitmentConfirmed
	}
	return &RPCConnection{
		endpoint:     endpoint,
		commitment:   commitment,
		client:       rpc.New(endpoint),
		logger:       logger.With("endpoint", endpoint),
		pollInterval: constants.ConfirmPollInterval,
	}
}

// ResolveEndpoint returns the official RPC endpoint for a network name.
// Anything that is not a known network is treated as an endpoint URL.
func ResolveEndpoint(network string) string {
	if endpoints, ok := constants.OfficialRPCEndpoints[network]; ok && len(endpoints) > 0 {
		return endpoints[0]
	}
	return network
}

func (c *RPCConnection) Endpoint() string {
	return c.endpoint
}

func (c *RPCConnection) Commitment() rpc.CommitmentType {
	return c.commitment
}

// Client exposes the underlying RPC client
func (c *RPCConnection) Client() *rpc.Client {
	return c.client
}

// GetLatestBlockhash implements Connection
func (c *RPCConnection) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, errors.New("failed to get latest blockhash: empty response")
	}
	return out.Value.Blockhash, nil
}

// AccountExists implements Connection
func (c *RPCConnection) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	out, err := c.client.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get account %s: %w", account, err)
	}
	return out != nil && out.Value != nil, nil
}

// SendRawTransaction implements Connection
func (c *RPCConnection) SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (solana.Signature, error) {
	preflight := opts.PreflightCommitment
	if preflight == "" {
		preflight = c.commitment
	}

	sig, err := c.client.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: preflight,
		MaxRetries:          opts.MaxRetries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Debug("transaction submitted", "signature", sig.String())
	return sig, nil
}

// ConfirmTransaction implements Connection by polling getSignatureStatuses
func (c *RPCConnection) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.checkStatus(ctx, sig)
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation of %s abandoned: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RPCConnection) checkStatus(ctx context.Context, sig solana.Signature) (bool, error) {
	out, err := c.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		// transient; the next poll retries until ctx ends
		c.logger.Debug("signature status poll failed", "signature", sig.String(), "error", err)
		return false, nil
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}

	status := out.Value[0]
	if status.Err != nil {
		return true, &TransactionError{Signature: sig, Err: status.Err}
	}
	if reached(status.ConfirmationStatus, c.commitment) {
		c.logger.Debug("transaction confirmed", "signature", sig.String(), "status", status.ConfirmationStatus)
		return true, nil
	}
	return false, nil
}

// reached reports whether a confirmation status satisfies the commitment
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	return rank(string(status)) >= rank(string(commitment))
}

func rank(level string) int {
	switch level {
	case string(rpc.ConfirmationStatusProcessed):
		return 1
	case string(rpc.ConfirmationStatusConfirmed):
		return 2
	case string(rpc.ConfirmationStatusFinalized):
		return 3
	default:
		return 0
	}
}

// IsHealthy implements Connection
func (c *RPCConnection) IsHealthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, constants.HealthCheckTimeout)
	defer cancel()

	health, err := c.client.GetHealth(ctx)
	if err != nil {
		c.logger.Debug("health check failed", "error", err)
		return false
	}
	return health == rpc.HealthOk
}
