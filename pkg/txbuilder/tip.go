package txbuilder

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/sigweihq/pulsewallet/pkg/constants"
)

// SOLDecimals is the number of decimal places in one SOL
const SOLDecimals = 9

var (
	ErrZeroAmount = errors.New("tip amount must be greater than zero")
	ErrSelfTip    = errors.New("cannot tip yourself")
)

// Chain is the subset of the RPC connection the builders need
type Chain interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

// Tip describes a transfer from the connected wallet to a creator
type Tip struct {
	From   solana.PublicKey
	To     solana.PublicKey
	Amount uint64 // base units: lamports for SOL, 10^-6 USDC for USDC

	// Zero values use constants.DefaultComputeUnitLimit and constants.DefaultComputeUnitPrice
	ComputeUnitLimit uint32
	ComputeUnitPrice uint64
}

func (t Tip) validate() error {
	if t.Amount == 0 {
		return ErrZeroAmount
	}
	if t.From.IsZero() || t.To.IsZero() {
		return fmt.Errorf("tip sender and recipient are required")
	}
	if t.From.Equals(t.To) {
		return ErrSelfTip
	}
	return nil
}

func (t Tip) computeBudget() []solana.Instruction {
	limit := t.ComputeUnitLimit
	if limit == 0 {
		limit = constants.DefaultComputeUnitLimit
	}
	price := t.ComputeUnitPrice
	if price == 0 {
		price = constants.DefaultComputeUnitPrice
	}
	return []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(limit).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(price).Build(),
	}
}

// BuildSOLTip builds an unsigned native SOL transfer paid by the sender
func BuildSOLTip(ctx context.Context, chain Chain, tip Tip) (*solana.Transaction, error) {
	if err := tip.validate(); err != nil {
		return nil, err
	}

	instructions := append(tip.computeBudget(),
		system.NewTransferInstruction(tip.Amount, tip.From, tip.To).Build(),
	)
	return finalize(ctx, chain, tip.From, instructions)
}

// BuildUSDCTip builds an unsigned USDC TransferChecked between the sender's and
// recipient's associated token accounts, creating the recipient's account first
// when it does not exist yet
func BuildUSDCTip(ctx context.Context, chain Chain, network string, tip Tip) (*solana.Transaction, error) {
	if err := tip.validate(); err != nil {
		return nil, err
	}

	mint, err := USDCMint(network)
	if err != nil {
		return nil, err
	}

	fromTokenAccount, _, err := solana.FindAssociatedTokenAddress(tip.From, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive sender token account: %w", err)
	}
	toTokenAccount, _, err := solana.FindAssociatedTokenAddress(tip.To, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive recipient token account: %w", err)
	}

	instructions := tip.computeBudget()

	exists, err := chain.AccountExists(ctx, toTokenAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to check recipient token account: %w", err)
	}
	if !exists {
		instructions = append(instructions,
			associatedtokenaccount.NewCreateInstruction(tip.From, tip.To, mint).Build(),
		)
	}

	instructions = append(instructions, token.NewTransferCheckedInstruction(
		tip.Amount,
		constants.USDCDecimals,
		fromTokenAccount,
		mint,
		toTokenAccount,
		tip.From,
		[]solana.PublicKey{},
	).Build())

	return finalize(ctx, chain, tip.From, instructions)
}

func finalize(ctx context.Context, chain Chain, payer solana.PublicKey, instructions []solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := chain.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// USDCMint returns the USDC mint for a Solana network
func USDCMint(network string) (solana.PublicKey, error) {
	address, ok := constants.NetworkToUSDCAddress[network]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("no USDC address configured for network %s", network)
	}
	return solana.PublicKeyFromBase58(address)
}

var amountPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseAmount converts a plain decimal string such as "1.25" into base units.
// Signs, exponents and fractions like "1/2" are rejected.
func ParseAmount(amount string, decimals int) (uint64, error) {
	amount = strings.TrimSpace(amount)
	if !amountPattern.MatchString(amount) {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}
	value, ok := new(big.Rat).SetString(amount)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}

	scaled := new(big.Rat).Mul(value, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)))
	if !scaled.IsInt() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	units := scaled.Num()
	if !units.IsUint64() {
		return 0, fmt.Errorf("amount %s is too large", amount)
	}
	return units.Uint64(), nil
}
