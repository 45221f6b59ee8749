package txbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sigweihq/pulsewallet/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChain struct {
	blockhash    solana.Hash
	blockhashErr error
	existing     map[solana.PublicKey]bool
	lookups      []solana.PublicKey
}

func (f *fakeChain) GetLatestBlockhash(context.Context) (solana.Hash, error) {
	return f.blockhash, f.blockhashErr
}

func (f *fakeChain) AccountExists(_ context.Context, account solana.PublicKey) (bool, error) {
	f.lookups = append(f.lookups, account)
	return f.existing[account], nil
}

func programIDs(t *testing.T, tx *solana.Transaction) []solana.PublicKey {
	t.Helper()
	ids := make([]solana.PublicKey, 0, len(tx.Message.Instructions))
	for _, ix := range tx.Message.Instructions {
		id, err := tx.ResolveProgramIDIndex(ix.ProgramIDIndex)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestBuildSOLTip(t *testing.T) {
	chain := &fakeChain{blockhash: solana.Hash{4, 2}}
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	tx, err := BuildSOLTip(context.Background(), chain, Tip{From: from, To: to, Amount: 1_000_000})
	require.NoError(t, err)

	assert.Equal(t, chain.blockhash, tx.Message.RecentBlockhash)
	assert.Equal(t, from, tx.Message.AccountKeys[0], "sender pays fees")
	assert.Equal(t, []solana.PublicKey{
		solana.ComputeBudget,
		solana.ComputeBudget,
		solana.SystemProgramID,
	}, programIDs(t, tx))
	assert.Equal(t, uint8(1), tx.Message.Header.NumRequiredSignatures)
	assert.Empty(t, tx.Signatures, "builders never sign")
}

func TestBuildUSDCTip(t *testing.T) {
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58(constants.USDCAddressSolanaDevnet)
	toTokenAccount, _, err := solana.FindAssociatedTokenAddress(to, mint)
	require.NoError(t, err)

	tests := []struct {
		name     string
		existing bool
		programs []solana.PublicKey
	}{
		{
			name:     "recipient token account exists",
			existing: true,
			programs: []solana.PublicKey{solana.ComputeBudget, solana.ComputeBudget, solana.TokenProgramID},
		},
		{
			name:     "recipient token account is created",
			existing: false,
			programs: []solana.PublicKey{solana.ComputeBudget, solana.ComputeBudget, solana.SPLAssociatedTokenAccountProgramID, solana.TokenProgramID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := &fakeChain{
				blockhash: solana.Hash{1},
				existing:  map[solana.PublicKey]bool{toTokenAccount: tt.existing},
			}

			tx, err := BuildUSDCTip(context.Background(), chain, constants.NetworkSolanaDevnet, Tip{From: from, To: to, Amount: 2_500_000})
			require.NoError(t, err)

			assert.Equal(t, []solana.PublicKey{toTokenAccount}, chain.lookups)
			assert.Equal(t, tt.programs, programIDs(t, tx))
			assert.Equal(t, from, tx.Message.AccountKeys[0])
		})
	}
}

func TestTipValidation(t *testing.T) {
	chain := &fakeChain{}
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	_, err := BuildSOLTip(context.Background(), chain, Tip{From: from, To: to})
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = BuildSOLTip(context.Background(), chain, Tip{From: from, To: from, Amount: 1})
	assert.ErrorIs(t, err, ErrSelfTip)

	_, err = BuildUSDCTip(context.Background(), chain, constants.NetworkSolanaDevnet, Tip{To: to, Amount: 1})
	assert.Error(t, err)

	_, err = BuildUSDCTip(context.Background(), chain, "solana-testnet", Tip{From: from, To: to, Amount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no USDC address configured")
}

func TestBlockhashFailure(t *testing.T) {
	chain := &fakeChain{blockhashErr: errors.New("node is behind")}

	_, err := BuildSOLTip(context.Background(), chain, Tip{
		From:   solana.NewWallet().PublicKey(),
		To:     solana.NewWallet().PublicKey(),
		Amount: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node is behind")
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int
		expected uint64
		wantErr  bool
	}{
		{amount: "1", decimals: SOLDecimals, expected: 1_000_000_000},
		{amount: "0.25", decimals: constants.USDCDecimals, expected: 250_000},
		{amount: " 12.000001 ", decimals: constants.USDCDecimals, expected: 12_000_001},
		{amount: "0.0000001", decimals: constants.USDCDecimals, wantErr: true},
		{amount: "-1", decimals: SOLDecimals, wantErr: true},
		{amount: "abc", decimals: SOLDecimals, wantErr: true},
		{amount: "99999999999999999999", decimals: SOLDecimals, wantErr: true},
		{amount: "1e9", decimals: SOLDecimals, wantErr: true},
		{amount: "1e999999999", decimals: SOLDecimals, wantErr: true},
		{amount: "1/2", decimals: SOLDecimals, wantErr: true},
		{amount: "+1", decimals: SOLDecimals, wantErr: true},
		{amount: ".5", decimals: SOLDecimals, wantErr: true},
		{amount: "1.", decimals: SOLDecimals, wantErr: true},
		{amount: "", decimals: SOLDecimals, wantErr: true},
		{amount: "007", decimals: constants.USDCDecimals, expected: 7_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ParseAmount(tt.amount, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
