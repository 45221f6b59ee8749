package session_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sigweihq/pulsewallet/pkg/session"
	"github.com/sigweihq/pulsewallet/pkg/wallet"
)

// Example_signIn signs the connected wallet in and lists its recent tips
func Example_signIn() {
	ctx := context.Background()

	manager := wallet.NewManager(wallet.Config{Endpoint: "https://api.devnet.solana.com"})
	if err := manager.Select("Phantom"); err != nil {
		log.Fatal(err)
	}
	if err := manager.Connect(ctx); err != nil {
		log.Fatal(err)
	}

	client, err := session.New(os.Getenv("PULSE_SESSION_URL"), nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	auth, err := client.SignIn(ctx, manager, *manager.State().PublicKey)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Signed in as: %s\n", auth.User.WalletAddress)

	history, err := client.TipsWithAutoRefresh(ctx, &session.TipParams{Network: "solana", Limit: 10})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Found %d tips (total: %d)\n", len(history.Tips), history.Total)
}

// Example_restoreSession reuses tokens stored from an earlier sign-in
func Example_restoreSession() {
	client, err := session.New(os.Getenv("PULSE_SESSION_URL"), nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	client.SetTokens("stored-access-token", "stored-refresh-token")

	user, err := client.GetMe(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Welcome back, %s\n", user.WalletAddress)
}
