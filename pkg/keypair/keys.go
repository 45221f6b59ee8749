package keypair

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Generate creates a new random keypair
func Generate() (solana.PrivateKey, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return key, nil
}

// Parse decodes a private key in any of the supported encodings:
// a solana-cli JSON byte array, base58, or hex (with or without 0x).
// 32-byte inputs are treated as ed25519 seeds.
func Parse(encoded string) (solana.PrivateKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("empty private key")
	}

	var raw []byte
	var err error
	switch {
	case strings.HasPrefix(encoded, "["):
		if err = json.Unmarshal([]byte(encoded), &raw); err != nil {
			return nil, fmt.Errorf("invalid keypair JSON: %w", err)
		}
	case isHex(encoded):
		raw, err = hex.DecodeString(strings.TrimPrefix(encoded, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key hex: %w", err)
		}
	default:
		raw, err = base58.Decode(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid private key base58: %w", err)
		}
	}

	return fromBytes(raw)
}

func fromBytes(raw []byte) (solana.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return solana.PrivateKey(ed25519.NewKeyFromSeed(raw)), nil
	case ed25519.PrivateKeySize:
		key := solana.PrivateKey(append([]byte(nil), raw...))
		derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !derived.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(raw[ed25519.SeedSize:])) {
			return nil, fmt.Errorf("private key does not match its embedded public key")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("invalid private key length: %d (expected 32 or 64 bytes)", len(raw))
	}
}

// isHex reports whether s looks like a hex-encoded seed or key.
// Base58 never contains 0, so a 0x prefix is unambiguous.
func isHex(s string) bool {
	if strings.HasPrefix(s, "0x") {
		return true
	}
	if len(s) != 2*ed25519.SeedSize && len(s) != 2*ed25519.PrivateKeySize {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// LoadFile reads a private key from path in any format accepted by Parse
func LoadFile(path string) (solana.PrivateKey, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keypair file: %w", err)
	}
	key, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse keypair file %s: %w", path, err)
	}
	return key, nil
}

// SaveFile writes key to path as a solana-cli JSON byte array, readable only by the owner
func SaveFile(path string, key solana.PrivateKey) error {
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	content, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode keypair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create keypair directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("failed to write keypair file: %w", err)
	}
	return nil
}

// SeedHex returns the 32-byte seed as 0x-prefixed hex
func SeedHex(key solana.PrivateKey) string {
	return "0x" + hex.EncodeToString(key[:ed25519.SeedSize])
}
