package session

import "time"

// MessageResponse carries the nonce message a wallet must sign
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthRequest is the sign-in payload. Signature is base58 encoded.
type AuthRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// User represents an account on the Pulse backend
type User struct {
	ID            uint64 `json:"id"`
	WalletAddress string `json:"walletAddress"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// AuthResponse represents the sign-in response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenPair represents access and refresh token pair
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TipParams filters a tip history query
type TipParams struct {
	Network string
	Limit   int
	Offset  int
}

// TipRecord is a single tip sent by the signed-in wallet
type TipRecord struct {
	ID        int64     `json:"id"`
	Signature string    `json:"signature"`
	Network   string    `json:"network"`
	Recipient string    `json:"recipient"`
	Asset     string    `json:"asset"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// TipHistory is one page of tips
type TipHistory struct {
	Tips   []*TipRecord `json:"tips"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
