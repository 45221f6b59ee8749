// Package session signs a wallet in to the Pulse backend and keeps its tokens.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrNotAuthenticated is returned by calls that need an access token before SignIn
var ErrNotAuthenticated = errors.New("not authenticated: please sign in first")

// MessageSigner signs arbitrary bytes with the connected wallet
type MessageSigner interface {
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Client handles sign-in and token management against the Pulse backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// New creates a session client for baseURL. The URL is required and must use
// HTTPS unless it points at the local machine.
func New(baseURL string, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("session URL is required")
	}
	if err := ValidateURL(baseURL); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the backend the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAuthMessage fetches the nonce message for address
// GET /api/v1/auth/message?walletAddress=<base58>
func (c *Client) GetAuthMessage(ctx context.Context, address string) (*MessageResponse, error) {
	u := fmt.Sprintf("%s/api/v1/auth/message?walletAddress=%s", c.baseURL, url.QueryEscape(address))

	var result MessageResponse
	if err := httpRequest(ctx, c.httpClient, http.MethodGet, u, nil, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to get auth message: %w", err)
	}
	return &result, nil
}

// Login exchanges a signed nonce message for tokens
// POST /api/v1/auth/login
func (c *Client) Login(ctx context.Context, message, signature string) (*AuthResponse, error) {
	req := AuthRequest{
		Message:   message,
		Signature: signature,
	}

	var result AuthResponse
	if err := httpRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/v1/auth/login", req, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	c.SetTokens(result.AccessToken, result.RefreshToken)
	return &result, nil
}

// SignIn fetches a nonce message for address, signs it with signer and logs in
func (c *Client) SignIn(ctx context.Context, signer MessageSigner, address solana.PublicKey) (*AuthResponse, error) {
	if signer == nil {
		return nil, errors.New("sign in: no signer")
	}

	msg, err := c.GetAuthMessage(ctx, address.String())
	if err != nil {
		return nil, err
	}

	signature, err := signer.SignMessage(ctx, []byte(msg.Message))
	if err != nil {
		return nil, fmt.Errorf("failed to sign auth message: %w", err)
	}
	if len(signature) != solana.SignatureLength {
		return nil, fmt.Errorf("failed to sign auth message: got %d signature bytes", len(signature))
	}

	resp, err := c.Login(ctx, msg.Message, base58.Encode(signature))
	if err != nil {
		return nil, err
	}

	c.logger.Info("signed in", "address", address.String())
	return resp, nil
}

// RefreshToken rotates the token pair using the stored refresh token
// POST /api/v1/auth/refresh
func (c *Client) RefreshToken(ctx context.Context) (*TokenPair, error) {
	refresh := c.GetRefreshToken()
	if refresh == "" {
		return nil, errors.New("no refresh token available")
	}

	var result TokenPair
	err := httpRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/v1/auth/refresh", refreshRequest{RefreshToken: refresh}, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	c.SetTokens(result.AccessToken, result.RefreshToken)
	return &result, nil
}

// GetMe returns the signed-in user
// GET /api/v1/auth/me
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}

	var result User
	if err := httpRequest(ctx, c.httpClient, http.MethodGet, c.baseURL+"/api/v1/auth/me", nil, headers, &result); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	return &result, nil
}

// Logout invalidates the refresh token on the server and clears local tokens.
// Local tokens are cleared even when the server call fails.
// POST /api/v1/auth/logout
func (c *Client) Logout(ctx context.Context) error {
	refresh := c.GetRefreshToken()
	if refresh == "" {
		return nil
	}
	defer c.ClearTokens()

	headers, err := c.authHeaders()
	if err != nil {
		headers = nil
	}

	err = httpRequest(ctx, c.httpClient, http.MethodPost, c.baseURL+"/api/v1/auth/logout", refreshRequest{RefreshToken: refresh}, headers, nil)
	if err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// SetTokens stores a token pair, e.g. one restored from disk
func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

func (c *Client) GetAccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) GetRefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshToken
}

// ClearTokens drops both tokens
func (c *Client) ClearTokens() {
	c.SetTokens("", "")
}

// IsAuthenticated reports whether an access token is held
func (c *Client) IsAuthenticated() bool {
	return c.GetAccessToken() != ""
}

func (c *Client) authHeaders() (map[string]string, error) {
	token := c.GetAccessToken()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}
