package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keySigner struct {
	key solana.PrivateKey
	err error
}

func (s *keySigner) SignMessage(_ context.Context, message []byte) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	sig, err := s.key.Sign(message)
	if err != nil {
		return nil, err
	}
	return sig[:], nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(server.URL, server.Client(), nil)
	require.NoError(t, err)
	return client
}

// idleClient points at a port nothing listens on
func idleClient(t *testing.T) *Client {
	t.Helper()
	client, err := New("http://localhost:1", nil, nil)
	require.NoError(t, err)
	return client
}

func TestNewValidatesURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		expected string
		wantErr  bool
	}{
		{name: "empty rejected", baseURL: "", wantErr: true},
		{name: "https kept", baseURL: "https://pulse.example.com/", expected: "https://pulse.example.com"},
		{name: "localhost allowed", baseURL: "http://localhost:8080", expected: "http://localhost:8080"},
		{name: "loopback allowed", baseURL: "http://127.0.0.1:9000", expected: "http://127.0.0.1:9000"},
		{name: "plain http rejected", baseURL: "http://pulse.example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.baseURL, nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, client.BaseURL())
		})
	}
}

func TestGetAuthMessage(t *testing.T) {
	tests := []struct {
		name             string
		address          string
		serverResponse   *MessageResponse
		serverStatusCode int
		expectedError    bool
		errorContains    string
	}{
		{
			name:             "successful message retrieval",
			address:          "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
			serverResponse:   &MessageResponse{Message: "Sign in to Pulse.\n\nNonce: abc123"},
			serverStatusCode: http.StatusOK,
		},
		{
			name:             "server error",
			address:          "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
			serverStatusCode: http.StatusInternalServerError,
			expectedError:    true,
			errorContains:    "failed to get auth message",
		},
		{
			name:             "invalid wallet address",
			address:          "not base58",
			serverStatusCode: http.StatusBadRequest,
			expectedError:    true,
			errorContains:    "failed to get auth message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/auth/message", r.URL.Path)
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.address, r.URL.Query().Get("walletAddress"))

				w.WriteHeader(tt.serverStatusCode)
				if tt.serverResponse != nil {
					json.NewEncoder(w).Encode(tt.serverResponse)
				}
			})

			result, err := client.GetAuthMessage(context.Background(), tt.address)
			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.serverResponse.Message, result.Message)
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name             string
		serverResponse   *AuthResponse
		serverStatusCode int
		expectedError    bool
	}{
		{
			name: "successful login",
			serverResponse: &AuthResponse{
				User:         &User{ID: 1, WalletAddress: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"},
				AccessToken:  "access-token-123",
				RefreshToken: "refresh-token-456",
			},
			serverStatusCode: http.StatusOK,
		},
		{
			name:             "invalid signature",
			serverStatusCode: http.StatusUnauthorized,
			expectedError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)

				var req AuthRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "Sign in to Pulse", req.Message)
				assert.Equal(t, "5sig", req.Signature)

				w.WriteHeader(tt.serverStatusCode)
				if tt.serverResponse != nil {
					json.NewEncoder(w).Encode(tt.serverResponse)
				}
			})

			result, err := client.Login(context.Background(), "Sign in to Pulse", "5sig")
			if tt.expectedError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to login")

				var httpErr *HTTPError
				require.ErrorAs(t, err, &httpErr)
				assert.True(t, httpErr.IsUnauthorized())
				assert.False(t, client.IsAuthenticated())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, uint64(1), result.User.ID)
			assert.Equal(t, "access-token-123", client.GetAccessToken())
			assert.Equal(t, "refresh-token-456", client.GetRefreshToken())
			assert.True(t, client.IsAuthenticated())
		})
	}
}

func TestSignIn(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	address := key.PublicKey()

	const nonce = "Sign in to Pulse.\n\nNonce: 42"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/message":
			assert.Equal(t, address.String(), r.URL.Query().Get("walletAddress"))
			json.NewEncoder(w).Encode(MessageResponse{Message: nonce})
		case "/api/v1/auth/login":
			var req AuthRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, nonce, req.Message)

			raw, err := base58.Decode(req.Signature)
			if err != nil || len(raw) != solana.SignatureLength ||
				!solana.SignatureFromBytes(raw).Verify(address, []byte(req.Message)) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(AuthResponse{
				User:         &User{ID: 7, WalletAddress: address.String()},
				AccessToken:  "access",
				RefreshToken: "refresh",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	resp, err := client.SignIn(context.Background(), &keySigner{key: key}, address)
	require.NoError(t, err)
	assert.Equal(t, address.String(), resp.User.WalletAddress)
	assert.True(t, client.IsAuthenticated())
}

func TestSignInSignerFailure(t *testing.T) {
	var logins atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/login" {
			logins.Add(1)
		}
		json.NewEncoder(w).Encode(MessageResponse{Message: "nonce"})
	})

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	rejected := errors.New("user rejected the request")
	_, err = client.SignIn(context.Background(), &keySigner{key: key, err: rejected}, key.PublicKey())
	require.ErrorIs(t, err, rejected)
	assert.Zero(t, logins.Load(), "login must not be attempted without a signature")

	_, err = client.SignIn(context.Background(), nil, key.PublicKey())
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/refresh", r.URL.Path)

		var req refreshRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid refresh token"})
			return
		}
		json.NewEncoder(w).Encode(TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"})
	})

	_, err := client.RefreshToken(context.Background())
	assert.Error(t, err, "no refresh token stored yet")

	client.SetTokens("access-1", "refresh-1")
	pair, err := client.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", pair.AccessToken)
	assert.Equal(t, "refresh-2", client.GetRefreshToken())

	_, err = client.RefreshToken(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid refresh token")
}

func TestGetMe(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(User{ID: 3, WalletAddress: "addr"})
	})

	_, err := client.GetMe(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	client.SetTokens("access", "refresh")
	user, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), user.ID)
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{name: "server accepts", statusCode: http.StatusNoContent},
		{name: "server fails", statusCode: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
				assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
				w.WriteHeader(tt.statusCode)
			})
			client.SetTokens("access", "refresh")

			err := client.Logout(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.False(t, client.IsAuthenticated(), "tokens are cleared either way")
			assert.Empty(t, client.GetRefreshToken())
		})
	}

	idle := idleClient(t)
	assert.NoError(t, idle.Logout(context.Background()), "logging out without a session is a no-op")
}

func TestHTTPErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name:     "error and details",
			err:      &HTTPError{StatusCode: 400, Status: "400 Bad Request", Body: []byte(`{"error":"bad address","details":"not base58"}`)},
			expected: "HTTP 400: bad address - not base58",
		},
		{
			name:     "error only",
			err:      &HTTPError{StatusCode: 403, Status: "403 Forbidden", Body: []byte(`{"error":"banned"}`)},
			expected: "HTTP 403: banned",
		},
		{
			name:     "plain body",
			err:      &HTTPError{StatusCode: 502, Status: "502 Bad Gateway", Body: []byte("upstream down")},
			expected: "HTTP 502: 502 Bad Gateway - upstream down",
		},
		{
			name:     "empty body",
			err:      &HTTPError{StatusCode: 500, Status: "500 Internal Server Error"},
			expected: "HTTP 500: 500 Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
	assert.True(t, (&HTTPError{StatusCode: http.StatusForbidden}).IsForbidden())
}
