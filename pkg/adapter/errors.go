package adapter

import (
	"errors"
	"fmt"

	"github.com/sigweihq/pulsewallet/pkg/constants"
)

// ErrorCode classifies every failure that leaves an adapter or the wallet manager
type ErrorCode string

const (
	ErrUserRejected        ErrorCode = "USER_REJECTED"
	ErrNotInstalled        ErrorCode = "NOT_INSTALLED"
	ErrConnectionFailed    ErrorCode = "CONNECTION_FAILED"
	ErrDisconnectionFailed ErrorCode = "DISCONNECTION_FAILED"
	ErrTransactionFailed   ErrorCode = "TRANSACTION_FAILED"
	ErrSigningFailed       ErrorCode = "SIGNING_FAILED"
	ErrNetworkError        ErrorCode = "NETWORK_ERROR"
	ErrUnknown             ErrorCode = "UNKNOWN_ERROR"
)

// WalletError is the only error type that crosses the adapter boundary
type WalletError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewWalletError creates a wallet error without an underlying cause
func NewWalletError(message string, code ErrorCode) *WalletError {
	return &WalletError{Code: code, Message: message}
}

// WrapWalletError creates a wallet error that keeps err as its cause
func WrapWalletError(err error, code ErrorCode, message string) *WalletError {
	return &WalletError{Code: code, Message: message, Err: err}
}

func (e *WalletError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *WalletError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of the outermost WalletError in err's chain
func CodeOf(err error) ErrorCode {
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr.Code
	}
	return ErrUnknown
}

// IsWalletError reports whether err carries a WalletError with the given code
func IsWalletError(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// ProviderError is the error shape returned by injected wallet providers
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ProviderCode implements providerCoder
func (e *ProviderError) ProviderCode() int {
	return e.Code
}

// ErrProviderRejected is what providers return when the user declines a prompt
var ErrProviderRejected = &ProviderError{Code: constants.UserRejectedCode, Message: "User rejected the request."}

type providerCoder interface {
	ProviderCode() int
}

// isUserRejection reports whether a native provider error signals user cancellation
func isUserRejection(err error) bool {
	var coder providerCoder
	if errors.As(err, &coder) {
		return coder.ProviderCode() == constants.UserRejectedCode
	}
	return false
}

// FromProviderError translates a native provider failure into a WalletError.
// User rejection always wins over fallback; existing WalletErrors pass through.
func FromProviderError(err error, fallback ErrorCode, message string) *WalletError {
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr
	}
	if isUserRejection(err) {
		return WrapWalletError(err, ErrUserRejected, "user rejected the request")
	}
	return WrapWalletError(err, fallback, message)
}
