package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sigweihq/pulsewallet/pkg/constants"
)

// ErrNotFound is returned by a Backend when the key holds no value
var ErrNotFound = errors.New("storage: key not found")

// Backend is durable key/value storage for the client
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Selection is the persisted record of the last selected wallet
type Selection struct {
	WalletName string `json:"walletName"`
	Timestamp  int64  `json:"timestamp"` // unix milliseconds
}

// WalletStorage persists the wallet selection. Every operation is best-effort:
// failures are logged and never returned. A nil backend disables persistence.
type WalletStorage struct {
	backend Backend
	key     string
	logger  *slog.Logger
	now     func() time.Time
}

// NewWalletStorage creates a storage helper; an empty key uses constants.DefaultStorageKey
func NewWalletStorage(backend Backend, key string, logger *slog.Logger) *WalletStorage {
	if key == "" {
		key = constants.DefaultStorageKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WalletStorage{
		backend: backend,
		key:     key,
		logger:  logger,
		now:     time.Now,
	}
}

// Key returns the storage key in use
func (s *WalletStorage) Key() string {
	return s.key
}

// GetSelection returns the persisted record, treating unreadable data as absent
func (s *WalletStorage) GetSelection() (*Selection, bool) {
	if s.backend == nil {
		return nil, false
	}

	raw, err := s.backend.Get(s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to read wallet selection", "key", s.key, "error", err)
		}
		return nil, false
	}

	var selection Selection
	if err := json.Unmarshal(raw, &selection); err != nil {
		s.logger.Warn("ignoring corrupt wallet selection", "key", s.key, "error", err)
		return nil, false
	}
	if selection.WalletName == "" {
		return nil, false
	}
	return &selection, true
}

// GetSelectedWallet returns the last persisted wallet name
func (s *WalletStorage) GetSelectedWallet() (string, bool) {
	selection, ok := s.GetSelection()
	if !ok {
		return "", false
	}
	return selection.WalletName, true
}

// SetSelectedWallet persists name with the current timestamp
func (s *WalletStorage) SetSelectedWallet(name string) {
	if s.backend == nil {
		return
	}

	raw, err := json.Marshal(Selection{
		WalletName: name,
		Timestamp:  s.now().UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("failed to encode wallet selection", "wallet", name, "error", err)
		return
	}

	if err := s.backend.Put(s.key, raw); err != nil {
		s.logger.Warn("failed to persist wallet selection", "wallet", name, "error", err)
	}
}

// ClearSelectedWallet removes the persisted selection
func (s *WalletStorage) ClearSelectedWallet() {
	if s.backend == nil {
		return
	}
	if err := s.backend.Delete(s.key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("failed to clear wallet selection", "key", s.key, "error", err)
	}
}

// ShouldAutoConnect reports whether a selection is persisted
func (s *WalletStorage) ShouldAutoConnect() bool {
	_, ok := s.GetSelectedWallet()
	return ok
}

// keyError wraps a backend failure with the key involved
func keyError(op, key string, err error) error {
	return fmt.Errorf("storage %s %q: %w", op, key, err)
}
