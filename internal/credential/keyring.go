// Package credential stores the optional ranking service token.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "onetask"

	// TokenKey is the keyring item holding the ranking service token.
	TokenKey = "ranking-api-token"

	// TokenEnv overrides the keyring when set.
	TokenEnv = "ONETASK_API_TOKEN"
)

// Vault reads and writes the API token.
type Vault struct {
	open   func() (keyring.Keyring, error)
	getenv func(string) string
}

// NewVault returns a vault backed by the system keyring.
func NewVault() *Vault {
	return &Vault{open: openKeyring, getenv: os.Getenv}
}

// NewVaultWith returns a vault over an existing keyring, ignoring the
// environment.
func NewVaultWith(ring keyring.Keyring) *Vault {
	return &Vault{
		open:   func() (keyring.Keyring, error) { return ring, nil },
		getenv: func(string) string { return "" },
	}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	dir := "~/.config/onetask/credentials"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".config", "onetask", "credentials")
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("onetask-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// APIToken returns the token from the environment or the keyring. A missing
// token is not an error and yields "".
func (v *Vault) APIToken() (string, error) {
	if tok := strings.TrimSpace(v.getenv(TokenEnv)); tok != "" {
		return tok, nil
	}

	ring, err := v.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}

	return string(item.Data), nil
}

// SetAPIToken stores the token in the keyring.
func (v *Vault) SetAPIToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}

	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         TokenKey,
		Data:        []byte(token),
		Label:       "onetask ranking service token",
		Description: "Bearer token sent to the task ranking service",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}

	return nil
}

// ClearAPIToken removes the token. Clearing an absent token is not an error.
func (v *Vault) ClearAPIToken() error {
	ring, err := v.open()
	if err != nil {
		return err
	}

	err = ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}

	return nil
}
