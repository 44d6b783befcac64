package config

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	tokenStoreVar = "TASKS_TOKEN_STORE"
	tokenKeyVar   = "TASKS_TOKEN_KEY"
)

// TokenStoreKind selects the durable backend for the refresh token.
type TokenStoreKind string

const (
	TokenStoreFile   TokenStoreKind = "file"
	TokenStoreSQLite TokenStoreKind = "sqlite"
)

type Storage struct {
	tokenStore TokenStoreKind
	tokenKey   string
}

var _ StorageConfig = Storage{}

func newStorage() Storage {
	return Storage{
		tokenStore: TokenStoreKind(strings.ToLower(GetEnv(tokenStoreVar, string(TokenStoreFile)))),
		tokenKey:   GetEnv(tokenKeyVar, ""),
	}
}

func (s Storage) GetTokenStore() TokenStoreKind {
	return s.tokenStore
}

// GetTokenKey returns the 32 byte key used to seal the refresh token at rest,
// or nil when sealing is disabled.
func (s Storage) GetTokenKey() ([]byte, error) {
	if s.tokenKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.tokenKey)
	if err != nil {
		return nil, fmt.Errorf("%s is not hex: %w", tokenKeyVar, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", tokenKeyVar, len(key))
	}
	return key, nil
}
