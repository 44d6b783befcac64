// Package filestore keeps the refresh token in a single file, optionally
// sealed with NaCl secretbox.
package filestore

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jrsteele09/go-task-client/token/refresh"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	FileName     = "refresh_token"
	sealedPrefix = "sealed:"
	nonceLength  = 24
)

var ErrSealedNoKey = errors.New("refresh token is sealed but no key is configured")

var _ refresh.Repo = (*Store)(nil)

type Store struct {
	path string
	key  *[32]byte
	mu   sync.Mutex
}

// New stores the token at dir/refresh_token. A non-nil key must be 32 bytes
// and enables sealing.
func New(dir string, key []byte) (*Store, error) {
	s := &Store{path: filepath.Join(dir, FileName)}
	if key != nil {
		if len(key) != 32 {
			return nil, fmt.Errorf("[filestore.New] key must be 32 bytes, got %d", len(key))
		}
		s.key = new([32]byte)
		copy(s.key[:], key)
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Upsert(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.encode(token)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("[filestore.Upsert] mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("[filestore.Upsert] create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.Upsert] chmod: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.Upsert] write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore.Upsert] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore.Upsert] rename: %w", err)
	}
	return nil
}

func (s *Store) Get() (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore.Get] read: %w", err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	token, err := s.decode(content)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("[filestore.Delete] remove: %w", err)
	}
	return nil
}

func (s *Store) encode(token string) (string, error) {
	if s.key == nil {
		return token, nil
	}
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("[filestore.encode] nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(token), &nonce, s.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (s *Store) decode(content string) (string, error) {
	if !strings.HasPrefix(content, sealedPrefix) {
		return content, nil
	}
	if s.key == nil {
		return "", ErrSealedNoKey
	}
	sealed, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(content, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("[filestore.decode] base64: %w", err)
	}
	if len(sealed) < nonceLength+secretbox.Overhead {
		return "", errors.New("[filestore.decode] sealed token is truncated")
	}
	var nonce [nonceLength]byte
	copy(nonce[:], sealed[:nonceLength])
	opened, ok := secretbox.Open(nil, sealed[nonceLength:], &nonce, s.key)
	if !ok {
		return "", errors.New("[filestore.decode] sealed token does not open with the configured key")
	}
	return string(opened), nil
}
