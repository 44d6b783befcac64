package refresh

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-task-client/internal/utils"
	"github.com/rs/zerolog/log"
)

var ErrEmptyToken = errors.New("refresh token is empty")

// Manager is the persistent token holder: save, read, clear and rotate the
// refresh token on top of a Repo.
type Manager struct {
	repo Repo
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo) *Manager {
	return &Manager{
		repo: repo,
	}
}

// Save replaces the stored refresh token
func (m *Manager) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	if err := m.repo.Upsert(token); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	log.Debug().Msg("Refresh token stored")
	return nil
}

// Read returns the stored refresh token, or nil when there is none
func (m *Manager) Read() (*string, error) {
	token, err := m.repo.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if token == nil || *token == "" {
		return nil, nil
	}
	return token, nil
}

// Clear removes the stored refresh token
func (m *Manager) Clear() error {
	if err := m.repo.Delete(); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	log.Debug().Msg("Refresh token cleared")
	return nil
}

// Rotate stores next when the server issued a new refresh token. A nil or
// empty next keeps the current token.
func (m *Manager) Rotate(next *string) error {
	token := utils.Value(next)
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return m.Save(token)
}
