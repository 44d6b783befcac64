package refreshrepofake

import (
	"sync"

	"github.com/jrsteele09/go-task-client/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	token *string
	lock  sync.RWMutex

	// Err, when set, is returned from every call
	Err error
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{}
}

func (tr *FakeRefreshTokenRepo) Upsert(token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.Err != nil {
		return tr.Err
	}
	tr.token = &token
	return nil
}

func (tr *FakeRefreshTokenRepo) Get() (*string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	if tr.Err != nil {
		return nil, tr.Err
	}
	if tr.token == nil {
		return nil, nil
	}
	token := *tr.token
	return &token, nil
}

func (tr *FakeRefreshTokenRepo) Delete() error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if tr.Err != nil {
		return tr.Err
	}
	tr.token = nil
	return nil
}

// Value returns the stored token or "" (test helper)
func (tr *FakeRefreshTokenRepo) Value() string {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	if tr.token == nil {
		return ""
	}
	return *tr.token
}
