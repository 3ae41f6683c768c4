package fakecoderepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-authcode-server/auth/codes"
	"github.com/jrsteele09/go-authcode-server/internal/errors"
)

var _ codes.Repo = (*FakeCodeRepo)(nil)

type FakeCodeRepo struct {
	codes map[string]codes.AuthorizationCode
	lock  sync.RWMutex
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{
		codes: make(map[string]codes.AuthorizationCode),
	}
}

func (r *FakeCodeRepo) Set(_ context.Context, code *codes.AuthorizationCode) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.codes[code.Code] = *code
	return nil
}

func (r *FakeCodeRepo) Get(_ context.Context, code string) (*codes.AuthorizationCode, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &c, nil
}

func (r *FakeCodeRepo) Delete(_ context.Context, code string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.codes[code]; !ok {
		return errors.ErrNotFound
	}
	delete(r.codes, code)
	return nil
}

// Len returns the number of stored codes.
func (r *FakeCodeRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.codes)
}
