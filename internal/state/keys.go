package state

import (
	"context"
	"sync"

	"smsbridge/internal/model"
)

type keyService interface {
	Keys(ctx context.Context) ([]model.APIKey, error)
	GenerateKey(ctx context.Context) (*model.APIKey, error)
	RevokeKey(ctx context.Context, keyID string) error
}

type Keys struct {
	mu    sync.RWMutex
	svc   keyService
	epoch int
	list  []model.APIKey
}

func NewKeys(svc keyService) *Keys {
	return &Keys{svc: svc}
}

func (k *Keys) Load(ctx context.Context) error {
	k.mu.RLock()
	epoch := k.epoch
	k.mu.RUnlock()

	list, err := k.svc.Keys(ctx)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.epoch != epoch {
		return nil
	}
	k.list = list
	return nil
}

func (k *Keys) List() []model.APIKey {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]model.APIKey(nil), k.list...)
}

func (k *Keys) Count() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.list)
}

func (k *Keys) Generate(ctx context.Context) (*model.APIKey, error) {
	key, err := k.svc.GenerateKey(ctx)
	if err != nil {
		return nil, err
	}

	k.mu.Lock()
	k.list = append(k.list, *key)
	k.mu.Unlock()
	return key, nil
}

// Revoke marks the key inactive before the backend confirms, so the change
// shows immediately; a failed call restores the prior value.
func (k *Keys) Revoke(ctx context.Context, keyID string) error {
	k.mu.Lock()
	var prev *model.APIKey
	for i := range k.list {
		if k.list[i].ID == keyID {
			p := k.list[i]
			prev = &p
			k.list[i].Active = false
			break
		}
	}
	k.mu.Unlock()

	if err := k.svc.RevokeKey(ctx, keyID); err != nil {
		if prev != nil {
			k.mu.Lock()
			for i := range k.list {
				if k.list[i].ID == keyID {
					k.list[i] = *prev
					break
				}
			}
			k.mu.Unlock()
		}
		return err
	}
	return nil
}

func (k *Keys) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.epoch++
	k.list = nil
}
