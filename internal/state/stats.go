package state

import (
	"context"
	"sync"

	"smsbridge/internal/model"
)

type statsService interface {
	Get(ctx context.Context) (*model.Stats, error)
}

type Stats struct {
	mu      sync.RWMutex
	svc     statsService
	epoch   int
	current *model.Stats
}

func NewStats(svc statsService) *Stats {
	return &Stats{svc: svc}
}

func (s *Stats) Refresh(ctx context.Context) error {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	stats, err := s.svc.Get(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.current = stats
	return nil
}

func (s *Stats) Current() *model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	c.RecentMessages = append([]model.Message(nil), s.current.RecentMessages...)
	return &c
}

func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.current = nil
}
