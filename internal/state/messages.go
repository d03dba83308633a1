package state

import (
	"context"
	"sync"

	"smsbridge/internal/api"
	"smsbridge/internal/model"
)

type messageService interface {
	List(ctx context.Context) ([]model.Message, error)
	Send(ctx context.Context, req api.SendRequest) (*model.Message, error)
	SendBatch(ctx context.Context, reqs []api.SendRequest) ([]model.Message, error)
	Delete(ctx context.Context, id string) error
}

type Messages struct {
	mu    sync.RWMutex
	svc   messageService
	epoch int
	list  []model.Message
}

func NewMessages(svc messageService) *Messages {
	return &Messages{svc: svc}
}

func (m *Messages) Load(ctx context.Context) error {
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	list, err := m.svc.List(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return nil
	}
	m.list = list
	return nil
}

func (m *Messages) List() []model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Message(nil), m.list...)
}

func (m *Messages) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.list)
}

func (m *Messages) Send(ctx context.Context, req api.SendRequest) (*model.Message, error) {
	msg, err := m.svc.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	m.Upsert(*msg)
	return msg, nil
}

func (m *Messages) SendBatch(ctx context.Context, reqs []api.SendRequest) ([]model.Message, error) {
	msgs, err := m.svc.SendBatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	for _, msg := range msgs {
		m.Upsert(msg)
	}
	return msgs, nil
}

func (m *Messages) Delete(ctx context.Context, id string) error {
	if err := m.svc.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	for i := range m.list {
		if m.list[i].ID == id {
			m.list = append(m.list[:i], m.list[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	return nil
}

// Upsert prepends a new message or replaces an existing one with the same
// id, so a NEW_MESSAGE push for an already-known record is idempotent.
func (m *Messages) Upsert(msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == msg.ID {
			m.list[i] = msg
			return
		}
	}
	m.list = append([]model.Message{msg}, m.list...)
}

func (m *Messages) SetStatus(messageID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.list {
		if m.list[i].ID == messageID {
			m.list[i].Status = status
			return
		}
	}
}

func (m *Messages) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.list = nil
}
