package api

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"smsbridge/internal/model"
	"smsbridge/internal/phone"
)

// MessageAPI sends and manages SMS messages. Outbound sends pass through a
// rate limiter so a batch cannot flood the gateway device.
type MessageAPI struct {
	client  *Client
	limiter *rate.Limiter
}

func NewMessageAPI(client *Client, sendRate float64, sendBurst int) *MessageAPI {
	if sendRate <= 0 {
		sendRate = 5
	}
	if sendBurst <= 0 {
		sendBurst = 10
	}
	return &MessageAPI{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
	}
}

func (m *MessageAPI) List(ctx context.Context) ([]model.Message, error) {
	var messages []model.Message
	if err := m.client.Get(ctx, "/messages", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

type SendRequest struct {
	DeviceID   string   `json:"deviceId"`
	Recipients []string `json:"recipients"`
	Content    string   `json:"content"`
	// ClientRef lets the backend deduplicate a resent request.
	ClientRef string `json:"clientRef,omitempty"`
}

func (m *MessageAPI) Send(ctx context.Context, req SendRequest) (*model.Message, error) {
	if len(req.Recipients) == 0 || !phone.ValidateNumbers(req.Recipients) {
		return nil, &Error{Category: CategoryValidation, Message: "invalid recipient number"}
	}
	if req.ClientRef == "" {
		req.ClientRef = uuid.NewString()
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var msg model.Message
	if err := m.client.Post(ctx, "/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *MessageAPI) SendBatch(ctx context.Context, reqs []SendRequest) ([]model.Message, error) {
	for i := range reqs {
		if len(reqs[i].Recipients) == 0 || !phone.ValidateNumbers(reqs[i].Recipients) {
			return nil, &Error{Category: CategoryValidation, Message: "invalid recipient number"}
		}
		if reqs[i].ClientRef == "" {
			reqs[i].ClientRef = uuid.NewString()
		}
	}
	if err := m.limiter.WaitN(ctx, len(reqs)); err != nil {
		return nil, err
	}

	var messages []model.Message
	if err := m.client.Post(ctx, "/messages/batch", map[string]any{"messages": reqs}, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (m *MessageAPI) UpdateStatus(ctx context.Context, id, status string) (*model.Message, error) {
	var msg model.Message
	if err := m.client.Put(ctx, "/messages/"+id+"/status", map[string]string{"status": status}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (m *MessageAPI) Delete(ctx context.Context, id string) error {
	return m.client.Delete(ctx, "/messages/"+id)
}

// Sync uploads messages a gateway device collected while offline and
// returns the reconciled records.
func (m *MessageAPI) Sync(ctx context.Context, messages []model.Message) ([]model.Message, error) {
	var synced []model.Message
	if err := m.client.Post(ctx, "/messages/sync", map[string]any{"messages": messages}, &synced); err != nil {
		return nil, err
	}
	return synced, nil
}
