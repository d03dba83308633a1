package api

import (
	"context"

	"smsbridge/internal/model"
)

type DeviceAPI struct {
	client *Client
}

func NewDeviceAPI(client *Client) *DeviceAPI {
	return &DeviceAPI{client: client}
}

func (d *DeviceAPI) List(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := d.client.Get(ctx, "/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

type DeviceRequest struct {
	Name     string `json:"name"`
	DeviceID string `json:"deviceId,omitempty"`
}

func (d *DeviceAPI) Add(ctx context.Context, req DeviceRequest) (*model.Device, error) {
	var device model.Device
	if err := d.client.Post(ctx, "/devices", req, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

func (d *DeviceAPI) Update(ctx context.Context, id string, req DeviceRequest) (*model.Device, error) {
	var device model.Device
	if err := d.client.Put(ctx, "/devices/"+id, req, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

func (d *DeviceAPI) Delete(ctx context.Context, id string) error {
	return d.client.Delete(ctx, "/devices/"+id)
}

func (d *DeviceAPI) UpdateStatus(ctx context.Context, id, status string) error {
	return d.client.Put(ctx, "/devices/"+id+"/status", map[string]string{"status": status}, nil)
}

func (d *DeviceAPI) Heartbeat(ctx context.Context, id string) error {
	return d.client.Post(ctx, "/devices/"+id+"/heartbeat", nil, nil)
}

func (d *DeviceAPI) Keys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := d.client.Get(ctx, "/devices/api-keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// GenerateKey mints a new API key. The full secret is visible only in this
// response.
func (d *DeviceAPI) GenerateKey(ctx context.Context) (*model.APIKey, error) {
	var key model.APIKey
	if err := d.client.Post(ctx, "/devices/generate-key", nil, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

func (d *DeviceAPI) RevokeKey(ctx context.Context, keyID string) error {
	return d.client.Post(ctx, "/devices/revoke-key", map[string]string{"keyId": keyID}, nil)
}
