// Package state owns the in-memory snapshot of devices, API keys, messages
// and stats for the current session. Stores copy values in from the API
// facades and from realtime events; callers always receive copies back.
package state

import (
	"context"
	"sync"
	"time"

	"smsbridge/internal/api"
	"smsbridge/internal/model"
)

type deviceService interface {
	List(ctx context.Context) ([]model.Device, error)
	Add(ctx context.Context, req api.DeviceRequest) (*model.Device, error)
	Update(ctx context.Context, id string, req api.DeviceRequest) (*model.Device, error)
	Delete(ctx context.Context, id string) error
}

type Devices struct {
	mu    sync.RWMutex
	svc   deviceService
	epoch int
	list  []model.Device
}

func NewDevices(svc deviceService) *Devices {
	return &Devices{svc: svc}
}

// Load replaces the snapshot with the server's view. A Reset issued while
// the fetch was in flight makes the result stale; stale results are
// discarded.
func (d *Devices) Load(ctx context.Context) error {
	d.mu.RLock()
	epoch := d.epoch
	d.mu.RUnlock()

	list, err := d.svc.List(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.epoch != epoch {
		return nil
	}
	d.list = list
	return nil
}

func (d *Devices) List() []model.Device {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.Device(nil), d.list...)
}

func (d *Devices) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.list)
}

func (d *Devices) Add(ctx context.Context, req api.DeviceRequest) (*model.Device, error) {
	device, err := d.svc.Add(ctx, req)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.list = append(d.list, *device)
	d.mu.Unlock()
	return device, nil
}

func (d *Devices) Update(ctx context.Context, id string, req api.DeviceRequest) (*model.Device, error) {
	device, err := d.svc.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	for i := range d.list {
		if d.list[i].ID == id {
			d.list[i] = *device
			break
		}
	}
	d.mu.Unlock()
	return device, nil
}

func (d *Devices) Delete(ctx context.Context, id string) error {
	if err := d.svc.Delete(ctx, id); err != nil {
		return err
	}

	d.mu.Lock()
	for i := range d.list {
		if d.list[i].ID == id {
			d.list = append(d.list[:i], d.list[i+1:]...)
			break
		}
	}
	d.mu.Unlock()
	return nil
}

// SetStatus applies a realtime status change, matching the gateway's
// deviceId first and falling back to the record id.
func (d *Devices) SetStatus(deviceID, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.list {
		if d.list[i].DeviceID == deviceID || d.list[i].ID == deviceID {
			d.list[i].Status = status
			d.list[i].UpdatedAt = time.Now()
			return
		}
	}
}

// Reset drops the snapshot and invalidates any in-flight Load.
func (d *Devices) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	d.list = nil
}
