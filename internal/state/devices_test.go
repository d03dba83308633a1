package state

import (
	"context"
	"testing"

	"smsbridge/internal/api"
	"smsbridge/internal/model"
)

func TestDevices_AddUpdateDelete(t *testing.T) {
	svc := &stubDeviceService{}
	d := NewDevices(svc)

	device, err := d.Add(context.Background(), api.DeviceRequest{Name: "phone", DeviceID: "gw-9"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if d.Count() != 1 {
		t.Fatalf("expected 1 device, got %d", d.Count())
	}

	if _, err := d.Update(context.Background(), device.ID, api.DeviceRequest{Name: "renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := d.List()[0].Name; got != "renamed" {
		t.Fatalf("expected renamed, got %q", got)
	}

	if err := d.Delete(context.Background(), device.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if d.Count() != 0 {
		t.Fatalf("expected empty list, got %d", d.Count())
	}
}

func TestDevices_SetStatusMatchesGatewayID(t *testing.T) {
	svc := &stubDeviceService{devices: []model.Device{
		{ID: "1", DeviceID: "gw-1", Status: model.DeviceOffline},
		{ID: "2", DeviceID: "gw-2", Status: model.DeviceOffline},
	}}
	d := NewDevices(svc)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	d.SetStatus("gw-2", model.DeviceBusy)

	list := d.List()
	if list[0].Status != model.DeviceOffline || list[1].Status != model.DeviceBusy {
		t.Fatalf("unexpected statuses %+v", list)
	}
}

func TestDevices_SetStatusUnknownDeviceIsNoOp(t *testing.T) {
	d := NewDevices(&stubDeviceService{})
	d.SetStatus("nope", model.DeviceOnline)
	if d.Count() != 0 {
		t.Fatalf("unexpected device appeared")
	}
}

func TestDevices_ListReturnsCopy(t *testing.T) {
	svc := &stubDeviceService{devices: []model.Device{{ID: "1", Status: model.DeviceOffline}}}
	d := NewDevices(svc)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	list := d.List()
	list[0].Status = model.DeviceOnline

	if d.List()[0].Status != model.DeviceOffline {
		t.Fatalf("mutating the returned slice leaked into the store")
	}
}
