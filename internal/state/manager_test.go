package state

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"smsbridge/internal/api"
	"smsbridge/internal/model"
	"smsbridge/internal/realtime"
)

type stubDeviceService struct {
	devices []model.Device
	listErr error
}

func (s *stubDeviceService) List(ctx context.Context) ([]model.Device, error) {
	return s.devices, s.listErr
}

func (s *stubDeviceService) Add(ctx context.Context, req api.DeviceRequest) (*model.Device, error) {
	d := model.Device{ID: "new", Name: req.Name, DeviceID: req.DeviceID, Status: model.DeviceOffline}
	return &d, nil
}

func (s *stubDeviceService) Update(ctx context.Context, id string, req api.DeviceRequest) (*model.Device, error) {
	return &model.Device{ID: id, Name: req.Name}, nil
}

func (s *stubDeviceService) Delete(ctx context.Context, id string) error { return nil }

type stubMessageService struct {
	messages []model.Message
	listErr  error
}

func (s *stubMessageService) List(ctx context.Context) ([]model.Message, error) {
	return s.messages, s.listErr
}

func (s *stubMessageService) Send(ctx context.Context, req api.SendRequest) (*model.Message, error) {
	return &model.Message{ID: "sent", Content: req.Content, Status: model.MessagePending, Type: model.MessageOutbound}, nil
}

func (s *stubMessageService) SendBatch(ctx context.Context, reqs []api.SendRequest) ([]model.Message, error) {
	return nil, errors.New("unused")
}

func (s *stubMessageService) Delete(ctx context.Context, id string) error { return nil }

type stubStatsService struct {
	stats *model.Stats
	err   error
}

func (s *stubStatsService) Get(ctx context.Context) (*model.Stats, error) {
	return s.stats, s.err
}

func testManager() (*Manager, *stubDeviceService, *stubKeyService, *stubMessageService) {
	devSvc := &stubDeviceService{devices: []model.Device{
		{ID: "1", DeviceID: "gw-1", Status: model.DeviceOffline},
	}}
	keySvc := &stubKeyService{keys: []model.APIKey{{ID: "k1", Active: true}}}
	msgSvc := &stubMessageService{messages: []model.Message{
		{ID: "m1", Status: model.MessageSent, Type: model.MessageOutbound},
	}}
	statsSvc := &stubStatsService{stats: &model.Stats{Devices: 1}}

	mgr := NewManager(
		NewDevices(devSvc),
		NewKeys(keySvc),
		NewMessages(msgSvc),
		NewStats(statsSvc),
		zerolog.Nop(),
	)
	return mgr, devSvc, keySvc, msgSvc
}

func TestManager_LoadInitial(t *testing.T) {
	mgr, _, _, _ := testManager()
	if err := mgr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if mgr.Devices.Count() != 1 || mgr.Keys.Count() != 1 || mgr.Messages.Count() != 1 {
		t.Fatalf("unexpected counts after load")
	}
	if mgr.Stats.Current() == nil {
		t.Fatalf("expected stats snapshot")
	}
}

func TestManager_LoadInitial_SurfacesError(t *testing.T) {
	mgr, devSvc, _, _ := testManager()
	devSvc.listErr = errors.New("boom")
	if err := mgr.LoadInitial(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestManager_ApplyDeviceStatus(t *testing.T) {
	mgr, _, _, _ := testManager()
	if err := mgr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	mgr.Apply(realtime.Event{Type: realtime.EventDeviceStatus, DeviceID: "gw-1", Status: model.DeviceOnline})

	devices := mgr.Devices.List()
	if devices[0].Status != model.DeviceOnline {
		t.Fatalf("expected device online, got %q", devices[0].Status)
	}
}

func TestManager_ApplyMessageStatus(t *testing.T) {
	mgr, _, _, _ := testManager()
	if err := mgr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	mgr.Apply(realtime.Event{Type: realtime.EventMessageStatus, MessageID: "m1", Status: model.MessageDelivered})

	messages := mgr.Messages.List()
	if messages[0].Status != model.MessageDelivered {
		t.Fatalf("expected delivered, got %q", messages[0].Status)
	}
}

func TestManager_ApplyNewMessage(t *testing.T) {
	mgr, _, _, _ := testManager()
	if err := mgr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	inbound := model.Message{ID: "m2", Content: "hello", Type: model.MessageInbound}
	mgr.Apply(realtime.Event{Type: realtime.EventNewMessage, Message: &inbound})

	messages := mgr.Messages.List()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].ID != "m2" {
		t.Fatalf("expected new message first, got %q", messages[0].ID)
	}

	// A repeated push for the same id must not duplicate the record.
	mgr.Apply(realtime.Event{Type: realtime.EventNewMessage, Message: &inbound})
	if got := mgr.Messages.Count(); got != 2 {
		t.Fatalf("expected upsert to dedupe, got %d", got)
	}
}

func TestManager_ResetClearsEverything(t *testing.T) {
	mgr, _, _, _ := testManager()
	if err := mgr.LoadInitial(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	mgr.Reset()
	if mgr.Devices.Count() != 0 || mgr.Keys.Count() != 0 || mgr.Messages.Count() != 0 {
		t.Fatalf("expected empty stores after reset")
	}
	if mgr.Stats.Current() != nil {
		t.Fatalf("expected no stats after reset")
	}
}
