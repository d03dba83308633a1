package state

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"smsbridge/internal/realtime"
)

// Manager ties the stores together: one parallel initial load and one
// subscription that routes realtime events to the right store.
type Manager struct {
	Devices  *Devices
	Keys     *Keys
	Messages *Messages
	Stats    *Stats
	log      zerolog.Logger
}

func NewManager(devices *Devices, keys *Keys, messages *Messages, stats *Stats, log zerolog.Logger) *Manager {
	return &Manager{
		Devices:  devices,
		Keys:     keys,
		Messages: messages,
		Stats:    stats,
		log:      log,
	}
}

// LoadInitial fetches all collections concurrently. Order between the
// fetches does not matter, so they run as a plain wait-for-all join.
func (m *Manager) LoadInitial(ctx context.Context) error {
	loads := []func(context.Context) error{
		m.Devices.Load,
		m.Keys.Load,
		m.Messages.Load,
		m.Stats.Refresh,
	}

	var wg sync.WaitGroup
	errs := make([]error, len(loads))
	for i, load := range loads {
		wg.Add(1)
		go func(i int, load func(context.Context) error) {
			defer wg.Done()
			errs[i] = load(ctx)
		}(i, load)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Subscribe registers the manager on the realtime client and returns the
// deregistration func.
func (m *Manager) Subscribe(rt *realtime.Client) func() {
	return rt.OnMessage(m.Apply)
}

func (m *Manager) Apply(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventDeviceStatus:
		m.Devices.SetStatus(ev.DeviceID, ev.Status)
	case realtime.EventMessageStatus:
		m.Messages.SetStatus(ev.MessageID, ev.Status)
	case realtime.EventNewMessage:
		if ev.Message == nil {
			m.log.Warn().Msg("new-message event without message payload")
			return
		}
		m.Messages.Upsert(*ev.Message)
	default:
		m.log.Debug().Str("type", string(ev.Type)).Msg("ignoring unknown event type")
	}
}

// Reset clears every store, typically on logout.
func (m *Manager) Reset() {
	m.Devices.Reset()
	m.Keys.Reset()
	m.Messages.Reset()
	m.Stats.Reset()
}
