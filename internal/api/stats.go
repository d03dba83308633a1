package api

import (
	"context"
	"sync"

	"smsbridge/internal/model"
)

const recentMessageCount = 10

// StatsAPI derives dashboard counts from the message, device and key lists.
// The three fetches run concurrently; the aggregate is consistent only as
// of the moment they all complete.
type StatsAPI struct {
	messages *MessageAPI
	devices  *DeviceAPI
}

func NewStatsAPI(messages *MessageAPI, devices *DeviceAPI) *StatsAPI {
	return &StatsAPI{messages: messages, devices: devices}
}

func (s *StatsAPI) Get(ctx context.Context) (*model.Stats, error) {
	var (
		wg       sync.WaitGroup
		messages []model.Message
		devices  []model.Device
		keys     []model.APIKey
		errs     [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		messages, errs[0] = s.messages.List(ctx)
	}()
	go func() {
		defer wg.Done()
		devices, errs[1] = s.devices.List(ctx)
	}()
	go func() {
		defer wg.Done()
		keys, errs[2] = s.devices.Keys(ctx)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return Aggregate(messages, devices, keys), nil
}

// Aggregate computes the stats snapshot from already-fetched collections.
func Aggregate(messages []model.Message, devices []model.Device, keys []model.APIKey) *model.Stats {
	stats := &model.Stats{
		Devices: len(devices),
		APIKeys: len(keys),
	}
	for _, m := range messages {
		switch m.Type {
		case model.MessageOutbound:
			stats.SMSSent++
		case model.MessageInbound:
			stats.SMSReceived++
		}
	}
	recent := messages
	if len(recent) > recentMessageCount {
		recent = recent[:recentMessageCount]
	}
	stats.RecentMessages = append([]model.Message(nil), recent...)
	return stats
}
