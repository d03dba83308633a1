package model

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
	DeviceBusy    = "busy"
)

type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	DeviceID  string    `json:"deviceId"`
	Status    string    `json:"status"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	MessagePending   = "pending"
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageFailed    = "failed"
)

const (
	MessageInbound  = "inbound"
	MessageOutbound = "outbound"
)

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Recipient string    `json:"recipient"`
	DeviceID  string    `json:"deviceId"`
	Status    string    `json:"status"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIKey is a gateway device credential. Key carries the full secret only
// in the generate response; list responses may truncate it server-side.
type APIKey struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Active    bool      `json:"active"`
	DeviceID  string    `json:"deviceId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats is a read-time aggregate, consistent only as of the moment the
// composite fetch completed.
type Stats struct {
	Devices        int       `json:"devices"`
	APIKeys        int       `json:"apiKeys"`
	SMSSent        int       `json:"smsSent"`
	SMSReceived    int       `json:"smsReceived"`
	RecentMessages []Message `json:"recentMessages"`
}
