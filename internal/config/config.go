package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL     string
	RealtimeURL    string
	SessionFile    string
	Email          string
	Password       string
	StatusPort     int
	ReconnectDelay time.Duration
	MaxBackoff     time.Duration
	RequestTimeout time.Duration
	SendRate       float64
	SendBurst      int
	LogLevel       string
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		SessionFile:    "smsbridge-session.json",
		StatusPort:     8090,
		ReconnectDelay: 5 * time.Second,
		RequestTimeout: 30 * time.Second,
		SendRate:       5,
		SendBurst:      10,
		LogLevel:       "info",
	}

	cfg.APIBaseURL = env.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}

	cfg.RealtimeURL = env.Getenv("REALTIME_URL")
	if cfg.RealtimeURL == "" {
		derived, err := realtimeURLFromAPI(cfg.APIBaseURL)
		if err != nil {
			return Config{}, fmt.Errorf("derive realtime url: %w", err)
		}
		cfg.RealtimeURL = derived
	}

	cfg.Email = env.Getenv("BRIDGE_EMAIL")
	cfg.Password = env.Getenv("BRIDGE_PASSWORD")

	if raw := env.Getenv("SESSION_FILE"); raw != "" {
		cfg.SessionFile = raw
	}

	if raw := env.Getenv("STATUS_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid STATUS_PORT")
		}
		cfg.StatusPort = port
	}

	if raw := env.Getenv("RECONNECT_DELAY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid RECONNECT_DELAY_SECONDS")
		}
		cfg.ReconnectDelay = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("RECONNECT_MAX_BACKOFF_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid RECONNECT_MAX_BACKOFF_SECONDS")
		}
		cfg.MaxBackoff = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("REQUEST_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS")
		}
		cfg.RequestTimeout = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("SEND_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate <= 0 {
			return Config{}, fmt.Errorf("invalid SEND_RATE")
		}
		cfg.SendRate = rate
	}

	if raw := env.Getenv("SEND_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil || burst <= 0 {
			return Config{}, fmt.Errorf("invalid SEND_BURST")
		}
		cfg.SendBurst = burst
	}

	if raw := env.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	return cfg, nil
}

// realtimeURLFromAPI maps the REST base URL onto the websocket endpoint at
// the root of the same host (http -> ws, https -> wss).
func realtimeURLFromAPI(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/"
	u.RawQuery = ""
	return u.String(), nil
}
