// Package api talks to the SMSBridge backend REST API. Client owns the
// request pipeline: bearer injection from the session store, body unwrap on
// 2xx and status-to-category error mapping on everything else. The domain
// facades (AuthAPI, DeviceAPI, MessageAPI, StatsAPI) compose it into typed
// operations.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"smsbridge/internal/session"
)

// Recorder receives one outcome per completed request: "ok" or the error
// category.
type Recorder interface {
	RecordRequest(outcome string)
}

type Client struct {
	baseURL string
	session *session.Store
	http    *http.Client
	log     zerolog.Logger
	metrics Recorder
}

type Config struct {
	BaseURL string
	Session *session.Store
	Timeout time.Duration
	Logger  zerolog.Logger
	Metrics Recorder
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("Session is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		session: cfg.Session,
		http:    httpClient,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

type serverError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(string(CategoryNetwork))
		return &Error{Category: CategoryNetwork, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(string(CategoryNetwork))
		return &Error{Category: CategoryNetwork, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.record("ok")
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}
		return nil
	}

	apiErr := &Error{
		Category: categoryForStatus(resp.StatusCode),
		Status:   resp.StatusCode,
		Message:  serverMessage(data),
	}
	c.record(string(apiErr.Category))

	// A rejected token means the stored session is dead, whatever request
	// surfaced it.
	if apiErr.Category == CategorySessionInvalid {
		if err := c.session.Clear(); err != nil {
			c.log.Warn().Err(err).Msg("clear session after 401")
		}
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("category", string(apiErr.Category)).
		Msg("request failed")

	return apiErr
}

func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var se serverError
	if err := json.Unmarshal(body, &se); err != nil {
		return ""
	}
	if se.Message != "" {
		return se.Message
	}
	return se.Error
}

func (c *Client) record(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordRequest(outcome)
	}
}
