// Package client holds the HTTP adapters for the generation upstreams. The
// generators take bare JSON posts without the gateway's API key, so they do
// not share the gateway client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
)

const maxResponseBytes = 1 << 20

// InitializerConfig holds the series generator settings.
type InitializerConfig struct {
	URL     string
	Timeout time.Duration
}

const defaultInitializeTimeout = 30 * time.Second

// Initializer submits series generation requests.
type Initializer struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

// NewInitializer constructs an Initializer instance.
func NewInitializer(cfg InitializerConfig, logger *zap.Logger) *Initializer {
	if cfg.URL == "" {
		panic("initializer URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultInitializeTimeout
	}
	return &Initializer{
		url:    cfg.URL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Initialize posts the payload and decodes the generator's envelope. The
// envelope's statusCode field, not the transport status, tells the workflow
// what happened, so the body is decoded regardless of the HTTP status.
func (c *Initializer) Initialize(ctx context.Context, payload map[string]any) (service.Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return service.Envelope{}, fmt.Errorf("encode initialize payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return service.Envelope{}, fmt.Errorf("build initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return service.Envelope{}, fmt.Errorf("call series generator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return service.Envelope{}, fmt.Errorf("read series generator response: %w", err)
	}

	var env service.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("series generator returned a non-envelope body",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return service.Envelope{}, fmt.Errorf("decode series generator envelope: %w", err)
	}
	return env, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

var _ service.Initializer = (*Initializer)(nil)
