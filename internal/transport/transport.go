// Package transport is the boundary to the external push gateway. Delivery
// is best-effort, at-least-once; this layer never retries.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"firstcrack/internal/logger"
)

// Surface identifies which platform encoding a payload carries.
type Surface string

const (
	SurfaceAndroid Surface = "android"
	SurfaceIOS     Surface = "ios"
	SurfaceWeb     Surface = "web"
)

// Surfaces lists every delivery surface in send order.
func Surfaces() []Surface {
	return []Surface{SurfaceAndroid, SurfaceIOS, SurfaceWeb}
}

// ErrSendRejected wraps a non-2xx response from the push gateway.
var ErrSendRejected = errors.New("push gateway rejected send")

// Sender delivers one already-encoded payload to one device on one surface.
type Sender interface {
	Send(ctx context.Context, deviceAddress string, surface Surface, payload []byte) error
}

const sendTimeout = 10 * time.Second

// WebhookSender POSTs payloads to a configured push gateway endpoint.
type WebhookSender struct {
	endpoint string
	client   *http.Client
}

func NewWebhookSender(endpoint string) *WebhookSender {
	return &WebhookSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: sendTimeout},
	}
}

func (s *WebhookSender) Send(ctx context.Context, deviceAddress string, surface Surface, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-Address", deviceAddress)
	req.Header.Set("X-Surface", string(surface))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send push to %q: %w", s.endpoint, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrSendRejected, resp.StatusCode)
	}
	return nil
}

// LogSender logs payloads instead of delivering them. Used when no gateway
// endpoint is configured so the demo runs standalone.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender { return &LogSender{log: log} }

func (s *LogSender) Send(_ context.Context, deviceAddress string, surface Surface, payload []byte) error {
	if s.log != nil {
		s.log.Infow("push_send_dropped_no_gateway",
			"device", deviceAddress,
			"surface", surface,
			"bytes", len(payload),
		)
	}
	return nil
}

// NewFromConfig picks the webhook sender when an endpoint is configured and
// the logging sender otherwise.
func NewFromConfig(endpoint string, log *logger.Logger) Sender {
	if endpoint == "" {
		return NewLogSender(log)
	}
	return NewWebhookSender(endpoint)
}
