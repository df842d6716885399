package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/netvigil/netvigil/internal/registry"
)

// Notifier delivers a payload to a push endpoint. Delivery is best-effort:
// a non-nil error is logged by the caller, never treated as fatal.
type Notifier interface {
	Send(ctx context.Context, p Payload) error
}

// BarkClient sends notifications through a Bark server using the v2 GET API:
// {base}/{key}/{title}/{body}?level=…&sound=….
type BarkClient struct {
	baseURL string
	key     string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewBarkClient creates a client for the given endpoint and device key.
// Sends are rate limited to smooth out bursts when many devices change state
// in a single cycle.
func NewBarkClient(baseURL, key string, logger *zap.Logger) *BarkClient {
	return &BarkClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
	}
}

// Send delivers the payload. It blocks on the rate limiter (bounded by ctx)
// and returns an error for transport failures or non-200 responses.
func (c *BarkClient) Send(ctx context.Context, p Payload) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/%s/%s/%s",
		c.baseURL, url.PathEscape(c.key), url.PathEscape(p.Title), url.PathEscape(p.Body))
	if q := levelParams(p.Priority).Encode(); q != "" {
		u += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build bark request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bark request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bark responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	c.logger.Debug("bark notification delivered", zap.String("title", p.Title))
	return nil
}

// levelParams encodes a priority as Bark API query parameters. Canonical
// mapping: silent is passive with the silent sound, normal sends no level
// parameter so the server default sound applies, active (and its legacy
// "vibrate" spelling) maps to level=active, timeSensitive to
// level=timeSensitive.
func levelParams(p registry.Priority) url.Values {
	v := url.Values{}
	switch p {
	case registry.PrioritySilent:
		v.Set("level", "passive")
		v.Set("sound", "silent")
	case registry.PriorityActive:
		v.Set("level", "active")
	case registry.PriorityTimeSensitive:
		v.Set("level", "timeSensitive")
	}
	return v
}
