// internal/adapters/sentiment/client.go
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sentitrip/internal/adapters/observability"
	"sentitrip/internal/domain"
)

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultReadTimeout    = 30 * time.Second

	maxBody = 1 << 20
)

// Client makes exactly one bounded request per Analyze call. It never retries.
type Client struct {
	url string
	hc  *http.Client
}

// New builds a client for endpoint. Connect and response timeouts are applied
// independently; the whole exchange is capped by their sum.
func New(endpoint string, connectTimeout, readTimeout time.Duration) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("sentiment endpoint is required")
	}
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Client{
		url: endpoint,
		hc: &http.Client{
			Timeout: connectTimeout + readTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   connectTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   connectTimeout,
				ResponseHeaderTimeout: readTimeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}, nil
}

type analyzeRequest struct {
	Content string `json:"content"`
}

// Analyze posts text to the analyzer and returns its score clamped to [0, 100].
// Every failure wraps domain.ErrAnalysisFailed.
func (c *Client) Analyze(ctx context.Context, text string) (float64, error) {
	start := time.Now()
	status := 0
	defer func() { observability.ObserveExternal("sentiment", "analyze", status, time.Since(start)) }()

	body, err := json.Marshal(analyzeRequest{Content: text})
	if err != nil {
		return 0, fail("encode request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fail("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sentitrip/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fail("request: %v", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fail("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var payload map[string]any
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return 0, fail("decode response: %v", err)
	}
	raw, ok := payload["score"]
	if !ok || raw == nil {
		return 0, fail("response has no score field")
	}
	score, err := parseScore(raw)
	if err != nil {
		return 0, fail("%v", err)
	}
	return clamp(score), nil
}

// parseScore accepts a JSON number or a numeric string ("72.5", " 8,5 ").
func parseScore(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		x, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("unparseable score %q", t.String())
		}
		f = x
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		x, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable score %q", t)
		}
		f = x
	default:
		return 0, fmt.Errorf("score has unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("score is not finite")
	}
	return f, nil
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(f, 100))
}

func fail(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrAnalysisFailed, fmt.Sprintf(format, args...))
}
