package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Google queries the chrome completion endpoint.
type Google struct {
	fetcher Fetcher
	baseURL string
}

// NewGoogle creates a Google provider rooted at baseURL.
func NewGoogle(fetcher Fetcher, baseURL string) *Google {
	return &Google{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

func (g *Google) Name() string { return "google" }

// Suggestions fetches completions. The payload is [query, [s1, s2, ...], ...].
func (g *Google) Suggestions(ctx context.Context, query string) ([]string, error) {
	resp, err := g.fetcher.Get(ctx, g.baseURL+"/complete/search", map[string]string{
		"output": "chrome",
		"q":      query,
	})
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	body, err := decodeBody(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("google: %w", err)
	}

	var payload []any
	if err := sonic.UnmarshalString(body, &payload); err != nil {
		return nil, fmt.Errorf("google: decode payload: %w", err)
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("google: unexpected payload shape")
	}

	items, ok := payload[1].([]any)
	if !ok {
		return nil, fmt.Errorf("google: unexpected suggestion list type %T", payload[1])
	}

	raw := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			raw = append(raw, s)
		}
	}
	return clean(raw), nil
}
