package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// baiduSuggestions captures the s:[...] array from the JSONP body.
var baiduSuggestions = regexp.MustCompile(`\bs:\s*(\[[^\]]*\])`)

// Baidu queries the su endpoint, which answers with GBK JSONP.
type Baidu struct {
	fetcher Fetcher
	baseURL string
}

// NewBaidu creates a Baidu provider rooted at baseURL.
func NewBaidu(fetcher Fetcher, baseURL string) *Baidu {
	return &Baidu{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

func (b *Baidu) Name() string { return "baidu" }

// Suggestions fetches completions from a body like
// window.baidu.sug({q:"..",p:false,s:["..",".."]});
func (b *Baidu) Suggestions(ctx context.Context, query string) ([]string, error) {
	resp, err := b.fetcher.Get(ctx, b.baseURL+"/su", map[string]string{
		"json": "1",
		"wd":   query,
	})
	if err != nil {
		return nil, fmt.Errorf("baidu: %w", err)
	}

	body, err := decodeBody(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("baidu: %w", err)
	}

	match := baiduSuggestions.FindStringSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("baidu: no suggestion array in response")
	}

	var raw []string
	if err := sonic.UnmarshalString(match[1], &raw); err != nil {
		return nil, fmt.Errorf("baidu: decode suggestions: %w", err)
	}
	return clean(raw), nil
}
