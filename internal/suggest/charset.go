package suggest

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// decodeBody converts body to UTF-8. The charset comes from the
// Content-Type header, or is detected when the header has none.
func decodeBody(body []byte, contentType string) (string, error) {
	label := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			label = params["charset"]
		}
	}

	if label == "" {
		if utf8.Valid(body) {
			return string(body), nil
		}
		if result, err := chardet.NewTextDetector().DetectBest(body); err == nil {
			label = normalizeLabel(result.Charset)
		}
	}

	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return string(body), nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", label, err)
	}
	return string(out), nil
}

// normalizeLabel maps chardet names onto WHATWG encoding labels.
func normalizeLabel(name string) string {
	switch strings.ToLower(name) {
	case "gb-18030":
		return "gb18030"
	default:
		return strings.ToLower(name)
	}
}
