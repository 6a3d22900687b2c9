// Package googletrans normalises queries to English using the public Google
// Translate web endpoint.
package googletrans

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const apiURL = "https://translate.googleapis.com/translate_a/single"

// Client translates text via the unauthenticated gtx endpoint. It implements
// evidence.Translator.
type Client struct {
	http *http.Client
}

// New creates a translate client.
func New() *Client {
	return &Client{http: &http.Client{}}
}

// EnsureEnglish translates the query to English, detecting the source
// language automatically. Text already in English passes through unchanged.
func (c *Client) EnsureEnglish(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", "en")
	params.Set("dt", "t")
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate error (status %d): %s", resp.StatusCode, string(body))
	}
	return parseTranslation(body)
}

// parseTranslation walks the loosely typed response array. The first element
// is a list of segments, each a list whose first entry is the translated
// chunk.
func parseTranslation(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if chunk, ok := parts[0].(string); ok {
			sb.WriteString(chunk)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("translation produced no text")
	}
	return out, nil
}
