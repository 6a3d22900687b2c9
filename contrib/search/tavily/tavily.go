// Package tavily provides the news-focused evidence source backed by the
// Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/sweetpotato0/odialingua/evidence"
)

const apiURL = "https://api.tavily.com/search"

// Source fetches recent news snippets.
type Source struct {
	apiKey     string
	http       *http.Client
	maxResults int
	maxSnips   int
}

// NewSource creates the Tavily news source.
func NewSource(apiKey string) *Source {
	return &Source{
		apiKey:     apiKey,
		http:       &http.Client{},
		maxResults: 15,
		maxSnips:   3,
	}
}

type searchRequest struct {
	Query         string `json:"query"`
	Topic         string `json:"topic"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Source implements evidence.SourceClient.
func (s *Source) Source() evidence.Source {
	return evidence.SourceNews
}

// Fetch implements evidence.SourceClient.
func (s *Source) Fetch(ctx context.Context, query string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("Tavily API key not configured")
	}

	reqBody, err := json.Marshal(searchRequest{
		Query:       query,
		Topic:       "news",
		SearchDepth: "advanced",
		MaxResults:  s.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tavily API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var snips []string
	for _, r := range out.Results {
		if r.Content != "" {
			snips = append(snips, r.Title+": "+r.Content)
		}
	}
	snips = preferRecent(snips, 2023)
	if len(snips) > s.maxSnips {
		snips = snips[:s.maxSnips]
	}
	return strings.Join(snips, "\n"), nil
}

var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

func preferRecent(snips []string, cutoff int) []string {
	var out []string
	for _, s := range snips {
		m := yearRe.FindString(s)
		if m == "" {
			out = append(out, s)
			continue
		}
		if year, err := strconv.Atoi(m); err == nil && year >= cutoff {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return snips
	}
	return out
}
