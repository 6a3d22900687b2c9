// Package serpapi provides the Google-backed evidence sources via the
// SerpAPI HTTP service: the AI-overview source with answer-box, knowledge
// graph and organic fallbacks, and the plain organic-snippet source.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sweetpotato0/odialingua/evidence"
)

const baseURL = "https://serpapi.com/search.json"

// snippetCap bounds overview text so one verbose block cannot drown the
// other sources.
const snippetCap = 900

// Client is a shared SerpAPI HTTP client used by both sources.
type Client struct {
	apiKey string
	http   *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, http: &http.Client{}}
}

type textBlock struct {
	Snippet    string      `json:"snippet"`
	Title      string      `json:"title"`
	List       []textBlock `json:"list"`
	TextBlocks []textBlock `json:"text_blocks"`
}

type aiOverview struct {
	TextBlocks []textBlock `json:"text_blocks"`
	PageToken  string      `json:"page_token"`
}

type organicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	AIOverview *aiOverview `json:"ai_overview"`
	AnswerBox  *struct {
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	KnowledgeGraph *struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	} `json:"knowledge_graph"`
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error"`
}

func (c *Client) search(ctx context.Context, params url.Values) (*searchResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("SerpAPI key not configured")
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI error (status %d): %s", resp.StatusCode, string(body))
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", out.Error)
	}
	return &out, nil
}

// OverviewSource fetches the Google AI-overview block, degrading through
// answer box, knowledge graph and the first organic snippet.
type OverviewSource struct {
	client *Client
}

// NewOverviewSource creates the overview evidence source.
func NewOverviewSource(client *Client) *OverviewSource {
	return &OverviewSource{client: client}
}

// Source implements evidence.SourceClient.
func (s *OverviewSource) Source() evidence.Source {
	return evidence.SourceOverview
}

// Fetch implements evidence.SourceClient. An empty result with nil error
// means the search worked but produced nothing usable.
func (s *OverviewSource) Fetch(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("gl", "in")
	params.Set("no_cache", "true")

	res, err := s.client.search(ctx, params)
	if err != nil {
		return "", err
	}

	if res.AIOverview != nil && len(res.AIOverview.TextBlocks) > 0 {
		return capText(flattenBlocks(res.AIOverview.TextBlocks)), nil
	}

	// The overview sometimes arrives behind a one-shot page token.
	if res.AIOverview != nil && res.AIOverview.PageToken != "" {
		tokenParams := url.Values{}
		tokenParams.Set("engine", "google_ai_overview")
		tokenParams.Set("page_token", res.AIOverview.PageToken)
		tokenParams.Set("no_cache", "true")
		if res2, err := s.client.search(ctx, tokenParams); err == nil {
			if res2.AIOverview != nil && len(res2.AIOverview.TextBlocks) > 0 {
				return capText(flattenBlocks(res2.AIOverview.TextBlocks)), nil
			}
		}
	}

	if res.AnswerBox != nil && res.AnswerBox.Snippet != "" {
		return stripHTML(res.AnswerBox.Snippet), nil
	}
	if res.KnowledgeGraph != nil && res.KnowledgeGraph.Title != "" {
		return fmt.Sprintf("%s - %s", res.KnowledgeGraph.Title, res.KnowledgeGraph.Type), nil
	}
	if len(res.OrganicResults) > 0 && res.OrganicResults[0].Snippet != "" {
		first := res.OrganicResults[0]
		return first.Title + ": " + stripHTML(first.Snippet), nil
	}
	return "", nil
}

// OrganicSource fetches plain organic snippets, preferring recent ones.
type OrganicSource struct {
	client   *Client
	maxSnips int
}

// NewOrganicSource creates the organic evidence source.
func NewOrganicSource(client *Client) *OrganicSource {
	return &OrganicSource{client: client, maxSnips: 3}
}

// Source implements evidence.SourceClient.
func (s *OrganicSource) Source() evidence.Source {
	return evidence.SourceOrganic
}

// Fetch implements evidence.SourceClient.
func (s *OrganicSource) Fetch(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("gl", "in")
	params.Set("num", "10")

	res, err := s.client.search(ctx, params)
	if err != nil {
		return "", err
	}

	var snips []string
	for _, r := range res.OrganicResults {
		if r.Snippet != "" {
			snips = append(snips, stripHTML(r.Snippet))
		}
	}
	snips = preferRecent(snips, 2023)
	if len(snips) > s.maxSnips {
		snips = snips[:s.maxSnips]
	}
	return strings.Join(snips, "\n"), nil
}

// flattenBlocks joins nested overview text blocks into plain text.
func flattenBlocks(blocks []textBlock) string {
	var out []string
	for _, blk := range blocks {
		if t := firstOf(blk.Snippet, blk.Title); t != "" {
			out = append(out, stripHTML(t))
		}
		for _, item := range blk.List {
			if t := firstOf(item.Snippet, item.Title); t != "" {
				out = append(out, stripHTML(t))
			}
		}
		for _, tb := range blk.TextBlocks {
			if tb.Snippet != "" {
				out = append(out, stripHTML(tb.Snippet))
			}
		}
	}
	return strings.Join(out, "\n")
}

func firstOf(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func capText(s string) string {
	runes := []rune(s)
	if len(runes) > snippetCap {
		return string(runes[:snippetCap])
	}
	return s
}

// stripHTML flattens snippets that arrive with embedded markup.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// preferRecent drops snippets whose only year reference is older than the
// cutoff. When that removes everything, the original list is returned; stale
// evidence beats none.
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
