// Package evidence defines the Evidence Bundle gathered for one
// research-routed turn and the Gatherer that fills it from independent
// sources. Sources fail independently: every transport error, auth error or
// timeout degrades to an explicit absence marker instead of failing the turn.
package evidence

import (
	"sort"
	"strings"
)

// Source identifies one independent evidence source.
type Source string

const (
	// SourceOverview is the search engine's synthesized overview block.
	SourceOverview Source = "overview"
	// SourceOrganic is plain organic search snippets.
	SourceOrganic Source = "organic"
	// SourceNews is the news-focused search feed.
	SourceNews Source = "news"
)

// Sources lists all bundle sources in stable order.
func Sources() []Source {
	return []Source{SourceOverview, SourceOrganic, SourceNews}
}

// Snippet is the raw text one source returned, or an explicit absence marker.
type Snippet struct {
	Source Source `json:"source"`
	Text   string `json:"text,omitempty"`
	Absent bool   `json:"absent,omitempty"`
}

// Bundle maps each source to its snippet or absence marker. A bundle is
// constructed once per research turn, consumed once by the synthesizer and
// then discarded.
type Bundle struct {
	Query   string             `json:"query"`
	Entries map[Source]Snippet `json:"entries"`
}

// NewBundle creates an empty bundle for the given query with every source
// marked absent.
func NewBundle(query string) *Bundle {
	entries := make(map[Source]Snippet, 3)
	for _, src := range Sources() {
		entries[src] = Snippet{Source: src, Absent: true}
	}
	return &Bundle{Query: query, Entries: entries}
}

// Set records text for a source; empty or blank text counts as absent.
func (b *Bundle) Set(src Source, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		b.SetAbsent(src)
		return
	}
	b.Entries[src] = Snippet{Source: src, Text: text}
}

// SetAbsent marks a source as having produced no usable data.
func (b *Bundle) SetAbsent(src Source) {
	b.Entries[src] = Snippet{Source: src, Absent: true}
}

// Present returns the snippets that carry text, in stable source order.
func (b *Bundle) Present() []Snippet {
	var out []Snippet
	for _, src := range Sources() {
		if s, ok := b.Entries[src]; ok && !s.Absent {
			out = append(out, s)
		}
	}
	return out
}

// Empty reports whether every source returned the absence marker.
func (b *Bundle) Empty() bool {
	return len(b.Present()) == 0
}

// Text returns the snippet text for one source, or "" when absent.
func (b *Bundle) Text(src Source) string {
	if s, ok := b.Entries[src]; ok && !s.Absent {
		return s.Text
	}
	return ""
}

// Combined returns all present snippet text joined together, used by the
// containment verifier for string-containment checks.
func (b *Bundle) Combined() string {
	parts := make([]string, 0, 3)
	for _, s := range b.Present() {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}

// SourcesPresent lists which sources produced text, sorted for stable output.
func (b *Bundle) SourcesPresent() []string {
	var names []string
	for _, s := range b.Present() {
		names = append(names, string(s.Source))
	}
	sort.Strings(names)
	return names
}
