package serpapi

import (
	"strings"
	"testing"
)

func TestFlattenBlocksNested(t *testing.T) {
	blocks := []textBlock{
		{Snippet: "Mohan Charan Majhi is the Chief Minister of Odisha."},
		{
			Title: "Key facts",
			List: []textBlock{
				{Snippet: "Sworn in on 12 June 2024."},
				{Title: "Party: BJP"},
			},
		},
	}
	got := flattenBlocks(blocks)
	for _, want := range []string{"Mohan Charan Majhi", "12 June 2024", "Party: BJP", "Key facts"} {
		if !strings.Contains(got, want) {
			t.Errorf("flattenBlocks missing %q in %q", want, got)
		}
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<b>Mohan Charan Majhi</b> took <em>office</em> in 2024")
	if got != "Mohan Charan Majhi took office in 2024" {
		t.Errorf("stripHTML = %q", got)
	}
	plain := "no markup here"
	if stripHTML(plain) != plain {
		t.Error("plain text must pass through untouched")
	}
}

func TestPreferRecent(t *testing.T) {
	snips := []string{
		"Naveen Patnaik won the 2019 election.",
		"Mohan Charan Majhi was sworn in during 2024.",
		"Odisha is on the east coast of India.",
	}
	got := preferRecent(snips, 2023)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, s := range got {
		if strings.Contains(s, "2019") {
			t.Errorf("stale snippet kept: %q", s)
		}
	}
}

func TestPreferRecentKeepsAllWhenEverythingStale(t *testing.T) {
	snips := []string{"result from 2010", "result from 2012"}
	if got := preferRecent(snips, 2023); len(got) != 2 {
		t.Errorf("stale-only list must survive, got %d", len(got))
	}
}

func TestCapText(t *testing.T) {
	long := strings.Repeat("ଓ", snippetCap+100)
	if got := capText(long); len([]rune(got)) != snippetCap {
		t.Errorf("capText length = %d", len([]rune(got)))
	}
}
