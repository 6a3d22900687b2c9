package evidence

import "testing"

func TestNewBundleStartsAbsent(t *testing.T) {
	b := NewBundle("q")
	if !b.Empty() {
		t.Error("fresh bundle should be empty")
	}
	for _, src := range Sources() {
		if b.Text(src) != "" {
			t.Errorf("source %s should be absent", src)
		}
	}
}

func TestSetBlankTextCountsAsAbsent(t *testing.T) {
	b := NewBundle("q")
	b.Set(SourceOverview, "   \n ")
	if !b.Empty() {
		t.Error("blank text must not count as evidence")
	}
}

func TestPresentKeepsStableOrder(t *testing.T) {
	b := NewBundle("q")
	b.Set(SourceNews, "news text")
	b.Set(SourceOverview, "overview text")

	present := b.Present()
	if len(present) != 2 {
		t.Fatalf("present = %d entries, want 2", len(present))
	}
	if present[0].Source != SourceOverview || present[1].Source != SourceNews {
		t.Errorf("unexpected order: %v, %v", present[0].Source, present[1].Source)
	}
}
