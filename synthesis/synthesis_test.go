package synthesis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sweetpotato0/odialingua/evidence"
	"github.com/sweetpotato0/odialingua/message"
)

type stubLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *stubLLM) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return message.NewMessage(message.RoleAssistant, s.responses[idx]), nil
}

func (s *stubLLM) SetTemperature(float64) {}
func (s *stubLLM) SetMaxTokens(int64)     {}
func (s *stubLLM) SetModel(string)        {}

func cmBundle() *evidence.Bundle {
	b := evidence.NewBundle("current Chief Minister of Odisha")
	b.Set(evidence.SourceOverview, "Mohan Charan Majhi of the BJP was sworn in as Chief Minister of Odisha on 12 June 2024.")
	b.Set(evidence.SourceNews, "Mohan Charan Majhi took office in June 2024 after the assembly election.")
	return b
}

func TestSynthesizeCompliantDraft(t *testing.T) {
	stub := &stubLLM{responses: []string{
		"Mohan Charan Majhi of the BJP is the Chief Minister of Odisha, sworn in on 12 June 2024.",
	}}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Who is the current CM of Odisha?", cmBundle())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if ext.Extractive {
		t.Error("compliant draft should not trigger the extractive fallback")
	}
	if ext.NoInformation {
		t.Error("extraction marked no-information despite evidence")
	}
	if !strings.Contains(ext.Text, "Mohan Charan Majhi") {
		t.Errorf("extraction lost the answer: %q", ext.Text)
	}
	if len(ext.Sources) != 2 {
		t.Errorf("Sources = %v, want overview and news", ext.Sources)
	}
	if stub.calls != 1 {
		t.Errorf("model calls = %d, want 1", stub.calls)
	}
}

func TestSynthesizeRetriesUnsupportedClaim(t *testing.T) {
	// First draft invents a name, second sticks to the sources.
	stub := &stubLLM{responses: []string{
		"Naveen Patnaik is the Chief Minister of Odisha.",
		"Mohan Charan Majhi is the Chief Minister of Odisha since June 2024.",
	}}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Who is the CM of Odisha?", cmBundle())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("model calls = %d, want 2", stub.calls)
	}
	if ext.Extractive {
		t.Error("second draft was compliant, fallback should not fire")
	}
	if strings.Contains(ext.Text, "Naveen Patnaik") {
		t.Errorf("unsupported name survived: %q", ext.Text)
	}
}

func TestSynthesizePersistentViolationFallsBack(t *testing.T) {
	stub := &stubLLM{responses: []string{
		"Naveen Patnaik remains Chief Minister as of 2023.",
	}}
	s := NewSynthesizer(stub, WithRetries(1))

	ext, err := s.Synthesize(context.Background(), "Who is the CM of Odisha?", cmBundle())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !ext.Extractive {
		t.Fatal("expected extractive fallback")
	}
	if stub.calls != 2 {
		t.Errorf("model calls = %d, want 2", stub.calls)
	}
	if !strings.Contains(ext.Text, "Mohan Charan Majhi") {
		t.Errorf("fallback should quote the sources: %q", ext.Text)
	}
	if strings.Contains(ext.Text, "Naveen Patnaik") {
		t.Errorf("fallback must not carry the bad draft: %q", ext.Text)
	}
}

func TestSynthesizeModelFailureFallsBack(t *testing.T) {
	stub := &stubLLM{err: errors.New("upstream 500")}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Who is the CM of Odisha?", cmBundle())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !ext.Extractive {
		t.Error("model failure should degrade to the extractive fallback")
	}
}

func TestSynthesizeEmptyBundle(t *testing.T) {
	stub := &stubLLM{responses: []string{"should not be called"}}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Who is the CM of Odisha?", evidence.NewBundle("q"))
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !ext.NoInformation {
		t.Error("empty bundle must produce a no-information extraction")
	}
	if ext.Text != NoInformationText {
		t.Errorf("extraction text = %q, want the no-information statement", ext.Text)
	}
	if stub.calls != 0 {
		t.Errorf("model calls = %d, want 0", stub.calls)
	}
	if len(ext.Gaps) == 0 {
		t.Error("no-information extraction should record the gap")
	}
}

func TestSynthesizeSurfacesConflicts(t *testing.T) {
	b := evidence.NewBundle("which party governs Odisha")
	b.Set(evidence.SourceOverview, "The BJP formed the government in Odisha in 2024.")
	b.Set(evidence.SourceNews, "The BJD continues to govern Odisha.")

	// Draft picks one side; enforcement must surface the other.
	stub := &stubLLM{responses: []string{"The BJP governs Odisha as of 2024."}}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Which party governs Odisha?", b)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if len(ext.Conflicts) == 0 {
		t.Fatal("conflict between sources not detected")
	}
	if !strings.Contains(ext.Text, "BJP") || !strings.Contains(ext.Text, "BJD") {
		t.Errorf("both conflicting values must appear: %q", ext.Text)
	}
}

func TestSynthesizeRecordsGaps(t *testing.T) {
	b := evidence.NewBundle("q")
	b.Set(evidence.SourceOrganic, "Odisha is a state on the eastern coast of India.")

	stub := &stubLLM{responses: []string{"Odisha is a state on the eastern coast of India."}}
	s := NewSynthesizer(stub)

	ext, err := s.Synthesize(context.Background(), "Who won the Odisha election in 2024?", b)
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	found := false
	for _, gap := range ext.Gaps {
		if strings.Contains(gap, "2024") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing year not reported as gap: %v", ext.Gaps)
	}
}

func TestSynthesizeEmptyQuestion(t *testing.T) {
	s := NewSynthesizer(nil)
	if _, err := s.Synthesize(context.Background(), "  ", cmBundle()); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestSynthesizeNilClientExtractive(t *testing.T) {
	s := NewSynthesizer(nil)
	ext, err := s.Synthesize(context.Background(), "Who is the CM of Odisha?", cmBundle())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !ext.Extractive {
		t.Error("nil client must use the extractive fallback")
	}
}
